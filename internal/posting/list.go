// Package posting implements the owned object lists attached to each
// (predicate, subject) pair of the triple store: L[p][s] in spec.md's
// terms. Below a configurable size threshold a list is a plain sorted-by-
// insertion []uint32 (duplicates collapse on insert); once it grows past
// the threshold it is backed by a github.com/RoaringBitmap/roaring bitmap,
// the same upgrade boutros-sopp's triplestore performs unconditionally for
// every SPO/POS/OSP posting list.
//
// A List never exposes its backing storage — only iteration and
// membership — so the owning store can change representation underneath
// callers without breaking the "never borrow-escape the owning reference"
// rule spec.md's design notes call for.
package posting

import "github.com/RoaringBitmap/roaring"

// DefaultHashThreshold is the list size at which a List upgrades from a
// linear array to a roaring bitmap, matching spec.md §6's
// posting_list_hash_threshold default of 32.
const DefaultHashThreshold = 32

// List is the object (or subject) set for one (predicate, subject) (or
// (predicate, object)) pair.
type List struct {
	items     []uint32 // insertion order; nil once upgraded
	bitmap    *roaring.Bitmap
	threshold int
}

// NewList returns an empty list that upgrades to a roaring bitmap once it
// holds more than threshold elements. threshold <= 0 uses DefaultHashThreshold.
func NewList(threshold int) *List {
	if threshold <= 0 {
		threshold = DefaultHashThreshold
	}
	return &List{threshold: threshold}
}

// Add inserts v, reporting whether it was newly added (false if v was
// already a member — duplicates collapse per spec.md's triple-set
// semantics).
func (l *List) Add(v uint32) bool {
	if l.bitmap != nil {
		return l.bitmap.CheckedAdd(v)
	}
	for _, x := range l.items {
		if x == v {
			return false
		}
	}
	l.items = append(l.items, v)
	if len(l.items) > l.threshold {
		l.upgrade()
	}
	return true
}

// upgrade migrates the array representation to a roaring bitmap once the
// list has grown past its threshold, so membership tests stop being a
// linear scan.
func (l *List) upgrade() {
	bm := roaring.NewBitmap()
	for _, x := range l.items {
		bm.Add(x)
	}
	l.bitmap = bm
	l.items = nil
}

// Contains reports whether v is a member.
func (l *List) Contains(v uint32) bool {
	if l == nil {
		return false
	}
	if l.bitmap != nil {
		return l.bitmap.Contains(v)
	}
	for _, x := range l.items {
		if x == v {
			return true
		}
	}
	return false
}

// Len returns the number of distinct elements.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	if l.bitmap != nil {
		return int(l.bitmap.GetCardinality())
	}
	return len(l.items)
}

// ForEach calls fn for every element. Once upgraded, iteration order is the
// bitmap's ascending numeric order rather than insertion order — spec.md
// is explicit that posting-list order is "not semantically significant".
func (l *List) ForEach(fn func(uint32)) {
	if l == nil {
		return
	}
	if l.bitmap != nil {
		it := l.bitmap.Iterator()
		for it.HasNext() {
			fn(it.Next())
		}
		return
	}
	for _, x := range l.items {
		fn(x)
	}
}

// Table is a sparse P_max x S (or P_max x O_max) collection of Lists,
// indexed lazily by (row, col) so absent cells cost nothing — spec.md
// requires "empty cells are null", not a preallocated dense table of
// list headers.
type Table struct {
	threshold int
	lists     map[uint64]*List
}

// NewTable creates an empty posting-list table.
func NewTable(threshold int) *Table {
	return &Table{threshold: threshold, lists: make(map[uint64]*List)}
}

func key(row, col uint32) uint64 {
	return uint64(row)<<32 | uint64(col)
}

// Get returns the list at (row, col), or nil if the cell is empty. Never
// allocates.
func (t *Table) Get(row, col uint32) *List {
	return t.lists[key(row, col)]
}

// GetOrCreate returns the list at (row, col), allocating an empty one on
// first use.
func (t *Table) GetOrCreate(row, col uint32) *List {
	k := key(row, col)
	l, ok := t.lists[k]
	if !ok {
		l = NewList(t.threshold)
		t.lists[k] = l
	}
	return l
}
