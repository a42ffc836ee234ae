package bitmatrix

import (
	"testing"
	"unsafe"
)

func TestSetTestClear(t *testing.T) {
	m := New(4, 130) // exercises more than one word per row
	if m.Test(0, 65) {
		t.Fatal("fresh matrix should have no bits set")
	}
	if !m.Set(0, 65) {
		t.Fatal("Set in range should report true")
	}
	if !m.Test(0, 65) {
		t.Fatal("Test should see the bit just set")
	}
	if !m.Clear(0, 65) {
		t.Fatal("Clear in range should report true")
	}
	if m.Test(0, 65) {
		t.Fatal("Test should not see a cleared bit")
	}
}

func TestOutOfRangeIsFalseNotPanic(t *testing.T) {
	m := New(2, 2)
	if m.Test(5, 0) || m.Test(0, 5) || m.Test(-1, 0) {
		t.Fatal("out-of-range Test should report false")
	}
	if m.Set(5, 0) || m.Clear(5, 0) {
		t.Fatal("out-of-range Set/Clear should report false")
	}
}

func TestRowBitsVisitsAscendingAndRespectsCols(t *testing.T) {
	m := New(1, 70)
	m.Set(0, 0)
	m.Set(0, 63)
	m.Set(0, 64)
	m.Set(0, 69)

	var got []int
	m.RowBits(0, func(col int) bool {
		got = append(got, col)
		return true
	})
	want := []int{0, 63, 64, 69}
	if len(got) != len(want) {
		t.Fatalf("RowBits visited %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("RowBits visited %v, want %v", got, want)
		}
	}
}

func TestRowBitsEarlyStop(t *testing.T) {
	m := New(1, 70)
	m.Set(0, 0)
	m.Set(0, 63)
	m.Set(0, 64)

	seen := 0
	m.RowBits(0, func(col int) bool {
		seen++
		return false
	})
	if seen != 1 {
		t.Fatalf("RowBits should stop after the first fn() returns false, saw %d calls", seen)
	}
}

func TestRowAny(t *testing.T) {
	m := New(2, 70)
	if m.RowAny(0) {
		t.Fatal("fresh row should report no bits set")
	}
	m.Set(0, 69)
	if !m.RowAny(0) {
		t.Fatal("row with a set bit should report RowAny true")
	}
	if m.RowAny(1) {
		t.Fatal("untouched row should still report false")
	}
}

func TestOrRowInto(t *testing.T) {
	m := New(2, 70)
	m.Set(0, 1)
	m.Set(1, 2)
	changed := m.OrRowInto(0, 1)
	if !changed {
		t.Fatal("OrRowInto should report a change when src has a new bit")
	}
	if !m.Test(0, 1) || !m.Test(0, 2) {
		t.Fatal("dst row should retain its own bits and gain src's bits")
	}
	if m.OrRowInto(0, 1) {
		t.Fatal("second identical OrRowInto should report no change")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := New(1, 70)
	m.Set(0, 10)
	c := m.Clone()
	if !c.Test(0, 10) {
		t.Fatal("clone should carry over existing bits")
	}
	c.Set(0, 20)
	if m.Test(0, 20) {
		t.Fatal("mutating the clone should not affect the original")
	}
}

func TestAlignedAllocationIsCacheLineAligned(t *testing.T) {
	m := New(3, 200)
	if len(m.data) == 0 {
		t.Fatal("expected non-empty backing storage")
	}
	addr := uintptr(unsafe.Pointer(&m.data[0]))
	if addr%64 != 0 {
		t.Fatalf("backing storage not 64-byte aligned: addr%%64 = %d", addr%64)
	}
}
