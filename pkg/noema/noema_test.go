package noema_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/aleksaelezovic/noema/pkg/noema"
)

// ScenarioSuite exercises spec.md §8's concrete end-to-end scenarios
// through the public façade.
type ScenarioSuite struct {
	suite.Suite
	store *noema.Store
}

func (s *ScenarioSuite) SetupTest() {
	store, err := noema.CreateStore(noema.Config{
		MaxSubjects:              64,
		MaxPredicates:            32,
		MaxObjects:               64,
		PostingListHashThreshold: 4,
		TemplateCacheCapacity:    16,
	})
	require.NoError(s.T(), err)
	s.store = store
}

func (s *ScenarioSuite) intern(term string) uint32 {
	id, err := s.store.Intern([]byte(term))
	require.NoError(s.T(), err)
	return id
}

func (s *ScenarioSuite) add(subj, pred, obj uint32) {
	require.NoError(s.T(), s.store.AddTriple(subj, pred, obj))
}

// TestSubclassReasoning mirrors scenario 1.
func (s *ScenarioSuite) TestSubclassReasoning() {
	car := s.intern("Car")
	vehicle := s.intern("Vehicle")
	typePred := s.intern("rdf:type")
	tesla := s.intern("Tesla")
	_ = s.intern("rdfs:subClassOf")
	banana := s.intern("Banana")

	s.add(tesla, typePred, car)
	require.NoError(s.T(), s.store.DeclareSubclass(car, vehicle))
	require.NoError(s.T(), s.store.Materialize())

	require.True(s.T(), s.store.CheckClass(tesla, car))
	require.True(s.T(), s.store.CheckClass(tesla, vehicle), "subclass closure should make tesla a Vehicle")
	require.True(s.T(), s.store.Ask(tesla, typePred, vehicle), "materialization should inject (tesla, rdf:type, Vehicle)")
	require.False(s.T(), s.store.CheckClass(tesla, banana))
}

// TestTransitiveAncestry mirrors scenario 2.
func (s *ScenarioSuite) TestTransitiveAncestry() {
	p := s.intern("ancestor")
	a, b, c, d := s.intern("A"), s.intern("B"), s.intern("C"), s.intern("D")

	s.add(a, p, b)
	s.add(b, p, c)
	s.add(c, p, d)

	require.NoError(s.T(), s.store.DeclareTransitive(p))
	require.NoError(s.T(), s.store.Materialize())

	require.True(s.T(), s.store.Ask(a, p, d))
	require.Equal(s.T(), 3, s.store.CountObjectsFor(p, a))
}

// TestPersonShape mirrors scenario 3.
func (s *ScenarioSuite) TestPersonShape() {
	typePred := s.store.TypePredicate()
	person := s.intern("Person")
	name := s.intern("name")
	email := s.intern("email")
	alice := s.intern("alice")
	aliceName := s.intern("Alice")

	s.add(alice, typePred, person)
	s.add(alice, name, aliceName)

	s.store.DefineShape("PersonShape", person, []noema.Constraint{
		{Kind: noema.KindMinCount, Property: name, Count: 1},
		{Kind: noema.KindMaxCount, Property: name, Count: 1},
		{Kind: noema.KindHasProperty, Property: email},
	})

	result, err := s.store.ValidateShape(alice, "PersonShape")
	require.NoError(s.T(), err)
	require.False(s.T(), result.Pass)
	require.Len(s.T(), result.Violations, 1)
	require.Equal(s.T(), noema.KindHasProperty, result.Violations[0].Kind)
	require.Equal(s.T(), email, result.Violations[0].Property)
}

// TestTemplates mirrors scenarios 4 and 5.
func (s *ScenarioSuite) TestTemplates() {
	out, err := s.store.Render(`Hello {{ user | capitalize }}{% if admin %} (admin){% endif %}!`,
		noema.Context{"user": noema.StringValue("alice"), "admin": noema.BoolValue(true)})
	require.NoError(s.T(), err)
	require.Equal(s.T(), "Hello Alice (admin)!", out)

	out, err = s.store.Render("{% for f in fruits %}- {{f | upper}}\n{% endfor %}",
		noema.Context{"fruits": noema.SequenceValue{"apple", "pear"}})
	require.NoError(s.T(), err)
	require.Equal(s.T(), "- APPLE\n- PEAR\n", out)
}

// TestFunctionalViolation mirrors scenario 6.
func (s *ScenarioSuite) TestFunctionalViolation() {
	hasMother := s.intern("hasMother")
	john, mary, anne := s.intern("john"), s.intern("mary"), s.intern("anne")

	s.add(john, hasMother, mary)
	s.add(john, hasMother, anne)

	require.NoError(s.T(), s.store.DeclareFunctional(hasMother))
	require.NoError(s.T(), s.store.Materialize())

	violations := s.store.FunctionalViolations()
	require.Len(s.T(), violations, 1)
	require.Equal(s.T(), john, violations[0].Subject)
	require.Equal(s.T(), hasMother, violations[0].Predicate)
}

func (s *ScenarioSuite) TestInternIsIdempotentAndDistinct() {
	a1 := s.intern("x")
	a2 := s.intern("x")
	b := s.intern("y")
	require.Equal(s.T(), a1, a2)
	require.NotEqual(s.T(), a1, b)

	got, ok := s.store.Lookup(a1)
	require.True(s.T(), ok)
	require.Equal(s.T(), "x", string(got))
}

func TestScenarioSuite(t *testing.T) {
	suite.Run(t, new(ScenarioSuite))
}

func TestAddTripleOutOfRangeBoundary(t *testing.T) {
	store, err := noema.CreateStore(noema.Config{MaxSubjects: 8, MaxPredicates: 8, MaxObjects: 8})
	require.NoError(t, err)

	err = store.AddTriple(8, 1, 1) // 8 == MaxSubjects, out of range
	var nErr *noema.Error
	require.ErrorAs(t, err, &nErr)
	require.Equal(t, noema.KindOutOfRange, nErr.Kind)

	require.NoError(t, store.AddTriple(7, 1, 1)) // 7 == MaxSubjects-1, in range
}
