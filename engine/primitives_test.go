package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/janus-kgraph/kb"
	"github.com/wbrown/janus-kgraph/kgraph"
)

// richRaw extends the minimal fixture with a concept hierarchy, qualified
// facts, and mixed units.
func richRaw() *kb.Raw {
	return &kb.Raw{
		Concepts: map[string]kb.RawConcept{
			"c_person": {Name: "person"},
			"c_player": {Name: "basketball player", SubclassOf: []string{"c_person"}},
		},
		Entities: map[string]kb.RawEntity{
			"e_alice": {
				Name:       "Alice",
				InstanceOf: []string{"c_person"},
				Attributes: []kb.RawAttribute{
					{Key: "height", Value: quantity(180, "centimetre")},
					{
						Key:   "salary",
						Value: quantity(100, "dollar"),
						Qualifiers: map[string][]kb.RawValue{
							"point_in_time": {year(2020)},
						},
					},
					{
						Key:   "salary",
						Value: quantity(120, "dollar"),
						Qualifiers: map[string][]kb.RawValue{
							"point_in_time": {year(2021)},
						},
					},
				},
				Relations: []kb.RawRelation{
					{
						Relation:  "spouse",
						Direction: "forward",
						Object:    "e_bob",
						Qualifiers: map[string][]kb.RawValue{
							"start_time": {date("1985-06-15")},
						},
					},
				},
			},
			"e_bob": {
				Name:       "Bob",
				InstanceOf: []string{"c_person"},
				Attributes: []kb.RawAttribute{
					{Key: "height", Value: quantity(175, "centimetre")},
					{Key: "birth_date", Value: date("1960-02-01")},
					{Key: "nationality", Value: str("American")},
				},
				Relations: []kb.RawRelation{
					{Relation: "spouse", Direction: "backward", Object: "e_alice"},
				},
			},
			"e_carol": {
				Name:       "Carol",
				InstanceOf: []string{"c_player"},
				Attributes: []kb.RawAttribute{
					{Key: "height", Value: quantity(185, "centimetre")},
					{Key: "nationality", Value: str("American")},
				},
				Relations: []kb.RawRelation{},
			},
			"e_dan": {
				Name:       "Dan",
				InstanceOf: []string{"c_player"},
				Attributes: []kb.RawAttribute{
					{Key: "height", Value: quantity(6.5, "foot")},
				},
				Relations: []kb.RawRelation{},
			},
		},
	}
}

func TestFilterStrEmitsFacts(t *testing.T) {
	e := newTestEngine(t, richRaw())
	all := e.FindAll()

	got, err := e.FilterStr(all, "nationality", "American")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"e_bob", "e_carol"}, got.IDs)
	require.True(t, got.HasFacts())
	require.Len(t, got.Facts, 2)
	for _, f := range got.Facts {
		attr, ok := f.(*kgraph.Attribute)
		require.True(t, ok)
		assert.Equal(t, "nationality", attr.Key)
	}
}

func TestFiltersAreSubsets(t *testing.T) {
	e := newTestEngine(t, richRaw())
	all := e.FindAll()
	universe := make(map[string]struct{})
	for _, id := range all.IDs {
		universe[id] = struct{}{}
	}

	subset := func(b Bundle) {
		t.Helper()
		for _, id := range b.IDs {
			_, ok := universe[id]
			assert.True(t, ok, "id %s escaped the input set", id)
		}
	}

	got, err := e.FilterNum(all, "height", "180 centimetre", kgraph.OpLess)
	require.NoError(t, err)
	subset(got)
	assert.ElementsMatch(t, []string{"e_bob"}, got.IDs)

	got, err = e.FilterYear(all, "birth_date", "1960", kgraph.OpEqual)
	require.NoError(t, err)
	subset(got)
	assert.Equal(t, []string{"e_bob"}, got.IDs)

	got, err = e.FilterDate(all, "birth_date", "1960-02-01", kgraph.OpEqual)
	require.NoError(t, err)
	assert.Equal(t, []string{"e_bob"}, got.IDs)
}

func TestFilterUnknownKeyIsEmpty(t *testing.T) {
	e := newTestEngine(t, richRaw())
	got, err := e.FilterStr(e.FindAll(), "shoe_size", "large")
	require.NoError(t, err)
	assert.Empty(t, got.IDs)
}

func TestAndOrLaws(t *testing.T) {
	e := newTestEngine(t, richRaw())
	x := e.Find("Alice")
	y := e.Find("Bob")

	assert.ElementsMatch(t, x.IDs, e.And(x, x).IDs)
	assert.ElementsMatch(t, x.IDs, e.Or(x, x).IDs)
	assert.False(t, e.And(x, y).HasFacts())

	union := e.Or(x, y)
	assert.Equal(t, len(union.IDs), e.Count(union))
	assert.ElementsMatch(t, []string{"e_alice", "e_bob"}, union.IDs)
	assert.Empty(t, e.And(x, y).IDs)
}

func TestRelateRoundTripIsSuperset(t *testing.T) {
	e := newTestEngine(t, richRaw())
	start := e.Find("Alice")
	out := e.Relate(start, "spouse", kgraph.Forward)
	assert.Equal(t, []string{"e_bob"}, out.IDs)
	require.True(t, out.HasFacts())

	back := e.Relate(out, "spouse", kgraph.Backward)
	// Alice reached her spouse and came back.
	assert.Contains(t, back.IDs, "e_alice")
}

func TestQFilterNeedsFactChannel(t *testing.T) {
	e := newTestEngine(t, richRaw())

	// FindAll carries no facts, so qualifier filtering has nothing to
	// inspect.
	got, err := e.QFilterYear(e.FindAll(), "point_in_time", "2020", kgraph.OpEqual)
	require.NoError(t, err)
	assert.Empty(t, got.IDs)

	filtered, err := e.FilterNum(e.FindAll(), "salary", "100 dollar", kgraph.OpEqual)
	require.NoError(t, err)
	got, err = e.QFilterYear(filtered, "point_in_time", "2020", kgraph.OpEqual)
	require.NoError(t, err)
	assert.Equal(t, []string{"e_alice"}, got.IDs)

	got, err = e.QFilterYear(filtered, "point_in_time", "1999", kgraph.OpEqual)
	require.NoError(t, err)
	assert.Empty(t, got.IDs)
}

func TestQFilterOnRelationFacts(t *testing.T) {
	e := newTestEngine(t, richRaw())
	spouses := e.Relate(e.Find("Alice"), "spouse", kgraph.Forward)

	kept, err := e.QFilterDate(spouses, "start_time", "1985-06-15", kgraph.OpEqual)
	require.NoError(t, err)
	assert.Equal(t, []string{"e_bob"}, kept.IDs)

	dropped, err := e.QFilterDate(spouses, "start_time", "1985-06-15", kgraph.OpNotEqual)
	require.NoError(t, err)
	assert.Empty(t, dropped.IDs)
}

func TestQueryAttr(t *testing.T) {
	e := newTestEngine(t, richRaw())
	values := e.QueryAttr(e.Find("Alice"), "salary")
	require.Len(t, values, 2)
	assert.Equal(t, "100 dollar", values[0].String())
	assert.Equal(t, "120 dollar", values[1].String())
}

func TestQueryAttrUnderCondition(t *testing.T) {
	e := newTestEngine(t, richRaw())
	values, err := e.QueryAttrUnderCondition(e.Find("Alice"), "salary", "point_in_time", "2021")
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "120 dollar", values[0].String())

	_, err = e.QueryAttrUnderCondition(e.Find("Alice"), "salary", "never_seen_key", "2021")
	assert.Error(t, err, "a key with no declared type cannot parse its literal")
}

func TestQueryAttrQualifier(t *testing.T) {
	e := newTestEngine(t, richRaw())
	values, err := e.QueryAttrQualifier(e.Find("Alice"), "salary", "100 dollar", "point_in_time")
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "2020", values[0].String())
}

func TestQueryRelationQualifier(t *testing.T) {
	e := newTestEngine(t, richRaw())
	values := e.QueryRelationQualifier(e.Find("Alice"), e.Find("Bob"), "spouse", "start_time")
	require.Len(t, values, 1)
	assert.Equal(t, "1985-06-15", values[0].String())

	assert.Empty(t, e.QueryRelationQualifier(e.Find("Bob"), e.Find("Alice"), "spouse", "start_time"),
		"backward relations do not appear in the forward index")
}
