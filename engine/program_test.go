package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/janus-kgraph/trace"
)

func TestInferDependenciesLinearChain(t *testing.T) {
	program := []string{"<START>", "FindAll", "FilterConcept", "QueryName", "<END>"}
	deps, err := InferDependencies(program)
	require.NoError(t, err)
	assert.Equal(t, [][]int{nil, nil, {1}, {2}, nil}, deps)
}

func TestInferDependenciesBinary(t *testing.T) {
	program := []string{"<START>", "Find", "Find", "And", "<END>"}
	deps, err := InferDependencies(program)
	require.NoError(t, err)
	// And joins the end of the first branch (position 1) with the result
	// just before it.
	assert.Equal(t, [][]int{nil, nil, nil, {1, 2}, nil}, deps)
}

func TestInferDependenciesNestedBinary(t *testing.T) {
	program := []string{"<START>", "Find", "Find", "And", "Find", "Or", "<END>"}
	deps, err := InferDependencies(program)
	require.NoError(t, err)
	assert.Equal(t, [][]int{nil, nil, nil, {1, 2}, nil, {3, 4}, nil}, deps)
}

func TestInferDependenciesMalformedProgram(t *testing.T) {
	// A binary primitive before any leaf has no open branch at all.
	_, err := InferDependencies([]string{"<START>", "And", "<END>"})
	assert.True(t, errors.Is(err, ErrBadProgram))
}

func TestForwardMalformedProgramSurfacesWiringError(t *testing.T) {
	e := newTestEngine(t, minimalRaw())

	_, err := e.Forward([]string{"And"}, [][]string{{}}, Options{})
	assert.True(t, errors.Is(err, ErrBadProgram))

	// A binary primitive with a single leaf joins against the <START>
	// placeholder, which is an unopened branch.
	_, err = e.Forward([]string{"Find", "And"}, [][]string{{"Alice"}, {}}, Options{})
	assert.True(t, errors.Is(err, ErrBadProgram))
}

func TestForwardLengthMismatch(t *testing.T) {
	e := newTestEngine(t, minimalRaw())
	_, err := e.Forward([]string{"FindAll"}, [][]string{}, Options{})
	assert.True(t, errors.Is(err, ErrBadProgram))
}

func TestWhatAliasesQueryName(t *testing.T) {
	e := newTestEngine(t, minimalRaw())
	answer := run(t, e,
		[]string{"Find", "What"},
		[][]string{{"Alice"}, {}})
	assert.Equal(t, []string{"Alice"}, answer.Values)
}

func TestErrorIsolationYieldsNullAnswer(t *testing.T) {
	e := newTestEngine(t, minimalRaw())
	program := []string{"FindAll", "FilterNum", "Count"}
	inputs := [][]string{{}, {"height", "not a number", ">"}, {}}

	_, err := e.Forward(program, inputs, Options{})
	require.Error(t, err)

	answer, err := e.Forward(program, inputs, Options{IgnoreErrors: true})
	require.NoError(t, err)
	assert.Nil(t, answer)
}

func TestForwardBadArgumentCounts(t *testing.T) {
	e := newTestEngine(t, minimalRaw())

	_, err := e.Forward([]string{"Find"}, [][]string{{}}, Options{})
	assert.Error(t, err, "Find needs its name literal")

	_, err = e.Forward([]string{"FindAll", "FilterNum"}, [][]string{{}, {"height", "170 cm"}}, Options{})
	assert.Error(t, err, "FilterNum needs an operator")
}

func TestForwardUnknownPrimitive(t *testing.T) {
	e := newTestEngine(t, minimalRaw())
	_, err := e.Forward([]string{"Summon"}, [][]string{{}}, Options{})
	assert.Error(t, err)
}

func TestForwardVerifyNeedsValueList(t *testing.T) {
	e := newTestEngine(t, minimalRaw())
	// Wiring a bundle into a verification primitive is a type error.
	_, err := e.Forward(
		[]string{"Find", "VerifyStr"},
		[][]string{{"Alice"}, {"Alice"}},
		Options{})
	assert.Error(t, err)
}

func TestForwardTraceEvents(t *testing.T) {
	e := newTestEngine(t, minimalRaw())
	var events []trace.Event
	opts := Options{Trace: func(ev trace.Event) { events = append(events, ev) }}

	_, err := e.Forward(
		[]string{"Find", "Relate", "QueryName"},
		[][]string{{"Alice"}, {"spouse", "forward"}, {}},
		opts)
	require.NoError(t, err)

	// <START> plus the three program steps; <END> emits nothing.
	require.Len(t, events, 4)
	assert.Equal(t, "<START>", events[0].Function)
	assert.Equal(t, "Find", events[1].Function)
	assert.Equal(t, []string{"spouse", "forward"}, events[2].Args)
	assert.Equal(t, []int{2}, events[3].Deps)
	assert.Equal(t, "[Bob]", events[3].Result)
}

func TestForwardScalarAndListAnswers(t *testing.T) {
	e := newTestEngine(t, minimalRaw())

	count := run(t, e, []string{"FindAll", "Count"}, [][]string{{}, {}})
	assert.False(t, count.IsList)
	assert.Equal(t, "3", count.String())

	names := run(t, e, []string{"FindAll", "QueryName"}, [][]string{{}, {}})
	assert.True(t, names.IsList)
	assert.Len(t, names.Values, 3)
}

func TestAnswerTableRendersRowCount(t *testing.T) {
	e := newTestEngine(t, minimalRaw())
	answer := run(t, e, []string{"Find", "QueryName"}, [][]string{{"Alice"}, {}})
	table := answer.Table()
	assert.Contains(t, table, "answer")
	assert.Contains(t, table, "Alice")
	assert.Contains(t, table, "_1 rows_")
}
