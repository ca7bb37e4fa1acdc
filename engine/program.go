package engine

import (
	"errors"
	"fmt"

	"github.com/wbrown/janus-kgraph/kgraph"
	"github.com/wbrown/janus-kgraph/trace"
)

// Program sentinels bracket every evaluation.
const (
	startToken = "<START>"
	endToken   = "<END>"
	padToken   = "<PAD>"
)

// ErrBadProgram is returned when dependency inference meets a malformed
// program, such as a binary primitive with fewer than two open branches.
var ErrBadProgram = errors.New("engine: malformed program")

// binaryPrimitives consume two prior results; everything else that is not a
// leaf or a sentinel consumes exactly the preceding one.
var binaryPrimitives = map[string]struct{}{
	"And":                    {},
	"Or":                     {},
	"SelectBetween":          {},
	"QueryRelation":          {},
	"QueryRelationQualifier": {},
}

// leafPrimitives start a fresh branch of the computation tree.
var leafPrimitives = map[string]struct{}{
	"Find":    {},
	"FindAll": {},
}

// Options controls one program evaluation.
type Options struct {
	// IgnoreErrors converts any evaluation failure into a nil answer.
	IgnoreErrors bool
	// Trace, when set, receives one event per evaluated step.
	Trace trace.Handler
}

// InferDependencies recovers the dependency DAG of a bracketed program from
// arity alone. A leaf records the end of the previous branch on a stack; a
// binary primitive takes the stacked position and the immediately preceding
// one; every other primitive takes the preceding position.
func InferDependencies(program []string) ([][]int, error) {
	deps := make([][]int, len(program))
	var branchStack []int
	for i, name := range program {
		switch {
		case name == startToken || name == endToken || name == padToken:
			deps[i] = nil
		case isLeaf(name):
			deps[i] = nil
			branchStack = append(branchStack, i-1)
		case isBinary(name):
			if len(branchStack) == 0 {
				return nil, fmt.Errorf("%w: %s at step %d has no open branch", ErrBadProgram, name, i)
			}
			deps[i] = []int{branchStack[len(branchStack)-1], i - 1}
			branchStack = branchStack[:len(branchStack)-1]
		default:
			deps[i] = []int{i - 1}
		}
	}
	return deps, nil
}

func isLeaf(name string) bool {
	_, ok := leafPrimitives[name]
	return ok
}

func isBinary(name string) bool {
	_, ok := binaryPrimitives[name]
	return ok
}

// Forward evaluates a program given as two parallel lists: primitive names
// and per-primitive literal arguments. The answer is the formatted final
// result. With Options.IgnoreErrors set, any failure yields a nil answer
// and a nil error.
func (e *Engine) Forward(program []string, inputs [][]string, opts Options) (*Answer, error) {
	answer, err := e.forward(program, inputs, opts)
	if err != nil {
		if opts.IgnoreErrors {
			return nil, nil
		}
		return nil, err
	}
	return answer, nil
}

func (e *Engine) forward(program []string, inputs [][]string, opts Options) (*Answer, error) {
	if len(program) != len(inputs) {
		return nil, fmt.Errorf("%w: %d functions with %d input lists", ErrBadProgram, len(program), len(inputs))
	}

	bracketed := make([]string, 0, len(program)+2)
	bracketed = append(bracketed, startToken)
	bracketed = append(bracketed, program...)
	bracketed = append(bracketed, endToken)
	args := make([][]string, 0, len(inputs)+2)
	args = append(args, nil)
	args = append(args, inputs...)
	args = append(args, nil)

	deps, err := InferDependencies(bracketed)
	if err != nil {
		return nil, err
	}

	memory := make([]any, 0, len(bracketed))
	for i, name := range bracketed {
		if name == "What" {
			name = "QueryName"
		}
		if name == endToken {
			break
		}
		var result any
		if name != startToken {
			depVals := make([]any, len(deps[i]))
			for j, d := range deps[i] {
				if d < 0 || d >= len(memory) {
					return nil, fmt.Errorf("%w: step %d depends on unavailable result %d", ErrBadProgram, i, d)
				}
				if memory[d] == nil {
					// The only nil result is the <START> placeholder:
					// a branch that was never opened.
					return nil, fmt.Errorf("%w: step %d (%s) consumes an unopened branch", ErrBadProgram, i, name)
				}
				depVals[j] = memory[d]
			}
			result, err = e.call(name, depVals, args[i])
			if err != nil {
				return nil, fmt.Errorf("engine: step %d (%s): %w", i, name, err)
			}
		}
		memory = append(memory, result)
		if opts.Trace != nil {
			opts.Trace(trace.Event{
				Step:     i,
				Function: name,
				Deps:     deps[i],
				Args:     args[i],
				Result:   summarize(result),
			})
		}
	}
	return formatAnswer(memory[len(memory)-1]), nil
}

// call dispatches one primitive by name, checking argument shapes. Panics
// inside a primitive surface as evaluation errors.
func (e *Engine) call(name string, deps []any, args []string) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	switch name {
	case "FindAll":
		if err := want(deps, 0, args, 0); err != nil {
			return nil, err
		}
		return e.FindAll(), nil
	case "Find":
		if err := want(deps, 0, args, 1); err != nil {
			return nil, err
		}
		return e.Find(args[0]), nil
	case "FilterConcept":
		b, err := bundleArgs(deps, 1, args, 1)
		if err != nil {
			return nil, err
		}
		return e.FilterConcept(b[0], args[0]), nil
	case "FilterStr":
		b, err := bundleArgs(deps, 1, args, 2)
		if err != nil {
			return nil, err
		}
		return e.FilterStr(b[0], args[0], args[1])
	case "FilterNum":
		b, err := bundleArgs(deps, 1, args, 3)
		if err != nil {
			return nil, err
		}
		return e.FilterNum(b[0], args[0], args[1], kgraph.Op(args[2]))
	case "FilterYear":
		b, err := bundleArgs(deps, 1, args, 3)
		if err != nil {
			return nil, err
		}
		return e.FilterYear(b[0], args[0], args[1], kgraph.Op(args[2]))
	case "FilterDate":
		b, err := bundleArgs(deps, 1, args, 3)
		if err != nil {
			return nil, err
		}
		return e.FilterDate(b[0], args[0], args[1], kgraph.Op(args[2]))
	case "QFilterStr":
		b, err := bundleArgs(deps, 1, args, 2)
		if err != nil {
			return nil, err
		}
		return e.QFilterStr(b[0], args[0], args[1])
	case "QFilterNum":
		b, err := bundleArgs(deps, 1, args, 3)
		if err != nil {
			return nil, err
		}
		return e.QFilterNum(b[0], args[0], args[1], kgraph.Op(args[2]))
	case "QFilterYear":
		b, err := bundleArgs(deps, 1, args, 3)
		if err != nil {
			return nil, err
		}
		return e.QFilterYear(b[0], args[0], args[1], kgraph.Op(args[2]))
	case "QFilterDate":
		b, err := bundleArgs(deps, 1, args, 3)
		if err != nil {
			return nil, err
		}
		return e.QFilterDate(b[0], args[0], args[1], kgraph.Op(args[2]))
	case "Relate":
		b, err := bundleArgs(deps, 1, args, 2)
		if err != nil {
			return nil, err
		}
		return e.Relate(b[0], args[0], kgraph.Direction(args[1])), nil
	case "And":
		b, err := bundleArgs(deps, 2, args, 0)
		if err != nil {
			return nil, err
		}
		return e.And(b[0], b[1]), nil
	case "Or":
		b, err := bundleArgs(deps, 2, args, 0)
		if err != nil {
			return nil, err
		}
		return e.Or(b[0], b[1]), nil
	case "QueryName":
		b, err := bundleArgs(deps, 1, args, 0)
		if err != nil {
			return nil, err
		}
		return e.QueryName(b[0]), nil
	case "Count":
		b, err := bundleArgs(deps, 1, args, 0)
		if err != nil {
			return nil, err
		}
		return e.Count(b[0]), nil
	case "QueryAttr":
		b, err := bundleArgs(deps, 1, args, 1)
		if err != nil {
			return nil, err
		}
		return e.QueryAttr(b[0], args[0]), nil
	case "QueryAttrUnderCondition":
		b, err := bundleArgs(deps, 1, args, 3)
		if err != nil {
			return nil, err
		}
		return e.QueryAttrUnderCondition(b[0], args[0], args[1], args[2])
	case "QueryAttrQualifier":
		b, err := bundleArgs(deps, 1, args, 3)
		if err != nil {
			return nil, err
		}
		return e.QueryAttrQualifier(b[0], args[0], args[1], args[2])
	case "QueryRelation":
		b, err := bundleArgs(deps, 2, args, 0)
		if err != nil {
			return nil, err
		}
		return e.QueryRelation(b[0], b[1]), nil
	case "QueryRelationQualifier":
		b, err := bundleArgs(deps, 2, args, 2)
		if err != nil {
			return nil, err
		}
		return e.QueryRelationQualifier(b[0], b[1], args[0], args[1]), nil
	case "SelectBetween":
		b, err := bundleArgs(deps, 2, args, 2)
		if err != nil {
			return nil, err
		}
		return e.SelectBetween(b[0], b[1], args[0], SelectOp(args[1]))
	case "SelectAmong":
		b, err := bundleArgs(deps, 1, args, 2)
		if err != nil {
			return nil, err
		}
		return e.SelectAmong(b[0], args[0], SelectOp(args[1]))
	case "VerifyStr":
		vs, err := valuesArg(deps, args, 1)
		if err != nil {
			return nil, err
		}
		return e.VerifyStr(vs, args[0])
	case "VerifyNum":
		vs, err := valuesArg(deps, args, 2)
		if err != nil {
			return nil, err
		}
		return e.VerifyNum(vs, args[0], kgraph.Op(args[1]))
	case "VerifyYear":
		vs, err := valuesArg(deps, args, 2)
		if err != nil {
			return nil, err
		}
		return e.VerifyYear(vs, args[0], kgraph.Op(args[1]))
	case "VerifyDate":
		vs, err := valuesArg(deps, args, 2)
		if err != nil {
			return nil, err
		}
		return e.VerifyDate(vs, args[0], kgraph.Op(args[1]))
	}
	return nil, fmt.Errorf("unknown primitive %q", name)
}

func want(deps []any, nDeps int, args []string, nArgs int) error {
	if len(deps) != nDeps {
		return fmt.Errorf("expected %d dependencies, got %d", nDeps, len(deps))
	}
	if len(args) != nArgs {
		return fmt.Errorf("expected %d literal arguments, got %d", nArgs, len(args))
	}
	return nil
}

func bundleArgs(deps []any, nDeps int, args []string, nArgs int) ([]Bundle, error) {
	if err := want(deps, nDeps, args, nArgs); err != nil {
		return nil, err
	}
	bundles := make([]Bundle, nDeps)
	for i, d := range deps {
		b, ok := d.(Bundle)
		if !ok {
			return nil, fmt.Errorf("dependency %d is %T, want an entity bundle", i, d)
		}
		bundles[i] = b
	}
	return bundles, nil
}

func valuesArg(deps []any, args []string, nArgs int) ([]kgraph.Value, error) {
	if err := want(deps, 1, args, nArgs); err != nil {
		return nil, err
	}
	vs, ok := deps[0].([]kgraph.Value)
	if !ok {
		return nil, fmt.Errorf("dependency is %T, want a value list", deps[0])
	}
	return vs, nil
}
