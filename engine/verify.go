package engine

import (
	"github.com/wbrown/janus-kgraph/kgraph"
)

// verify parses the target under the named kind and checks every input
// value against it. All values matching (and at least one value present)
// is yes; none matching is no; a mix is not sure.
func (e *Engine) verify(values []kgraph.Value, target string, op kgraph.Op, kind kgraph.Kind) (Verdict, error) {
	parsed, err := e.parseTyped(target, kind)
	if err != nil {
		return "", err
	}
	matched := 0
	for _, v := range values {
		if !v.CanCompare(parsed) {
			continue
		}
		hit, err := kgraph.Holds(v, op, parsed)
		if err != nil {
			return "", err
		}
		if hit {
			matched++
		}
	}
	switch {
	case matched >= 1 && matched == len(values):
		return Yes, nil
	case matched == 0:
		return No, nil
	}
	return NotSure, nil
}

// VerifyStr checks queried values against a string target for equality.
func (e *Engine) VerifyStr(values []kgraph.Value, target string) (Verdict, error) {
	return e.verify(values, target, kgraph.OpEqual, kgraph.KindString)
}

// VerifyNum checks queried values against a quantity target under op.
func (e *Engine) VerifyNum(values []kgraph.Value, target string, op kgraph.Op) (Verdict, error) {
	return e.verify(values, target, op, kgraph.KindQuantity)
}

// VerifyYear checks queried values against a year target under op. A full
// date matches an equal year by containment.
func (e *Engine) VerifyYear(values []kgraph.Value, target string, op kgraph.Op) (Verdict, error) {
	return e.verify(values, target, op, kgraph.KindYear)
}

// VerifyDate checks queried values against a date target under op.
func (e *Engine) VerifyDate(values []kgraph.Value, target string, op kgraph.Op) (Verdict, error) {
	return e.verify(values, target, op, kgraph.KindDate)
}
