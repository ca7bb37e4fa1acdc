package engine

import (
	"github.com/wbrown/janus-kgraph/kgraph"
)

// filterAttribute keeps entities owning an attribute under key whose value
// is comparable to the parsed target and satisfies op. Each matching
// attribute position emits the entity once, so an entity can appear more
// than once in the result; the matched attribute rides the fact channel.
func (e *Engine) filterAttribute(ids []string, key, raw string, op kgraph.Op, kind kgraph.Kind) (Bundle, error) {
	target, err := e.parseTyped(raw, kind)
	if err != nil {
		return Bundle{}, err
	}
	perEntity := e.kb.AttrIndex[key]
	out := Bundle{IDs: []string{}, Facts: []kgraph.Fact{}}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		positions, ok := perEntity[id]
		if !ok {
			continue
		}
		ent := e.kb.Entities[id]
		for _, pos := range positions {
			attr := ent.Attributes[pos]
			if !attr.Value.CanCompare(target) {
				continue
			}
			hit, err := kgraph.Holds(attr.Value, op, target)
			if err != nil {
				return Bundle{}, err
			}
			if hit {
				out.IDs = append(out.IDs, id)
				out.Facts = append(out.Facts, attr)
			}
		}
	}
	return out, nil
}

// FilterStr keeps entities whose string attribute under key equals value.
func (e *Engine) FilterStr(entities Bundle, key, value string) (Bundle, error) {
	return e.filterAttribute(entities.IDs, key, value, kgraph.OpEqual, kgraph.KindString)
}

// FilterNum keeps entities whose quantity attribute under key satisfies
// `attr op value`. The literal may carry a unit ("200 centimetre"); values
// of a different unit never match.
func (e *Engine) FilterNum(entities Bundle, key, value string, op kgraph.Op) (Bundle, error) {
	return e.filterAttribute(entities.IDs, key, value, op, kgraph.KindQuantity)
}

// FilterYear keeps entities whose temporal attribute under key satisfies
// `attr op value` with value parsed as a year.
func (e *Engine) FilterYear(entities Bundle, key, value string, op kgraph.Op) (Bundle, error) {
	return e.filterAttribute(entities.IDs, key, value, op, kgraph.KindYear)
}

// FilterDate keeps entities whose temporal attribute under key satisfies
// `attr op value` with value parsed as a date.
func (e *Engine) FilterDate(entities Bundle, key, value string, op kgraph.Op) (Bundle, error) {
	return e.filterAttribute(entities.IDs, key, value, op, kgraph.KindDate)
}

// filterQualifier keeps the (id, fact) pairs whose fact carries a qualifier
// under qkey with at least one value satisfying op against the parsed
// target. Without a fact channel there is nothing to inspect and the result
// is empty.
func (e *Engine) filterQualifier(entities Bundle, qkey, raw string, op kgraph.Op, kind kgraph.Kind) (Bundle, error) {
	if !entities.HasFacts() {
		return Bundle{IDs: []string{}, Facts: []kgraph.Fact{}}, nil
	}
	target, err := e.parseTyped(raw, kind)
	if err != nil {
		return Bundle{}, err
	}
	out := Bundle{IDs: []string{}, Facts: []kgraph.Fact{}}
	for i, fact := range entities.Facts {
		for _, qv := range fact.FactQualifiers()[qkey] {
			if !qv.CanCompare(target) {
				continue
			}
			hit, err := kgraph.Holds(qv, op, target)
			if err != nil {
				return Bundle{}, err
			}
			if hit {
				out.IDs = append(out.IDs, entities.IDs[i])
				out.Facts = append(out.Facts, fact)
				break
			}
		}
	}
	return out, nil
}

// QFilterStr keeps facts with a string qualifier under qkey equal to qvalue.
func (e *Engine) QFilterStr(entities Bundle, qkey, qvalue string) (Bundle, error) {
	return e.filterQualifier(entities, qkey, qvalue, kgraph.OpEqual, kgraph.KindString)
}

// QFilterNum keeps facts with a quantity qualifier satisfying op.
func (e *Engine) QFilterNum(entities Bundle, qkey, qvalue string, op kgraph.Op) (Bundle, error) {
	return e.filterQualifier(entities, qkey, qvalue, op, kgraph.KindQuantity)
}

// QFilterYear keeps facts with a temporal qualifier satisfying op against a
// year literal.
func (e *Engine) QFilterYear(entities Bundle, qkey, qvalue string, op kgraph.Op) (Bundle, error) {
	return e.filterQualifier(entities, qkey, qvalue, op, kgraph.KindYear)
}

// QFilterDate keeps facts with a temporal qualifier satisfying op against a
// date literal.
func (e *Engine) QFilterDate(entities Bundle, qkey, qvalue string, op kgraph.Op) (Bundle, error) {
	return e.filterQualifier(entities, qkey, qvalue, op, kgraph.KindDate)
}
