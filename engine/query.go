package engine

import (
	"github.com/wbrown/janus-kgraph/kb"
	"github.com/wbrown/janus-kgraph/kgraph"
)

// QueryName returns the names of the input entities, positionally and
// without deduplication.
func (e *Engine) QueryName(entities Bundle) []string {
	names := make([]string, 0, len(entities.IDs))
	for _, id := range entities.IDs {
		names = append(names, e.kb.Entities[id].Name)
	}
	return names
}

// Count returns the size of the input id list.
func (e *Engine) Count(entities Bundle) int {
	return len(entities.IDs)
}

// QueryAttr returns every value stored under key across the input entities,
// in input order. Entities without the attribute contribute nothing.
func (e *Engine) QueryAttr(entities Bundle, key string) []kgraph.Value {
	perEntity := e.kb.AttrIndex[key]
	values := []kgraph.Value{}
	for _, id := range entities.IDs {
		ent := e.kb.Entities[id]
		for _, pos := range perEntity[id] {
			values = append(values, ent.Attributes[pos].Value)
		}
	}
	return values
}

// QueryAttrUnderCondition returns the values stored under key whose
// attribute carries a qualifier under qkey with at least one value equal to
// the parsed qvalue. The literal's type is the declared type of qkey.
func (e *Engine) QueryAttrUnderCondition(entities Bundle, key, qkey, qvalue string) ([]kgraph.Value, error) {
	target, err := e.parseForKey(qkey, qvalue)
	if err != nil {
		return nil, err
	}
	perEntity := e.kb.AttrIndex[key]
	values := []kgraph.Value{}
	for _, id := range entities.IDs {
		ent := e.kb.Entities[id]
		for _, pos := range perEntity[id] {
			attr := ent.Attributes[pos]
			if qualifierMatches(attr.Qualifiers, qkey, target) {
				values = append(values, attr.Value)
			}
		}
	}
	return values, nil
}

// QueryAttrQualifier returns the qualifier values under qkey across
// attributes whose key is key and whose value equals the parsed literal.
// The literal's type is the declared type of key.
func (e *Engine) QueryAttrQualifier(entities Bundle, key, value, qkey string) ([]kgraph.Value, error) {
	target, err := e.parseForKey(key, value)
	if err != nil {
		return nil, err
	}
	perEntity := e.kb.AttrIndex[key]
	values := []kgraph.Value{}
	for _, id := range entities.IDs {
		ent := e.kb.Entities[id]
		for _, pos := range perEntity[id] {
			attr := ent.Attributes[pos]
			if !attr.Value.CanCompare(target) {
				continue
			}
			hit, err := kgraph.Holds(attr.Value, kgraph.OpEqual, target)
			if err != nil {
				return nil, err
			}
			if hit {
				values = append(values, attr.Qualifiers[qkey]...)
			}
		}
	}
	return values, nil
}

// QueryRelation returns the labels of forward relations from entities of the
// first bundle to entities of the second, one per relation record.
func (e *Engine) QueryRelation(subjects, objects Bundle) []string {
	labels := []string{}
	for _, sid := range subjects.IDs {
		ent := e.kb.Entities[sid]
		for _, oid := range objects.IDs {
			for _, pos := range e.kb.ForwardRelIndex[kb.Pair{Subject: sid, Object: oid}] {
				labels = append(labels, ent.Relations[pos].Relation)
			}
		}
	}
	return labels
}

// QueryRelationQualifier returns the qualifier values under qkey across
// forward relations from the first bundle to the second whose label is
// relation.
func (e *Engine) QueryRelationQualifier(subjects, objects Bundle, relation, qkey string) []kgraph.Value {
	values := []kgraph.Value{}
	for _, sid := range subjects.IDs {
		ent := e.kb.Entities[sid]
		for _, oid := range objects.IDs {
			for _, pos := range e.kb.ForwardRelIndex[kb.Pair{Subject: sid, Object: oid}] {
				rel := ent.Relations[pos]
				if rel.Relation == relation {
					values = append(values, rel.Qualifiers[qkey]...)
				}
			}
		}
	}
	return values
}

// qualifierMatches reports whether any value under qkey equals target.
func qualifierMatches(quals kgraph.Qualifiers, qkey string, target kgraph.Value) bool {
	for _, qv := range quals[qkey] {
		if !qv.CanCompare(target) {
			continue
		}
		if hit, err := kgraph.Holds(qv, kgraph.OpEqual, target); err == nil && hit {
			return true
		}
	}
	return false
}
