package engine

import (
	"github.com/wbrown/janus-kgraph/kb"
	"github.com/wbrown/janus-kgraph/kgraph"
)

// Relate follows the given relation from the input entities and emits the
// objects reached, one per matching relation record. The records ride the
// fact channel. direction says whether the inputs are the subject (forward)
// or the object (backward) of the relation.
func (e *Engine) Relate(entities Bundle, relation string, direction kgraph.Direction) Bundle {
	perEntity := e.kb.RelIndex[kb.RelKey{Relation: relation, Direction: direction}]
	out := Bundle{IDs: []string{}, Facts: []kgraph.Fact{}}
	seen := make(map[string]struct{}, len(entities.IDs))
	for _, id := range entities.IDs {
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
			rel := ent.Relations[pos]
			out.IDs = append(out.IDs, rel.Object)
			out.Facts = append(out.Facts, rel)
		}
	}
	return out
}

// And intersects two bundles' id channels. The fact channel is dropped.
func (e *Engine) And(left, right Bundle) Bundle {
	inRight := make(map[string]struct{}, len(right.IDs))
	for _, id := range right.IDs {
		inRight[id] = struct{}{}
	}
	out := Bundle{IDs: []string{}}
	seen := make(map[string]struct{}, len(left.IDs))
	for _, id := range left.IDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := inRight[id]; ok {
			out.IDs = append(out.IDs, id)
		}
	}
	return out
}

// Or unions two bundles' id channels. The fact channel is dropped.
func (e *Engine) Or(left, right Bundle) Bundle {
	out := Bundle{IDs: []string{}}
	seen := make(map[string]struct{}, len(left.IDs)+len(right.IDs))
	for _, id := range left.IDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out.IDs = append(out.IDs, id)
	}
	for _, id := range right.IDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out.IDs = append(out.IDs, id)
	}
	return out
}
