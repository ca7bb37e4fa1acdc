package engine

import (
	"errors"
	"sort"

	"github.com/wbrown/janus-kgraph/kgraph"
)

// ErrNoCandidates is returned by the select primitives when no input entity
// carries a quantity attribute under the requested key.
var ErrNoCandidates = errors.New("engine: no quantity candidates for selection")

// SelectOp picks an end of the sorted candidate list.
type SelectOp string

const (
	Less     SelectOp = "less"
	Greater  SelectOp = "greater"
	Smallest SelectOp = "smallest"
	Largest  SelectOp = "largest"
)

type candidate struct {
	id    string
	value kgraph.Value
}

// SelectBetween compares entities of two bundles on a quantity attribute and
// returns the name of the extreme one: the smallest for "less", the largest
// for "greater". Candidates are reduced to the most common unit before
// ranking.
func (e *Engine) SelectBetween(left, right Bundle, key string, op SelectOp) (string, error) {
	candidates := e.collectQuantities(append(append([]string{}, left.IDs...), right.IDs...), key, false)
	candidates, err := reduceToCommonUnit(candidates)
	if err != nil {
		return "", err
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].value.Num < candidates[j].value.Num
	})
	pick := candidates[len(candidates)-1]
	if op == Less {
		pick = candidates[0]
	}
	return e.kb.Entities[pick.id].Name, nil
}

// SelectAmong returns the distinct names of the entities whose quantity
// attribute under key takes the extreme value within the bundle: the minimum
// for "smallest", the maximum for "largest". Several entities can share the
// extreme.
func (e *Engine) SelectAmong(entities Bundle, key string, op SelectOp) ([]string, error) {
	candidates := e.collectQuantities(entities.IDs, key, true)
	candidates, err := reduceToCommonUnit(candidates)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].value.Num < candidates[j].value.Num
	})
	extreme := candidates[len(candidates)-1].value
	if op == Smallest {
		extreme = candidates[0].value
	}
	var names []string
	seen := make(map[string]struct{})
	for _, c := range candidates {
		if !c.value.Equal(extreme) {
			continue
		}
		name := e.kb.Entities[c.id].Name
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names, nil
}

// collectQuantities gathers (entity, value) pairs for every quantity
// attribute under key across ids, optionally considering each entity once.
func (e *Engine) collectQuantities(ids []string, key string, dedupe bool) []candidate {
	perEntity := e.kb.AttrIndex[key]
	var out []candidate
	seen := make(map[string]struct{})
	for _, id := range ids {
		if dedupe {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
		}
		ent := e.kb.Entities[id]
		for _, pos := range perEntity[id] {
			v := ent.Attributes[pos].Value
			if v.Kind == kgraph.KindQuantity {
				out = append(out, candidate{id: id, value: v})
			}
		}
	}
	return out
}

// reduceToCommonUnit keeps the candidates carrying the most frequent unit.
// Ties break toward the unit first observed among the candidates.
func reduceToCommonUnit(candidates []candidate) ([]candidate, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	counts := make(map[string]int)
	var units []string
	for _, c := range candidates {
		if counts[c.value.Unit] == 0 {
			units = append(units, c.value.Unit)
		}
		counts[c.value.Unit]++
	}
	common := units[0]
	for _, u := range units[1:] {
		if counts[u] > counts[common] {
			common = u
		}
	}
	kept := candidates[:0:0]
	for _, c := range candidates {
		if c.value.Unit == common {
			kept = append(kept, c)
		}
	}
	return kept, nil
}
