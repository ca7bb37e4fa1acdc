package kb

import (
	"fmt"
	"sort"

	"github.com/wbrown/janus-kgraph/kgraph"
)

// RelKey addresses the relation inverted index: a relation label plus the
// direction it is seen from.
type RelKey struct {
	Relation  string
	Direction kgraph.Direction
}

// Pair addresses the forward relation index by subject and object id.
type Pair struct {
	Subject string
	Object  string
}

// KB is the indexed, read-only knowledge base. It is mutated only while New
// runs; afterwards any number of goroutines may read it concurrently.
type KB struct {
	// Entities holds every record, concepts included. IDs preserves the
	// ingestion order: concepts first, then entities, each group ordered
	// by id.
	Entities map[string]*kgraph.Entity
	IDs      []string

	NameToID        map[string][]string
	ConceptToEntity map[string][]string
	Concepts        []string

	AttributeKeys []string
	RelationNames []string

	// KeyType is the declared kind of each attribute and qualifier key,
	// with years folded into dates so temporal literals parse uniformly.
	KeyType map[string]kgraph.Kind

	// AttrIndex maps key → entity id → positions into the entity's
	// attribute list; RelIndex likewise for (relation, direction).
	AttrIndex       map[string]map[string][]int
	RelIndex        map[RelKey]map[string][]int
	ForwardRelIndex map[Pair][]int

	WithAttribute          map[string]struct{}
	WithQuantityAttribute  map[string]struct{}
	WithAttributeQualifier map[string]struct{}
	WithRelation           map[string]struct{}
	WithRelationQualifier  map[string]struct{}

	// KeyValues collects the distinct values seen per key, qualifier
	// values included. ConceptKeyValues restricts to attribute values on
	// entities under a concept; ConceptRelations collects relation
	// objects per concept.
	KeyValues        map[string][]kgraph.Value
	ConceptKeyValues map[string]map[string][]kgraph.Value
	ConceptRelations map[string]map[RelKey][]string

	isConcept map[string]struct{}
	ancestors map[string][]string
}

// New ingests a raw document and builds every index. The returned KB is
// immutable.
func New(raw *Raw) (*KB, error) {
	k := &KB{
		Entities:               make(map[string]*kgraph.Entity, len(raw.Concepts)+len(raw.Entities)),
		NameToID:               make(map[string][]string),
		ConceptToEntity:        make(map[string][]string),
		KeyType:                make(map[string]kgraph.Kind),
		AttrIndex:              make(map[string]map[string][]int),
		RelIndex:               make(map[RelKey]map[string][]int),
		ForwardRelIndex:        make(map[Pair][]int),
		WithAttribute:          make(map[string]struct{}),
		WithQuantityAttribute:  make(map[string]struct{}),
		WithAttributeQualifier: make(map[string]struct{}),
		WithRelation:           make(map[string]struct{}),
		WithRelationQualifier:  make(map[string]struct{}),
		KeyValues:              make(map[string][]kgraph.Value),
		ConceptKeyValues:       make(map[string]map[string][]kgraph.Value),
		ConceptRelations:       make(map[string]map[RelKey][]string),
		isConcept:              make(map[string]struct{}, len(raw.Concepts)),
		ancestors:              make(map[string][]string),
	}

	if err := k.merge(raw); err != nil {
		return nil, err
	}
	if err := k.mirrorConceptRelations(raw); err != nil {
		return nil, err
	}
	k.buildAncestry()
	k.buildIndices()
	k.collectSeenValues()
	return k, nil
}

// merge inserts concepts and entities into one store, unifying subclassOf
// and instanceOf under isA.
func (k *KB) merge(raw *Raw) error {
	conceptIDs := sortedKeys(raw.Concepts)
	for _, cid := range conceptIDs {
		c := raw.Concepts[cid]
		k.Entities[cid] = &kgraph.Entity{
			ID:   cid,
			Name: c.Name,
			IsA:  append([]string(nil), c.SubclassOf...),
		}
		k.isConcept[cid] = struct{}{}
		k.IDs = append(k.IDs, cid)
	}

	entityIDs := sortedKeys(raw.Entities)
	for _, eid := range entityIDs {
		re := raw.Entities[eid]
		ent := &kgraph.Entity{
			ID:   eid,
			Name: re.Name,
			IsA:  append([]string(nil), re.InstanceOf...),
		}
		for _, ra := range re.Attributes {
			attr, err := convertAttribute(ra)
			if err != nil {
				return fmt.Errorf("kb: entity %s: %w", eid, err)
			}
			ent.Attributes = append(ent.Attributes, attr)
		}
		for _, rr := range re.Relations {
			rel, err := convertRelation(rr)
			if err != nil {
				return fmt.Errorf("kb: entity %s: %w", eid, err)
			}
			ent.Relations = append(ent.Relations, rel)
		}
		k.Entities[eid] = ent
		k.IDs = append(k.IDs, eid)
	}
	return nil
}

// mirrorConceptRelations inserts, for every entity relation targeting a
// concept, the flipped relation onto that concept, deduplicated by
// structural equality.
func (k *KB) mirrorConceptRelations(raw *Raw) error {
	for _, eid := range sortedKeys(raw.Entities) {
		for _, rel := range k.Entities[eid].Relations {
			if _, ok := k.isConcept[rel.Object]; !ok {
				continue
			}
			mirror := &kgraph.Relation{
				Relation:   rel.Relation,
				Direction:  rel.Direction.Flip(),
				Object:     eid,
				Qualifiers: copyQualifiers(rel.Qualifiers),
			}
			concept := k.Entities[rel.Object]
			exists := false
			for _, have := range concept.Relations {
				if have.Equal(mirror) {
					exists = true
					break
				}
			}
			if !exists {
				concept.Relations = append(concept.Relations, mirror)
			}
		}
	}
	return nil
}

// buildAncestry computes the transitive isA closure for every record and
// derives the name and concept membership indices.
func (k *KB) buildAncestry() {
	for _, id := range k.IDs {
		k.ancestors[id] = k.walkAncestors(id)
	}
	membership := make(map[string]map[string]struct{})
	for _, id := range k.IDs {
		k.NameToID[k.Entities[id].Name] = append(k.NameToID[k.Entities[id].Name], id)
		for _, c := range k.ancestors[id] {
			set, ok := membership[c]
			if !ok {
				set = make(map[string]struct{})
				membership[c] = set
			}
			set[id] = struct{}{}
		}
	}
	k.Concepts = sortedKeys(membership)
	for _, c := range k.Concepts {
		k.ConceptToEntity[c] = sortedKeys(membership[c])
	}
}

// walkAncestors runs a cycle-safe breadth-first traversal over isA edges.
// Self-loops and parents absent from the store are skipped.
func (k *KB) walkAncestors(id string) []string {
	var queue []string
	for _, c := range k.directParents(id) {
		queue = append(queue, c)
	}
	seen := make(map[string]struct{})
	var order []string
	for len(queue) > 0 {
		cid := queue[0]
		queue = queue[1:]
		if _, ok := k.Entities[cid]; !ok {
			continue
		}
		if _, ok := seen[cid]; ok {
			continue
		}
		seen[cid] = struct{}{}
		order = append(order, cid)
		queue = append(queue, k.Entities[cid].IsA...)
	}
	return order
}

func (k *KB) directParents(id string) []string {
	ent, ok := k.Entities[id]
	if !ok {
		return nil
	}
	var out []string
	for _, p := range ent.IsA {
		if _, ok := k.Entities[p]; ok && p != id {
			out = append(out, p)
		}
	}
	return out
}

// Ancestors returns the transitive isA closure of id, nil for unknown ids.
func (k *KB) Ancestors(id string) []string { return k.ancestors[id] }

// IsConcept reports whether id was ingested from the concept section.
func (k *KB) IsConcept(id string) bool {
	_, ok := k.isConcept[id]
	return ok
}

// buildIndices scans every record once and fills the attribute, relation and
// forward indices, the key type table, and the has-X acceleration sets.
func (k *KB) buildIndices() {
	attrKeys := make(map[string]struct{})
	relNames := make(map[string]struct{})
	rawTypes := make(map[string]kgraph.Kind)

	for _, id := range k.IDs {
		ent := k.Entities[id]
		for idx, attr := range ent.Attributes {
			attrKeys[attr.Key] = struct{}{}
			rawTypes[attr.Key] = attr.Value.Kind
			perEntity, ok := k.AttrIndex[attr.Key]
			if !ok {
				perEntity = make(map[string][]int)
				k.AttrIndex[attr.Key] = perEntity
			}
			perEntity[id] = append(perEntity[id], idx)
			k.WithAttribute[id] = struct{}{}
			if attr.Value.Kind == kgraph.KindQuantity {
				k.WithQuantityAttribute[id] = struct{}{}
			}
			for qk, qvs := range attr.Qualifiers {
				attrKeys[qk] = struct{}{}
				k.WithAttributeQualifier[id] = struct{}{}
				for _, qv := range qvs {
					rawTypes[qk] = qv.Kind
				}
			}
		}

		for idx, rel := range ent.Relations {
			relNames[rel.Relation] = struct{}{}
			rk := RelKey{Relation: rel.Relation, Direction: rel.Direction}
			perEntity, ok := k.RelIndex[rk]
			if !ok {
				perEntity = make(map[string][]int)
				k.RelIndex[rk] = perEntity
			}
			perEntity[id] = append(perEntity[id], idx)
			if rel.Direction == kgraph.Forward {
				pair := Pair{Subject: id, Object: rel.Object}
				k.ForwardRelIndex[pair] = append(k.ForwardRelIndex[pair], idx)
			}
			k.WithRelation[id] = struct{}{}
			for qk, qvs := range rel.Qualifiers {
				attrKeys[qk] = struct{}{}
				k.WithRelationQualifier[id] = struct{}{}
				for _, qv := range qvs {
					rawTypes[qk] = qv.Kind
				}
			}
		}
	}

	k.AttributeKeys = sortedKeys(attrKeys)
	k.RelationNames = sortedKeys(relNames)
	for key, kind := range rawTypes {
		if kind == kgraph.KindYear {
			kind = kgraph.KindDate
		}
		k.KeyType[key] = kind
	}
}

// collectSeenValues gathers the distinct-value statistics per key and per
// concept. Attribute values roll up into the owning entity's ancestor
// concepts; qualifier values count toward the key only.
func (k *KB) collectSeenValues() {
	keySeen := make(map[string]map[string]struct{})
	conceptSeen := make(map[string]map[string]map[string]struct{})

	addKeyValue := func(key string, v kgraph.Value) {
		set, ok := keySeen[key]
		if !ok {
			set = make(map[string]struct{})
			keySeen[key] = set
		}
		dk := valueDedupKey(v)
		if _, dup := set[dk]; dup {
			return
		}
		set[dk] = struct{}{}
		k.KeyValues[key] = append(k.KeyValues[key], v)
	}

	for _, id := range k.IDs {
		ent := k.Entities[id]
		for _, attr := range ent.Attributes {
			addKeyValue(attr.Key, attr.Value)
			for _, c := range k.ancestors[id] {
				perConcept, ok := conceptSeen[c]
				if !ok {
					perConcept = make(map[string]map[string]struct{})
					conceptSeen[c] = perConcept
				}
				set, ok := perConcept[attr.Key]
				if !ok {
					set = make(map[string]struct{})
					perConcept[attr.Key] = set
				}
				dk := valueDedupKey(attr.Value)
				if _, dup := set[dk]; dup {
					continue
				}
				set[dk] = struct{}{}
				perKey, ok := k.ConceptKeyValues[c]
				if !ok {
					perKey = make(map[string][]kgraph.Value)
					k.ConceptKeyValues[c] = perKey
				}
				perKey[attr.Key] = append(perKey[attr.Key], attr.Value)
			}
			for qk, qvs := range attr.Qualifiers {
				for _, qv := range qvs {
					addKeyValue(qk, qv)
				}
			}
		}

		for _, rel := range ent.Relations {
			rk := RelKey{Relation: rel.Relation, Direction: rel.Direction}
			for _, c := range k.ancestors[id] {
				perRel, ok := k.ConceptRelations[c]
				if !ok {
					perRel = make(map[RelKey][]string)
					k.ConceptRelations[c] = perRel
				}
				perRel[rk] = append(perRel[rk], rel.Object)
			}
			for qk, qvs := range rel.Qualifiers {
				for _, qv := range qvs {
					addKeyValue(qk, qv)
				}
			}
		}
	}
}

// Stats summarizes the knowledge base for reporting.
type Stats struct {
	Entities       int
	Concepts       int
	AttributeKeys  int
	RelationNames  int
	AttributeFacts int
	RelationFacts  int
	QualifierFacts int
}

// Stats counts records and fact triples across the store.
func (k *KB) Stats() Stats {
	s := Stats{
		Entities:      len(k.Entities),
		Concepts:      len(k.Concepts),
		AttributeKeys: len(k.AttributeKeys),
		RelationNames: len(k.RelationNames),
	}
	for _, id := range k.IDs {
		ent := k.Entities[id]
		for _, attr := range ent.Attributes {
			s.AttributeFacts++
			for _, qvs := range attr.Qualifiers {
				s.QualifierFacts += len(qvs)
			}
		}
		for _, rel := range ent.Relations {
			s.RelationFacts++
			for _, qvs := range rel.Qualifiers {
				s.QualifierFacts += len(qvs)
			}
		}
	}
	return s
}

func convertAttribute(ra RawAttribute) (*kgraph.Attribute, error) {
	v, err := parseValue(ra.Value)
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", ra.Key, err)
	}
	quals, err := convertQualifiers(ra.Qualifiers)
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", ra.Key, err)
	}
	return &kgraph.Attribute{Key: ra.Key, Value: v, Qualifiers: quals}, nil
}

func convertRelation(rr RawRelation) (*kgraph.Relation, error) {
	quals, err := convertQualifiers(rr.Qualifiers)
	if err != nil {
		return nil, fmt.Errorf("relation %q: %w", rr.Relation, err)
	}
	return &kgraph.Relation{
		Relation:   rr.Relation,
		Direction:  kgraph.Direction(rr.Direction),
		Object:     rr.Object,
		Qualifiers: quals,
	}, nil
}

func convertQualifiers(raw map[string][]RawValue) (kgraph.Qualifiers, error) {
	if len(raw) == 0 {
		return kgraph.Qualifiers{}, nil
	}
	quals := make(kgraph.Qualifiers, len(raw))
	for qk, rvs := range raw {
		vs := make([]kgraph.Value, 0, len(rvs))
		for _, rv := range rvs {
			v, err := parseValue(rv)
			if err != nil {
				return nil, fmt.Errorf("qualifier %q: %w", qk, err)
			}
			vs = append(vs, v)
		}
		quals[qk] = vs
	}
	return quals, nil
}

func copyQualifiers(q kgraph.Qualifiers) kgraph.Qualifiers {
	out := make(kgraph.Qualifiers, len(q))
	for k2, vs := range q {
		out[k2] = append([]kgraph.Value(nil), vs...)
	}
	return out
}

// valueDedupKey identifies a value for set semantics: kind, unit and string
// form together, so a year and an equal-looking dimensionless quantity stay
// distinct.
func valueDedupKey(v kgraph.Value) string {
	return fmt.Sprintf("%d|%s|%s", v.Kind, v.Unit, v.String())
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
