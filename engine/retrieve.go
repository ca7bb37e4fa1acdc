package engine

// FindAll returns every entity id in the knowledge base, concepts included.
func (e *Engine) FindAll() Bundle {
	ids := make([]string, len(e.kb.IDs))
	copy(ids, e.kb.IDs)
	return Bundle{IDs: ids}
}

// Find returns the entities carrying exactly the given name. Names are not
// unique; an unknown name yields an empty bundle.
func (e *Engine) Find(name string) Bundle {
	ids := e.kb.NameToID[name]
	return Bundle{IDs: append([]string(nil), ids...)}
}

// FilterConcept keeps the input entities that belong to any concept carrying
// the given name, transitively: an entity is under a concept when the
// concept appears in its isA closure.
func (e *Engine) FilterConcept(entities Bundle, conceptName string) Bundle {
	member := make(map[string]struct{})
	for _, cid := range e.kb.NameToID[conceptName] {
		for _, id := range e.kb.ConceptToEntity[cid] {
			member[id] = struct{}{}
		}
	}
	out := Bundle{IDs: []string{}}
	seen := make(map[string]struct{}, len(entities.IDs))
	for _, id := range entities.IDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := member[id]; ok {
			out.IDs = append(out.IDs, id)
		}
	}
	return out
}
