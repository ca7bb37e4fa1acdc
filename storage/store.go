// Package storage persists decoded knowledge-base documents in BadgerDB so
// large JSON files are parsed once and reloaded cheaply. The snapshot is an
// ingestion-time artifact: the in-memory KB built from it stays read-only.
package storage

import (
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"

	"github.com/wbrown/janus-kgraph/kb"
)

// Key prefixes partition the store by record kind.
var (
	conceptPrefix = []byte("c/")
	entityPrefix  = []byte("e/")
)

// Store is a BadgerDB-backed snapshot of a raw knowledge base.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a snapshot store at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Badger's own logging is noise here

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open badger at %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutRaw writes every concept and entity record of raw into the store,
// replacing records sharing an id.
func (s *Store) PutRaw(raw *kb.Raw) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for cid, c := range raw.Concepts {
		if err := putRecord(wb, conceptPrefix, cid, c); err != nil {
			return err
		}
	}
	for eid, e := range raw.Entities {
		if err := putRecord(wb, entityPrefix, eid, e); err != nil {
			return err
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("storage: flush snapshot: %w", err)
	}
	slog.Info("snapshot written",
		"concepts", len(raw.Concepts),
		"entities", len(raw.Entities))
	return nil
}

func putRecord(wb *badger.WriteBatch, prefix []byte, id string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("storage: encode record %q: %w", id, err)
	}
	key := append(append([]byte(nil), prefix...), id...)
	if err := wb.Set(key, data); err != nil {
		return fmt.Errorf("storage: write record %q: %w", id, err)
	}
	return nil
}

// LoadRaw reconstructs the raw knowledge base from the store.
func (s *Store) LoadRaw() (*kb.Raw, error) {
	raw := &kb.Raw{
		Concepts: make(map[string]kb.RawConcept),
		Entities: make(map[string]kb.RawEntity),
	}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := item.Key()
			if len(key) < 2 {
				continue
			}
			id := string(key[2:])
			err := item.Value(func(val []byte) error {
				switch key[0] {
				case 'c':
					var c kb.RawConcept
					if err := json.Unmarshal(val, &c); err != nil {
						return fmt.Errorf("storage: decode concept %q: %w", id, err)
					}
					raw.Concepts[id] = c
				case 'e':
					var e kb.RawEntity
					if err := json.Unmarshal(val, &e); err != nil {
						return fmt.Errorf("storage: decode entity %q: %w", id, err)
					}
					raw.Entities[id] = e
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("snapshot loaded",
		"concepts", len(raw.Concepts),
		"entities", len(raw.Entities))
	return raw, nil
}
