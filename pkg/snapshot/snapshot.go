// Package snapshot persists encoded table snapshots in a local pebble
// database. Each saved snapshot is stamped with a KSUID, so snapshot
// identifiers sort chronologically and the newest snapshot of a table
// is the lexicographically largest key under its prefix.
package snapshot

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

// ErrNotFound indicates no snapshot exists for the requested table or
// identifier.
var ErrNotFound = fmt.Errorf("snapshot not found")

// Store is a named-snapshot store backed by pebble. Safe for
// concurrent use to the extent pebble is.
type Store struct {
	db *pebble.DB

	mu  sync.Mutex
	seq ksuid.Sequence
}

// Open opens (or creates) the snapshot database at path.
func Open(path string) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	return &Store{db: db, seq: ksuid.Sequence{Seed: ksuid.New()}}, nil
}

// nextID returns snapshot identifiers that are monotonic within this
// process. Plain ksuid.New has one-second timestamp resolution, which
// is too coarse for back-to-back saves.
func (s *Store) nextID() ksuid.KSUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		id, err := s.seq.Next()
		if err == nil {
			return id
		}
		// sequence exhausted; reseed and draw again
		s.seq = ksuid.Sequence{Seed: ksuid.New()}
	}
}

// Save stores a snapshot payload for the named table and returns the
// generated snapshot identifier.
func (s *Store) Save(table string, payload []byte) (ksuid.KSUID, error) {
	if err := checkTable(table); err != nil {
		return ksuid.Nil, err
	}
	id := s.nextID()
	if err := s.db.Set(key(table, id), payload, pebble.Sync); err != nil {
		return ksuid.Nil, fmt.Errorf("failed to save snapshot: %w", err)
	}
	return id, nil
}

// Load returns the payload of one specific snapshot.
func (s *Store) Load(table string, id ksuid.KSUID) ([]byte, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	data, closer, err := s.db.Get(key(table, id))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, table, id)
		}
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Latest returns the identifier and payload of the newest snapshot of
// the named table.
func (s *Store) Latest(table string) (ksuid.KSUID, []byte, error) {
	if err := checkTable(table); err != nil {
		return ksuid.Nil, nil, err
	}
	iter, err := s.db.NewIter(bounds(table))
	if err != nil {
		return ksuid.Nil, nil, err
	}
	defer iter.Close()

	if !iter.Last() {
		return ksuid.Nil, nil, fmt.Errorf("%w: table %s", ErrNotFound, table)
	}
	id, err := idFromKey(table, iter.Key())
	if err != nil {
		return ksuid.Nil, nil, err
	}
	data, err := iter.ValueAndErr()
	if err != nil {
		return ksuid.Nil, nil, err
	}
	out := make([]byte, len(data))
	copy(out, data)
	return id, out, nil
}

// List returns the identifiers of every snapshot of the named table,
// oldest first.
func (s *Store) List(table string) ([]ksuid.KSUID, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	iter, err := s.db.NewIter(bounds(table))
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var ids []ksuid.KSUID
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := idFromKey(table, iter.Key())
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, iter.Error()
}

// Delete removes one snapshot. Deleting a snapshot that does not
// exist is not an error.
func (s *Store) Delete(table string, id ksuid.KSUID) error {
	if err := checkTable(table); err != nil {
		return err
	}
	return s.db.Delete(key(table, id), pebble.Sync)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func checkTable(table string) error {
	if table == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if strings.Contains(table, "/") {
		return fmt.Errorf("table name cannot contain '/': %q", table)
	}
	return nil
}

func key(table string, id ksuid.KSUID) []byte {
	return []byte(table + "/" + id.String())
}

// bounds covers exactly the "<table>/" prefix: '0' is the byte after
// '/', so table+"0" upper-bounds every possible snapshot key.
func bounds(table string) *pebble.IterOptions {
	return &pebble.IterOptions{
		LowerBound: []byte(table + "/"),
		UpperBound: []byte(table + "0"),
	}
}

func idFromKey(table string, k []byte) (ksuid.KSUID, error) {
	raw := strings.TrimPrefix(string(k), table+"/")
	id, err := ksuid.Parse(raw)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("malformed snapshot key %q: %w", k, err)
	}
	return id, nil
}
