package table

import (
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"

	"github.com/ssargent/sagadb/pkg/codec"
	"github.com/ssargent/sagadb/pkg/uid"
)

// Releaser is the optional finalizer capability for record types that
// own heap payloads. When a record type (or its pointer type)
// implements it, the table invokes Release on every value it discards
// through Remove, Clear, Close, and Load-overwrite.
type Releaser interface {
	Release()
}

// Table owns exactly one Map and, transitively, every stored record's
// owned payloads. It layers lifecycle discipline over the Map's raw
// storage: release hooks, random-identifier insertion, and
// persistence through the text codec.
//
// A Table is not safe for concurrent use; callers serialize access.
type Table[T any] struct {
	schema  *codec.Schema[T]
	m       *Map[T]
	release func(*T)
}

// New returns an empty table bound to the given schema. No allocation
// happens until the first insert.
func New[T any](schema *codec.Schema[T]) *Table[T] {
	t := &Table[T]{schema: schema, m: NewMap[T]()}

	// *T's method set covers both value and pointer receivers, so one
	// probe detects the capability either way.
	var zero T
	if _, ok := any(&zero).(Releaser); ok {
		t.release = func(v *T) { any(v).(Releaser).Release() }
	}
	return t
}

// Schema returns the schema the table was constructed with.
func (t *Table[T]) Schema() *codec.Schema[T] {
	return t.schema
}

// Len returns the number of live records.
func (t *Table[T]) Len() int {
	return t.m.Len()
}

// Add inserts the value under a freshly generated identifier and
// returns it.
func (t *Table[T]) Add(v T) uid.ID {
	id := uid.New()
	t.m.Put(id, v)
	return id
}

// AddWithID inserts the value under a caller-chosen identifier,
// silently overwriting any existing entry. The overwrite is raw: the
// old value's Release hook is NOT invoked on this path. Only Remove,
// Clear, Close and Load guarantee release on discard; callers using
// AddWithID over live keys own that responsibility.
func (t *Table[T]) AddWithID(id uid.ID, v T) {
	t.m.Put(id, v)
}

// Get returns a copy of the record stored under id.
func (t *Table[T]) Get(id uid.ID) (T, bool) {
	return t.m.Get(id)
}

// GetPtr returns a pointer for in-place mutation, or nil when absent.
// The pointer is invalidated by the next structural mutation.
func (t *Table[T]) GetPtr(id uid.ID) *T {
	return t.m.GetPtr(id)
}

// Has reports whether id is present.
func (t *Table[T]) Has(id uid.ID) bool {
	return t.m.Has(id)
}

// Remove deletes the record under id, releasing its owned payloads
// first, and reports whether a removal happened. Iteration order is
// unspecified after any removal.
func (t *Table[T]) Remove(id uid.ID) bool {
	if t.release != nil {
		if v := t.m.GetPtr(id); v != nil {
			t.release(v)
		}
	}
	return t.m.SwapRemove(id)
}

// Clear releases every live record's owned payloads and empties the
// table, retaining capacity.
func (t *Table[T]) Clear() {
	if t.release != nil {
		vals := t.m.Values()
		for i := range vals {
			t.release(&vals[i])
		}
	}
	t.m.Reset()
}

// Close releases every live record's owned payloads and drops the
// backing storage. Call it exactly once; using the table after Close
// is undefined.
func (t *Table[T]) Close() {
	if t.release != nil {
		vals := t.m.Values()
		for i := range vals {
			t.release(&vals[i])
		}
	}
	t.m = NewMap[T]()
}

// Keys returns the dense identifier array in current storage order.
// Shared with the table, not a copy.
func (t *Table[T]) Keys() []uid.ID {
	return t.m.Keys()
}

// Values returns the dense value array in current storage order.
// Shared with the table: element mutation is in-place mutation.
func (t *Table[T]) Values() []T {
	return t.m.Values()
}

// All iterates over (identifier, value pointer) pairs. Structural
// mutation during iteration is a contract violation.
func (t *Table[T]) All() iter.Seq2[uid.ID, *T] {
	return t.m.All()
}

// Clone returns a shallow copy of the table. Record payloads are not
// duplicated: for record types with Release semantics the clone
// aliases the original's payloads and closing both is a
// double-release. Safe only for plain-value record types.
func (t *Table[T]) Clone() *Table[T] {
	return &Table[T]{schema: t.schema, m: t.m.Clone(), release: t.release}
}

// Save writes the table's contents to w in the text format, in
// current storage order.
func (t *Table[T]) Save(w io.Writer) error {
	return codec.Write(w, t.schema, t.m.All())
}

// Load parses record text from r into the table. When a parsed
// identifier already exists, the old value's payloads are released
// before the new value overwrites it. On a parse error the records
// decoded before the failing line remain in the table.
func (t *Table[T]) Load(r io.Reader) error {
	return codec.Read(r, t.schema, func(id uid.ID, v T) {
		if t.release != nil {
			if old := t.m.GetPtr(id); old != nil {
				t.release(old)
			}
		}
		t.m.Put(id, v)
	})
}

// SaveFile writes the table to path via a temp file in the same
// directory and an atomic rename.
func (t *Table[T]) SaveFile(path string) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmp := f.Name()

	if err := t.Save(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// LoadFile parses the file at path into the table.
func (t *Table[T]) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return t.Load(f)
}
