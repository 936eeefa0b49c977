package table

import (
	"iter"

	"github.com/ssargent/sagadb/pkg/uid"
)

const (
	minBuckets  = 16
	emptyBucket = int32(-1)
)

// Map is an identifier-keyed ordered map: a dense, insertion-ordered
// pair of backing arrays with an open-addressed hash index on top.
// Lookup, insert and removal are O(1) average; removal swaps the last
// entry into the freed slot, so iteration order is unspecified after
// any removal.
//
// The index hashes identifiers by their low 32 bits (uid.ID.Hash32)
// and resolves collisions by linear probing with backward-shift
// deletion. Equality is always the full 128-bit compare.
//
// Map performs raw overwrites and raw removals: it never releases
// resources owned by stored values. That discipline lives in Table.
type Map[V any] struct {
	ids     []uid.ID
	vals    []V
	buckets []int32 // slot into ids/vals, or emptyBucket
	mask    uint32
}

// NewMap returns an empty map. No allocation happens until the first
// insert.
func NewMap[V any]() *Map[V] {
	return &Map[V]{}
}

// Len returns the number of live entries.
func (m *Map[V]) Len() int {
	return len(m.ids)
}

// Put inserts the value under id, or overwrites the existing value.
// Overwrite is raw: the caller releases the old value's resources
// first if it owns any.
func (m *Map[V]) Put(id uid.ID, v V) {
	if len(m.ids)*4 >= len(m.buckets)*3 {
		m.grow()
	}
	i := id.Hash32() & m.mask
	for m.buckets[i] != emptyBucket {
		if m.ids[m.buckets[i]] == id {
			m.vals[m.buckets[i]] = v
			return
		}
		i = (i + 1) & m.mask
	}
	m.buckets[i] = int32(len(m.ids))
	m.ids = append(m.ids, id)
	m.vals = append(m.vals, v)
}

// Get returns a copy of the value stored under id.
func (m *Map[V]) Get(id uid.ID) (V, bool) {
	if i, ok := m.find(id); ok {
		return m.vals[m.buckets[i]], true
	}
	var zero V
	return zero, false
}

// GetPtr returns a pointer to the value stored under id, or nil when
// absent. The pointer is valid only until the next structural
// mutation (Put of a new key, SwapRemove, Reset).
func (m *Map[V]) GetPtr(id uid.ID) *V {
	if i, ok := m.find(id); ok {
		return &m.vals[m.buckets[i]]
	}
	return nil
}

// Has reports whether id is present.
func (m *Map[V]) Has(id uid.ID) bool {
	_, ok := m.find(id)
	return ok
}

// SwapRemove removes the entry for id if present and reports whether
// a removal happened. The formerly-last entry is relocated into the
// freed slot. Owned resources of the removed value are not released.
func (m *Map[V]) SwapRemove(id uid.ID) bool {
	i, ok := m.find(id)
	if !ok {
		return false
	}
	slot := m.buckets[i]
	last := int32(len(m.ids) - 1)

	if slot != last {
		moved := m.ids[last]
		j, _ := m.find(moved)
		m.buckets[j] = slot
		m.ids[slot] = moved
		m.vals[slot] = m.vals[last]
	}
	var zero V
	m.vals[last] = zero // drop any heap references held by the slot
	m.ids = m.ids[:last]
	m.vals = m.vals[:last]

	m.unlink(i)
	return true
}

// Keys returns the dense backing array of identifiers in current
// storage order. The slice is shared with the map, not a copy.
func (m *Map[V]) Keys() []uid.ID {
	return m.ids
}

// Values returns the dense backing array of values in current storage
// order. The slice is shared with the map: mutating its elements
// mutates the stored values in place.
func (m *Map[V]) Values() []V {
	return m.vals
}

// All iterates over (identifier, value pointer) pairs in current
// storage order. The sequence is lazy and single-pass. Structurally
// mutating the map while iterating is a contract violation and is not
// runtime-checked.
func (m *Map[V]) All() iter.Seq2[uid.ID, *V] {
	return func(yield func(uid.ID, *V) bool) {
		for i := range m.ids {
			if !yield(m.ids[i], &m.vals[i]) {
				return
			}
		}
	}
}

// Clone returns a shallow copy: backing arrays and index are
// duplicated, but heap payloads reachable from the values are not.
// For value types that own heap memory the clone aliases the
// original's payloads, and releasing both is a double-release.
func (m *Map[V]) Clone() *Map[V] {
	c := &Map[V]{mask: m.mask}
	if m.ids != nil {
		c.ids = append(make([]uid.ID, 0, cap(m.ids)), m.ids...)
		c.vals = append(make([]V, 0, cap(m.vals)), m.vals...)
		c.buckets = append(make([]int32, 0, len(m.buckets)), m.buckets...)
	}
	return c
}

// Reset empties the map while retaining capacity. No resources owned
// by the values are released; the caller does that first if needed.
func (m *Map[V]) Reset() {
	var zero V
	for i := range m.vals {
		m.vals[i] = zero
	}
	m.ids = m.ids[:0]
	m.vals = m.vals[:0]
	for i := range m.buckets {
		m.buckets[i] = emptyBucket
	}
}

// find locates the bucket holding id.
func (m *Map[V]) find(id uid.ID) (uint32, bool) {
	if len(m.buckets) == 0 {
		return 0, false
	}
	i := id.Hash32() & m.mask
	for m.buckets[i] != emptyBucket {
		if m.ids[m.buckets[i]] == id {
			return i, true
		}
		i = (i + 1) & m.mask
	}
	return 0, false
}

// unlink clears bucket i, shifting later probe-chain members back so
// no tombstones accumulate.
func (m *Map[V]) unlink(i uint32) {
	j := i
	for {
		j = (j + 1) & m.mask
		if m.buckets[j] == emptyBucket {
			break
		}
		k := m.ids[m.buckets[j]].Hash32() & m.mask
		// leave the entry where it is if its home bucket lies
		// cyclically in (i, j]
		if i <= j {
			if i < k && k <= j {
				continue
			}
		} else {
			if i < k || k <= j {
				continue
			}
		}
		m.buckets[i] = m.buckets[j]
		i = j
	}
	m.buckets[i] = emptyBucket
}

// grow doubles the bucket array and reindexes every slot.
func (m *Map[V]) grow() {
	n := len(m.buckets) * 2
	if n < minBuckets {
		n = minBuckets
	}
	m.buckets = make([]int32, n)
	for i := range m.buckets {
		m.buckets[i] = emptyBucket
	}
	m.mask = uint32(n - 1)
	for slot := range m.ids {
		i := m.ids[slot].Hash32() & m.mask
		for m.buckets[i] != emptyBucket {
			i = (i + 1) & m.mask
		}
		m.buckets[i] = int32(slot)
	}
}
