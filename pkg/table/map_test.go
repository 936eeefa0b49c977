package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/sagadb/pkg/uid"
)

func TestMap_PutGet(t *testing.T) {
	m := NewMap[string]()

	assert.Equal(t, 0, m.Len())
	_, ok := m.Get(uid.From64(1))
	assert.False(t, ok)

	m.Put(uid.From64(1), "one")
	m.Put(uid.From64(2), "two")

	v, ok := m.Get(uid.From64(1))
	require.True(t, ok)
	assert.Equal(t, "one", v)

	// overwrite is in place
	m.Put(uid.From64(1), "uno")
	v, _ = m.Get(uid.From64(1))
	assert.Equal(t, "uno", v)
	assert.Equal(t, 2, m.Len())
}

func TestMap_GetPtrMutatesInPlace(t *testing.T) {
	m := NewMap[int]()
	m.Put(uid.From64(7), 40)

	p := m.GetPtr(uid.From64(7))
	require.NotNil(t, p)
	*p += 2

	v, _ := m.Get(uid.From64(7))
	assert.Equal(t, 42, v)

	assert.Nil(t, m.GetPtr(uid.From64(8)))
}

func TestMap_SwapRemove(t *testing.T) {
	m := NewMap[string]()
	m.Put(uid.From64(1), "a")
	m.Put(uid.From64(2), "b")
	m.Put(uid.From64(3), "c")

	// removing a middle entry relocates the last entry into its slot
	require.True(t, m.SwapRemove(uid.From64(2)))
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []uid.ID{uid.From64(1), uid.From64(3)}, m.Keys())
	assert.Equal(t, []string{"a", "c"}, m.Values())

	v, ok := m.Get(uid.From64(3))
	require.True(t, ok)
	assert.Equal(t, "c", v)

	assert.False(t, m.SwapRemove(uid.From64(2)))

	require.True(t, m.SwapRemove(uid.From64(1)))
	require.True(t, m.SwapRemove(uid.From64(3)))
	assert.Equal(t, 0, m.Len())
}

func TestMap_RemoveLast(t *testing.T) {
	m := NewMap[string]()
	m.Put(uid.From64(1), "a")
	m.Put(uid.From64(2), "b")

	require.True(t, m.SwapRemove(uid.From64(2)))
	assert.Equal(t, []uid.ID{uid.From64(1)}, m.Keys())
}

// All identifiers here share the same low 32 bits, so every entry
// lands in the same home bucket and lookups survive only if linear
// probing and backward-shift deletion are correct.
func TestMap_HashCollisions(t *testing.T) {
	m := NewMap[uint64]()
	const n = 64
	for i := uint64(0); i < n; i++ {
		m.Put(uid.ID{Hi: i, Lo: 5}, i)
	}
	require.Equal(t, n, m.Len())

	for i := uint64(0); i < n; i++ {
		v, ok := m.Get(uid.ID{Hi: i, Lo: 5})
		require.True(t, ok, "id %d", i)
		assert.Equal(t, i, v)
	}

	// delete every other entry, then verify the survivors
	for i := uint64(0); i < n; i += 2 {
		require.True(t, m.SwapRemove(uid.ID{Hi: i, Lo: 5}))
	}
	for i := uint64(0); i < n; i++ {
		_, ok := m.Get(uid.ID{Hi: i, Lo: 5})
		assert.Equal(t, i%2 == 1, ok, "id %d", i)
	}
}

func TestMap_GrowthUnderChurn(t *testing.T) {
	m := NewMap[int]()
	const n = 10000
	for i := 0; i < n; i++ {
		m.Put(uid.From64(uint64(i)), i)
	}
	require.Equal(t, n, m.Len())

	removed := 0
	for i := 0; i < n; i += 3 {
		require.True(t, m.SwapRemove(uid.From64(uint64(i))))
		removed++
	}
	assert.Equal(t, n-removed, m.Len())

	for i := 0; i < n; i++ {
		v, ok := m.Get(uid.From64(uint64(i)))
		if i%3 == 0 {
			assert.False(t, ok, "id %d should be gone", i)
		} else {
			require.True(t, ok, "id %d", i)
			assert.Equal(t, i, v)
		}
	}
}

func TestMap_All(t *testing.T) {
	m := NewMap[int]()
	for i := 0; i < 5; i++ {
		m.Put(uid.From64(uint64(i)), i*10)
	}

	got := make(map[uid.ID]int)
	for id, v := range m.All() {
		got[id] = *v
	}
	require.Len(t, got, 5)
	for i := 0; i < 5; i++ {
		assert.Equal(t, i*10, got[uid.From64(uint64(i))])
	}

	// single-pass early stop
	count := 0
	for range m.All() {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestMap_Clone(t *testing.T) {
	m := NewMap[string]()
	m.Put(uid.From64(1), "a")
	m.Put(uid.From64(2), "b")

	c := m.Clone()
	require.Equal(t, 2, c.Len())

	// diverge: mutations on either side are invisible to the other
	m.Put(uid.From64(3), "c")
	c.SwapRemove(uid.From64(1))

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 1, c.Len())
	v, ok := m.Get(uid.From64(1))
	require.True(t, ok)
	assert.Equal(t, "a", v)
}

func TestMap_Reset(t *testing.T) {
	m := NewMap[string]()
	for i := 0; i < 100; i++ {
		m.Put(uid.From64(uint64(i)), "x")
	}
	m.Reset()

	assert.Equal(t, 0, m.Len())
	_, ok := m.Get(uid.From64(3))
	assert.False(t, ok)

	// reusable after reset
	m.Put(uid.From64(3), "back")
	v, ok := m.Get(uid.From64(3))
	require.True(t, ok)
	assert.Equal(t, "back", v)
}

func TestMap_CountInvariant(t *testing.T) {
	m := NewMap[int]()
	inserts, removes := 0, 0
	for i := 0; i < 500; i++ {
		key := uid.From64(uint64(i % 200))
		if !m.Has(key) {
			inserts++
		}
		m.Put(key, i)
		if i%7 == 0 {
			if m.SwapRemove(uid.From64(uint64((i * 31) % 200))) {
				removes++
			}
		}
	}
	assert.Equal(t, inserts-removes, m.Len())
}
