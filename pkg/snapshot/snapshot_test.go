package snapshot

import (
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SaveLoad(t *testing.T) {
	s := openStore(t)

	payload := []byte("#uuid\tname\n155\twolf\n")
	id, err := s.Save("critters", payload)
	require.NoError(t, err)

	got, err := s.Load("critters", id)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestStore_Latest(t *testing.T) {
	s := openStore(t)

	_, err := s.Save("critters", []byte("first"))
	require.NoError(t, err)
	second, err := s.Save("critters", []byte("second"))
	require.NoError(t, err)

	// a different table must not shadow the prefix
	_, err = s.Save("critterz", []byte("other"))
	require.NoError(t, err)

	id, payload, err := s.Latest("critters")
	require.NoError(t, err)
	assert.Equal(t, second, id)
	assert.Equal(t, []byte("second"), payload)
}

func TestStore_List(t *testing.T) {
	s := openStore(t)

	a, err := s.Save("critters", []byte("a"))
	require.NoError(t, err)
	b, err := s.Save("critters", []byte("b"))
	require.NoError(t, err)

	ids, err := s.List("critters")
	require.NoError(t, err)
	assert.Equal(t, []ksuid.KSUID{a, b}, ids)
}

func TestStore_Delete(t *testing.T) {
	s := openStore(t)

	id, err := s.Save("critters", []byte("a"))
	require.NoError(t, err)

	require.NoError(t, s.Delete("critters", id))
	_, err = s.Load("critters", id)
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting again is fine
	assert.NoError(t, s.Delete("critters", id))
}

func TestStore_NotFound(t *testing.T) {
	s := openStore(t)

	_, _, err := s.Latest("empty")
	assert.ErrorIs(t, err, ErrNotFound)

	ids, err := s.List("empty")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestStore_BadTableName(t *testing.T) {
	s := openStore(t)

	_, err := s.Save("", []byte("x"))
	assert.Error(t, err)
	_, err = s.Save("a/b", []byte("x"))
	assert.Error(t, err)
}

func TestStore_NextIDAfterSequenceExhaustion(t *testing.T) {
	s := openStore(t)

	// drain the seed completely so the next draw must reseed
	for {
		if _, err := s.seq.Next(); err != nil {
			break
		}
	}

	a := s.nextID()
	b := s.nextID()
	assert.NotEqual(t, ksuid.Nil, a)
	assert.NotEqual(t, ksuid.Nil, b)
	assert.NotEqual(t, a, b)
}
