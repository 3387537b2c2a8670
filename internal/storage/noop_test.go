package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.Store("headlines-2024-01-10.json", []byte(`{"records":[]}`)))
	require.NoError(t, store.Store("headlines-2024-01-11.json", []byte(`{"records":[]}`)))
	require.NoError(t, store.Store("other.json", []byte(`{}`)))

	data, err := store.Retrieve("headlines-2024-01-10.json")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"records":[]}`), data)

	names, err := store.List("headlines-")
	require.NoError(t, err)
	assert.Equal(t, []string{"headlines-2024-01-10.json", "headlines-2024-01-11.json"}, names)

	require.NoError(t, store.Delete("headlines-2024-01-10.json"))
	_, err = store.Retrieve("headlines-2024-01-10.json")
	assert.Error(t, err)
}
