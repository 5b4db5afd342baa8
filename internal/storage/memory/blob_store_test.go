package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobStorePutObjectCopiesData(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	payload := []byte(`{"items":[]}`)
	uri, err := store.PutObject(context.Background(), "raw/search/abc.json", "application/json", payload)
	require.NoError(t, err)
	assert.Equal(t, "memory://raw/search/abc.json", uri)

	payload[0] = '['
	stored, contentType, ok := store.Object("raw/search/abc.json")
	require.True(t, ok)
	assert.Equal(t, `{"items":[]}`, string(stored))
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, []string{"raw/search/abc.json"}, store.Paths())
}

func TestBlobStoreRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	_, err := NewBlobStore().PutObject(context.Background(), "", "text/plain", []byte("x"))
	require.Error(t, err)
}
