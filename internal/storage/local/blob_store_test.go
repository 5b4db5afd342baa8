package local_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/spirits-scraper/internal/storage/local"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("ValidConfig", func(t *testing.T) {
		t.Parallel()
		store, err := local.New(local.Config{BaseDir: t.TempDir()})
		require.NoError(t, err)
		assert.NotNil(t, store)
	})

	t.Run("CreatesMissingDir", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), "archive", "raw")
		_, err := local.New(local.Config{BaseDir: dir})
		require.NoError(t, err)
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("MissingBaseDir", func(t *testing.T) {
		t.Parallel()
		_, err := local.New(local.Config{})
		assert.Error(t, err)
	})

	t.Run("BaseDirIsAFile", func(t *testing.T) {
		t.Parallel()
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
		_, err := local.New(local.Config{BaseDir: file})
		assert.Error(t, err)
	})
}

func TestPutObject(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	store, err := local.New(local.Config{BaseDir: tempDir})
	require.NoError(t, err)

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "flat", path: "page.html"},
		{name: "nested", path: "raw/search/abc.json"},
		{name: "empty", path: "", wantErr: true},
		{name: "traversal", path: "../outside.txt", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte("payload for " + tt.name)
			uri, err := store.PutObject(context.Background(), tt.path, "text/plain", data)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			full := filepath.Join(tempDir, tt.path)
			assert.Equal(t, "file://"+full, uri)
			// #nosec G304 -- test reads from the controlled temp directory.
			got, err := os.ReadFile(full)
			require.NoError(t, err)
			assert.Equal(t, data, got)
		})
	}
}
