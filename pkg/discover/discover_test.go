package discover

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"b.json",
		"a.json",
		"notes.txt",
		".hidden.json",
		"2024/01/orders.json",
		"2024/02/orders.JSON",
		"archive/old.json.bak",
	)

	files, err := Discover(root)
	require.NoError(t, err)

	want := []string{
		filepath.Join(root, "2024", "01", "orders.json"),
		filepath.Join(root, "a.json"),
		filepath.Join(root, "b.json"),
	}
	assert.Equal(t, want, files)
	for _, f := range files {
		assert.True(t, filepath.IsAbs(f), "%s should be absolute", f)
	}
}

func TestDiscover_RelativeRoot(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "x.json")
	t.Chdir(root)

	files, err := Discover(".")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, filepath.IsAbs(files[0]))
}

func TestDiscover_EmptyRoot(t *testing.T) {
	files, err := Discover(t.TempDir())
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRootNotFound))
}

func TestDiscover_FileRoot(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "one.json", "two.txt")

	files, err := Discover(filepath.Join(root, "one.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "one.json")}, files)

	files, err = Discover(filepath.Join(root, "two.txt"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscover_WithPattern(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "orders-1.json", "customers.json", "nested/orders-2.json")

	files, err := Discover(root, WithPattern("orders-*.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "nested", "orders-2.json"),
		filepath.Join(root, "orders-1.json"),
	}, files)

	_, err = Discover(root, WithPattern("[bad"))
	assert.Error(t, err)
}

func TestDiscover_LogsCount(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.json", "b.json")

	core, logs := observer.New(zap.InfoLevel)
	_, err := Discover(root, WithLogger(zap.New(core)))
	require.NoError(t, err)

	entries := logs.FilterMessage("files found").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, 2, entries[0].ContextMap()["count"])
	assert.Equal(t, root, entries[0].ContextMap()["root"])
}
