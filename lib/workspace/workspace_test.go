package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "internal", "table")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module congressdata\n\ngo 1.24\n"), 0644))

	found, err := FindRoot(nested)
	require.NoError(t, err)
	require.Equal(t, root, found)
}

func TestFindRootIgnoresOtherModules(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/other\n"), 0644))

	_, err := FindRoot(root)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolvePathKeepsAbsolute(t *testing.T) {
	path, err := ResolvePath("/srv/raw")
	require.NoError(t, err)
	require.Equal(t, "/srv/raw", path)
}

func TestResolvePathUsesRoot(t *testing.T) {
	// package tests run inside lib/workspace of this module
	root, err := GetWorkspaceRoot()
	require.NoError(t, err)

	path, err := ResolvePath(filepath.Join("data", "raw"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "data", "raw"), path)
}
