// Package workspace locates the repository root so relative paths resolve the same way no
// matter which directory a command is started from.
package workspace

import (
	"os"
	"path/filepath"
	"regexp"
)

const ModuleName = "congressdata"

var modName = regexp.MustCompile(`(?m)^module *([\w\-_./]+)$`)

func isRoot(dir string) bool {
	mod, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return false
	}
	matches := modName.FindSubmatch(mod)
	return len(matches) >= 2 && string(matches[1]) == ModuleName
}

// FindRoot walks up from start to the directory holding this module's go.mod.
func FindRoot(start string) (string, error) {
	current, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if isRoot(current) {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", os.ErrNotExist
		}
		current = parent
	}
}

// GetWorkspaceRoot is FindRoot from the cwd.
func GetWorkspaceRoot() (string, error) {
	return FindRoot(".")
}

// ResolvePath makes a relative path absolute against the workspace root. Outside a
// checkout it falls back to the cwd.
func ResolvePath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	root, err := GetWorkspaceRoot()
	if os.IsNotExist(err) {
		return filepath.Abs(path)
	}
	if err != nil {
		return "", err
	}
	return filepath.Join(root, path), nil
}
