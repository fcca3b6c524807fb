// Package appdir locates the per-user state directory.
package appdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const name = ".mactelnet-go"

// Dir returns the state directory under the user's home.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("appdir: %w", err)
	}
	return filepath.Join(home, name), nil
}

// Path joins file onto the state directory, creating the directory if
// needed. Absolute paths are returned unchanged.
func Path(file string) (string, error) {
	if filepath.IsAbs(file) {
		return file, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("appdir: %w", err)
	}
	return filepath.Join(dir, file), nil
}
