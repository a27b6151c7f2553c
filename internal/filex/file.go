// Package filex holds small filesystem helpers for writing processing
// outputs to disk.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureSubdDir creates dirName under the current working directory if it
// does not exist yet and returns its absolute path.
func EnsureSubdDir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// SafeName reduces a stored record name to a bare file name: path separators
// and parent references are stripped so the result always lands inside the
// target directory. Empty or fully-stripped names become "unnamed".
func SafeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || name == "/" {
		return "unnamed"
	}
	return name
}
