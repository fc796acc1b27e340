// Package attachments finds the file to upload next to a submission row.
package attachments

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Locator looks for files under Base/<key>/.
type Locator struct {
	base       string
	extensions map[string]struct{}
}

// NewLocator creates a locator accepting the given extensions
// (case-insensitive, with or without the leading dot). No extensions
// accepts every regular file.
func NewLocator(base string, extensions []string) *Locator {
	exts := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}

		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}

		exts[e] = struct{}{}
	}

	return &Locator{base: base, extensions: exts}
}

// Find returns the path and name of the first accepted file, in name order,
// directly inside Base/<key>/. ok is false when the key is blank, the folder
// does not exist or holds no accepted file.
func (l *Locator) Find(key string) (path, name string, ok bool, err error) {
	key = strings.TrimSpace(key)
	if key == "" || key != filepath.Base(key) || key == "." || key == ".." {
		return "", "", false, nil
	}

	dir := filepath.Join(l.base, key)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", "", false, nil
		}

		return "", "", false, fmt.Errorf("failed to list attachments in %s: %w", dir, err)
	}

	// ReadDir already sorts by name; keep the order explicit.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		if !e.Type().IsRegular() || !l.accepts(e.Name()) {
			continue
		}

		return filepath.Join(dir, e.Name()), e.Name(), true, nil
	}

	return "", "", false, nil
}

func (l *Locator) accepts(name string) bool {
	if len(l.extensions) == 0 {
		return true
	}

	_, ok := l.extensions[strings.ToLower(filepath.Ext(name))]

	return ok
}
