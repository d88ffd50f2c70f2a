// Package files locates package binaries in hash-sharded directory trees.
package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrNotFound means no configured directory holds the requested file.
var ErrNotFound = errors.New("file not found")

var hashPattern = regexp.MustCompile(`^[a-fA-F0-9]{6,128}$`)

// Store resolves a file hash to a path inside one of the allowed base
// directories. Files are sharded one hex character per level for the first
// six characters: <base>/a/b/c/d/e/f/abcdef...
type Store struct {
	baseDirs []string
}

func NewStore(baseDirs []string) *Store {
	return &Store{baseDirs: baseDirs}
}

// Resolve returns the on-disk path of the file with the given hash. Hashes
// are validated and reduced to their base name so a crafted value can never
// traverse out of the allowed directories.
func (s *Store) Resolve(hash string) (string, error) {
	hash = filepath.Base(strings.TrimSpace(hash))
	if !hashPattern.MatchString(hash) {
		return "", fmt.Errorf("%w: malformed hash", ErrNotFound)
	}

	for _, base := range s.baseDirs {
		path := shardedPath(base, hash)
		if !within(base, path) {
			continue
		}
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", ErrNotFound
}

func shardedPath(base, hash string) string {
	parts := make([]string, 0, 8)
	parts = append(parts, base)
	for i := 0; i < 6; i++ {
		parts = append(parts, hash[i:i+1])
	}
	parts = append(parts, hash)
	return filepath.Join(parts...)
}

func within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
