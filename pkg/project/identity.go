package project

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	maxNameLen = 8
	hashLen    = 8
)

// Identity names the per-project state directory, e.g. "myapp-1a2b3c4d".
type Identity string

// Canonicalize returns the absolute, symlink-resolved form of path.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("failed to resolve symlinks in %s: %w", abs, err)
	}
	return resolved, nil
}

// IdentityFor derives the identity of an already canonical project path.
func IdentityFor(canonicalPath string) Identity {
	sum := md5.Sum([]byte(canonicalPath))
	hash := hex.EncodeToString(sum[:])[:hashLen]
	return Identity(sanitize(filepath.Base(canonicalPath)) + "-" + hash)
}

// ResolveIdentity canonicalizes path and derives its identity.
func ResolveIdentity(path string) (Identity, error) {
	canonical, err := Canonicalize(path)
	if err != nil {
		return "", err
	}
	return IdentityFor(canonical), nil
}

// sanitize lowercases name, keeps only [a-z0-9] and truncates it.
func sanitize(name string) string {
	clean := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, strings.ToLower(name))

	if len(clean) > maxNameLen {
		clean = clean[:maxNameLen]
	}
	return clean
}
