// Package fingerprint tracks content hashes of the devcontainer spec files.
//
// Fingerprints are taken over raw bytes, so reformatting a file without
// changing its meaning still counts as a change.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
)

// Fingerprint is the hex MD5 digest of a file's contents.
type Fingerprint string

// Absent is the fingerprint of a file that does not exist.
const Absent Fingerprint = ""

// Of returns the fingerprint of the file at path, or Absent if it does not exist.
func Of(path string) (Fingerprint, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Absent, nil
	}
	if err != nil {
		return Absent, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return OfBytes(data), nil
}

// OfBytes returns the fingerprint of data.
func OfBytes(data []byte) Fingerprint {
	sum := md5.Sum(data)
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// IsAbsent reports whether f stands for a missing file.
func (f Fingerprint) IsAbsent() bool {
	return f == Absent
}

// NeedsRegeneration reports whether the spec has to be generated again.
// A spec without a generation input is hand-authored and is never regenerated.
func NeedsRegeneration(genInput, storedGenInput, spec, storedSpec Fingerprint) bool {
	if spec.IsAbsent() {
		return true
	}
	if genInput.IsAbsent() {
		return false
	}
	return genInput != storedGenInput
}

// DetectDrift reports whether the spec on disk differs from the one a
// container was built from.
func DetectDrift(spec, storedSpec Fingerprint) bool {
	return spec != storedSpec
}
