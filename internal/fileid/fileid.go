// Package fileid derives stable document IDs from file paths.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
)

const (
	prefix = "doc:"
	// idLen is the number of hex digits kept from the digest.
	idLen = 16
)

// ForPath returns the ID of the file at path. Relative paths are made absolute first, so
// the same file yields the same ID from any working directory.
func ForPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return hash(filepath.Clean(path))
}

// ForLine returns the ID of the n-th (0-based) line read from a stream such as stdin.
func ForLine(stream string, n int) string {
	return hash(fmt.Sprintf("%s#%d", stream, n))
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return prefix + hex.EncodeToString(sum[:])[:idLen]
}
