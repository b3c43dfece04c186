// Package jsonldb provides the hashing, ID-minting, and JSONL codec
// primitives the index artifacts are built from.
package jsonldb

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// hashPrefix is the content-hash format marker.
const hashPrefix = "sha256:"

// HashBytes returns the content hash of raw bytes, formatted as
// "sha256:" plus 64 lowercase hex characters.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hashPrefix + hex.EncodeToString(sum[:])
}

// HashString returns the content hash of the UTF-8 bytes of s. It is equal to
// HashBytes of the same content.
func HashString(s string) string {
	return HashBytes([]byte(s))
}

// HashFile returns the content hash of the file at path, streaming its bytes.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for hashing: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hashPrefix + hex.EncodeToString(h.Sum(nil)), nil
}
