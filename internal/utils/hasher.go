package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Hash generates a SHA-256 hash of the input string
func Hash(input string) string {
	hasher := sha256.New()
	hasher.Write([]byte(input))
	return hex.EncodeToString(hasher.Sum(nil))
}

// HashParts hashes the parts joined by a unit separator so that
// ("ab", "c") and ("a", "bc") produce different keys.
func HashParts(parts ...string) string {
	return Hash(strings.Join(parts, "\x1f"))
}

// ExportFileName builds the deterministic download name of an artifact,
// e.g. picreel-20261015-landscape.mp4.
func ExportFileName(at time.Time, label, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if label == "" {
		return fmt.Sprintf("picreel-%s.%s", at.Format("20060102"), ext)
	}
	return fmt.Sprintf("picreel-%s-%s.%s", at.Format("20060102"), label, ext)
}
