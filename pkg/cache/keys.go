package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// keyVersion is bumped when the artifact key layout changes, orphaning
// entries written by older releases.
const keyVersion = "v1"

// Hash returns the hex-encoded SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Keyer generates cache keys.
type Keyer interface {
	// ArtifactKey identifies the artifact produced by compilerID for the
	// unit with the given source hash.
	ArtifactKey(compilerID, unit, sourceHash string) string
}

// DefaultKeyer produces "artifact:v1:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey hashes the compiler, unit and source hash together. Fields are
// NUL-separated so no two distinct triples collide.
func (DefaultKeyer) ArtifactKey(compilerID, unit, sourceHash string) string {
	h := sha256.New()
	for _, part := range []string{compilerID, unit, sourceHash} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "artifact:" + keyVersion + ":" + hex.EncodeToString(h.Sum(nil))
}
