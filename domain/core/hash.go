package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Short returns the first 12 hex characters for log lines.
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// Domain-specific hash types
type (
	// Fingerprint identifies dataset content plus schema version.
	Fingerprint Hash
	// RunKey identifies a (fingerprint, seed, config) combination in the
	// result cache.
	RunKey Hash
)

// Constructors
func NewFingerprint(data []byte) Fingerprint { return Fingerprint(NewHash(data)) }
func NewRunKey(data []byte) RunKey           { return RunKey(NewHash(data)) }

// String conversions
func (h Fingerprint) String() string { return Hash(h).String() }
func (h RunKey) String() string      { return Hash(h).String() }

func (h Fingerprint) Short() string { return Hash(h).Short() }
func (h Fingerprint) IsEmpty() bool { return Hash(h).IsEmpty() }

// HashParts hashes an ordered list of canonical string parts. The unit
// separator keeps adjacent parts from colliding ("ab","c" vs "a","bc").
func HashParts(parts ...string) Hash {
	return NewHash([]byte(strings.Join(parts, "\x1f")))
}

// ComputeRunKey derives the cache key for a run from the dataset fingerprint
// and the canonical serialization of its parameters.
func ComputeRunKey(fingerprint Fingerprint, params ...string) RunKey {
	all := append([]string{fingerprint.String()}, params...)
	return RunKey(HashParts(all...))
}
