package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
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

// Domain-specific hash types
type (
	RosterHash Hash
	ResultHash Hash
)

// String conversions
func (h RosterHash) String() string { return Hash(h).String() }
func (h ResultHash) String() string { return Hash(h).String() }

// ComputeResultHash fingerprints a trial-result sequence so two runs with the
// same seed and inputs can be checked for bit-identical output.
func ComputeResultHash(values []float64) ResultHash {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return ResultHash(NewHash(buf))
}
