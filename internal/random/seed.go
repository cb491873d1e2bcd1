// Package random provides cryptographic seed generation helpers.
//
// Fresh campaigns draw their world seed here once; every subsequent roll
// flows through the deterministic generator in internal/dice.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// NewSeed generates a world seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// MustNewSeed is NewSeed for call sites where entropy exhaustion is fatal,
// such as CLI campaign creation.
func MustNewSeed() int64 {
	seed, err := NewSeed()
	if err != nil {
		panic(fmt.Sprintf("random: %v", err))
	}
	return seed
}
