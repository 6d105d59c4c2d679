package services

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"solotto/domain/interfaces"
)

// cryptoShuffler produces unbiased permutations from crypto/rand using a
// Fisher-Yates shuffle. It is the default Shuffler; a verifiable-random
// source can be swapped in without touching allocation logic.
type cryptoShuffler struct{}

// NewCryptoShuffler returns the default crypto/rand backed shuffler
func NewCryptoShuffler() interfaces.Shuffler {
	return cryptoShuffler{}
}

// Permutation returns a uniformly random permutation of [0, n)
func (cryptoShuffler) Permutation(n int) ([]int, error) {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < n-1; i++ {
		r, err := rand.Int(rand.Reader, big.NewInt(int64(n-i)))
		if err != nil {
			return nil, fmt.Errorf("random generation failed: %w", err)
		}
		j := i + int(r.Int64())
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm, nil
}
