package security

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/lightningnetwork/lnd/aezeed"
)

// NewMnemonic generates a fresh aezeed cipher seed and returns its 24
// mnemonic words. The seed has no passphrase.
func NewMnemonic() ([]string, error) {
	var entropy [aezeed.EntropySize]byte
	if _, err := rand.Read(entropy[:]); err != nil {
		return nil, fmt.Errorf("failed to read entropy: %w", err)
	}

	seed, err := aezeed.New(aezeed.CipherSeedVersion, &entropy, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher seed: %w", err)
	}

	mnemonic, err := seed.ToMnemonic(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mnemonic: %w", err)
	}
	return mnemonic[:], nil
}

// JoinMnemonic and SplitMnemonic convert between the word slice and the
// single string stored in the secrets bundle.
func JoinMnemonic(words []string) string {
	return strings.Join(words, " ")
}

func SplitMnemonic(s string) []string {
	return strings.Fields(s)
}
