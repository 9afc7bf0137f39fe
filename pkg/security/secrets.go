package security

import (
	"fmt"
	"sort"
)

// Well known keys of the secrets bundle.
const (
	KeyBitcoindPass  = "bitcoind_pass"
	KeyLndPassword   = "lnd_password"
	KeyLndMnemonic   = "lnd_mnemonic"
	KeyAdminPassword = "admin_password"
	KeyJWTKey        = "jwt_key"

	relayTokenPrefix = "relay_token_"
)

// Secrets is the per-project bundle of high-value random material. Values
// are created once and never regenerated: regenerating the wallet seed or
// the unlock password would orphan the existing wallet.
type Secrets map[string]string

// RelayTokenKey is the bundle key holding the admin token of a relay node.
func RelayTokenKey(relay string) string {
	return relayTokenPrefix + relay
}

// Ensure returns the value under key, generating and storing it with gen
// when absent. It reports whether the bundle changed.
func (s Secrets) Ensure(key string, gen func() (string, error)) (string, bool, error) {
	if v, ok := s[key]; ok && v != "" {
		return v, false, nil
	}
	v, err := gen()
	if err != nil {
		return "", false, fmt.Errorf("failed to generate secret %s: %w", key, err)
	}
	s[key] = v
	return v, true, nil
}

// Get returns the value under key or an error naming the missing key.
func (s Secrets) Get(key string) (string, error) {
	v, ok := s[key]
	if !ok || v == "" {
		return "", fmt.Errorf("secret %s not found", key)
	}
	return v, nil
}

// Keys returns the bundle keys in sorted order.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GenerateSecrets creates the bundle written on a project's first run.
func GenerateSecrets() (Secrets, error) {
	s := Secrets{}
	if _, _, err := s.FillDefaults(); err != nil {
		return nil, err
	}
	return s, nil
}

// FillDefaults adds any missing well known key and reports whether
// anything was added. Existing values are kept verbatim.
func (s Secrets) FillDefaults() (Secrets, bool, error) {
	gens := []struct {
		key string
		gen func() (string, error)
	}{
		{KeyBitcoindPass, word(20)},
		{KeyLndPassword, word(20)},
		{KeyLndMnemonic, func() (string, error) {
			words, err := NewMnemonic()
			if err != nil {
				return "", err
			}
			return JoinMnemonic(words), nil
		}},
		{KeyAdminPassword, word(16)},
		{KeyJWTKey, func() (string, error) { return HexSecret(32), nil }},
	}

	changed := false
	for _, g := range gens {
		_, added, err := s.Ensure(g.key, g.gen)
		if err != nil {
			return s, changed, err
		}
		changed = changed || added
	}
	return s, changed, nil
}

func word(n int) func() (string, error) {
	return func() (string, error) { return RandomWord(n), nil }
}
