package security

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecrets(t *testing.T) {
	s, err := GenerateSecrets()
	require.NoError(t, err)

	for _, key := range []string{KeyBitcoindPass, KeyLndPassword, KeyLndMnemonic, KeyAdminPassword, KeyJWTKey} {
		v, err := s.Get(key)
		require.NoError(t, err, key)
		assert.NotEmpty(t, v, key)
	}

	assert.Len(t, SplitMnemonic(s[KeyLndMnemonic]), 24)
	assert.Len(t, s[KeyJWTKey], 64)
}

func TestFillDefaultsKeepsExisting(t *testing.T) {
	s := Secrets{
		KeyLndPassword: "keep-me",
		KeyLndMnemonic: "abandon ability",
	}

	_, changed, err := s.FillDefaults()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "keep-me", s[KeyLndPassword])
	assert.Equal(t, "abandon ability", s[KeyLndMnemonic])

	before := len(s)
	_, changed, err = s.FillDefaults()
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, s, before)
}

func TestEnsure(t *testing.T) {
	tests := []struct {
		name        string
		initial     Secrets
		gen         func() (string, error)
		want        string
		wantChanged bool
		wantErr     bool
	}{
		{
			name:        "generates when absent",
			initial:     Secrets{},
			gen:         func() (string, error) { return "fresh", nil },
			want:        "fresh",
			wantChanged: true,
		},
		{
			name:    "keeps existing value",
			initial: Secrets{"k": "old"},
			gen:     func() (string, error) { return "fresh", nil },
			want:    "old",
		},
		{
			name:        "regenerates empty value",
			initial:     Secrets{"k": ""},
			gen:         func() (string, error) { return "fresh", nil },
			want:        "fresh",
			wantChanged: true,
		},
		{
			name:    "generator failure",
			initial: Secrets{},
			gen:     func() (string, error) { return "", errors.New("boom") },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed, err := tt.initial.Ensure("k", tt.gen)
			if tt.wantErr {
				require.Error(t, err)
				assert.NotContains(t, tt.initial, "k")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.want, tt.initial["k"])
		})
	}
}

func TestRelayTokenKey(t *testing.T) {
	assert.Equal(t, "relay_token_relay1", RelayTokenKey("relay1"))
}

func TestKeysSorted(t *testing.T) {
	s := Secrets{"b": "1", "a": "2", "c": "3"}
	assert.Equal(t, []string{"a", "b", "c"}, s.Keys())
}

func TestRandomWord(t *testing.T) {
	a := RandomWord(20)
	b := RandomWord(20)
	assert.Len(t, a, 20)
	assert.NotEqual(t, a, b)
	for _, r := range a {
		assert.Contains(t, wordAlphabet, string(r))
	}
}

func TestHexSecrets(t *testing.T) {
	assert.Len(t, StoreKey(), 32)
	assert.Len(t, PrivateKey32(), 64)
}
