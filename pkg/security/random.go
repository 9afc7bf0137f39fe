package security

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
)

const wordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomWord returns an alphanumeric string of length n drawn from crypto/rand.
func RandomWord(n int) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(wordAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(fmt.Sprintf("crypto/rand failed: %v", err))
		}
		out[i] = wordAlphabet[idx.Int64()]
	}
	return string(out)
}

// HexSecret returns n random bytes hex encoded.
func HexSecret(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// StoreKey is the 16 byte key used by the payment proxy's encrypted store.
func StoreKey() string {
	return HexSecret(16)
}

// PrivateKey32 is a 32 byte hex secret, used as a node private key.
func PrivateKey32() string {
	return HexSecret(32)
}

// RSAKey generates a 2048 bit RSA private key and returns its PKCS#1 DER
// form base64 encoded, which is what the cache expects in RSA_KEY.
func RSAKey() (string, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return "", fmt.Errorf("failed to generate rsa key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(x509.MarshalPKCS1PrivateKey(key)), nil
}
