package security

import (
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"fmt"

	"gopkg.in/macaroon.v2"
)

// CertToBase64 strips the PEM armour of a certificate and returns the DER
// bytes base64 encoded, the form expected in LND_TLS_CERT style variables.
func CertToBase64(certPEM []byte) (string, error) {
	block, _ := pem.Decode(certPEM)
	if block == nil {
		return "", fmt.Errorf("no PEM block found in certificate")
	}
	if block.Type != "CERTIFICATE" {
		return "", fmt.Errorf("unexpected PEM block type %q", block.Type)
	}
	return base64.StdEncoding.EncodeToString(block.Bytes), nil
}

// CertPool builds a pool holding a single PEM certificate.
func CertPool(certPEM []byte) (*x509.CertPool, error) {
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(certPEM) {
		return nil, fmt.Errorf("failed to parse certificate")
	}
	return pool, nil
}

// MacaroonToBase64 validates a binary macaroon and returns it base64 encoded.
func MacaroonToBase64(raw []byte) (string, error) {
	if err := checkMacaroon(raw); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// MacaroonToHex validates a binary macaroon and returns it hex encoded, the
// form lnd expects in the "macaroon" gRPC metadata.
func MacaroonToHex(raw []byte) (string, error) {
	if err := checkMacaroon(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

func checkMacaroon(raw []byte) error {
	if len(raw) == 0 {
		return fmt.Errorf("empty macaroon")
	}
	var m macaroon.Macaroon
	if err := m.UnmarshalBinary(raw); err != nil {
		return fmt.Errorf("failed to decode macaroon: %w", err)
	}
	return nil
}
