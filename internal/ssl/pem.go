package ssl

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/youmark/pkcs8"
)

// loadPEMCertificates reads every CERTIFICATE block from a PEM file.
func loadPEMCertificates(path string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator configuration
	if err != nil {
		return nil, NewCredentialErrorWithCause(path, "cannot read PEM file", err)
	}

	var certs []*x509.Certificate
	for len(data) > 0 {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, NewCredentialErrorWithCause(path, "cannot parse certificate", err)
		}
		certs = append(certs, cert)
	}

	if len(certs) == 0 {
		return nil, NewCredentialErrorWithCause(path, "PEM file contains no certificates", ErrNoCertificate)
	}

	return certs, nil
}

// loadPEMPrivateKey reads a private key from a PEM file. Plain PKCS#1,
// SEC 1, and PKCS#8 keys are supported, as are password-protected keys in
// encrypted PKCS#8 or legacy RFC 1423 encoding.
func loadPEMPrivateKey(path, password string) (crypto.PrivateKey, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator configuration
	if err != nil {
		return nil, NewCredentialErrorWithCause(path, "cannot read PEM key file", err)
	}

	for len(data) > 0 {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}

		key, err := parseKeyBlock(block, password)
		if err != nil {
			return nil, NewCredentialErrorWithCause(path, "cannot parse private key", err)
		}
		if key != nil {
			return key, nil
		}
	}

	return nil, NewCredentialErrorWithCause(path, "PEM file contains no private key", ErrNoPrivateKey)
}

// parseKeyBlock parses a single PEM block, returning (nil, nil) for blocks
// that do not carry a private key.
func parseKeyBlock(block *pem.Block, password string) (crypto.PrivateKey, error) {
	//nolint:staticcheck // SA1019: legacy RFC 1423 keys are still found in migrated installations
	if x509.IsEncryptedPEMBlock(block) {
		der, err := x509.DecryptPEMBlock(block, []byte(password)) //nolint:staticcheck // SA1019
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreDecrypt, err)
		}
		return parseKeyDER(block.Type, der)
	}

	switch block.Type {
	case "ENCRYPTED PRIVATE KEY":
		key, err := pkcs8.ParsePKCS8PrivateKey(block.Bytes, []byte(password))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreDecrypt, err)
		}
		return key, nil
	case "PRIVATE KEY", "RSA PRIVATE KEY", "EC PRIVATE KEY":
		return parseKeyDER(block.Type, block.Bytes)
	default:
		return nil, nil
	}
}

func parseKeyDER(blockType string, der []byte) (crypto.PrivateKey, error) {
	switch blockType {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(der)
	case "EC PRIVATE KEY":
		return x509.ParseECPrivateKey(der)
	default:
		return x509.ParsePKCS8PrivateKey(der)
	}
}
