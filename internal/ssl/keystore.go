package ssl

import (
	"crypto"
	"crypto/x509"
	"fmt"
	"os"
	"strings"

	keystore "github.com/pavlo-v-chernykh/keystore-go/v4"
	pkcs12 "software.sslmate.com/src/go-pkcs12"
)

// Container store types.
const (
	storeTypeJKS    = "JKS"
	storeTypePKCS12 = "PKCS12"
)

// normalizeStoreType canonicalizes a configured store type.
func normalizeStoreType(raw string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", storeTypeJKS:
		return storeTypeJKS, nil
	case storeTypePKCS12, "PKCS#12", "P12", "PFX":
		return storeTypePKCS12, nil
	default:
		return "", fmt.Errorf("unsupported store type: %q", raw)
	}
}

// loadKeyEntry extracts the private key and its certificate chain (leaf
// first) from a container store. When alias is empty the sole private-key
// entry of the store is used.
func loadKeyEntry(path, storeType, password, alias string) (crypto.PrivateKey, []*x509.Certificate, error) {
	kind, err := normalizeStoreType(storeType)
	if err != nil {
		return nil, nil, NewCredentialErrorWithCause(path, "cannot open keystore", err)
	}

	if kind == storeTypePKCS12 {
		return loadPKCS12KeyEntry(path, password)
	}
	return loadJKSKeyEntry(path, password, alias)
}

func loadJKSKeyEntry(path, password, alias string) (crypto.PrivateKey, []*x509.Certificate, error) {
	ks, err := openJKS(path, password)
	if err != nil {
		return nil, nil, err
	}

	if alias == "" {
		for _, candidate := range ks.Aliases() {
			if ks.IsPrivateKeyEntry(candidate) {
				alias = candidate
				break
			}
		}
	}
	if alias == "" || !ks.IsPrivateKeyEntry(alias) {
		return nil, nil, NewCredentialErrorWithCause(path,
			fmt.Sprintf("no private key entry with alias %q", alias), ErrNoPrivateKey)
	}

	entry, err := ks.GetPrivateKeyEntry(alias, []byte(password))
	if err != nil {
		return nil, nil, NewCredentialErrorWithCause(path,
			"cannot decrypt private key entry", fmt.Errorf("%w: %v", ErrStoreDecrypt, err))
	}

	key, err := x509.ParsePKCS8PrivateKey(entry.PrivateKey)
	if err != nil {
		return nil, nil, NewCredentialErrorWithCause(path,
			"cannot parse private key entry", fmt.Errorf("%w: %v", ErrNoPrivateKey, err))
	}

	if len(entry.CertificateChain) == 0 {
		return nil, nil, NewCredentialErrorWithCause(path,
			fmt.Sprintf("no certificate chain for alias %q", alias), ErrNoCertificate)
	}

	chain := make([]*x509.Certificate, 0, len(entry.CertificateChain))
	for _, raw := range entry.CertificateChain {
		cert, err := x509.ParseCertificate(raw.Content)
		if err != nil {
			return nil, nil, NewCredentialErrorWithCause(path, "cannot parse chain certificate", err)
		}
		chain = append(chain, cert)
	}

	return key, chain, nil
}

func loadPKCS12KeyEntry(path, password string) (crypto.PrivateKey, []*x509.Certificate, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator configuration
	if err != nil {
		return nil, nil, NewCredentialErrorWithCause(path, "cannot read keystore", err)
	}

	key, leaf, cas, err := pkcs12.DecodeChain(data, password)
	if err != nil {
		return nil, nil, NewCredentialErrorWithCause(path,
			"cannot decode PKCS#12 store", fmt.Errorf("%w: %v", ErrStoreDecrypt, err))
	}
	if key == nil {
		return nil, nil, NewCredentialErrorWithCause(path, "PKCS#12 store has no private key", ErrNoPrivateKey)
	}
	if leaf == nil {
		return nil, nil, NewCredentialErrorWithCause(path, "PKCS#12 store has no certificate", ErrNoCertificate)
	}

	chain := append([]*x509.Certificate{leaf}, cas...)
	return key, chain, nil
}

// loadTrustEntries extracts the trusted certificates from a container store.
// When alias is set, only that entry is considered; otherwise every trusted
// certificate entry is collected. An empty result is not an error here: the
// caller knows whether the listener's policy requires trust material.
func loadTrustEntries(path, storeType, password, alias string) ([]*x509.Certificate, error) {
	kind, err := normalizeStoreType(storeType)
	if err != nil {
		return nil, NewCredentialErrorWithCause(path, "cannot open truststore", err)
	}

	if kind == storeTypePKCS12 {
		data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator configuration
		if err != nil {
			return nil, NewCredentialErrorWithCause(path, "cannot read truststore", err)
		}
		certs, err := pkcs12.DecodeTrustStore(data, password)
		if err != nil {
			return nil, NewCredentialErrorWithCause(path,
				"cannot decode PKCS#12 truststore", fmt.Errorf("%w: %v", ErrStoreDecrypt, err))
		}
		return certs, nil
	}

	ks, err := openJKS(path, password)
	if err != nil {
		return nil, err
	}

	aliases := ks.Aliases()
	if alias != "" {
		aliases = []string{alias}
	}

	var certs []*x509.Certificate
	for _, candidate := range aliases {
		if !ks.IsTrustedCertificateEntry(candidate) {
			continue
		}
		entry, err := ks.GetTrustedCertificateEntry(candidate)
		if err != nil {
			return nil, NewCredentialErrorWithCause(path, "cannot read trusted certificate entry", err)
		}
		cert, err := x509.ParseCertificate(entry.Certificate.Content)
		if err != nil {
			return nil, NewCredentialErrorWithCause(path, "cannot parse trusted certificate", err)
		}
		certs = append(certs, cert)
	}

	return certs, nil
}

func openJKS(path, password string) (keystore.KeyStore, error) {
	f, err := os.Open(path) // #nosec G304 -- path comes from operator configuration
	if err != nil {
		return keystore.KeyStore{}, NewCredentialErrorWithCause(path, "cannot read store", err)
	}
	defer f.Close()

	ks := keystore.New()
	if err := ks.Load(f, []byte(password)); err != nil {
		return keystore.KeyStore{}, NewCredentialErrorWithCause(path,
			"cannot open store", fmt.Errorf("%w: %v", ErrStoreDecrypt, err))
	}
	return ks, nil
}
