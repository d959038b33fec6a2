package ssl

import (
	"crypto"
	"crypto/tls"
	"crypto/x509"

	"github.com/birbalkumarkumar/search-guard-ssl/internal/observability"
)

// CredentialMaterial holds the cryptographic identity of one listener: the
// private key, its certificate chain (leaf first), and optional trust
// anchors. It is consumed into a context at construction time and not
// retained afterwards.
type CredentialMaterial struct {
	PrivateKey   crypto.PrivateKey
	Chain        []*x509.Certificate
	TrustedRoots []*x509.Certificate
}

// tlsCertificate assembles the material into a crypto/tls certificate.
func (m *CredentialMaterial) tlsCertificate() tls.Certificate {
	cert := tls.Certificate{PrivateKey: m.PrivateKey}
	for _, c := range m.Chain {
		cert.Certificate = append(cert.Certificate, c.Raw)
	}
	if len(m.Chain) > 0 {
		cert.Leaf = m.Chain[0]
	}
	return cert
}

// trustPool builds a certificate pool from the trust anchors, nil when none
// are present.
func (m *CredentialMaterial) trustPool() *x509.CertPool {
	if len(m.TrustedRoots) == 0 {
		return nil
	}
	pool := x509.NewCertPool()
	for _, cert := range m.TrustedRoots {
		pool.AddCert(cert)
	}
	return pool
}

// CredentialLoader loads listener credentials from a container store or a
// PEM triple, resolving configured paths through a PathResolver.
type CredentialLoader struct {
	resolver *PathResolver
	logger   observability.Logger
}

// NewCredentialLoader creates a loader.
func NewCredentialLoader(resolver *PathResolver, logger observability.Logger) *CredentialLoader {
	return &CredentialLoader{resolver: resolver, logger: logger}
}

// Load extracts the credential material for one listener. A configured
// container store takes precedence over PEM configuration; with neither
// configured, loading fails with a ConfigurationError. trustRequired makes
// missing or empty trust material fatal.
func (l *CredentialLoader) Load(lc listenerConfig, trustRequired bool) (*CredentialMaterial, error) {
	switch {
	case lc.keystorePath != "":
		return l.loadFromStores(lc, trustRequired)
	case lc.pemKeyPath != "":
		return l.loadFromPEM(lc, trustRequired)
	default:
		return nil, NewConfigurationError(lc.keys.keystorePath,
			"keystore or PEM key path must be set if "+lc.listener.String()+" ssl is requested")
	}
}

func (l *CredentialLoader) loadFromStores(lc listenerConfig, trustRequired bool) (*CredentialMaterial, error) {
	if trustRequired && lc.truststorePath == "" {
		return nil, NewConfigurationError(lc.keys.truststorePath,
			"must be set if "+lc.listener.String()+" ssl is requested")
	}

	keystorePath, err := l.resolver.Resolve(lc.keys.keystorePath, lc.keystorePath, true)
	if err != nil {
		return nil, err
	}

	key, chain, err := loadKeyEntry(keystorePath, lc.keystoreType, lc.keystorePassword, lc.keystoreAlias)
	if err != nil {
		return nil, err
	}

	material := &CredentialMaterial{PrivateKey: key, Chain: chain}

	if lc.truststorePath == "" {
		l.logCredentials(lc.listener, material)
		return material, nil
	}

	truststorePath, err := l.resolver.Resolve(lc.keys.truststorePath, lc.truststorePath, true)
	if err != nil {
		return nil, err
	}

	trusted, err := loadTrustEntries(truststorePath, lc.truststoreType, lc.truststorePassword, lc.truststoreAlias)
	if err != nil {
		return nil, err
	}
	if len(trusted) == 0 && trustRequired {
		return nil, NewCredentialErrorWithCause(truststorePath,
			"truststore contains no trusted certificates", ErrNoTrustedCertificates)
	}

	material.TrustedRoots = trusted
	l.logCredentials(lc.listener, material)
	return material, nil
}

func (l *CredentialLoader) loadFromPEM(lc listenerConfig, trustRequired bool) (*CredentialMaterial, error) {
	keyPath, err := l.resolver.Resolve(lc.keys.pemKeyPath, lc.pemKeyPath, true)
	if err != nil {
		return nil, err
	}
	certPath, err := l.resolver.Resolve(lc.keys.pemCertPath, lc.pemCertPath, true)
	if err != nil {
		return nil, err
	}
	caPath, err := l.resolver.Resolve(lc.keys.pemCAPath, lc.pemCAPath, trustRequired)
	if err != nil {
		return nil, err
	}

	key, err := loadPEMPrivateKey(keyPath, lc.pemKeyPassword)
	if err != nil {
		return nil, err
	}
	chain, err := loadPEMCertificates(certPath)
	if err != nil {
		return nil, err
	}

	material := &CredentialMaterial{PrivateKey: key, Chain: chain}

	if caPath != "" {
		trusted, err := loadPEMCertificates(caPath)
		if err != nil {
			return nil, err
		}
		material.TrustedRoots = trusted
	}

	l.logCredentials(lc.listener, material)
	return material, nil
}

func (l *CredentialLoader) logCredentials(listener Listener, material *CredentialMaterial) {
	if len(material.Chain) == 0 {
		return
	}
	leaf := material.Chain[0]
	l.logger.Debug("credentials loaded",
		observability.String("listener", listener.String()),
		observability.String("subject", leaf.Subject.CommonName),
		observability.Time("notAfter", leaf.NotAfter),
		observability.Int("chainLength", len(material.Chain)),
		observability.Int("trustedRoots", len(material.TrustedRoots)),
	)
}
