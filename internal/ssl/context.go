package ssl

import (
	"bytes"
	"crypto"
	"crypto/tls"
	"crypto/x509"
)

// Context is the immutable TLS context of one listener role. It is built
// exactly once during construction, lives for the process lifetime, and is
// safe to share across any number of connection goroutines. Per-connection
// engines are derived from it without mutating it.
//
// Fixed policy baked into every context: no ALPN, no session tickets, no
// session caching. Every handshake is full.
type Context struct {
	listener   Listener
	backend    BackendKind
	clientAuth ClientAuthMode
	ciphers    CipherSuiteSet
	protocols  ProtocolRange

	template  *tls.Config
	trustPool *x509.CertPool
}

// Listener returns the listener role this context serves.
func (c *Context) Listener() Listener {
	return c.listener
}

// Backend returns the backend the context was built for.
func (c *Context) Backend() BackendKind {
	return c.backend
}

// ClientAuth returns the client-auth policy of a server context. Client
// contexts report ClientAuthNone.
func (c *Context) ClientAuth() ClientAuthMode {
	return c.clientAuth
}

// CipherSuites returns the negotiated cipher-suite set.
func (c *Context) CipherSuites() CipherSuiteSet {
	return c.ciphers
}

// Protocols returns the enabled-protocol policy.
func (c *Context) Protocols() ProtocolRange {
	return c.protocols
}

// buildServerContext combines loaded credentials, a negotiated cipher set,
// and a client-auth policy into an immutable server context. The credential
// material is consumed; the caller must not retain it.
func buildServerContext(
	listener Listener,
	material *CredentialMaterial,
	ciphers CipherSuiteSet,
	protocols ProtocolRange,
	backend BackendKind,
	authMode ClientAuthMode,
) (*Context, error) {
	if err := checkKeyPair(material); err != nil {
		return nil, newInitializationError(listener, "cannot build server context", err)
	}

	pool := material.trustPool()
	template := &tls.Config{
		Certificates:           []tls.Certificate{material.tlsCertificate()},
		CipherSuites:           ciphers.configurableIDs(),
		ClientAuth:             authMode.toTLS(),
		ClientCAs:              pool,
		SessionTicketsDisabled: true,
		MinVersion:             tls.VersionTLS12,
	}

	return &Context{
		listener:   listener,
		backend:    backend,
		clientAuth: authMode,
		ciphers:    ciphers,
		protocols:  protocols,
		template:   template,
		trustPool:  pool,
	}, nil
}

// buildClientContext is the client-side counterpart of buildServerContext.
// The built context always presents the node identity (the transport is
// mutually authenticated) and trusts only the loaded anchors.
func buildClientContext(
	listener Listener,
	material *CredentialMaterial,
	ciphers CipherSuiteSet,
	protocols ProtocolRange,
	backend BackendKind,
) (*Context, error) {
	if err := checkKeyPair(material); err != nil {
		return nil, newInitializationError(listener, "cannot build client context", err)
	}

	pool := material.trustPool()
	template := &tls.Config{
		Certificates:           []tls.Certificate{material.tlsCertificate()},
		CipherSuites:           ciphers.configurableIDs(),
		RootCAs:                pool,
		SessionTicketsDisabled: true,
		ClientSessionCache:     nil,
		MinVersion:             tls.VersionTLS12,
	}

	return &Context{
		listener:   listener,
		backend:    backend,
		clientAuth: ClientAuthNone,
		ciphers:    ciphers,
		protocols:  protocols,
		template:   template,
		trustPool:  pool,
	}, nil
}

// newEngineConfig clones the context template for one connection and
// force-sets the enabled-protocol range.
func (c *Context) newEngineConfig() *tls.Config {
	conf := c.template.Clone()
	c.protocols.apply(conf)
	return conf
}

// checkKeyPair verifies the credential material is complete and the private
// key belongs to the leaf certificate.
func checkKeyPair(material *CredentialMaterial) error {
	if material.PrivateKey == nil {
		return ErrNoPrivateKey
	}
	if len(material.Chain) == 0 {
		return ErrNoCertificate
	}

	signer, ok := material.PrivateKey.(crypto.Signer)
	if !ok {
		return ErrNoPrivateKey
	}

	leafKey, err := x509.MarshalPKIXPublicKey(material.Chain[0].PublicKey)
	if err != nil {
		return ErrKeyCertMismatch
	}
	signerKey, err := x509.MarshalPKIXPublicKey(signer.Public())
	if err != nil {
		return ErrKeyCertMismatch
	}
	if !bytes.Equal(leafKey, signerKey) {
		return ErrKeyCertMismatch
	}

	return nil
}
