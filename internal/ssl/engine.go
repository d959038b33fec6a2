package ssl

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"strconv"
)

// Engine is a per-connection TLS engine derived from an immutable Context.
// Every engine owns a private clone of the context's TLS configuration with
// the enabled-protocol range force-set at creation time; engines share no
// mutable state with each other or with the context they came from. An
// engine lives for one connection and is discarded when it closes.
type Engine struct {
	listener  Listener
	conf      *tls.Config
	protocols []string
	peer      string
	verified  bool
	metrics   MetricsRecorder
}

// newServerEngine derives a server-side engine.
func newServerEngine(c *Context, metrics MetricsRecorder) *Engine {
	return &Engine{
		listener:  c.listener,
		conf:      c.newEngineConfig(),
		protocols: c.protocols.Names(),
		metrics:   metrics,
	}
}

// newClientEngine derives a client-side engine. With a peer host the engine
// performs endpoint identity verification against that host during the
// handshake. Without one the peer chain is still verified against the trust
// anchors, but no hostname check takes place; this covers outbound
// connections whose destination is not yet known by name.
func newClientEngine(c *Context, peerHost string, peerPort int, metrics MetricsRecorder) *Engine {
	e := &Engine{
		listener:  c.listener,
		conf:      c.newEngineConfig(),
		protocols: c.protocols.Names(),
		metrics:   metrics,
	}

	if peerHost != "" {
		e.conf.ServerName = peerHost
		e.peer = net.JoinHostPort(peerHost, strconv.Itoa(peerPort))
		e.verified = true
		return e
	}

	e.conf.InsecureSkipVerify = true // #nosec G402 -- chain verification still runs below
	e.conf.VerifyPeerCertificate = chainOnlyVerifier(c.trustPool)
	return e
}

// Listener returns the listener role the engine serves.
func (e *Engine) Listener() Listener {
	return e.listener
}

// Config returns the engine's TLS configuration. The configuration is owned
// by this engine alone; callers may adjust connection-local fields without
// affecting any other engine.
func (e *Engine) Config() *tls.Config {
	return e.conf
}

// Protocols returns the enabled protocol names.
func (e *Engine) Protocols() []string {
	return append([]string(nil), e.protocols...)
}

// Peer returns the host:port the engine was created for, empty for server
// engines and for client engines without a known destination.
func (e *Engine) Peer() string {
	return e.peer
}

// VerifiesEndpointIdentity reports whether the engine checks the peer
// certificate against the intended destination hostname.
func (e *Engine) VerifiesEndpointIdentity() bool {
	return e.verified
}

// Server wraps an accepted connection for the server side of the handshake.
func (e *Engine) Server(conn net.Conn) *tls.Conn {
	return tls.Server(conn, e.conf)
}

// Client wraps an established connection for the client side of the
// handshake.
func (e *Engine) Client(conn net.Conn) *tls.Conn {
	return tls.Client(conn, e.conf)
}

// Handshake wraps conn according to the engine's role and runs the TLS
// handshake. Failures come back as a HandshakeError scoped to this single
// connection; they never affect the shared context or other connections.
func (e *Engine) Handshake(ctx context.Context, conn net.Conn) (*tls.Conn, error) {
	var tlsConn *tls.Conn
	if e.listener == ListenerTransportClient {
		tlsConn = e.Client(conn)
	} else {
		tlsConn = e.Server(conn)
	}

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		if e.metrics != nil {
			e.metrics.RecordHandshakeError(e.listener)
		}
		return nil, &HandshakeError{Listener: e.listener, Peer: e.peer, Cause: err}
	}
	return tlsConn, nil
}

// chainOnlyVerifier verifies the peer chain against the trust anchors
// without binding it to a hostname.
func chainOnlyVerifier(pool *x509.CertPool) func([][]byte, [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		if len(rawCerts) == 0 {
			return x509.CertificateInvalidError{Reason: x509.NotAuthorizedToSign}
		}

		certs := make([]*x509.Certificate, 0, len(rawCerts))
		for _, raw := range rawCerts {
			cert, err := x509.ParseCertificate(raw)
			if err != nil {
				return err
			}
			certs = append(certs, cert)
		}

		opts := x509.VerifyOptions{
			Roots:         pool,
			Intermediates: x509.NewCertPool(),
			KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		}
		for _, cert := range certs[1:] {
			opts.Intermediates.AddCert(cert)
		}

		_, err := certs[0].Verify(opts)
		return err
	}
}
