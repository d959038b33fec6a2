package ssl

import (
	"crypto/tls"
	"fmt"
	"strings"
)

// Listener identifies one of the three TLS roles the subsystem serves.
type Listener int

// Listener constants.
const (
	// ListenerHTTP is the HTTP-facing server listener.
	ListenerHTTP Listener = iota

	// ListenerTransportServer is the server side of the node-to-node
	// transport.
	ListenerTransportServer

	// ListenerTransportClient is the client side of the node-to-node
	// transport.
	ListenerTransportClient
)

// String returns the listener name.
func (l Listener) String() string {
	switch l {
	case ListenerHTTP:
		return "http"
	case ListenerTransportServer:
		return "transport-server"
	case ListenerTransportClient:
		return "transport-client"
	default:
		return fmt.Sprintf("listener(%d)", int(l))
	}
}

// ClientAuthMode is the client-certificate policy of a TLS server listener.
type ClientAuthMode string

// Client-auth mode constants.
const (
	// ClientAuthNone ignores client certificates.
	ClientAuthNone ClientAuthMode = "NONE"

	// ClientAuthOptional requests a client certificate and verifies it when
	// presented.
	ClientAuthOptional ClientAuthMode = "OPTIONAL"

	// ClientAuthRequire requires and verifies a client certificate.
	ClientAuthRequire ClientAuthMode = "REQUIRE"
)

// ParseClientAuthMode parses a configured client-auth mode, case-insensitive.
func ParseClientAuthMode(raw string) (ClientAuthMode, error) {
	mode := ClientAuthMode(strings.ToUpper(strings.TrimSpace(raw)))
	switch mode {
	case ClientAuthNone, ClientAuthOptional, ClientAuthRequire:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid client auth mode: %q", raw)
	}
}

// String returns the mode name.
func (m ClientAuthMode) String() string {
	return string(m)
}

// toTLS maps the mode to the crypto/tls client-auth policy.
func (m ClientAuthMode) toTLS() tls.ClientAuthType {
	switch m {
	case ClientAuthRequire:
		return tls.RequireAndVerifyClientCert
	case ClientAuthOptional:
		return tls.VerifyClientCertIfGiven
	default:
		return tls.NoClientCert
	}
}
