package ssl

import (
	"crypto/tls"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListener_String(t *testing.T) {
	assert.Equal(t, "http", ListenerHTTP.String())
	assert.Equal(t, "transport-server", ListenerTransportServer.String())
	assert.Equal(t, "transport-client", ListenerTransportClient.String())
	assert.Equal(t, "listener(42)", Listener(42).String())
}

func TestParseClientAuthMode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected ClientAuthMode
		wantErr  bool
	}{
		{name: "none", input: "NONE", expected: ClientAuthNone},
		{name: "optional lowercase", input: "optional", expected: ClientAuthOptional},
		{name: "require mixed case", input: "Require", expected: ClientAuthRequire},
		{name: "surrounding whitespace", input: "  REQUIRE ", expected: ClientAuthRequire},
		{name: "unknown", input: "MAYBE", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, err := ParseClientAuthMode(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mode)
		})
	}
}

func TestClientAuthMode_ToTLS(t *testing.T) {
	assert.Equal(t, tls.NoClientCert, ClientAuthNone.toTLS())
	assert.Equal(t, tls.VerifyClientCertIfGiven, ClientAuthOptional.toTLS())
	assert.Equal(t, tls.RequireAndVerifyClientCert, ClientAuthRequire.toTLS())
}
