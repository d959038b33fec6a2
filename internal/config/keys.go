package config

// Configuration keys for the TLS provisioning subsystem. All keys live in a
// flat key-value namespace; per-listener keys exist for the HTTP layer and
// the node-to-node transport layer independently.
const (
	// Transport layer.

	KeyTransportEnabled        = "ssl.transport.enabled"
	KeyTransportPreferNative   = "ssl.transport.prefer_native"
	KeyTransportKeystorePath   = "ssl.transport.keystore_filepath"
	KeyTransportKeystoreType   = "ssl.transport.keystore_type"
	KeyTransportKeystorePass   = "ssl.transport.keystore_password"
	KeyTransportKeystoreAlias  = "ssl.transport.keystore_alias"
	KeyTransportTruststorePath = "ssl.transport.truststore_filepath"
	KeyTransportTruststoreType = "ssl.transport.truststore_type"
	KeyTransportTruststorePass = "ssl.transport.truststore_password"
	KeyTransportTrustAlias     = "ssl.transport.truststore_alias"
	KeyTransportPEMKeyPath     = "ssl.transport.pemkey_filepath"
	KeyTransportPEMKeyPass     = "ssl.transport.pemkey_password"
	KeyTransportPEMCertPath    = "ssl.transport.pemcert_filepath"
	KeyTransportPEMCAPath      = "ssl.transport.pemtrustedcas_filepath"
	KeyTransportCiphers        = "ssl.transport.enabled_ciphers"
	KeyTransportProtocols      = "ssl.transport.enabled_protocols"

	// HTTP layer.

	KeyHTTPEnabled        = "ssl.http.enabled"
	KeyHTTPPreferNative   = "ssl.http.prefer_native"
	KeyHTTPClientAuthMode = "ssl.http.clientauth_mode"
	KeyHTTPKeystorePath   = "ssl.http.keystore_filepath"
	KeyHTTPKeystoreType   = "ssl.http.keystore_type"
	KeyHTTPKeystorePass   = "ssl.http.keystore_password"
	KeyHTTPKeystoreAlias  = "ssl.http.keystore_alias"
	KeyHTTPTruststorePath = "ssl.http.truststore_filepath"
	KeyHTTPTruststoreType = "ssl.http.truststore_type"
	KeyHTTPTruststorePass = "ssl.http.truststore_password"
	KeyHTTPTrustAlias     = "ssl.http.truststore_alias"
	KeyHTTPPEMKeyPath     = "ssl.http.pemkey_filepath"
	KeyHTTPPEMKeyPass     = "ssl.http.pemkey_password"
	KeyHTTPPEMCertPath    = "ssl.http.pemcert_filepath"
	KeyHTTPPEMCAPath      = "ssl.http.pemtrustedcas_filepath"
	KeyHTTPCiphers        = "ssl.http.enabled_ciphers"
	KeyHTTPProtocols      = "ssl.http.enabled_protocols"
)

// Defaults.
const (
	DefaultTransportEnabled = true
	DefaultHTTPEnabled      = false
	DefaultPreferNative     = true
	DefaultStoreType        = "JKS"
	DefaultStorePassword    = "changeit"
	DefaultClientAuthMode   = "OPTIONAL"
)

// DefaultProtocols is the declared secure-protocol list applied when a
// listener has no explicit protocol configuration.
func DefaultProtocols() []string {
	return []string{"TLSv1.3", "TLSv1.2"}
}

// DefaultCiphers is the declared secure-cipher list applied when a listener
// has no explicit cipher configuration.
func DefaultCiphers() []string {
	return []string{
		"TLS_AES_256_GCM_SHA384",
		"TLS_AES_128_GCM_SHA256",
		"TLS_CHACHA20_POLY1305_SHA256",
		"TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384",
		"TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384",
		"TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256",
		"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256",
		"TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256",
		"TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256",
	}
}
