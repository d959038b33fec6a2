package ssl

import (
	"crypto/tls"

	"github.com/birbalkumarkumar/search-guard-ssl/internal/observability"
)

// CipherSuite describes a TLS cipher suite known to the subsystem.
type CipherSuite struct {
	// ID is the IANA cipher suite ID.
	ID uint16

	// Name is the IANA cipher suite name.
	Name string

	// AEAD indicates an AEAD suite eligible for the native-accelerated
	// backend.
	AEAD bool

	// TLS13 indicates a TLS 1.3 suite. These cannot be configured on a Go
	// TLS context; they are tracked for negotiation reporting only.
	TLS13 bool
}

// knownCipherSuites lists every suite the subsystem can negotiate, in
// preference order.
var knownCipherSuites = []CipherSuite{
	{ID: tls.TLS_AES_256_GCM_SHA384, Name: "TLS_AES_256_GCM_SHA384", AEAD: true, TLS13: true},
	{ID: tls.TLS_AES_128_GCM_SHA256, Name: "TLS_AES_128_GCM_SHA256", AEAD: true, TLS13: true},
	{ID: tls.TLS_CHACHA20_POLY1305_SHA256, Name: "TLS_CHACHA20_POLY1305_SHA256", AEAD: true, TLS13: true},

	{ID: tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384, Name: "TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384", AEAD: true},
	{ID: tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384, Name: "TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384", AEAD: true},
	{ID: tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256, Name: "TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256", AEAD: true},
	{ID: tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256, Name: "TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256", AEAD: true},
	{ID: tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256, Name: "TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256", AEAD: true},
	{ID: tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256, Name: "TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256", AEAD: true},

	{ID: tls.TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA256, Name: "TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA256"},
	{ID: tls.TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA256, Name: "TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA256"},
	{ID: tls.TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA, Name: "TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA"},
	{ID: tls.TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA, Name: "TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA"},
	{ID: tls.TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA, Name: "TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA"},
	{ID: tls.TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA, Name: "TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA"},
	{ID: tls.TLS_RSA_WITH_AES_128_GCM_SHA256, Name: "TLS_RSA_WITH_AES_128_GCM_SHA256"},
	{ID: tls.TLS_RSA_WITH_AES_256_GCM_SHA384, Name: "TLS_RSA_WITH_AES_256_GCM_SHA384"},
	{ID: tls.TLS_RSA_WITH_AES_128_CBC_SHA256, Name: "TLS_RSA_WITH_AES_128_CBC_SHA256"},
	{ID: tls.TLS_RSA_WITH_AES_128_CBC_SHA, Name: "TLS_RSA_WITH_AES_128_CBC_SHA"},
	{ID: tls.TLS_RSA_WITH_AES_256_CBC_SHA, Name: "TLS_RSA_WITH_AES_256_CBC_SHA"},
}

var cipherSuitesByName = func() map[string]CipherSuite {
	m := make(map[string]CipherSuite, len(knownCipherSuites))
	for _, suite := range knownCipherSuites {
		m[suite.Name] = suite
	}
	return m
}()

// LookupCipherSuite returns the suite metadata for an IANA name.
func LookupCipherSuite(name string) (CipherSuite, bool) {
	suite, ok := cipherSuitesByName[name]
	return suite, ok
}

// CipherSuiteSet is an immutable ordered set of negotiated cipher suites.
type CipherSuiteSet struct {
	names []string
	// ids carry the TLS 1.2 suite IDs; TLS 1.3 suites are fixed by the Go
	// TLS stack and excluded here.
	ids []uint16
}

// newCipherSuiteSet builds a set from suite names, dropping names unknown to
// the registry from the ID list but keeping them in the name list.
func newCipherSuiteSet(names []string) CipherSuiteSet {
	set := CipherSuiteSet{names: append([]string(nil), names...)}
	for _, name := range names {
		suite, ok := cipherSuitesByName[name]
		if !ok || suite.TLS13 {
			continue
		}
		set.ids = append(set.ids, suite.ID)
	}
	return set
}

// Names returns the negotiated suite names in negotiation order.
func (s CipherSuiteSet) Names() []string {
	return append([]string(nil), s.names...)
}

// Empty reports whether no suite was negotiated.
func (s CipherSuiteSet) Empty() bool {
	return len(s.names) == 0
}

// Len returns the number of negotiated suites.
func (s CipherSuiteSet) Len() int {
	return len(s.names)
}

// configurableIDs returns the TLS 1.2 suite IDs for a tls.Config.
func (s CipherSuiteSet) configurableIDs() []uint16 {
	return append([]uint16(nil), s.ids...)
}

// configurable reports whether any negotiated suite can be set on a
// tls.Config. TLS 1.3 suites are fixed by the Go TLS stack and do not
// count.
func (s CipherSuiteSet) configurable() bool {
	return len(s.ids) > 0
}

// negotiateCipherSuites intersects the declared secure-cipher list with what
// the backend actually supports.
//
// For the native backend the declared order is preserved and unsupported
// suites are dropped. For the platform backend the intersection is ordered
// as the backend reports its supported suites, so callers must not assume
// order stability across backends. When the backend fails to enumerate its
// suites, the declared list itself is used; the empty-set validation at
// construction time remains the gate.
func negotiateCipherSuites(declared []string, backend Backend, logger observability.Logger) CipherSuiteSet {
	supported, err := backend.SupportedCipherSuites()
	if err != nil {
		logger.Error("unable to determine backend cipher suites, falling back to declared list",
			observability.String("backend", string(backend.Kind())),
			observability.Error(err),
		)
		return newCipherSuiteSet(declared)
	}

	var names []string
	if backend.Kind() == BackendNative {
		supportedSet := make(map[string]struct{}, len(supported))
		for _, name := range supported {
			supportedSet[name] = struct{}{}
		}
		for _, name := range declared {
			if _, ok := supportedSet[name]; ok {
				names = append(names, name)
			}
		}
	} else {
		declaredSet := make(map[string]struct{}, len(declared))
		for _, name := range declared {
			declaredSet[name] = struct{}{}
		}
		for _, name := range supported {
			if _, ok := declaredSet[name]; ok {
				names = append(names, name)
			}
		}
	}

	return newCipherSuiteSet(names)
}
