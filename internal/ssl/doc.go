// Package ssl provisions TLS for a multi-listener node: it loads private
// keys, certificate chains, and trust anchors from container stores (JKS,
// PKCS#12) or PEM files, negotiates usable cipher suites and protocol
// versions against the available cryptographic backends, and builds one
// immutable TLS context per listener role (HTTP server, transport server,
// transport client).
//
// Construction runs once at startup and fails fast on misconfiguration.
// After construction the Provisioner hands out per-connection engines from
// the immutable contexts; engine creation is safe for arbitrary concurrency
// and mutates no shared state.
//
// Two backends are supported. The native backend is selected when the CPU
// provides hardware AES and carry-less multiplication, restricting the
// negotiated suites to the accelerated AEAD set. The platform backend is the
// Go TLS stack with its full supported-suite enumeration. Backend probing
// happens at most once per process.
package ssl
