package ssl

import (
	"crypto/tls"
	"fmt"
)

// protocolVersions maps configured protocol names to crypto/tls versions.
var protocolVersions = map[string]uint16{
	"TLSv1":   tls.VersionTLS10,
	"TLSv1.0": tls.VersionTLS10,
	"TLSv1.1": tls.VersionTLS11,
	"TLSv1.2": tls.VersionTLS12,
	"TLSv1.3": tls.VersionTLS13,
}

// protocolName returns the canonical name of a crypto/tls version.
func protocolName(version uint16) string {
	switch version {
	case tls.VersionTLS10:
		return "TLSv1"
	case tls.VersionTLS11:
		return "TLSv1.1"
	case tls.VersionTLS12:
		return "TLSv1.2"
	case tls.VersionTLS13:
		return "TLSv1.3"
	default:
		return fmt.Sprintf("0x%04X", version)
	}
}

// ProtocolRange is the enabled-protocol policy of a listener. The Go TLS
// stack expresses enabled protocols as a contiguous [min, max] version
// range; a declared list with gaps collapses to its span, and the versions
// pulled in by collapsing are reported so construction can log them.
type ProtocolRange struct {
	names     []string
	min, max  uint16
	collapsed []string
}

// parseProtocols parses a declared protocol list for the setting named by
// key. Unknown protocol names fail with a ConfigurationError; an empty list
// parses to an empty range, rejected later by construction-time validation.
func parseProtocols(key string, names []string) (ProtocolRange, error) {
	if len(names) == 0 {
		return ProtocolRange{}, nil
	}

	enabled := make(map[uint16]bool, len(names))
	r := ProtocolRange{names: append([]string(nil), names...)}
	for _, name := range names {
		version, ok := protocolVersions[name]
		if !ok {
			return ProtocolRange{}, NewConfigurationError(key, fmt.Sprintf("unknown TLS protocol: %q", name))
		}
		enabled[version] = true
		if r.min == 0 || version < r.min {
			r.min = version
		}
		if version > r.max {
			r.max = version
		}
	}

	for version := r.min; version <= r.max; version++ {
		if !enabled[version] {
			r.collapsed = append(r.collapsed, protocolName(version))
		}
	}

	return r, nil
}

// Names returns the declared protocol names.
func (r ProtocolRange) Names() []string {
	return append([]string(nil), r.names...)
}

// Empty reports whether no protocol is enabled.
func (r ProtocolRange) Empty() bool {
	return len(r.names) == 0
}

// enablesPreTLS13 reports whether the range admits any protocol version
// below TLS 1.3. Those versions negotiate from the configured cipher-suite
// IDs; TLS 1.3 ignores them.
func (r ProtocolRange) enablesPreTLS13() bool {
	return !r.Empty() && r.min < tls.VersionTLS13
}

// Collapsed returns the protocol versions enabled only because the declared
// list had gaps within its span.
func (r ProtocolRange) Collapsed() []string {
	return append([]string(nil), r.collapsed...)
}

// apply force-sets the protocol range on a per-connection TLS config.
func (r ProtocolRange) apply(conf *tls.Config) {
	conf.MinVersion = r.min
	conf.MaxVersion = r.max
}
