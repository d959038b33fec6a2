package ssl

import (
	"crypto/tls"
	"runtime"
	"sync"

	"github.com/klauspost/cpuid/v2"

	"github.com/birbalkumarkumar/search-guard-ssl/internal/observability"
)

// BackendKind identifies a cryptographic backend.
type BackendKind string

// Backend kind constants.
const (
	// BackendNative is the hardware-accelerated backend, usable when the CPU
	// provides AES and carry-less multiplication instructions.
	BackendNative BackendKind = "native"

	// BackendPlatform is the platform-default backend, the Go TLS stack.
	BackendPlatform BackendKind = "platform"
)

// Backend is the capability surface a cryptographic backend exposes to the
// cipher negotiator and context builder.
type Backend interface {
	// Kind identifies the backend.
	Kind() BackendKind

	// SupportedCipherSuites enumerates the suites the backend can actually
	// run, in the backend's own preference order.
	SupportedCipherSuites() ([]string, error)
}

// platformBackend is the Go TLS stack.
type platformBackend struct{}

func (platformBackend) Kind() BackendKind {
	return BackendPlatform
}

// SupportedCipherSuites enumerates every suite the Go TLS stack implements,
// secure suites first, in the stack's reported order.
func (platformBackend) SupportedCipherSuites() ([]string, error) {
	var names []string
	for _, suite := range tls.CipherSuites() {
		names = append(names, suite.Name)
	}
	for _, suite := range tls.InsecureCipherSuites() {
		names = append(names, suite.Name)
	}
	return names, nil
}

// nativeBackend restricts negotiation to the AEAD suites the CPU
// accelerates.
type nativeBackend struct {
	probe NativeProbe
}

func (nativeBackend) Kind() BackendKind {
	return BackendNative
}

func (b nativeBackend) SupportedCipherSuites() ([]string, error) {
	if !b.probe.Available {
		return nil, ErrNativeUnavailable
	}
	var names []string
	for _, suite := range knownCipherSuites {
		if suite.AEAD {
			names = append(names, suite.Name)
		}
	}
	return names, nil
}

// ErrNativeUnavailable indicates the native backend was asked for cipher
// suites without hardware acceleration being present.
var ErrNativeUnavailable = errNativeUnavailable{}

type errNativeUnavailable struct{}

func (errNativeUnavailable) Error() string {
	return "native crypto acceleration not available"
}

// NativeProbe is the result of the process-wide acceleration probe.
type NativeProbe struct {
	// Available reports whether AEAD hardware acceleration is present.
	Available bool

	// Brand is the CPU brand string, best effort.
	Brand string

	// Features lists the detected acceleration features.
	Features []string

	// Warnings lists non-fatal deficiencies of the detected hardware.
	Warnings []string
}

var (
	nativeProbeOnce   sync.Once
	nativeProbeResult NativeProbe
)

// ProbeNative detects hardware crypto acceleration. The detection runs at
// most once per process regardless of how many listeners or provisioners ask
// for the native backend; the cached result is returned afterwards. Findings
// are logged on the first call only.
func ProbeNative(logger observability.Logger) NativeProbe {
	nativeProbeOnce.Do(func() {
		nativeProbeResult = detectNativeSupport()
		logNativeProbe(logger, nativeProbeResult)
	})
	return nativeProbeResult
}

func detectNativeSupport() NativeProbe {
	probe := NativeProbe{Brand: cpuid.CPU.BrandName}

	switch runtime.GOARCH {
	case "amd64":
		if cpuid.CPU.Supports(cpuid.AESNI) {
			probe.Features = append(probe.Features, "aesni")
		}
		if cpuid.CPU.Supports(cpuid.CLMUL) {
			probe.Features = append(probe.Features, "clmul")
		}
		probe.Available = cpuid.CPU.Supports(cpuid.AESNI, cpuid.CLMUL)
		if cpuid.CPU.Supports(cpuid.AESNI) && !cpuid.CPU.Supports(cpuid.CLMUL) {
			probe.Warnings = append(probe.Warnings,
				"CPU supports AES but not carry-less multiplication, AES-GCM is not fully accelerated")
		}
		if level := cpuid.CPU.X64Level(); level > 0 && level < 2 {
			probe.Warnings = append(probe.Warnings,
				"outdated CPU microarchitecture detected, TLS throughput will be reduced")
		}
	case "arm64":
		if cpuid.CPU.Supports(cpuid.AESARM) {
			probe.Features = append(probe.Features, "aes")
		}
		if cpuid.CPU.Supports(cpuid.PMULL) {
			probe.Features = append(probe.Features, "pmull")
		}
		probe.Available = cpuid.CPU.Supports(cpuid.AESARM, cpuid.PMULL)
	}

	return probe
}

func logNativeProbe(logger observability.Logger, probe NativeProbe) {
	if probe.Available {
		logger.Info("native crypto acceleration available",
			observability.String("cpu", probe.Brand),
			observability.Strings("features", probe.Features),
		)
	} else {
		logger.Info("native crypto acceleration not available (this is not an error, falling back to the platform TLS stack)",
			observability.String("cpu", probe.Brand),
		)
	}
	for _, warning := range probe.Warnings {
		logger.Warn(warning, observability.String("cpu", probe.Brand))
	}
}

// resetNativeProbeForTest clears the cached probe. Test hook only.
func resetNativeProbeForTest() {
	nativeProbeOnce = sync.Once{}
	nativeProbeResult = NativeProbe{}
}
