package ssl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birbalkumarkumar/search-guard-ssl/internal/observability"
)

func TestPlatformBackend(t *testing.T) {
	backend := platformBackend{}

	assert.Equal(t, BackendPlatform, backend.Kind())

	suites, err := backend.SupportedCipherSuites()
	require.NoError(t, err)
	assert.NotEmpty(t, suites)
	assert.Contains(t, suites, "TLS_AES_256_GCM_SHA384")
	assert.Contains(t, suites, "TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256")
}

func TestNativeBackend_OnlyAEADSuites(t *testing.T) {
	backend := nativeBackend{probe: NativeProbe{Available: true}}

	assert.Equal(t, BackendNative, backend.Kind())

	suites, err := backend.SupportedCipherSuites()
	require.NoError(t, err)
	require.NotEmpty(t, suites)

	for _, name := range suites {
		suite, ok := LookupCipherSuite(name)
		require.True(t, ok, "suite %s missing from registry", name)
		assert.True(t, suite.AEAD, "suite %s is not an AEAD suite", name)
	}
}

func TestNativeBackend_Unavailable(t *testing.T) {
	backend := nativeBackend{probe: NativeProbe{Available: false}}

	_, err := backend.SupportedCipherSuites()
	assert.ErrorIs(t, err, ErrNativeUnavailable)
}

func TestProbeNative_CachedAcrossCalls(t *testing.T) {
	resetNativeProbeForTest()
	t.Cleanup(resetNativeProbeForTest)

	first := ProbeNative(observability.NopLogger())
	second := ProbeNative(observability.NopLogger())

	assert.Equal(t, first.Available, second.Available)
	assert.Equal(t, first.Features, second.Features)
	assert.Equal(t, first.Warnings, second.Warnings)
}

func TestSelectBackend(t *testing.T) {
	resetNativeProbeForTest()
	t.Cleanup(resetNativeProbeForTest)

	probe := ProbeNative(observability.NopLogger())

	preferred := selectBackend(true, observability.NopLogger())
	if probe.Available {
		assert.Equal(t, BackendNative, preferred.Kind())
	} else {
		assert.Equal(t, BackendPlatform, preferred.Kind())
	}

	platform := selectBackend(false, observability.NopLogger())
	assert.Equal(t, BackendPlatform, platform.Kind())
}
