package ssl

import (
	"crypto/ecdsa"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStoreType(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{input: "", expected: storeTypeJKS},
		{input: "JKS", expected: storeTypeJKS},
		{input: "jks", expected: storeTypeJKS},
		{input: "PKCS12", expected: storeTypePKCS12},
		{input: "pkcs#12", expected: storeTypePKCS12},
		{input: "p12", expected: storeTypePKCS12},
		{input: "PFX", expected: storeTypePKCS12},
		{input: "BKS", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("input "+tt.input, func(t *testing.T) {
			kind, err := normalizeStoreType(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kind)
		})
	}
}

func TestLoadKeyEntry_JKS(t *testing.T) {
	dir := t.TempDir()
	ca := newTestCA(t)
	leaf := ca.issueLeaf(t, "node-1", "node-1")

	path := filepath.Join(dir, "keystore.jks")
	writeJKSKeystore(t, path, "node-1", ca, leaf)

	tests := []struct {
		name  string
		alias string
	}{
		{name: "explicit alias", alias: "node-1"},
		{name: "sole key entry without alias", alias: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, chain, err := loadKeyEntry(path, "JKS", testStorePassword, tt.alias)
			require.NoError(t, err)
			require.Len(t, chain, 2)
			assert.Equal(t, "node-1", chain[0].Subject.CommonName)
			assert.Equal(t, "Test Root CA", chain[1].Subject.CommonName)

			ecKey, ok := key.(*ecdsa.PrivateKey)
			require.True(t, ok)
			assert.True(t, ecKey.PublicKey.Equal(chain[0].PublicKey))
		})
	}
}

func TestLoadKeyEntry_JKSWrongPassword(t *testing.T) {
	dir := t.TempDir()
	ca := newTestCA(t)
	leaf := ca.issueLeaf(t, "node-1")

	path := filepath.Join(dir, "keystore.jks")
	writeJKSKeystore(t, path, "node-1", ca, leaf)

	_, _, err := loadKeyEntry(path, "JKS", "wrong-password", "node-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, &CredentialError{})
	assert.ErrorIs(t, err, ErrStoreDecrypt)
}

func TestLoadKeyEntry_JKSWithoutPrivateKey(t *testing.T) {
	dir := t.TempDir()
	ca := newTestCA(t)

	path := filepath.Join(dir, "truststore.jks")
	writeJKSTruststore(t, path, ca)

	_, _, err := loadKeyEntry(path, "JKS", testStorePassword, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoPrivateKey)
}

func TestLoadKeyEntry_JKSUnknownAlias(t *testing.T) {
	dir := t.TempDir()
	ca := newTestCA(t)
	leaf := ca.issueLeaf(t, "node-1")

	path := filepath.Join(dir, "keystore.jks")
	writeJKSKeystore(t, path, "node-1", ca, leaf)

	_, _, err := loadKeyEntry(path, "JKS", testStorePassword, "node-2")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoPrivateKey)
}

func TestLoadKeyEntry_PKCS12(t *testing.T) {
	dir := t.TempDir()
	ca := newTestCA(t)
	leaf := ca.issueLeaf(t, "node-1", "node-1")

	path := filepath.Join(dir, "keystore.p12")
	writePKCS12Keystore(t, path, ca, leaf)

	key, chain, err := loadKeyEntry(path, "PKCS12", testStorePassword, "")
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, "node-1", chain[0].Subject.CommonName)

	ecKey, ok := key.(*ecdsa.PrivateKey)
	require.True(t, ok)
	assert.True(t, ecKey.PublicKey.Equal(chain[0].PublicKey))
}

func TestLoadKeyEntry_PKCS12WrongPassword(t *testing.T) {
	dir := t.TempDir()
	ca := newTestCA(t)
	leaf := ca.issueLeaf(t, "node-1")

	path := filepath.Join(dir, "keystore.p12")
	writePKCS12Keystore(t, path, ca, leaf)

	_, _, err := loadKeyEntry(path, "PKCS12", "wrong-password", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreDecrypt)
}

func TestLoadKeyEntry_UnsupportedStoreType(t *testing.T) {
	_, _, err := loadKeyEntry("/tmp/keystore.bks", "BKS", testStorePassword, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, &CredentialError{})
}

func TestLoadTrustEntries_JKS(t *testing.T) {
	dir := t.TempDir()
	caOne := newTestCA(t)
	caTwo := newTestCA(t)

	path := filepath.Join(dir, "truststore.jks")
	writeJKSTruststore(t, path, caOne, caTwo)

	certs, err := loadTrustEntries(path, "JKS", testStorePassword, "")
	require.NoError(t, err)
	assert.Len(t, certs, 2)
}

func TestLoadTrustEntries_JKSAliasFilter(t *testing.T) {
	dir := t.TempDir()
	caOne := newTestCA(t)
	caTwo := newTestCA(t)

	path := filepath.Join(dir, "truststore.jks")
	writeJKSTruststore(t, path, caOne, caTwo)

	certs, err := loadTrustEntries(path, "JKS", testStorePassword, "ca-a")
	require.NoError(t, err)
	require.Len(t, certs, 1)
	assert.True(t, certs[0].Equal(caOne.cert))
}

func TestLoadTrustEntries_EmptyStoreIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "truststore.jks")
	writeEmptyJKS(t, path)

	certs, err := loadTrustEntries(path, "JKS", testStorePassword, "")
	require.NoError(t, err)
	assert.Empty(t, certs)
}

func TestLoadTrustEntries_PKCS12(t *testing.T) {
	dir := t.TempDir()
	ca := newTestCA(t)

	path := filepath.Join(dir, "truststore.p12")
	writePKCS12Truststore(t, path, ca)

	certs, err := loadTrustEntries(path, "PKCS12", testStorePassword, "")
	require.NoError(t, err)
	require.Len(t, certs, 1)
	assert.True(t, certs[0].Equal(ca.cert))
}

func TestOpenJKS_CorruptStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keystore.jks")
	require.NoError(t, os.WriteFile(path, []byte("not a keystore"), 0o600))

	_, err := openJKS(path, testStorePassword)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreDecrypt)
}
