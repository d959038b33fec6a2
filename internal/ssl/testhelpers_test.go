package ssl

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	keystore "github.com/pavlo-v-chernykh/keystore-go/v4"
	"github.com/stretchr/testify/require"
	pkcs12 "software.sslmate.com/src/go-pkcs12"
)

const testStorePassword = "changeit"

// testCA is a generated certificate authority for one test.
type testCA struct {
	cert *x509.Certificate
	key  *ecdsa.PrivateKey
}

// testLeaf is a CA-signed end-entity credential.
type testLeaf struct {
	cert *x509.Certificate
	key  *ecdsa.PrivateKey
}

// newTestCA generates a self-signed CA.
func newTestCA(t *testing.T) *testCA {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			CommonName:   "Test Root CA",
			Organization: []string{"Test Org"},
		},
		NotBefore:             time.Now().Add(-1 * time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return &testCA{cert: cert, key: key}
}

// issueLeaf signs an end-entity certificate valid for both server and
// client authentication, matching how node certificates are used on a
// mutually authenticated transport.
func (ca *testCA) issueLeaf(t *testing.T, commonName string, dnsNames ...string) *testLeaf {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject: pkix.Name{
			CommonName:   commonName,
			Organization: []string{"Test Org"},
		},
		NotBefore:   time.Now().Add(-1 * time.Hour),
		NotAfter:    time.Now().Add(24 * time.Hour),
		KeyUsage:    x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		DNSNames:    dnsNames,
		IPAddresses: []net.IP{net.ParseIP("127.0.0.1")},
	}

	der, err := x509.CreateCertificate(rand.Reader, template, ca.cert, &key.PublicKey, ca.key)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return &testLeaf{cert: cert, key: key}
}

// writePEM writes the given blocks to path.
func writePEM(t *testing.T, path string, blocks ...*pem.Block) {
	t.Helper()

	var data []byte
	for _, block := range blocks {
		data = append(data, pem.EncodeToMemory(block)...)
	}
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func certBlock(cert *x509.Certificate) *pem.Block {
	return &pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw}
}

func pkcs8Block(t *testing.T, key *ecdsa.PrivateKey) *pem.Block {
	t.Helper()

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return &pem.Block{Type: "PRIVATE KEY", Bytes: der}
}

// writePEMTriple writes key, certificate chain, and CA files into dir and
// returns their paths.
func writePEMTriple(t *testing.T, dir string, ca *testCA, leaf *testLeaf) (keyPath, certPath, caPath string) {
	t.Helper()

	keyPath = filepath.Join(dir, "node.key")
	certPath = filepath.Join(dir, "node.crt")
	caPath = filepath.Join(dir, "ca.crt")

	writePEM(t, keyPath, pkcs8Block(t, leaf.key))
	writePEM(t, certPath, certBlock(leaf.cert), certBlock(ca.cert))
	writePEM(t, caPath, certBlock(ca.cert))

	return keyPath, certPath, caPath
}

// writeJKSKeystore writes a JKS keystore with a single private-key entry.
func writeJKSKeystore(t *testing.T, path, alias string, ca *testCA, leaf *testLeaf) {
	t.Helper()

	keyDER, err := x509.MarshalPKCS8PrivateKey(leaf.key)
	require.NoError(t, err)

	ks := keystore.New()
	err = ks.SetPrivateKeyEntry(alias, keystore.PrivateKeyEntry{
		CreationTime: time.Now(),
		PrivateKey:   keyDER,
		CertificateChain: []keystore.Certificate{
			{Type: "X509", Content: leaf.cert.Raw},
			{Type: "X509", Content: ca.cert.Raw},
		},
	}, []byte(testStorePassword))
	require.NoError(t, err)

	storeJKS(t, path, ks)
}

// writeJKSTruststore writes a JKS truststore holding the given CAs as
// trusted certificate entries.
func writeJKSTruststore(t *testing.T, path string, cas ...*testCA) {
	t.Helper()

	ks := keystore.New()
	for i, ca := range cas {
		err := ks.SetTrustedCertificateEntry("ca-"+string(rune('a'+i)), keystore.TrustedCertificateEntry{
			CreationTime: time.Now(),
			Certificate:  keystore.Certificate{Type: "X509", Content: ca.cert.Raw},
		})
		require.NoError(t, err)
	}

	storeJKS(t, path, ks)
}

// writeEmptyJKS writes a JKS store without any entries.
func writeEmptyJKS(t *testing.T, path string) {
	t.Helper()
	storeJKS(t, path, keystore.New())
}

func storeJKS(t *testing.T, path string, ks keystore.KeyStore) {
	t.Helper()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, ks.Store(f, []byte(testStorePassword)))
}

// writePKCS12Keystore writes a PKCS#12 keystore with the leaf key and chain.
func writePKCS12Keystore(t *testing.T, path string, ca *testCA, leaf *testLeaf) {
	t.Helper()

	data, err := pkcs12.Modern.Encode(leaf.key, leaf.cert, []*x509.Certificate{ca.cert}, testStorePassword)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

// writePKCS12Truststore writes a PKCS#12 truststore holding the given CAs.
func writePKCS12Truststore(t *testing.T, path string, cas ...*testCA) {
	t.Helper()

	certs := make([]*x509.Certificate, 0, len(cas))
	for _, ca := range cas {
		certs = append(certs, ca.cert)
	}

	data, err := pkcs12.Modern.EncodeTrustStore(certs, testStorePassword)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

// testMaterial builds in-memory credential material without touching disk.
func testMaterial(t *testing.T, ca *testCA, leaf *testLeaf) *CredentialMaterial {
	t.Helper()

	return &CredentialMaterial{
		PrivateKey:   leaf.key,
		Chain:        []*x509.Certificate{leaf.cert, ca.cert},
		TrustedRoots: []*x509.Certificate{ca.cert},
	}
}
