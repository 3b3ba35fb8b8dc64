package certs

import (
	"crypto/tls"
	"crypto/x509"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, cert tls.Certificate) *x509.Certificate {
	t.Helper()
	require.Len(t, cert.Certificate, 1)
	x509Cert, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	return x509Cert
}

func TestFileManager_GetOrCreateCertificate(t *testing.T) {
	t.Run("creates a certificate when none exists", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "certs")
		m := NewFileManager(dir)

		cert, err := m.GetOrCreateCertificate()
		require.NoError(t, err)

		x509Cert := parse(t, cert)
		assert.Equal(t, []string{"cashflow"}, x509Cert.Subject.Organization)
		assert.Contains(t, x509Cert.DNSNames, "localhost")
		assert.True(t, x509Cert.NotAfter.After(time.Now().Add(364*24*time.Hour)))
		require.NoError(t, x509Cert.VerifyHostname("127.0.0.1"))

		info, err := os.Stat(filepath.Join(dir, keyName))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("reuses a valid certificate", func(t *testing.T) {
		m := NewFileManager(t.TempDir())
		first, err := m.GetOrCreateCertificate()
		require.NoError(t, err)

		second, err := m.GetOrCreateCertificate()
		require.NoError(t, err)
		assert.Equal(t, parse(t, first).SerialNumber, parse(t, second).SerialNumber)
	})

	t.Run("regenerates unreadable files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, certName), []byte("junk"), 0600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, keyName), []byte("junk"), 0600))

		cert, err := NewFileManager(dir).GetOrCreateCertificate()
		require.NoError(t, err)
		parse(t, cert)
	})

	t.Run("regenerates an expired certificate", func(t *testing.T) {
		dir := t.TempDir()
		m := NewFileManager(dir)
		m.now = func() time.Time { return time.Now().Add(-2 * DefaultValidity) }
		old, err := m.GetOrCreateCertificate()
		require.NoError(t, err)

		fresh, err := NewFileManager(dir).GetOrCreateCertificate()
		require.NoError(t, err)
		assert.NotEqual(t, parse(t, old).SerialNumber, parse(t, fresh).SerialNumber)
		assert.True(t, parse(t, fresh).NotAfter.After(time.Now()))
	})
}

func TestFileManager_CertificateExists(t *testing.T) {
	dir := t.TempDir()
	m := NewFileManager(dir)

	exists, err := m.CertificateExists()
	require.NoError(t, err)
	assert.False(t, exists)

	// A certificate without its key does not count.
	require.NoError(t, os.WriteFile(m.CertFile(), []byte("x"), 0600))
	exists, err = m.CertificateExists()
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = m.GetOrCreateCertificate()
	require.NoError(t, err)
	exists, err = m.CertificateExists()
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestTLSConfig(t *testing.T) {
	cfg, err := TLSConfig(NewFileManager(t.TempDir()))
	require.NoError(t, err)
	require.Len(t, cfg.Certificates, 1)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
}

type failingManager struct{}

func (failingManager) GetOrCreateCertificate() (tls.Certificate, error) {
	return tls.Certificate{}, os.ErrPermission
}

func (failingManager) CertificateExists() (bool, error) { return false, nil }

func TestTLSConfig_Error(t *testing.T) {
	_, err := TLSConfig(failingManager{})
	assert.ErrorIs(t, err, os.ErrPermission)
}
