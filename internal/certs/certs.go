// Package certs provides a self-signed localhost certificate for serving the
// ledger API over HTTPS.
package certs

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

const (
	certName = "localhost.crt"
	keyName  = "localhost.key"

	// DefaultValidity is how long a generated certificate is valid.
	DefaultValidity = 365 * 24 * time.Hour
)

// Manager hands out the certificate the server should present.
type Manager interface {
	GetOrCreateCertificate() (tls.Certificate, error)
	CertificateExists() (bool, error)
}

// FileManager implements Manager using the filesystem.
type FileManager struct {
	now      func() time.Time
	certDir  string
	certFile string
	keyFile  string
	validity time.Duration
}

// NewFileManager creates a FileManager keeping its files in certDir.
func NewFileManager(certDir string) *FileManager {
	return &FileManager{
		now:      time.Now,
		certDir:  certDir,
		certFile: filepath.Join(certDir, certName),
		keyFile:  filepath.Join(certDir, keyName),
		validity: DefaultValidity,
	}
}

// CertFile is the path of the PEM certificate.
func (m *FileManager) CertFile() string { return m.certFile }

// GetOrCreateCertificate returns the stored certificate, generating a new one
// when none exists or the stored one is unusable.
func (m *FileManager) GetOrCreateCertificate() (tls.Certificate, error) {
	exists, err := m.CertificateExists()
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to check certificate existence: %w", err)
	}

	if exists {
		cert, loadErr := tls.LoadX509KeyPair(m.certFile, m.keyFile)
		if loadErr == nil {
			loadErr = m.verifyCertificate(cert)
		}
		if loadErr == nil {
			return cert, nil
		}
		if err := m.removeCertificates(); err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to remove unusable certificate: %w", err)
		}
	}

	return m.generateCertificate()
}

// CertificateExists reports whether both the certificate and key files exist.
func (m *FileManager) CertificateExists() (bool, error) {
	for _, path := range []string{m.certFile, m.keyFile} {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return false, nil
			}
			return false, fmt.Errorf("failed to stat %s: %w", filepath.Base(path), err)
		}
	}
	return true, nil
}

// TLSConfig builds a server TLS configuration presenting the certificate
// from m.
func TLSConfig(m Manager) (*tls.Config, error) {
	cert, err := m.GetOrCreateCertificate()
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func (m *FileManager) generateCertificate() (tls.Certificate, error) {
	if err := os.MkdirAll(m.certDir, 0700); err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to create certificate directory: %w", err)
	}

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to generate private key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to generate serial number: %w", err)
	}

	now := m.now()
	template := x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"cashflow"},
			CommonName:   "localhost",
		},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(m.validity),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		DNSNames:              []string{"localhost", "*.localhost"},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to create certificate: %w", err)
	}

	if err := writePEM(m.certFile, &pem.Block{Type: "CERTIFICATE", Bytes: certDER}); err != nil {
		return tls.Certificate{}, err
	}
	if err := writePEM(m.keyFile, &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)}); err != nil {
		return tls.Certificate{}, err
	}

	return tls.LoadX509KeyPair(m.certFile, m.keyFile)
}

func writePEM(path string, block *pem.Block) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open %s for writing: %w", filepath.Base(path), err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := pem.Encode(f, block); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (m *FileManager) verifyCertificate(cert tls.Certificate) error {
	if len(cert.Certificate) == 0 {
		return errors.New("no certificates found")
	}

	x509Cert, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse certificate: %w", err)
	}

	now := m.now()
	if now.Before(x509Cert.NotBefore) {
		return errors.New("certificate not yet valid")
	}
	if now.After(x509Cert.NotAfter) {
		return errors.New("certificate has expired")
	}

	if err := x509Cert.VerifyHostname("localhost"); err != nil {
		return fmt.Errorf("certificate not valid for localhost: %w", err)
	}
	return nil
}

func (m *FileManager) removeCertificates() error {
	for _, path := range []string{m.certFile, m.keyFile} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}
