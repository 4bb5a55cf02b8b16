package proxy

import (
	"crypto/tls"
	"fmt"
	"log"
	"strings"
	"sync"
)

// CertResolver picks a certificate by SNI server name. There is no
// fallback certificate: a handshake for an unknown hostname fails, so a
// misrouted connection never receives a certificate for someone else's
// domain.
type CertResolver struct {
	mu    sync.RWMutex
	certs map[string]*tls.Certificate
}

func NewCertResolver() *CertResolver {
	return &CertResolver{certs: make(map[string]*tls.Certificate)}
}

// AddPEM parses and installs a certificate for hostname. Invalid PEM or
// a mismatched key pair is reported here, before the certificate is
// ever offered to a client.
func (r *CertResolver) AddPEM(hostname string, certPEM, keyPEM []byte) error {
	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return fmt.Errorf("failed to parse certificate for %s: %w", hostname, err)
	}
	r.AddCertificate(hostname, &cert)
	return nil
}

// AddCertificate installs an already-parsed certificate, replacing any
// previous one for the same hostname.
func (r *CertResolver) AddCertificate(hostname string, cert *tls.Certificate) {
	hostname = strings.ToLower(hostname)
	r.mu.Lock()
	r.certs[hostname] = cert
	r.mu.Unlock()
	log.Printf("proxy: serving certificate for %s", hostname)
}

// GetCertificate implements tls.Config.GetCertificate.
func (r *CertResolver) GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	name := strings.ToLower(strings.TrimSuffix(hello.ServerName, "."))

	r.mu.RLock()
	cert, ok := r.certs[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no certificate for %q", name)
	}
	return cert, nil
}

// TLSConfig returns a server config that resolves certificates through
// the resolver and negotiates HTTP/2.
func (r *CertResolver) TLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion:     tls.VersionTLS12,
		GetCertificate: r.GetCertificate,
		NextProtos:     []string{"h2", "http/1.1"},
	}
}
