package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

var (
	// ErrNoCertsFound is returned when no certificates are found in a PEM file.
	ErrNoCertsFound = errors.New("tlsroots: no certificates found in PEM file")
)

// Pool holds the root certificates trusted when dialing the upstream.
type Pool struct {
	certPool *x509.CertPool
}

// NewPool creates a pool seeded with the system roots, or an empty pool
// where system roots are unavailable.
func NewPool() *Pool {
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	return &Pool{certPool: pool}
}

// NewEmptyPool creates a new empty certificate pool without system roots.
func NewEmptyPool() *Pool {
	return &Pool{certPool: x509.NewCertPool()}
}

// LoadPool returns the system roots plus the CAs in caFile. An empty
// caFile yields the system roots only.
func LoadPool(caFile string) (*Pool, error) {
	p := NewPool()
	if caFile == "" {
		return p, nil
	}
	if err := p.AddCertFile(caFile); err != nil {
		return nil, err
	}
	return p, nil
}

// AddCertFile adds certificates from a PEM file.
func (p *Pool) AddCertFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tlsroots: read cert file %s: %w", path, err)
	}

	return p.AddCertPEM(data)
}

// AddCertPEM adds every CERTIFICATE block in pemData.
func (p *Pool) AddCertPEM(pemData []byte) error {
	var certsAdded int

	for len(pemData) > 0 {
		var block *pem.Block
		block, pemData = pem.Decode(pemData)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return fmt.Errorf("tlsroots: parse certificate: %w", err)
		}

		p.certPool.AddCert(cert)
		certsAdded++
	}

	if certsAdded == 0 {
		return ErrNoCertsFound
	}

	return nil
}

// Pool returns the underlying x509.CertPool.
func (p *Pool) Pool() *x509.CertPool {
	return p.certPool
}

// ClientTLSConfig returns a client TLS config trusting this pool.
func (p *Pool) ClientTLSConfig() *tls.Config {
	return &tls.Config{
		RootCAs:    p.certPool,
		MinVersion: tls.VersionTLS12,
	}
}

// Transport returns an HTTP transport for upstream requests that trusts
// this pool.
func (p *Pool) Transport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.TLSClientConfig = p.ClientTLSConfig()
	t.ResponseHeaderTimeout = 60 * time.Second
	return t
}
