// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package opcua

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"net/url"
	"time"
)

// CertificateOptions configures self-signed certificate generation for a
// server or client identity.
type CertificateOptions struct {
	CommonName     string
	Organization   string
	Country        string
	Locality       string
	ApplicationURI string
	DNSNames       []string
	IPAddresses    []net.IP
	ValidFor       time.Duration
	KeySize        int
}

// DefaultCertificateOptions returns the options used for a server identity
// when nothing else is configured.
func DefaultCertificateOptions() CertificateOptions {
	return CertificateOptions{
		CommonName:     "Edgeo OPC UA Server",
		Organization:   "Edgeo SCADA",
		Country:        "US",
		ApplicationURI: "urn:edgeo:opcua:server",
		DNSNames:       []string{"localhost"},
		IPAddresses:    []net.IP{net.ParseIP("127.0.0.1")},
		ValidFor:       365 * 24 * time.Hour,
		KeySize:        2048,
	}
}

// GenerateSelfSignedCertificate creates an X.509 certificate and RSA key
// with the extensions OPC UA applications require: an application-URI SAN,
// digital-signature/encipherment key usage and server+client auth extended
// key usage. The certificate and key are returned PEM encoded.
func GenerateSelfSignedCertificate(opts CertificateOptions) (certPEM, keyPEM []byte, err error) {
	if opts.KeySize == 0 {
		opts.KeySize = 2048
	}
	if opts.KeySize != 2048 && opts.KeySize != 4096 {
		return nil, nil, fmt.Errorf("opcua: key size must be 2048 or 4096, got %d", opts.KeySize)
	}
	if opts.ValidFor <= 0 {
		opts.ValidFor = 365 * 24 * time.Hour
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, opts.KeySize)
	if err != nil {
		return nil, nil, fmt.Errorf("opcua: failed to generate private key: %w", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, nil, fmt.Errorf("opcua: failed to generate serial number: %w", err)
	}

	subject := pkix.Name{
		CommonName: opts.CommonName,
	}
	if opts.Organization != "" {
		subject.Organization = []string{opts.Organization}
	}
	if opts.Country != "" {
		subject.Country = []string{opts.Country}
	}
	if opts.Locality != "" {
		subject.Locality = []string{opts.Locality}
	}

	var uris []*url.URL
	if opts.ApplicationURI != "" {
		appURI, err := url.Parse(opts.ApplicationURI)
		if err != nil {
			return nil, nil, fmt.Errorf("opcua: invalid application URI: %w", err)
		}
		uris = append(uris, appURI)
	}

	notBefore := time.Now()
	template := &x509.Certificate{
		SerialNumber: serialNumber,
		Subject:      subject,
		NotBefore:    notBefore,
		NotAfter:     notBefore.Add(opts.ValidFor),

		KeyUsage: x509.KeyUsageDigitalSignature |
			x509.KeyUsageKeyEncipherment |
			x509.KeyUsageDataEncipherment,

		ExtKeyUsage: []x509.ExtKeyUsage{
			x509.ExtKeyUsageServerAuth,
			x509.ExtKeyUsageClientAuth,
		},

		DNSNames:    opts.DNSNames,
		IPAddresses: opts.IPAddresses,
		URIs:        uris,

		BasicConstraintsValid: true,
		IsCA:                  false,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("opcua: failed to create certificate: %w", err)
	}

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	keyPEM = pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})

	return certPEM, keyPEM, nil
}

// LoadCertificate parses a PEM-encoded certificate and returns the parsed
// certificate together with its DER bytes.
func LoadCertificate(pemData []byte) (*x509.Certificate, []byte, error) {
	block, _ := pem.Decode(pemData)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, nil, fmt.Errorf("opcua: failed to decode PEM certificate")
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, nil, fmt.Errorf("opcua: failed to parse certificate: %w", err)
	}

	return cert, block.Bytes, nil
}

// LoadPrivateKey parses a PEM-encoded RSA private key in PKCS#1 or PKCS#8
// form.
func LoadPrivateKey(pemData []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("opcua: failed to decode PEM private key")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	keyAny, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("opcua: failed to parse private key: %w", err)
	}
	key, ok := keyAny.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("opcua: private key is not RSA")
	}
	return key, nil
}

// Thumbprint computes the SHA-1 thumbprint of a DER-encoded certificate as
// used in OPC UA security headers.
func Thumbprint(derCert []byte) []byte {
	sum := sha1.Sum(derCert)
	return sum[:]
}

// GenerateNonce returns length cryptographically random bytes.
func GenerateNonce(length int) ([]byte, error) {
	nonce := make([]byte, length)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("opcua: failed to generate nonce: %w", err)
	}
	return nonce, nil
}
