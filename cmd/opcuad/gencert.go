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

package main

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/edgeo-automation/opcua-view"
	"github.com/spf13/cobra"
)

var (
	certOutput      string
	keyOutput       string
	certOrg         string
	certCountry     string
	certLocality    string
	certAppURI      string
	certDNSNames    string
	certIPAddresses string
	certValidDays   int
	certKeySize     int
)

var gencertCmd = &cobra.Command{
	Use:   "gencert",
	Short: "Generate a self-signed certificate for the server identity",
	Long: `Generate a self-signed X.509 certificate and private key for the server.

The generated certificate includes the required extensions for OPC UA:
- Subject Alternative Name with Application URI
- Key Usage: Digital Signature, Key Encipherment, Data Encipherment
- Extended Key Usage: Server and Client Authentication

Examples:
  # Generate certificate with defaults
  opcuad gencert

  # Generate certificate with custom output paths
  opcuad gencert --cert ./my-cert.pem --key ./my-key.pem

  # Generate certificate valid for specific hostnames
  opcuad gencert --dns "localhost,myhost.local" --ip "127.0.0.1,192.168.1.100"`,
	RunE: runGencert,
}

func init() {
	gencertCmd.Flags().StringVar(&certOutput, "cert", "server-cert.pem", "Output path for certificate")
	gencertCmd.Flags().StringVar(&keyOutput, "key", "server-key.pem", "Output path for private key")
	gencertCmd.Flags().StringVar(&certOrg, "org", "Edgeo SCADA", "Organization name")
	gencertCmd.Flags().StringVar(&certCountry, "country", "US", "Country code (2 letters)")
	gencertCmd.Flags().StringVar(&certLocality, "locality", "", "Locality/City name")
	gencertCmd.Flags().StringVar(&certAppURI, "app-uri", "urn:edgeo:opcua:server", "OPC UA Application URI")
	gencertCmd.Flags().StringVar(&certDNSNames, "dns", "localhost", "Comma-separated DNS names")
	gencertCmd.Flags().StringVar(&certIPAddresses, "ip", "127.0.0.1", "Comma-separated IP addresses")
	gencertCmd.Flags().IntVar(&certValidDays, "days", 365, "Certificate validity in days")
	gencertCmd.Flags().IntVar(&certKeySize, "key-size", 2048, "RSA key size in bits (2048 or 4096)")
}

func runGencert(cmd *cobra.Command, args []string) error {
	opts := opcua.CertificateOptions{
		CommonName:     "Edgeo OPC UA Server",
		Organization:   certOrg,
		Country:        certCountry,
		Locality:       certLocality,
		ApplicationURI: certAppURI,
		ValidFor:       time.Duration(certValidDays) * 24 * time.Hour,
		KeySize:        certKeySize,
	}

	for _, name := range strings.Split(certDNSNames, ",") {
		if name = strings.TrimSpace(name); name != "" {
			opts.DNSNames = append(opts.DNSNames, name)
		}
	}
	for _, ipStr := range strings.Split(certIPAddresses, ",") {
		if ipStr = strings.TrimSpace(ipStr); ipStr != "" {
			ip := net.ParseIP(ipStr)
			if ip == nil {
				return fmt.Errorf("invalid IP address: %s", ipStr)
			}
			opts.IPAddresses = append(opts.IPAddresses, ip)
		}
	}

	fmt.Printf("Generating %d-bit RSA key pair...\n", opts.KeySize)
	certPEM, keyPEM, err := opcua.GenerateSelfSignedCertificate(opts)
	if err != nil {
		return err
	}

	for _, out := range []string{certOutput, keyOutput} {
		if dir := filepath.Dir(out); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
	}

	if err := os.WriteFile(certOutput, certPEM, 0644); err != nil {
		return fmt.Errorf("failed to write certificate: %w", err)
	}
	if err := os.WriteFile(keyOutput, keyPEM, 0600); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}

	fmt.Println()
	fmt.Println("Certificate generated successfully!")
	fmt.Printf("Certificate: %s\n", certOutput)
	fmt.Printf("Private Key: %s\n", keyOutput)
	fmt.Printf("Application URI: %s\n", certAppURI)
	fmt.Printf("Valid for: %d days\n", certValidDays)

	return nil
}
