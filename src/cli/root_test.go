// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli_test

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/json"
	"encoding/pem"
	"io/fs"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/H0llyW00dzZ/x509-der-codec/src/cli"
	x509certs "github.com/H0llyW00dzZ/x509-der-codec/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/x509-der-codec/src/logger"
	x509ext "github.com/H0llyW00dzZ/x509-der-codec/src/x509/ext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const version = "1.3.3.7-testing"

var (
	oidPrivate  = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 55555, 7}
	oidCritical = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 55555, 8}
)

// withArgs replaces os.Args for the duration of the test.
func withArgs(t *testing.T, args ...string) {
	t.Helper()
	saved := os.Args
	os.Args = append([]string{"x509-ext-dump"}, args...)
	t.Cleanup(func() { os.Args = saved })
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// newCertificate returns a PEM encoded self-signed certificate. With
// critical set it also carries an unknown critical extension.
func newCertificate(t *testing.T, critical bool) []byte {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	extra := []pkix.Extension{{Id: oidPrivate, Value: []byte{0x04, 0x02, 0xca, 0xfe}}}
	if critical {
		extra = append(extra, pkix.Extension{Id: oidCritical, Critical: true, Value: []byte{0x05, 0x00}})
	}
	now := time.Now().UTC()
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(4242),
		Subject:               pkix.Name{CommonName: "dump.example.com"},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"dump.example.com"},
		ExtraExtensions:       extra,
	}
	raw, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: raw})
}

func newCRL(t *testing.T) []byte {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	now := time.Now().UTC().Truncate(time.Second)
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "Dump CRL Issuer"},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	raw, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	ca, err := x509.ParseCertificate(raw)
	require.NoError(t, err)

	crl, err := x509.CreateRevocationList(rand.Reader, &x509.RevocationList{
		Number:     big.NewInt(3),
		ThisUpdate: now,
		NextUpdate: now.Add(time.Hour),
		RevokedCertificateEntries: []x509.RevocationListEntry{
			{SerialNumber: big.NewInt(20), RevocationTime: now, ReasonCode: int(x509ext.ReasonKeyCompromise)},
			{SerialNumber: big.NewInt(21), RevocationTime: now},
		},
	}, ca, key)
	require.NoError(t, err)
	return crl
}

func names(exts []cli.ExtensionInfo) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		out = append(out, e.Name)
	}
	return out
}

func TestExecute_NoInputFile(t *testing.T) {
	withArgs(t)
	err := cli.Execute(context.Background(), version, logger.NewJSONLogger(nil, true))
	assert.ErrorIs(t, err, cli.ErrInputFileRequired)
	assert.False(t, cli.OperationPerformed)
}

func TestExecute_InvalidFile(t *testing.T) {
	withArgs(t, "-f", writeFile(t, "invalid.cer", []byte("invalid data")))
	err := cli.Execute(context.Background(), version, logger.NewJSONLogger(nil, true))
	assert.ErrorIs(t, err, x509certs.ErrParsePKCS7)
	assert.True(t, cli.OperationPerformed)
	assert.False(t, cli.OperationPerformedSuccessfully)
}

func TestExecute_NonExistentFile(t *testing.T) {
	withArgs(t, "-f", filepath.Join(t.TempDir(), "nonexistent.cer"))
	err := cli.Execute(context.Background(), version, logger.NewJSONLogger(nil, true))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestExecute_UnknownFormat(t *testing.T) {
	withArgs(t, "--format", "xml", writeFile(t, "leaf.pem", newCertificate(t, false)))
	err := cli.Execute(context.Background(), version, logger.NewJSONLogger(nil, true))
	assert.ErrorIs(t, err, cli.ErrUnknownFormat)
}

func TestExecute_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	withArgs(t, writeFile(t, "leaf.pem", newCertificate(t, false)))
	err := cli.Execute(ctx, version, logger.NewJSONLogger(nil, true))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, cli.OperationPerformedSuccessfully)
}

func TestExecute_Certificate(t *testing.T) {
	input := writeFile(t, "leaf.pem", newCertificate(t, false))

	tests := []struct {
		name   string
		format string
		check  func(t *testing.T, out []byte)
	}{
		{
			name:   "json",
			format: "json",
			check: func(t *testing.T, out []byte) {
				var r cli.Report
				require.NoError(t, json.Unmarshal(out, &r))
				assert.Equal(t, "certificate", r.Kind)
				assert.Equal(t, "CN=dump.example.com", r.Subject)
				assert.Subset(t, names(r.Extensions), []string{
					x509ext.NameKeyUsage,
					x509ext.NameExtendedKeyUsage,
					x509ext.NameBasicConstraints,
					x509ext.NameSubjectAlternativeName,
				})
				var private bool
				for _, e := range r.Extensions {
					if e.OID == oidPrivate.String() {
						private = true
						assert.True(t, e.Opaque)
						assert.Equal(t, "4 bytes: 0402cafe", e.Details)
					}
					if e.Name == x509ext.NameSubjectAlternativeName {
						assert.Contains(t, e.Details, "dump.example.com")
					}
				}
				assert.True(t, private)
			},
		},
		{
			name:   "yaml",
			format: "yaml",
			check: func(t *testing.T, out []byte) {
				var r cli.Report
				require.NoError(t, yaml.Unmarshal(out, &r))
				assert.Equal(t, input, r.Source)
				assert.Contains(t, names(r.Extensions), x509ext.NameBasicConstraints)
			},
		},
		{
			name:   "table",
			format: "table",
			check: func(t *testing.T, out []byte) {
				s := string(out)
				assert.True(t, strings.HasPrefix(s, "# "+input))
				assert.Contains(t, s, "- Subject: CN=dump.example.com")
				assert.Contains(t, s, x509ext.NameBasicConstraints)
				assert.Contains(t, s, "2.5.29.19")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := filepath.Join(t.TempDir(), "dump.out")
			withArgs(t, "-f", input, "-o", output, "--format", tt.format)

			var logs bytes.Buffer
			require.NoError(t, cli.Execute(context.Background(), version, logger.NewJSONLogger(&logs, false)))
			assert.True(t, cli.OperationPerformedSuccessfully)
			assert.Contains(t, logs.String(), "Decoded")

			out, err := os.ReadFile(output)
			require.NoError(t, err)
			tt.check(t, out)
		})
	}
}

func TestExecute_UnsupportedCriticalWarning(t *testing.T) {
	output := filepath.Join(t.TempDir(), "dump.json")
	withArgs(t, "--format", "json", "-o", output, writeFile(t, "leaf.pem", newCertificate(t, true)))

	var logs bytes.Buffer
	require.NoError(t, cli.Execute(context.Background(), version, logger.NewJSONLogger(&logs, false)))
	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), "unsupported critical extension "+oidCritical.String())
}

func TestExecute_CRL(t *testing.T) {
	output := filepath.Join(t.TempDir(), "crl.json")
	withArgs(t, "--crl", "--format", "json", "-o", output, writeFile(t, "list.crl", newCRL(t)))

	require.NoError(t, cli.Execute(context.Background(), version, logger.NewJSONLogger(nil, true)))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var r cli.Report
	require.NoError(t, json.Unmarshal(data, &r))
	assert.Equal(t, "crl", r.Kind)
	assert.Equal(t, "CN=Dump CRL Issuer", r.Issuer)
	assert.Contains(t, names(r.Extensions), x509ext.NameCRLNumber)
	require.Len(t, r.Entries, 2)
	assert.Equal(t, []string{x509ext.NameCRLReasonCode}, names(r.Entries[0].Extensions))
	assert.Empty(t, r.Entries[1].Extensions)
}

func TestExecute_CRLFlagOnCertificate(t *testing.T) {
	withArgs(t, "--crl", writeFile(t, "leaf.pem", newCertificate(t, false)))
	err := cli.Execute(context.Background(), version, logger.NewJSONLogger(nil, true))
	assert.ErrorIs(t, err, x509certs.ErrParseCRL)
}

func TestExecute_ConfigNames(t *testing.T) {
	config := writeFile(t, "config.yaml", []byte(`defaults:
  format: json
extensions:
  - name: DumpPrivate
    oid: "1.3.6.1.4.1.55555.7"
`))
	output := filepath.Join(t.TempDir(), "dump.json")
	withArgs(t, "--config", config, "-o", output, writeFile(t, "leaf.pem", newCertificate(t, false)))

	require.NoError(t, cli.Execute(context.Background(), version, logger.NewJSONLogger(nil, true)))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var r cli.Report
	require.NoError(t, json.Unmarshal(data, &r), "config default format should be json")
	assert.Contains(t, names(r.Extensions), "DumpPrivate")
}
