// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ext_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/hex"
	"math/big"
	"net"
	"net/url"
	"testing"
	"time"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
	x509attrs "github.com/H0llyW00dzZ/x509-der-codec/src/x509/attrs"
	x509ext "github.com/H0llyW00dzZ/x509-der-codec/src/x509/ext"
	x509names "github.com/H0llyW00dzZ/x509-der-codec/src/x509/names"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLeaf(t *testing.T) (*x509.Certificate, *x509.Certificate, *ecdsa.PrivateKey) {
	t.Helper()
	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	now := time.Now().UTC().Truncate(time.Second)
	caTmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "Example Root"},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLenZero:        true,
		PermittedDNSDomains:   []string{"example.com"},
		ExcludedDNSDomains:    []string{"bad.example.com"},
	}
	caRaw, err := x509.CreateCertificate(rand.Reader, caTmpl, caTmpl, &caKey.PublicKey, caKey)
	require.NoError(t, err)
	ca, err := x509.ParseCertificate(caRaw)
	require.NoError(t, err)

	leafKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	policy, err := x509.OIDFromInts([]uint64{2, 23, 140, 1, 2, 1})
	require.NoError(t, err)
	u, err := url.Parse("https://www.example.com/id")
	require.NoError(t, err)
	leafTmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(2),
		Subject:               pkix.Name{CommonName: "www.example.com"},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"www.example.com", "example.com"},
		EmailAddresses:        []string{"ops@example.com"},
		IPAddresses:           []net.IP{net.ParseIP("192.0.2.1"), net.ParseIP("2001:db8::1")},
		URIs:                  []*url.URL{u},
		OCSPServer:            []string{"http://ocsp.example.com"},
		IssuingCertificateURL: []string{"http://example.com/root.crt"},
		CRLDistributionPoints: []string{"http://example.com/root.crl"},
		Policies:              []x509.OID{policy},
	}
	leafRaw, err := x509.CreateCertificate(rand.Reader, leafTmpl, ca, &leafKey.PublicKey, caKey)
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(leafRaw)
	require.NoError(t, err)
	return ca, leaf, caKey
}

func certificateExtensions(t *testing.T, cert *x509.Certificate) (*x509ext.CertificateExtensions, []byte) {
	t.Helper()
	signed, err := x509attrs.ParseSigned(cert.Raw)
	require.NoError(t, err)
	tbs, err := x509attrs.DecodeTBSCertificate(signed.TBS)
	require.NoError(t, err)
	require.NotNil(t, tbs.Extensions)
	wire := tbs.Extensions.Marshal()
	exts, err := x509ext.ParseCertificateExtensions(wire)
	require.NoError(t, err)
	return exts, wire
}

func TestCertificateExtensionsRoundTrip(t *testing.T) {
	ca, leaf, _ := newLeaf(t)

	for _, cert := range []*x509.Certificate{ca, leaf} {
		t.Run(cert.Subject.CommonName, func(t *testing.T) {
			exts, wire := certificateExtensions(t, cert)
			require.Equal(t, len(cert.Extensions), exts.Len())
			assert.Empty(t, exts.Unparseable())
			assert.False(t, exts.HasUnsupportedCriticalExtension())

			for i, ext := range exts.All() {
				assert.True(t, ext.ID().Equal(cert.Extensions[i].Id))
				assert.Equal(t, cert.Extensions[i].Critical, ext.Critical())
				assert.Equal(t, cert.Extensions[i].Value, ext.Value())
				_, raw := ext.(*x509ext.RawExtension)
				assert.False(t, raw, "%s decoded raw", ext.Name())
			}

			out, err := exts.Marshal(true)
			require.NoError(t, err)
			assert.Equal(t, wire, out)

			bare, err := exts.Marshal(false)
			require.NoError(t, err)
			again, err := x509ext.ParseCertificateExtensions(bare)
			require.NoError(t, err)
			assert.True(t, exts.Equal(again))
		})
	}

	t.Run("decoded values agree with crypto/x509", func(t *testing.T) {
		exts, _ := certificateExtensions(t, leaf)

		ext, ok := exts.Get(x509ext.NameSubjectAlternativeName)
		require.True(t, ok)
		san := ext.(*x509ext.SubjectAlternativeName)
		assert.Len(t, san.Names(), len(leaf.DNSNames)+len(leaf.EmailAddresses)+len(leaf.IPAddresses)+len(leaf.URIs))

		ext, ok = exts.Get(x509ext.NameAuthorityInfoAccess)
		require.True(t, ok)
		aia := ext.(*x509ext.AuthorityInfoAccess)
		assert.Equal(t, leaf.OCSPServer, aia.OCSPServers())
		assert.Equal(t, leaf.IssuingCertificateURL, aia.IssuingCertificateURLs())

		ext, ok = exts.Get(x509ext.NameCRLDistributionPoints)
		require.True(t, ok)
		points := ext.(*x509ext.CRLDistributionPoints).Points()
		require.Len(t, points, 1)
		assert.Equal(t, leaf.CRLDistributionPoints, points[0].URIs())

		ext, ok = exts.Get(x509ext.NameExtendedKeyUsage)
		require.True(t, ok)
		known, unknown := ext.(*x509ext.ExtendedKeyUsage).X509()
		assert.Equal(t, leaf.ExtKeyUsage, known)
		assert.Empty(t, unknown)

		ext, ok = exts.Get(x509ext.NameKeyUsage)
		require.True(t, ok)
		assert.Equal(t, leaf.KeyUsage, ext.(*x509ext.KeyUsage).X509())

		ext, ok = exts.Get(x509ext.NameAuthorityKeyIdentifier)
		require.True(t, ok)
		assert.Equal(t, leaf.AuthorityKeyId, []byte(ext.(*x509ext.AuthorityKeyIdentifier).KeyIdentifier()))

		ext, ok = exts.Get(x509ext.NameCertificatePolicies)
		require.True(t, ok)
		ids := ext.(*x509ext.CertificatePolicies).PolicyIDs()
		require.Len(t, ids, 1)
		assert.Equal(t, "2.23.140.1.2.1", ids[0].String())
	})

	t.Run("CA constraints", func(t *testing.T) {
		exts, _ := certificateExtensions(t, ca)

		ext, ok := exts.Get(x509ext.NameBasicConstraints)
		require.True(t, ok)
		bc := ext.(*x509ext.BasicConstraints)
		assert.True(t, bc.IsCA())
		assert.Equal(t, 0, bc.PathLen())

		ext, ok = exts.Get(x509ext.NameNameConstraints)
		require.True(t, ok)
		nc := ext.(*x509ext.NameConstraints)
		for _, san := range leaf.DNSNames {
			name, err := x509names.NewDNSName(san)
			require.NoError(t, err)
			permitted, err := nc.Permits(name)
			require.NoError(t, err)
			assert.True(t, permitted, san)
		}
	})
}

func TestCertificateExtensionsDecoding(t *testing.T) {
	bc := encodeRaw(t, x509ext.OIDBasicConstraints, false, mustHex(t, "3003020100"))
	bcCritical := encodeRaw(t, x509ext.OIDBasicConstraints, true, mustHex(t, "3003020100"))
	ku := encodeRaw(t, x509ext.OIDKeyUsage, true, mustHex(t, "03020284"))
	unknown := encodeRaw(t, asn1.ObjectIdentifier{1, 2, 3, 4}, true, []byte{0x05, 0x00})

	wrap := func(parts ...[]byte) []byte {
		b, err := der.Marshal(func(b *der.Builder) {
			b.AddExplicit(3, func(b *der.Builder) {
				b.AddSequence(func(b *der.Builder) {
					for _, p := range parts {
						b.AddRaw(p)
					}
				})
			})
		})
		require.NoError(t, err)
		return b
	}

	t.Run("non-critical failure kept raw", func(t *testing.T) {
		exts, err := x509ext.ParseCertificateExtensions(wrap(ku, bc))
		require.NoError(t, err)
		require.Len(t, exts.Unparseable(), 1)
		assert.Equal(t, x509ext.NameBasicConstraints, exts.Unparseable()[0].Name())
		assert.True(t, exts.Unparseable()[0].Failed())
		assert.False(t, exts.HasUnsupportedCriticalExtension())

		out, err := exts.Marshal(true)
		require.NoError(t, err)
		assert.Equal(t, wrap(ku, bc), out)
	})

	t.Run("critical failure aborts", func(t *testing.T) {
		_, err := x509ext.ParseCertificateExtensions(wrap(ku, bcCritical))
		assert.ErrorIs(t, err, der.ErrInvalidValue)
	})

	t.Run("unsupported critical extension", func(t *testing.T) {
		exts, err := x509ext.ParseCertificateExtensions(wrap(ku, unknown))
		require.NoError(t, err)
		assert.True(t, exts.HasUnsupportedCriticalExtension())
		ext, ok := exts.Get("1.2.3.4")
		require.True(t, ok)
		assert.IsType(t, &x509ext.RawExtension{}, ext)

		assert.True(t, exts.Delete("1.2.3.4"))
		assert.False(t, exts.Delete("1.2.3.4"))
		assert.False(t, exts.HasUnsupportedCriticalExtension())
	})

	t.Run("duplicate extension", func(t *testing.T) {
		_, err := x509ext.ParseCertificateExtensions(wrap(ku, ku))
		assert.ErrorIs(t, err, x509ext.ErrDuplicateExtension)
		assert.ErrorIs(t, err, der.ErrInvalidValue)
	})

	t.Run("empty sequence", func(t *testing.T) {
		_, err := x509ext.ParseCertificateExtensions(wrap())
		assert.ErrorIs(t, err, der.ErrInvalidValue)
	})

	t.Run("unwrapped input", func(t *testing.T) {
		bare, err := der.Marshal(func(b *der.Builder) {
			b.AddSequence(func(b *der.Builder) { b.AddRaw(ku) })
		})
		require.NoError(t, err)
		exts, err := x509ext.ParseCertificateExtensions(bare)
		require.NoError(t, err)
		assert.Equal(t, 1, exts.Len())
	})
}

func TestCertificateExtensionsBuilding(t *testing.T) {
	exts := x509ext.NewCertificateExtensions()
	_, err := exts.Marshal(true)
	assert.ErrorIs(t, err, der.ErrInvalidValue)

	bc, err := x509ext.NewBasicConstraints(true, true, 1)
	require.NoError(t, err)
	ku, err := x509ext.NewKeyUsage(true, x509ext.KeyCertSign, x509ext.CRLSign)
	require.NoError(t, err)

	require.NoError(t, exts.Add(bc))
	require.NoError(t, exts.Add(ku))
	assert.ErrorIs(t, exts.Add(bc), x509ext.ErrDuplicateExtension)

	replacement, err := x509ext.NewBasicConstraints(true, true, 0)
	require.NoError(t, err)
	exts.Set(replacement)
	require.Equal(t, 2, exts.Len())
	assert.Equal(t, x509ext.NameBasicConstraints, exts.All()[0].Name())
	got, ok := exts.Get(x509ext.NameBasicConstraints)
	require.True(t, ok)
	assert.Equal(t, 0, got.(*x509ext.BasicConstraints).PathLen())

	out, err := exts.Marshal(true)
	require.NoError(t, err)
	assert.Equal(t, byte(0xa3), out[0])

	reordered := x509ext.NewCertificateExtensions()
	require.NoError(t, reordered.Add(ku))
	require.NoError(t, reordered.Add(replacement))
	assert.True(t, exts.Equal(reordered))

	reordered.Set(bc)
	assert.False(t, exts.Equal(reordered))

	t.Run("nil extension", func(t *testing.T) {
		assert.NotPanics(t, func() { exts.Set(nil) })
		assert.Equal(t, 2, exts.Len())
		assert.ErrorIs(t, exts.Add(nil), x509ext.ErrAttributeValue)
		assert.Equal(t, 2, exts.Len())
	})
}

func TestCRLExtensions(t *testing.T) {
	ca, _, key := newLeaf(t)
	now := time.Now().UTC().Truncate(time.Second)
	tmpl := &x509.RevocationList{
		Number:     big.NewInt(42),
		ThisUpdate: now,
		NextUpdate: now.Add(time.Hour),
		RevokedCertificateEntries: []x509.RevocationListEntry{
			{SerialNumber: big.NewInt(2), RevocationTime: now.Add(-time.Minute), ReasonCode: int(x509ext.ReasonSuperseded)},
		},
	}
	raw, err := x509.CreateRevocationList(rand.Reader, tmpl, ca, key)
	require.NoError(t, err)
	crl, err := x509.ParseRevocationList(raw)
	require.NoError(t, err)

	signed, err := x509attrs.ParseSigned(raw)
	require.NoError(t, err)
	tbs, err := x509attrs.DecodeTBSCertList(signed.TBS)
	require.NoError(t, err)

	t.Run("list extensions", func(t *testing.T) {
		require.NotNil(t, tbs.Extensions)
		wire := tbs.Extensions.Marshal()
		exts, err := x509ext.ParseCRLExtensions(wire)
		require.NoError(t, err)
		require.Equal(t, len(crl.Extensions), exts.Len())

		ext, ok := exts.Get(x509ext.NameCRLNumber)
		require.True(t, ok)
		assert.Equal(t, int64(42), ext.(*x509ext.CRLNumber).Number().Int64())

		ext, ok = exts.Get(x509ext.NameAuthorityKeyIdentifier)
		require.True(t, ok)
		assert.Equal(t, ca.SubjectKeyId, []byte(ext.(*x509ext.AuthorityKeyIdentifier).KeyIdentifier()))

		out, err := exts.Marshal(true)
		require.NoError(t, err)
		assert.Equal(t, wire, out)
	})

	t.Run("entry extensions", func(t *testing.T) {
		require.Len(t, tbs.Revoked, 1)
		require.NotNil(t, tbs.Revoked[0].Extensions)
		exts, err := x509ext.DecodeCRLExtensions(*tbs.Revoked[0].Extensions)
		require.NoError(t, err)

		ext, ok := exts.Get(x509ext.NameCRLReasonCode)
		require.True(t, ok)
		assert.Equal(t, x509ext.ReasonSuperseded, ext.(*x509ext.CRLReasonCode).Reason())

		out, err := exts.Marshal(false)
		require.NoError(t, err)
		assert.Equal(t, tbs.Revoked[0].Extensions.Marshal(), out)
	})

	t.Run("duplicates rejected", func(t *testing.T) {
		n, err := x509ext.NewCRLNumber(big.NewInt(1))
		require.NoError(t, err)
		exts := x509ext.NewCRLExtensions()
		require.NoError(t, exts.Add(n))
		assert.ErrorIs(t, exts.Add(n), x509ext.ErrDuplicateExtension)

		b, err := x509ext.Marshal(n)
		require.NoError(t, err)
		list, err := der.Marshal(func(lb *der.Builder) {
			lb.AddSequence(func(lb *der.Builder) {
				lb.AddRaw(b)
				lb.AddRaw(b)
			})
		})
		require.NoError(t, err)
		_, err = x509ext.ParseCRLExtensions(list)
		assert.ErrorIs(t, err, x509ext.ErrDuplicateExtension)
	})

	t.Run("entry with invalid reason", func(t *testing.T) {
		bad := encodeRaw(t, x509ext.OIDCRLReasonCode, false, mustHex(t, "0a0107"))
		list, err := der.Marshal(func(b *der.Builder) {
			b.AddSequence(func(b *der.Builder) { b.AddRaw(bad) })
		})
		require.NoError(t, err)
		_, err = x509ext.ParseCRLExtensions(list)
		assert.ErrorIs(t, err, der.ErrInvalidValue)
	})

	t.Run("wrapper", func(t *testing.T) {
		n, err := x509ext.NewCRLNumber(big.NewInt(1))
		require.NoError(t, err)
		exts := x509ext.NewCRLExtensions()
		require.NoError(t, exts.Add(n))
		wrapped, err := exts.Marshal(true)
		require.NoError(t, err)
		assert.Equal(t, "a00e300c300a0603551d140403020101", hex.EncodeToString(wrapped))

		bare, err := exts.Marshal(false)
		require.NoError(t, err)
		assert.Equal(t, byte(0x30), bare[0])
		assert.Equal(t, wrapped[2:], bare)
	})
}
