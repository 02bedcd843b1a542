// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509attrs_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha1"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/hex"
	"math/big"
	"testing"
	"time"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
	x509attrs "github.com/H0llyW00dzZ/x509-der-codec/src/x509/attrs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestVersion(t *testing.T) {
	tests := []struct {
		name    string
		version x509attrs.Version
		hex     string
	}{
		{"v1", x509attrs.V1, "a003020100"},
		{"v2", x509attrs.V2, "a003020101"},
		{"v3", x509attrs.V3, "a003020102"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := der.Marshal(tt.version.Encode)
			require.NoError(t, err)
			assert.Equal(t, tt.hex, hex.EncodeToString(got))

			v, err := der.Decode(got)
			require.NoError(t, err)
			decoded, err := x509attrs.DecodeVersion(v)
			require.NoError(t, err)
			assert.Equal(t, tt.version, decoded)
			assert.Equal(t, tt.name, decoded.String())
		})
	}

	t.Run("default v1 elided", func(t *testing.T) {
		got, err := der.Marshal(x509attrs.V1.EncodeDefault)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("out of range", func(t *testing.T) {
		v, err := der.Decode(mustHex(t, "a003020103"))
		require.NoError(t, err)
		_, err = x509attrs.DecodeVersion(v)
		assert.ErrorIs(t, err, der.ErrInvalidValue)

		_, err = der.Marshal(x509attrs.Version(7).Encode)
		assert.ErrorIs(t, err, der.ErrInvalidValue)
	})

	t.Run("wrong tag", func(t *testing.T) {
		v, err := der.Decode(mustHex(t, "020102"))
		require.NoError(t, err)
		_, err = x509attrs.DecodeVersion(v)
		assert.ErrorIs(t, err, der.ErrMalformed)
	})
}

func TestSerialNumber(t *testing.T) {
	n, ok := new(big.Int).SetString("0123456789abcdef0123456789abcdef", 16)
	require.True(t, ok)
	s := x509attrs.NewSerialNumber(n)

	got, err := der.Marshal(s.Encode)
	require.NoError(t, err)
	assert.Equal(t, "02100123456789abcdef0123456789abcdef", hex.EncodeToString(got))
	assert.Equal(t, "01:23:45:67:89:ab:cd:ef:01:23:45:67:89:ab:cd:ef", s.String())

	v, err := der.Decode(got)
	require.NoError(t, err)
	decoded, err := x509attrs.DecodeSerialNumber(v)
	require.NoError(t, err)
	assert.True(t, s.Equal(decoded))

	// The stored value is a copy.
	n.SetInt64(1)
	assert.False(t, s.Equal(x509attrs.NewSerialNumberInt64(1)))
	assert.Equal(t, "00", x509attrs.NewSerialNumberInt64(0).String())
}

func TestValidity(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := time.Date(2060, 1, 1, 0, 0, 0, 0, time.UTC)
	v := x509attrs.NewValidity(t0, t1)

	t.Run("boundaries", func(t *testing.T) {
		assert.NoError(t, v.Valid(t0))
		assert.NoError(t, v.Valid(t1))
		assert.ErrorIs(t, v.Valid(t0.Add(-time.Millisecond)), x509attrs.ErrNotYetValid)
		assert.ErrorIs(t, v.Valid(t1.Add(time.Millisecond)), x509attrs.ErrExpired)
	})

	t.Run("sub-second bounds", func(t *testing.T) {
		start := t0.Add(400 * time.Millisecond)
		fine := x509attrs.NewValidity(start, t1)
		assert.ErrorIs(t, fine.Valid(start.Add(-time.Millisecond)), x509attrs.ErrNotYetValid)
		assert.NoError(t, fine.Valid(start))

		// The encoding carries whole seconds only.
		got, err := der.Marshal(fine.Encode)
		require.NoError(t, err)
		want, err := der.Marshal(v.Encode)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("mixed time encodings", func(t *testing.T) {
		got, err := der.Marshal(v.Encode)
		require.NoError(t, err)
		assert.Equal(t,
			"3020"+"170d3234303130313030303030305a"+"180f32303630303130313030303030305a",
			hex.EncodeToString(got))

		dv, err := der.Decode(got)
		require.NoError(t, err)
		decoded, err := x509attrs.DecodeValidity(dv)
		require.NoError(t, err)
		assert.True(t, decoded.NotBefore.Equal(t0))
		assert.True(t, decoded.NotAfter.Equal(t1))
	})

	t.Run("GeneralizedTime before 2050", func(t *testing.T) {
		dv, err := der.Decode(mustHex(t, "3022"+"180f32303230303130313030303030305a"+"180f32303630303130313030303030305a"))
		require.NoError(t, err)
		_, err = x509attrs.DecodeValidity(dv)
		assert.ErrorIs(t, err, der.ErrMalformed)
	})

	t.Run("missing bound", func(t *testing.T) {
		dv, err := der.Decode(mustHex(t, "300f170d3234303130313030303030305a"))
		require.NoError(t, err)
		_, err = x509attrs.DecodeValidity(dv)
		assert.ErrorIs(t, err, der.ErrMalformed)
	})
}

func TestAlgorithmID(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		want string
	}{
		{"rsa with NULL", "300d06092a864886f70d01010b0500", "sha256WithRSAEncryption"},
		{"ecdsa absent", "300a06082a8648ce3d040302", "ecdsa-with-SHA256"},
		{"unknown", "300406022a03", "1.2.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := der.Decode(mustHex(t, tt.hex))
			require.NoError(t, err)
			a, err := x509attrs.DecodeAlgorithmID(v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.String())

			got, err := der.Marshal(a.Encode)
			require.NoError(t, err)
			assert.Equal(t, tt.hex, hex.EncodeToString(got))
		})
	}

	withNull := x509attrs.NewAlgorithmID(asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 11}, true)
	without := x509attrs.NewAlgorithmID(asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 11}, false)
	assert.False(t, withNull.Equal(without))
	assert.True(t, withNull.Equal(withNull))
	kind, ok := withNull.Kind()
	assert.True(t, ok)
	assert.Equal(t, x509attrs.KindSignature, kind)
}

func TestKeyIdentifier(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	k, err := x509attrs.NewX509Key(&key.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, "id-ecPublicKey key, 520 bits", k.String())

	ecdhKey, err := key.PublicKey.ECDH()
	require.NoError(t, err)
	want := sha1.Sum(ecdhKey.Bytes())
	kid := x509attrs.KeyIdentifierFromKey(k)
	assert.Equal(t, want[:], []byte(kid))
	assert.Len(t, kid.String(), 20*3-1)

	pub, err := k.PublicKey()
	require.NoError(t, err)
	assert.True(t, key.PublicKey.Equal(pub))

	got, err := der.Marshal(kid.Encode)
	require.NoError(t, err)
	v, err := der.Decode(got)
	require.NoError(t, err)
	decoded, err := x509attrs.DecodeKeyIdentifier(v)
	require.NoError(t, err)
	assert.True(t, kid.Equal(decoded))
}

func newCA(t *testing.T) (*x509.Certificate, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	now := time.Now().UTC().Truncate(time.Second)
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(4242),
		Subject:               pkix.Name{CommonName: "Test CA", Organization: []string{"Example"}, Country: []string{"US"}},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	raw, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(raw)
	require.NoError(t, err)
	return cert, key
}

func TestDecodeTBSCertificate(t *testing.T) {
	cert, key := newCA(t)

	signed, err := x509attrs.ParseSigned(cert.Raw)
	require.NoError(t, err)
	assert.Equal(t, "ecdsa-with-SHA256", signed.Algorithm.String())
	assert.Equal(t, cert.RawTBSCertificate, signed.TBS.Marshal())

	tbs, err := x509attrs.DecodeTBSCertificate(signed.TBS)
	require.NoError(t, err)
	assert.Equal(t, x509attrs.V3, tbs.Version)
	assert.Equal(t, 0, tbs.Serial.BigInt().Cmp(cert.SerialNumber))
	assert.Equal(t, "Test CA", tbs.Subject.Name.CommonName())
	assert.Equal(t, cert.Subject.String(), tbs.Subject.String())
	assert.Equal(t, cert.Issuer.String(), tbs.Issuer.String())
	assert.True(t, tbs.Validity.NotBefore.Equal(cert.NotBefore))
	assert.True(t, tbs.Validity.NotAfter.Equal(cert.NotAfter))
	assert.NoError(t, tbs.Validity.Valid(time.Now()))

	raw, err := tbs.PublicKey.Bytes()
	require.NoError(t, err)
	assert.Equal(t, cert.RawSubjectPublicKeyInfo, raw)
	pub, err := tbs.PublicKey.PublicKey()
	require.NoError(t, err)
	assert.True(t, key.PublicKey.Equal(pub))

	require.NotNil(t, tbs.Extensions)
	assert.True(t, tbs.Extensions.IsContext(3))

	subject, err := der.Marshal(tbs.Subject.Encode)
	require.NoError(t, err)
	assert.Equal(t, cert.RawSubject, subject)
}

func TestDecodeTBSCertList(t *testing.T) {
	ca, key := newCA(t)
	now := time.Now().UTC().Truncate(time.Second)
	tmpl := &x509.RevocationList{
		Number:     big.NewInt(7),
		ThisUpdate: now,
		NextUpdate: now.Add(time.Hour),
		RevokedCertificateEntries: []x509.RevocationListEntry{
			{SerialNumber: big.NewInt(100), RevocationTime: now.Add(-time.Minute), ReasonCode: 1},
			{SerialNumber: big.NewInt(101), RevocationTime: now.Add(-time.Minute)},
		},
	}
	raw, err := x509.CreateRevocationList(rand.Reader, tmpl, ca, key)
	require.NoError(t, err)

	signed, err := x509attrs.ParseSigned(raw)
	require.NoError(t, err)
	tbs, err := x509attrs.DecodeTBSCertList(signed.TBS)
	require.NoError(t, err)

	assert.Equal(t, x509attrs.V2, tbs.Version)
	assert.Equal(t, "Test CA", tbs.Issuer.Name.CommonName())
	assert.True(t, tbs.ThisUpdate.Equal(now))
	assert.True(t, tbs.NextUpdate.Equal(now.Add(time.Hour)))
	require.Len(t, tbs.Revoked, 2)
	assert.Equal(t, int64(100), tbs.Revoked[0].Serial.BigInt().Int64())
	assert.NotNil(t, tbs.Revoked[0].Extensions)
	assert.Nil(t, tbs.Revoked[1].Extensions)
	require.NotNil(t, tbs.Extensions)
	assert.True(t, tbs.Extensions.IsContext(0))
}

func TestParseSignedRejectsTrailingData(t *testing.T) {
	cert, _ := newCA(t)
	_, err := x509attrs.ParseSigned(append(append([]byte{}, cert.Raw...), 0x00))
	assert.ErrorIs(t, err, der.ErrMalformed)
}
