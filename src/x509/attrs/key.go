// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509attrs

import (
	"bytes"
	"crypto"
	"crypto/sha1"
	"crypto/x509"
	"encoding/asn1"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
)

// X509Key is a SubjectPublicKeyInfo. It keeps the encoding it was decoded
// from so re-encoding never changes key bytes.
type X509Key struct {
	Algorithm AlgorithmID
	Key       asn1.BitString
	raw       []byte
}

// NewX509Key wraps a crypto public key.
func NewX509Key(pub crypto.PublicKey) (X509Key, error) {
	raw, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return X509Key{}, fmt.Errorf("%w: %w", der.ErrInvalidValue, err)
	}
	return ParseX509Key(raw)
}

// ParseX509Key decodes DER encoded SubjectPublicKeyInfo bytes.
func ParseX509Key(b []byte) (X509Key, error) {
	v, err := der.Decode(b)
	if err != nil {
		return X509Key{}, err
	}
	return DecodeX509Key(v)
}

// DecodeX509Key decodes a SubjectPublicKeyInfo SEQUENCE.
func DecodeX509Key(v der.Value) (X509Key, error) {
	r, err := v.Sequence()
	if err != nil {
		return X509Key{}, err
	}
	av, err := r.Next()
	if err != nil {
		return X509Key{}, err
	}
	alg, err := DecodeAlgorithmID(av)
	if err != nil {
		return X509Key{}, err
	}
	kv, err := r.Next()
	if err != nil {
		return X509Key{}, err
	}
	bits, err := kv.BitString()
	if err != nil {
		return X509Key{}, err
	}
	if err := r.Finish(); err != nil {
		return X509Key{}, err
	}
	return X509Key{Algorithm: alg, Key: bits, raw: v.Marshal()}, nil
}

// Bytes returns the DER encoding.
func (k X509Key) Bytes() ([]byte, error) {
	if k.raw != nil {
		return bytes.Clone(k.raw), nil
	}
	return der.Marshal(k.Encode)
}

// Encode writes the SubjectPublicKeyInfo.
func (k X509Key) Encode(b *der.Builder) {
	if k.raw != nil {
		b.AddRaw(k.raw)
		return
	}
	b.AddSequence(func(b *der.Builder) {
		k.Algorithm.Encode(b)
		b.AddBitString(k.Key.Bytes, 8*len(k.Key.Bytes)-k.Key.BitLength)
	})
}

// PublicKey parses the key with crypto/x509.
func (k X509Key) PublicKey() (crypto.PublicKey, error) {
	raw, err := k.Bytes()
	if err != nil {
		return nil, err
	}
	return x509.ParsePKIXPublicKey(raw)
}

// Equal compares encodings.
func (k X509Key) Equal(o X509Key) bool {
	a, errA := k.Bytes()
	b, errB := o.Bytes()
	return errA == nil && errB == nil && bytes.Equal(a, b)
}

func (k X509Key) String() string {
	return fmt.Sprintf("%s key, %d bits", k.Algorithm, k.Key.BitLength)
}

// KeyIdentifier is the OCTET STRING used by the key identifier extensions.
type KeyIdentifier []byte

// KeyIdentifierFromKey derives the RFC 5280 method 1 identifier: the SHA-1
// hash of the subjectPublicKey bits.
func KeyIdentifierFromKey(k X509Key) KeyIdentifier {
	sum := sha1.Sum(k.Key.Bytes)
	return KeyIdentifier(sum[:])
}

// DecodeKeyIdentifier decodes an OCTET STRING. Re-tag IMPLICIT fields first.
func DecodeKeyIdentifier(v der.Value) (KeyIdentifier, error) {
	p, err := v.OctetString()
	if err != nil {
		return nil, err
	}
	return KeyIdentifier(p), nil
}

// Encode writes the identifier as an OCTET STRING.
func (k KeyIdentifier) Encode(b *der.Builder) { b.AddOctetString(k) }

// Equal compares identifier bytes.
func (k KeyIdentifier) Equal(o KeyIdentifier) bool { return bytes.Equal(k, o) }

// String returns colon separated upper-case hex.
func (k KeyIdentifier) String() string {
	parts := make([]string, len(k))
	for i, c := range k {
		parts[i] = strings.ToUpper(hex.EncodeToString([]byte{c}))
	}
	return strings.Join(parts, ":")
}
