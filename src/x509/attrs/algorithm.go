// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509attrs

import (
	"encoding/asn1"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
	"github.com/H0llyW00dzZ/x509-der-codec/src/x509/oidmap"
)

// AlgorithmKind classifies a known algorithm identifier.
type AlgorithmKind int

const (
	KindSignature AlgorithmKind = iota
	KindPublicKey
	KindDigest
)

// algorithms maps well-known algorithm OIDs to their conventional names.
var algorithms = oidmap.New[AlgorithmKind]()

func init() {
	for _, e := range []oidmap.Entry[AlgorithmKind]{
		{Name: "rsaEncryption", OID: asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 1}, Handler: KindPublicKey},
		{Name: "md5WithRSAEncryption", OID: asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 4}, Handler: KindSignature},
		{Name: "sha1WithRSAEncryption", OID: asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 5}, Handler: KindSignature},
		{Name: "RSASSA-PSS", OID: asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 10}, Handler: KindSignature},
		{Name: "sha256WithRSAEncryption", OID: asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 11}, Handler: KindSignature},
		{Name: "sha384WithRSAEncryption", OID: asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 12}, Handler: KindSignature},
		{Name: "sha512WithRSAEncryption", OID: asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 13}, Handler: KindSignature},
		{Name: "id-ecPublicKey", OID: asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}, Handler: KindPublicKey},
		{Name: "ecdsa-with-SHA1", OID: asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 1}, Handler: KindSignature},
		{Name: "ecdsa-with-SHA256", OID: asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 2}, Handler: KindSignature},
		{Name: "ecdsa-with-SHA384", OID: asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 3}, Handler: KindSignature},
		{Name: "ecdsa-with-SHA512", OID: asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 4}, Handler: KindSignature},
		{Name: "dsa", OID: asn1.ObjectIdentifier{1, 2, 840, 10040, 4, 1}, Handler: KindPublicKey},
		{Name: "Ed25519", OID: asn1.ObjectIdentifier{1, 3, 101, 112}, Handler: KindSignature},
		{Name: "X25519", OID: asn1.ObjectIdentifier{1, 3, 101, 110}, Handler: KindPublicKey},
		{Name: "SHA-1", OID: asn1.ObjectIdentifier{1, 3, 14, 3, 2, 26}, Handler: KindDigest},
		{Name: "SHA-256", OID: asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 1}, Handler: KindDigest},
		{Name: "SHA-384", OID: asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 2}, Handler: KindDigest},
		{Name: "SHA-512", OID: asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 3}, Handler: KindDigest},
	} {
		algorithms.MustRegister(e.Name, e.OID, e.Handler)
	}
}

// AlgorithmID is an AlgorithmIdentifier. Parameters is nil when the field is
// absent; an explicit NULL is kept as a NULL value so re-encoding is exact.
type AlgorithmID struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters *der.Value
}

// NewAlgorithmID builds an identifier, optionally with NULL parameters as
// the RSA algorithms expect.
func NewAlgorithmID(oid asn1.ObjectIdentifier, nullParams bool) AlgorithmID {
	a := AlgorithmID{Algorithm: oid}
	if nullParams {
		a.Parameters = &der.Value{Tag: der.TagNull}
	}
	return a
}

// DecodeAlgorithmID decodes an AlgorithmIdentifier SEQUENCE.
func DecodeAlgorithmID(v der.Value) (AlgorithmID, error) {
	r, err := v.Sequence()
	if err != nil {
		return AlgorithmID{}, err
	}
	ov, err := r.Next()
	if err != nil {
		return AlgorithmID{}, err
	}
	oid, err := ov.OID()
	if err != nil {
		return AlgorithmID{}, err
	}
	a := AlgorithmID{Algorithm: oid}
	if !r.Empty() {
		p, err := r.Next()
		if err != nil {
			return AlgorithmID{}, err
		}
		a.Parameters = &p
	}
	if err := r.Finish(); err != nil {
		return AlgorithmID{}, err
	}
	return a, nil
}

// Encode writes the AlgorithmIdentifier SEQUENCE.
func (a AlgorithmID) Encode(b *der.Builder) {
	b.AddSequence(func(b *der.Builder) {
		b.AddOID(a.Algorithm)
		if a.Parameters != nil {
			b.AddValue(*a.Parameters)
		}
	})
}

// Kind reports the class of a known algorithm.
func (a AlgorithmID) Kind() (AlgorithmKind, bool) {
	e, ok := algorithms.Lookup(a.Algorithm)
	return e.Handler, ok
}

// Equal compares the OID and the encoded parameters.
func (a AlgorithmID) Equal(o AlgorithmID) bool {
	if !a.Algorithm.Equal(o.Algorithm) {
		return false
	}
	if a.Parameters == nil || o.Parameters == nil {
		return a.Parameters == nil && o.Parameters == nil
	}
	return a.Parameters.Equal(*o.Parameters)
}

// String returns the conventional name, or the dotted OID when unknown.
func (a AlgorithmID) String() string { return algorithms.NameOf(a.Algorithm) }
