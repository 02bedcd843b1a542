// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509attrs

import (
	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
	x509names "github.com/H0llyW00dzZ/x509-der-codec/src/x509/names"
)

// SubjectName is the subject field of a certificate.
type SubjectName struct{ Name x509names.X500Name }

// IssuerName is the issuer field of a certificate or CRL.
type IssuerName struct{ Name x509names.X500Name }

// DecodeSubjectName decodes a subject Name.
func DecodeSubjectName(v der.Value) (SubjectName, error) {
	n, err := x509names.DecodeX500Name(v)
	return SubjectName{Name: n}, err
}

// DecodeIssuerName decodes an issuer Name.
func DecodeIssuerName(v der.Value) (IssuerName, error) {
	n, err := x509names.DecodeX500Name(v)
	return IssuerName{Name: n}, err
}

func (s SubjectName) Encode(b *der.Builder) { s.Name.Encode(b) }
func (s IssuerName) Encode(b *der.Builder)  { s.Name.Encode(b) }

func (s SubjectName) String() string { return s.Name.DN() }
func (s IssuerName) String() string  { return s.Name.DN() }
