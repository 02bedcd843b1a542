// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509attrs

import (
	"encoding/asn1"
	"time"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
)

// Signed is the outer envelope shared by certificates and CRLs.
type Signed struct {
	TBS       der.Value
	Algorithm AlgorithmID
	Signature asn1.BitString
}

// ParseSigned decodes a DER certificate or CRL envelope.
func ParseSigned(b []byte) (Signed, error) {
	v, err := der.Decode(b)
	if err != nil {
		return Signed{}, err
	}
	r, err := v.Sequence()
	if err != nil {
		return Signed{}, err
	}
	var s Signed
	if s.TBS, err = r.Next(); err != nil {
		return Signed{}, err
	}
	av, err := r.Next()
	if err != nil {
		return Signed{}, err
	}
	if s.Algorithm, err = DecodeAlgorithmID(av); err != nil {
		return Signed{}, err
	}
	sv, err := r.Next()
	if err != nil {
		return Signed{}, err
	}
	if s.Signature, err = sv.BitString(); err != nil {
		return Signed{}, err
	}
	return s, r.Finish()
}

// TBSCertificate holds the decoded fields of a certificate body. Extensions is
// the complete [3] EXPLICIT element, or nil when absent.
type TBSCertificate struct {
	Version    Version
	Serial     SerialNumber
	Signature  AlgorithmID
	Issuer     IssuerName
	Validity   Validity
	Subject    SubjectName
	PublicKey  X509Key
	Extensions *der.Value
}

// DecodeTBSCertificate decodes a TBSCertificate SEQUENCE.
func DecodeTBSCertificate(v der.Value) (TBSCertificate, error) {
	r, err := v.Sequence()
	if err != nil {
		return TBSCertificate{}, err
	}
	var t TBSCertificate
	if vv, ok, err := r.NextIf(der.ClassContextSpecific, 0); err != nil {
		return TBSCertificate{}, err
	} else if ok {
		if t.Version, err = DecodeVersion(vv); err != nil {
			return TBSCertificate{}, err
		}
	}
	steps := []func(der.Value) error{
		func(f der.Value) (err error) { t.Serial, err = DecodeSerialNumber(f); return },
		func(f der.Value) (err error) { t.Signature, err = DecodeAlgorithmID(f); return },
		func(f der.Value) (err error) { t.Issuer, err = DecodeIssuerName(f); return },
		func(f der.Value) (err error) { t.Validity, err = DecodeValidity(f); return },
		func(f der.Value) (err error) { t.Subject, err = DecodeSubjectName(f); return },
		func(f der.Value) (err error) { t.PublicKey, err = DecodeX509Key(f); return },
	}
	for _, step := range steps {
		f, err := r.Next()
		if err != nil {
			return TBSCertificate{}, err
		}
		if err := step(f); err != nil {
			return TBSCertificate{}, err
		}
	}
	// Unique identifiers are obsolete and skipped.
	for _, tag := range []uint8{1, 2} {
		if _, _, err := r.NextIf(der.ClassContextSpecific, tag); err != nil {
			return TBSCertificate{}, err
		}
	}
	ev, ok, err := r.NextIf(der.ClassContextSpecific, 3)
	if err != nil {
		return TBSCertificate{}, err
	}
	if ok {
		if t.Version != V3 {
			return TBSCertificate{}, der.Invalidf("extensions present in a %s certificate", t.Version)
		}
		t.Extensions = &ev
	}
	return t, r.Finish()
}

// RevokedCertificate is one entry of a CRL. Extensions is the entry's
// Extensions SEQUENCE, or nil when absent.
type RevokedCertificate struct {
	Serial         SerialNumber
	RevocationDate time.Time
	Extensions     *der.Value
}

// TBSCertList holds the decoded fields of a CRL body. Extensions is the
// complete [0] EXPLICIT element, or nil when absent.
type TBSCertList struct {
	Version    Version
	Signature  AlgorithmID
	Issuer     IssuerName
	ThisUpdate time.Time
	NextUpdate time.Time
	Revoked    []RevokedCertificate
	Extensions *der.Value
}

// DecodeTBSCertList decodes a TBSCertList SEQUENCE.
func DecodeTBSCertList(v der.Value) (TBSCertList, error) {
	r, err := v.Sequence()
	if err != nil {
		return TBSCertList{}, err
	}
	var t TBSCertList
	if vv, ok, err := r.NextIf(der.ClassUniversal, der.TagInteger); err != nil {
		return TBSCertList{}, err
	} else if ok {
		n, err := vv.Int64()
		if err != nil {
			return TBSCertList{}, err
		}
		if n != int64(V2) {
			return TBSCertList{}, der.Invalidf("CRL version %d", n)
		}
		t.Version = V2
	}
	f, err := r.Next()
	if err != nil {
		return TBSCertList{}, err
	}
	if t.Signature, err = DecodeAlgorithmID(f); err != nil {
		return TBSCertList{}, err
	}
	if f, err = r.Next(); err != nil {
		return TBSCertList{}, err
	}
	if t.Issuer, err = DecodeIssuerName(f); err != nil {
		return TBSCertList{}, err
	}
	if f, err = r.Next(); err != nil {
		return TBSCertList{}, err
	}
	if t.ThisUpdate, err = f.Time(); err != nil {
		return TBSCertList{}, err
	}
	if !r.Empty() {
		p, err := r.Peek()
		if err != nil {
			return TBSCertList{}, err
		}
		if p.Is(der.TagUTCTime) || p.Is(der.TagGeneralizedTime) {
			_, _ = r.Next()
			if t.NextUpdate, err = p.Time(); err != nil {
				return TBSCertList{}, err
			}
		}
	}
	if rv, ok, err := r.NextIf(der.ClassUniversal, der.TagSequence); err != nil {
		return TBSCertList{}, err
	} else if ok {
		if t.Revoked, err = decodeRevoked(rv); err != nil {
			return TBSCertList{}, err
		}
	}
	ev, ok, err := r.NextIf(der.ClassContextSpecific, 0)
	if err != nil {
		return TBSCertList{}, err
	}
	if ok {
		t.Extensions = &ev
	}
	return t, r.Finish()
}

func decodeRevoked(v der.Value) ([]RevokedCertificate, error) {
	entries, err := v.Children()
	if err != nil {
		return nil, err
	}
	out := make([]RevokedCertificate, 0, len(entries))
	for _, e := range entries {
		r, err := e.Sequence()
		if err != nil {
			return nil, err
		}
		var rc RevokedCertificate
		f, err := r.Next()
		if err != nil {
			return nil, err
		}
		if rc.Serial, err = DecodeSerialNumber(f); err != nil {
			return nil, err
		}
		if f, err = r.Next(); err != nil {
			return nil, err
		}
		if rc.RevocationDate, err = f.Time(); err != nil {
			return nil, err
		}
		if !r.Empty() {
			ext, err := r.Next()
			if err != nil {
				return nil, err
			}
			rc.Extensions = &ext
		}
		if err := r.Finish(); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, nil
}
