// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ext

import (
	"slices"
	"strings"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
	x509attrs "github.com/H0llyW00dzZ/x509-der-codec/src/x509/attrs"
	x509names "github.com/H0llyW00dzZ/x509-der-codec/src/x509/names"
)

// Key identifier attribute names.
const (
	AttrKeyID        = "key_id"
	AttrAuthName     = "auth_name"
	AttrSerialNumber = "serial_number"
)

// SubjectKeyIdentifier identifies the certified public key.
type SubjectKeyIdentifier struct {
	extension
	keyID x509attrs.KeyIdentifier
}

// NewSubjectKeyIdentifier builds the extension from an identifier.
func NewSubjectKeyIdentifier(critical bool, id x509attrs.KeyIdentifier) (*SubjectKeyIdentifier, error) {
	e := &SubjectKeyIdentifier{extension: extension{id: slices.Clone(OIDSubjectKeyIdentifier), critical: critical}, keyID: slices.Clone(id)}
	if err := e.derive(e.encodeValue); err != nil {
		return nil, err
	}
	return e, nil
}

// NewSubjectKeyIdentifierFromKey derives the identifier from key.
func NewSubjectKeyIdentifierFromKey(critical bool, key x509attrs.X509Key) (*SubjectKeyIdentifier, error) {
	return NewSubjectKeyIdentifier(critical, x509attrs.KeyIdentifierFromKey(key))
}

// ParseSubjectKeyIdentifier decodes an extnValue.
func ParseSubjectKeyIdentifier(critical bool, value []byte) (*SubjectKeyIdentifier, error) {
	v, err := decodeValue(NameSubjectKeyIdentifier, value)
	if err != nil {
		return nil, err
	}
	id, err := x509attrs.DecodeKeyIdentifier(v)
	if err != nil {
		return nil, err
	}
	e := &SubjectKeyIdentifier{extension: extension{id: slices.Clone(OIDSubjectKeyIdentifier), critical: critical}, keyID: id}
	e.keep(value)
	return e, nil
}

func (e *SubjectKeyIdentifier) encodeValue(b *der.Builder) { e.keyID.Encode(b) }

func (e *SubjectKeyIdentifier) Name() string { return NameSubjectKeyIdentifier }

// KeyIdentifier returns a copy of the identifier.
func (e *SubjectKeyIdentifier) KeyIdentifier() x509attrs.KeyIdentifier { return slices.Clone(e.keyID) }

var subjectKeyIdentifierFields = newFields(NameSubjectKeyIdentifier, []string{AttrKeyID}, map[string]field[SubjectKeyIdentifier]{
	AttrKeyID: {
		get: func(e *SubjectKeyIdentifier) any { return slices.Clone(e.keyID) },
		set: func(e *SubjectKeyIdentifier, v any) error {
			id, err := as[x509attrs.KeyIdentifier](AttrKeyID, v)
			if err != nil {
				return err
			}
			e.keyID = slices.Clone(id)
			return nil
		},
	},
})

func (e *SubjectKeyIdentifier) rederive() error { return e.derive(e.encodeValue) }

func (e *SubjectKeyIdentifier) Get(name string) (any, error) {
	return subjectKeyIdentifierFields.get(e, name)
}
func (e *SubjectKeyIdentifier) Set(name string, v any) error {
	return subjectKeyIdentifierFields.set(e, name, v, e.rederive)
}
func (e *SubjectKeyIdentifier) Delete(name string) error {
	return subjectKeyIdentifierFields.delete(e, name, e.rederive)
}
func (e *SubjectKeyIdentifier) AttributeNames() []string {
	return subjectKeyIdentifierFields.attributeNames()
}

func (e *SubjectKeyIdentifier) String() string {
	return header(e) + "SubjectKeyIdentifier [\n  KeyIdentifier [" + e.keyID.String() + "]\n]\n"
}

// AuthorityKeyIdentifier identifies the key that signed a certificate or
// CRL. Each of its three fields is optional; a nil field is absent.
type AuthorityKeyIdentifier struct {
	extension
	keyID  x509attrs.KeyIdentifier
	issuer x509names.GeneralNames
	serial *x509attrs.SerialNumber
}

// NewAuthorityKeyIdentifier builds the extension. Pass nil for absent fields.
func NewAuthorityKeyIdentifier(critical bool, keyID x509attrs.KeyIdentifier, issuer x509names.GeneralNames, serial *x509attrs.SerialNumber) (*AuthorityKeyIdentifier, error) {
	e := &AuthorityKeyIdentifier{
		extension: extension{id: slices.Clone(OIDAuthorityKeyIdentifier), critical: critical},
		keyID:     slices.Clone(keyID),
		issuer:    slices.Clone(issuer),
	}
	if serial != nil {
		s := x509attrs.NewSerialNumber(serial.BigInt())
		e.serial = &s
	}
	if err := e.derive(e.encodeValue); err != nil {
		return nil, err
	}
	return e, nil
}

// ParseAuthorityKeyIdentifier decodes an extnValue. Repeated or unknown
// fields are rejected.
func ParseAuthorityKeyIdentifier(critical bool, value []byte) (*AuthorityKeyIdentifier, error) {
	v, err := decodeValue(NameAuthorityKeyIdentifier, value)
	if err != nil {
		return nil, err
	}
	r, err := v.Sequence()
	if err != nil {
		return nil, err
	}
	e := &AuthorityKeyIdentifier{extension: extension{id: slices.Clone(OIDAuthorityKeyIdentifier), critical: critical}}
	var seen [3]bool
	for !r.Empty() {
		f, err := r.Next()
		if err != nil {
			return nil, err
		}
		if f.Class != der.ClassContextSpecific || f.Tag > 2 {
			return nil, der.Malformedf("AuthorityKeyIdentifier: unexpected %s", f)
		}
		if seen[f.Tag] {
			return nil, der.Invalidf("AuthorityKeyIdentifier: duplicate [%d]", f.Tag)
		}
		seen[f.Tag] = true
		switch f.Tag {
		case 0:
			if e.keyID, err = x509attrs.DecodeKeyIdentifier(f.Implicit(der.TagOctetString)); err != nil {
				return nil, err
			}
		case 1:
			if e.issuer, err = x509names.DecodeGeneralNames(f.Implicit(der.TagSequence)); err != nil {
				return nil, err
			}
		case 2:
			s, err := x509attrs.DecodeSerialNumber(f.Implicit(der.TagInteger))
			if err != nil {
				return nil, err
			}
			e.serial = &s
		}
	}
	e.keep(value)
	return e, nil
}

func (e *AuthorityKeyIdentifier) encodeValue(b *der.Builder) {
	b.AddSequence(func(b *der.Builder) {
		if e.keyID != nil {
			b.AddImplicit(0, e.keyID.Encode)
		}
		if e.issuer != nil {
			if len(e.issuer) == 0 {
				b.SetError(der.Invalidf("AuthorityKeyIdentifier: empty authorityCertIssuer"))
				return
			}
			e.issuer.EncodeImplicit(b, 1)
		}
		if e.serial != nil {
			b.AddImplicit(2, e.serial.Encode)
		}
	})
}

func (e *AuthorityKeyIdentifier) Name() string { return NameAuthorityKeyIdentifier }

// KeyIdentifier returns the key identifier, or nil when absent.
func (e *AuthorityKeyIdentifier) KeyIdentifier() x509attrs.KeyIdentifier {
	return slices.Clone(e.keyID)
}

// Issuer returns the authorityCertIssuer names, or nil when absent.
func (e *AuthorityKeyIdentifier) Issuer() x509names.GeneralNames { return slices.Clone(e.issuer) }

// Serial returns the authorityCertSerialNumber.
func (e *AuthorityKeyIdentifier) Serial() (x509attrs.SerialNumber, bool) {
	if e.serial == nil {
		return x509attrs.SerialNumber{}, false
	}
	return *e.serial, true
}

var authorityKeyIdentifierFields = newFields(NameAuthorityKeyIdentifier, []string{AttrKeyID, AttrAuthName, AttrSerialNumber}, map[string]field[AuthorityKeyIdentifier]{
	AttrKeyID: {
		get: func(e *AuthorityKeyIdentifier) any { return slices.Clone(e.keyID) },
		set: func(e *AuthorityKeyIdentifier, v any) error {
			id, err := as[x509attrs.KeyIdentifier](AttrKeyID, v)
			e.keyID = slices.Clone(id)
			return err
		},
		del: func(e *AuthorityKeyIdentifier) error { e.keyID = nil; return nil },
	},
	AttrAuthName: {
		get: func(e *AuthorityKeyIdentifier) any { return slices.Clone(e.issuer) },
		set: func(e *AuthorityKeyIdentifier, v any) error {
			names, err := as[x509names.GeneralNames](AttrAuthName, v)
			e.issuer = slices.Clone(names)
			return err
		},
		del: func(e *AuthorityKeyIdentifier) error { e.issuer = nil; return nil },
	},
	AttrSerialNumber: {
		get: func(e *AuthorityKeyIdentifier) any {
			if e.serial == nil {
				return nil
			}
			return *e.serial
		},
		set: func(e *AuthorityKeyIdentifier, v any) error {
			s, err := as[x509attrs.SerialNumber](AttrSerialNumber, v)
			if err != nil {
				return err
			}
			e.serial = &s
			return nil
		},
		del: func(e *AuthorityKeyIdentifier) error { e.serial = nil; return nil },
	},
})

func (e *AuthorityKeyIdentifier) rederive() error { return e.derive(e.encodeValue) }

func (e *AuthorityKeyIdentifier) Get(name string) (any, error) {
	return authorityKeyIdentifierFields.get(e, name)
}
func (e *AuthorityKeyIdentifier) Set(name string, v any) error {
	return authorityKeyIdentifierFields.set(e, name, v, e.rederive)
}
func (e *AuthorityKeyIdentifier) Delete(name string) error {
	return authorityKeyIdentifierFields.delete(e, name, e.rederive)
}
func (e *AuthorityKeyIdentifier) AttributeNames() []string {
	return authorityKeyIdentifierFields.attributeNames()
}

func (e *AuthorityKeyIdentifier) String() string {
	var sb strings.Builder
	sb.WriteString(header(e))
	sb.WriteString("AuthorityKeyIdentifier [\n")
	if e.keyID != nil {
		sb.WriteString("  KeyIdentifier [" + e.keyID.String() + "]\n")
	}
	if e.issuer != nil {
		sb.WriteString("  [" + e.issuer.String() + "]\n")
	}
	if e.serial != nil {
		sb.WriteString("  SerialNumber: [" + e.serial.String() + "]\n")
	}
	sb.WriteString("]\n")
	return sb.String()
}
