// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ext

import (
	"encoding/asn1"
	"slices"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
	x509names "github.com/H0llyW00dzZ/x509-der-codec/src/x509/names"
)

// General name extension attribute names.
const (
	AttrSubjectName = "subject_name"
	AttrIssuerName  = "issuer_name"
	AttrIssuer      = "issuer"
)

// namesExtension is the body shared by extensions whose value is a
// non-empty GeneralNames.
type namesExtension struct {
	extension
	names x509names.GeneralNames
}

func newNamesExtension(id asn1.ObjectIdentifier, critical bool, names x509names.GeneralNames) (namesExtension, error) {
	e := namesExtension{extension: extension{id: slices.Clone(id), critical: critical}, names: slices.Clone(names)}
	if err := e.derive(e.encodeValue); err != nil {
		return namesExtension{}, err
	}
	return e, nil
}

func parseNamesExtension(name string, id asn1.ObjectIdentifier, critical bool, value []byte) (namesExtension, error) {
	v, err := decodeValue(name, value)
	if err != nil {
		return namesExtension{}, err
	}
	names, err := x509names.DecodeGeneralNames(v)
	if err != nil {
		return namesExtension{}, err
	}
	e := namesExtension{extension: extension{id: slices.Clone(id), critical: critical}, names: names}
	e.keep(value)
	return e, nil
}

func (e *namesExtension) encodeValue(b *der.Builder) {
	if len(e.names) == 0 {
		b.SetError(der.Invalidf("GeneralNames must contain at least one name"))
		return
	}
	e.names.Encode(b)
}

func (e *namesExtension) rederive() error { return e.derive(e.encodeValue) }

// Names returns a copy of the names.
func (e *namesExtension) Names() x509names.GeneralNames { return slices.Clone(e.names) }

func namesFields(ext, attr string) fields[namesExtension] {
	return newFields(ext, []string{attr}, map[string]field[namesExtension]{
		attr: {
			get: func(e *namesExtension) any { return slices.Clone(e.names) },
			set: func(e *namesExtension, v any) error {
				names, err := as[x509names.GeneralNames](attr, v)
				if err != nil {
					return err
				}
				e.names = slices.Clone(names)
				return nil
			},
		},
	})
}

func namesString(ext Extension, title string, names x509names.GeneralNames) string {
	s := header(ext) + title + " [\n"
	for _, n := range names {
		s += "  " + n.String() + "\n"
	}
	return s + "]\n"
}

// SubjectAlternativeName binds additional identities to the subject.
type SubjectAlternativeName struct{ namesExtension }

// NewSubjectAlternativeName builds the extension from a non-empty list.
func NewSubjectAlternativeName(critical bool, names x509names.GeneralNames) (*SubjectAlternativeName, error) {
	n, err := newNamesExtension(OIDSubjectAlternativeName, critical, names)
	if err != nil {
		return nil, err
	}
	return &SubjectAlternativeName{n}, nil
}

// ParseSubjectAlternativeName decodes an extnValue.
func ParseSubjectAlternativeName(critical bool, value []byte) (*SubjectAlternativeName, error) {
	n, err := parseNamesExtension(NameSubjectAlternativeName, OIDSubjectAlternativeName, critical, value)
	if err != nil {
		return nil, err
	}
	return &SubjectAlternativeName{n}, nil
}

var subjectAltNameFields = namesFields(NameSubjectAlternativeName, AttrSubjectName)

func (e *SubjectAlternativeName) Name() string { return NameSubjectAlternativeName }

func (e *SubjectAlternativeName) Get(name string) (any, error) {
	return subjectAltNameFields.get(&e.namesExtension, name)
}
func (e *SubjectAlternativeName) Set(name string, v any) error {
	return subjectAltNameFields.set(&e.namesExtension, name, v, e.rederive)
}
func (e *SubjectAlternativeName) Delete(name string) error {
	return subjectAltNameFields.delete(&e.namesExtension, name, e.rederive)
}
func (e *SubjectAlternativeName) AttributeNames() []string {
	return subjectAltNameFields.attributeNames()
}

func (e *SubjectAlternativeName) String() string {
	return namesString(e, "SubjectAlternativeName", e.names)
}

// IssuerAlternativeName binds additional identities to the issuer.
type IssuerAlternativeName struct{ namesExtension }

// NewIssuerAlternativeName builds the extension from a non-empty list.
func NewIssuerAlternativeName(critical bool, names x509names.GeneralNames) (*IssuerAlternativeName, error) {
	n, err := newNamesExtension(OIDIssuerAlternativeName, critical, names)
	if err != nil {
		return nil, err
	}
	return &IssuerAlternativeName{n}, nil
}

// ParseIssuerAlternativeName decodes an extnValue.
func ParseIssuerAlternativeName(critical bool, value []byte) (*IssuerAlternativeName, error) {
	n, err := parseNamesExtension(NameIssuerAlternativeName, OIDIssuerAlternativeName, critical, value)
	if err != nil {
		return nil, err
	}
	return &IssuerAlternativeName{n}, nil
}

var issuerAltNameFields = namesFields(NameIssuerAlternativeName, AttrIssuerName)

func (e *IssuerAlternativeName) Name() string { return NameIssuerAlternativeName }

func (e *IssuerAlternativeName) Get(name string) (any, error) {
	return issuerAltNameFields.get(&e.namesExtension, name)
}
func (e *IssuerAlternativeName) Set(name string, v any) error {
	return issuerAltNameFields.set(&e.namesExtension, name, v, e.rederive)
}
func (e *IssuerAlternativeName) Delete(name string) error {
	return issuerAltNameFields.delete(&e.namesExtension, name, e.rederive)
}
func (e *IssuerAlternativeName) AttributeNames() []string {
	return issuerAltNameFields.attributeNames()
}

func (e *IssuerAlternativeName) String() string {
	return namesString(e, "IssuerAlternativeName", e.names)
}

// CertificateIssuer is the CRL entry extension naming the issuer of the
// revoked certificate in an indirect CRL.
type CertificateIssuer struct{ namesExtension }

// NewCertificateIssuer builds the extension. RFC 5280 requires it to be
// critical.
func NewCertificateIssuer(names x509names.GeneralNames) (*CertificateIssuer, error) {
	n, err := newNamesExtension(OIDCertificateIssuer, true, names)
	if err != nil {
		return nil, err
	}
	return &CertificateIssuer{n}, nil
}

// ParseCertificateIssuer decodes an extnValue.
func ParseCertificateIssuer(critical bool, value []byte) (*CertificateIssuer, error) {
	n, err := parseNamesExtension(NameCertificateIssuer, OIDCertificateIssuer, critical, value)
	if err != nil {
		return nil, err
	}
	return &CertificateIssuer{n}, nil
}

var certificateIssuerFields = namesFields(NameCertificateIssuer, AttrIssuer)

func (e *CertificateIssuer) Name() string { return NameCertificateIssuer }

func (e *CertificateIssuer) Get(name string) (any, error) {
	return certificateIssuerFields.get(&e.namesExtension, name)
}
func (e *CertificateIssuer) Set(name string, v any) error {
	return certificateIssuerFields.set(&e.namesExtension, name, v, e.rederive)
}
func (e *CertificateIssuer) Delete(name string) error {
	return certificateIssuerFields.delete(&e.namesExtension, name, e.rederive)
}
func (e *CertificateIssuer) AttributeNames() []string {
	return certificateIssuerFields.attributeNames()
}

func (e *CertificateIssuer) String() string {
	return namesString(e, "Certificate Issuer", e.names)
}
