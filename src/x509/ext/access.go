// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ext

import (
	"encoding/asn1"
	"slices"
	"strings"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
	x509names "github.com/H0llyW00dzZ/x509-der-codec/src/x509/names"
)

// AttrDescriptions is the information access attribute name.
const AttrDescriptions = "descriptions"

// Access methods.
var (
	OIDAccessOCSP         = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 48, 1}
	OIDAccessCAIssuers    = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 48, 2}
	OIDAccessTimeStamping = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 48, 3}
	OIDAccessCARepository = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 48, 5}
)

var accessMethodNames = map[string]string{
	OIDAccessOCSP.String():         "ocsp",
	OIDAccessCAIssuers.String():    "caIssuers",
	OIDAccessTimeStamping.String(): "timeStamping",
	OIDAccessCARepository.String(): "caRepository",
}

// AccessDescription pairs an access method with the location of the service.
type AccessDescription struct {
	Method   asn1.ObjectIdentifier
	Location x509names.GeneralName
}

func (a AccessDescription) encode(b *der.Builder) {
	if a.Location == nil {
		b.SetError(der.Invalidf("AccessDescription: no location"))
		return
	}
	b.AddSequence(func(b *der.Builder) {
		b.AddOID(a.Method)
		x509names.EncodeGeneralName(b, a.Location)
	})
}

func decodeAccessDescription(v der.Value) (AccessDescription, error) {
	r, err := v.Sequence()
	if err != nil {
		return AccessDescription{}, err
	}
	mv, err := r.Next()
	if err != nil {
		return AccessDescription{}, err
	}
	method, err := mv.OID()
	if err != nil {
		return AccessDescription{}, err
	}
	lv, err := r.Next()
	if err != nil {
		return AccessDescription{}, err
	}
	loc, err := x509names.DecodeGeneralName(lv)
	if err != nil {
		return AccessDescription{}, err
	}
	return AccessDescription{Method: method, Location: loc}, r.Finish()
}

// Equal compares method and location.
func (a AccessDescription) Equal(o AccessDescription) bool {
	return a.Method.Equal(o.Method) && a.Location != nil && a.Location.Equal(o.Location)
}

func (a AccessDescription) String() string {
	method, ok := accessMethodNames[a.Method.String()]
	if !ok {
		method = a.Method.String()
	}
	return "accessMethod: " + method + "\n   accessLocation: " + a.Location.String()
}

// accessExtension is the body shared by AuthorityInfoAccess and
// SubjectInfoAccess.
type accessExtension struct {
	extension
	descriptions []AccessDescription
}

func newAccessExtension(id asn1.ObjectIdentifier, critical bool, d []AccessDescription) (accessExtension, error) {
	e := accessExtension{extension: extension{id: slices.Clone(id), critical: critical}, descriptions: slices.Clone(d)}
	if err := e.derive(e.encodeValue); err != nil {
		return accessExtension{}, err
	}
	return e, nil
}

func parseAccessExtension(name string, id asn1.ObjectIdentifier, critical bool, value []byte) (accessExtension, error) {
	v, err := decodeValue(name, value)
	if err != nil {
		return accessExtension{}, err
	}
	r, err := v.Sequence()
	if err != nil {
		return accessExtension{}, err
	}
	e := accessExtension{extension: extension{id: slices.Clone(id), critical: critical}}
	for !r.Empty() {
		dv, err := r.Next()
		if err != nil {
			return accessExtension{}, err
		}
		d, err := decodeAccessDescription(dv)
		if err != nil {
			return accessExtension{}, err
		}
		e.descriptions = append(e.descriptions, d)
	}
	if len(e.descriptions) == 0 {
		return accessExtension{}, der.Invalidf("%s: no access descriptions", name)
	}
	e.keep(value)
	return e, nil
}

func (e *accessExtension) encodeValue(b *der.Builder) {
	if len(e.descriptions) == 0 {
		b.SetError(der.Invalidf("no access descriptions"))
		return
	}
	b.AddSequence(func(b *der.Builder) {
		for _, d := range e.descriptions {
			d.encode(b)
		}
	})
}

func (e *accessExtension) rederive() error { return e.derive(e.encodeValue) }

// Descriptions returns a copy of the access descriptions.
func (e *accessExtension) Descriptions() []AccessDescription { return slices.Clone(e.descriptions) }

// URIs returns the URI locations for method, in order.
func (e *accessExtension) URIs(method asn1.ObjectIdentifier) []string {
	var out []string
	for _, d := range e.descriptions {
		if u, ok := d.Location.(x509names.URIName); ok && d.Method.Equal(method) {
			out = append(out, u.URI())
		}
	}
	return out
}

func (e *accessExtension) describe(ext Extension, title string) string {
	parts := make([]string, len(e.descriptions))
	for i, d := range e.descriptions {
		parts[i] = "  [" + d.String() + "]"
	}
	return header(ext) + title + " [\n" + strings.Join(parts, "\n") + "\n]\n"
}

var accessFields = newFields("InfoAccess", []string{AttrDescriptions}, map[string]field[accessExtension]{
	AttrDescriptions: {
		get: func(e *accessExtension) any { return slices.Clone(e.descriptions) },
		set: func(e *accessExtension, v any) error {
			d, err := as[[]AccessDescription](AttrDescriptions, v)
			e.descriptions = slices.Clone(d)
			return err
		},
	},
})

// AuthorityInfoAccess says how to reach services of the issuing CA, such as
// OCSP responders and issuer certificates.
type AuthorityInfoAccess struct{ accessExtension }

// NewAuthorityInfoAccess builds the extension from a non-empty list.
func NewAuthorityInfoAccess(critical bool, descriptions ...AccessDescription) (*AuthorityInfoAccess, error) {
	a, err := newAccessExtension(OIDAuthorityInfoAccess, critical, descriptions)
	if err != nil {
		return nil, err
	}
	return &AuthorityInfoAccess{a}, nil
}

// ParseAuthorityInfoAccess decodes an extnValue.
func ParseAuthorityInfoAccess(critical bool, value []byte) (*AuthorityInfoAccess, error) {
	a, err := parseAccessExtension(NameAuthorityInfoAccess, OIDAuthorityInfoAccess, critical, value)
	if err != nil {
		return nil, err
	}
	return &AuthorityInfoAccess{a}, nil
}

func (e *AuthorityInfoAccess) Name() string { return NameAuthorityInfoAccess }

// OCSPServers returns the OCSP responder URIs.
func (e *AuthorityInfoAccess) OCSPServers() []string { return e.URIs(OIDAccessOCSP) }

// IssuingCertificateURLs returns the caIssuers URIs.
func (e *AuthorityInfoAccess) IssuingCertificateURLs() []string { return e.URIs(OIDAccessCAIssuers) }

func (e *AuthorityInfoAccess) Get(name string) (any, error) {
	return accessFields.get(&e.accessExtension, name)
}
func (e *AuthorityInfoAccess) Set(name string, v any) error {
	return accessFields.set(&e.accessExtension, name, v, e.rederive)
}
func (e *AuthorityInfoAccess) Delete(name string) error {
	return accessFields.delete(&e.accessExtension, name, e.rederive)
}
func (e *AuthorityInfoAccess) AttributeNames() []string { return accessFields.attributeNames() }

func (e *AuthorityInfoAccess) String() string { return e.describe(e, "AuthorityInfoAccess") }

// SubjectInfoAccess says how to reach services offered by the subject.
type SubjectInfoAccess struct{ accessExtension }

// NewSubjectInfoAccess builds the extension from a non-empty list.
func NewSubjectInfoAccess(critical bool, descriptions ...AccessDescription) (*SubjectInfoAccess, error) {
	a, err := newAccessExtension(OIDSubjectInfoAccess, critical, descriptions)
	if err != nil {
		return nil, err
	}
	return &SubjectInfoAccess{a}, nil
}

// ParseSubjectInfoAccess decodes an extnValue.
func ParseSubjectInfoAccess(critical bool, value []byte) (*SubjectInfoAccess, error) {
	a, err := parseAccessExtension(NameSubjectInfoAccess, OIDSubjectInfoAccess, critical, value)
	if err != nil {
		return nil, err
	}
	return &SubjectInfoAccess{a}, nil
}

func (e *SubjectInfoAccess) Name() string { return NameSubjectInfoAccess }

func (e *SubjectInfoAccess) Get(name string) (any, error) {
	return accessFields.get(&e.accessExtension, name)
}
func (e *SubjectInfoAccess) Set(name string, v any) error {
	return accessFields.set(&e.accessExtension, name, v, e.rederive)
}
func (e *SubjectInfoAccess) Delete(name string) error {
	return accessFields.delete(&e.accessExtension, name, e.rederive)
}
func (e *SubjectInfoAccess) AttributeNames() []string { return accessFields.attributeNames() }

func (e *SubjectInfoAccess) String() string { return e.describe(e, "SubjectInfoAccess") }
