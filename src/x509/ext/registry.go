// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ext

import (
	"encoding/asn1"
	"fmt"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
	"github.com/H0llyW00dzZ/x509-der-codec/src/x509/oidmap"
)

// Factory decodes the extnValue of one extension type.
type Factory func(critical bool, value []byte) (Extension, error)

// registry maps extension OIDs to their factories. It is safe for concurrent
// lookups while registration happens.
var registry = oidmap.New[Factory]()

// Extension names as registered.
const (
	NameAuthorityKeyIdentifier   = "AuthorityKeyIdentifier"
	NameSubjectKeyIdentifier     = "SubjectKeyIdentifier"
	NameKeyUsage                 = "KeyUsage"
	NamePrivateKeyUsage          = "PrivateKeyUsage"
	NameSubjectAlternativeName   = "SubjectAlternativeName"
	NameIssuerAlternativeName    = "IssuerAlternativeName"
	NameBasicConstraints         = "BasicConstraints"
	NameCRLNumber                = "CRLNumber"
	NameCRLReasonCode            = "CRLReasonCode"
	NameInvalidityDate           = "InvalidityDate"
	NameDeltaCRLIndicator        = "DeltaCRLIndicator"
	NameIssuingDistributionPoint = "IssuingDistributionPoint"
	NameCertificateIssuer        = "CertificateIssuer"
	NameNameConstraints          = "NameConstraints"
	NameCRLDistributionPoints    = "CRLDistributionPoints"
	NameCertificatePolicies      = "CertificatePolicies"
	NamePolicyMappings           = "PolicyMappings"
	NamePolicyConstraints        = "PolicyConstraints"
	NameExtendedKeyUsage         = "ExtendedKeyUsage"
	NameFreshestCRL              = "FreshestCRL"
	NameInhibitAnyPolicy         = "InhibitAnyPolicy"
	NameAuthorityInfoAccess      = "AuthorityInfoAccess"
	NameSubjectInfoAccess        = "SubjectInfoAccess"
	NameOCSPNoCheck              = "OCSPNoCheck"
	NameNetscapeCertType         = "NetscapeCertType"
)

// Extension OIDs.
var (
	OIDAuthorityKeyIdentifier   = asn1.ObjectIdentifier{2, 5, 29, 35}
	OIDSubjectKeyIdentifier     = asn1.ObjectIdentifier{2, 5, 29, 14}
	OIDKeyUsage                 = asn1.ObjectIdentifier{2, 5, 29, 15}
	OIDPrivateKeyUsagePeriod    = asn1.ObjectIdentifier{2, 5, 29, 16}
	OIDSubjectAlternativeName   = asn1.ObjectIdentifier{2, 5, 29, 17}
	OIDIssuerAlternativeName    = asn1.ObjectIdentifier{2, 5, 29, 18}
	OIDBasicConstraints         = asn1.ObjectIdentifier{2, 5, 29, 19}
	OIDCRLNumber                = asn1.ObjectIdentifier{2, 5, 29, 20}
	OIDCRLReasonCode            = asn1.ObjectIdentifier{2, 5, 29, 21}
	OIDInvalidityDate           = asn1.ObjectIdentifier{2, 5, 29, 24}
	OIDDeltaCRLIndicator        = asn1.ObjectIdentifier{2, 5, 29, 27}
	OIDIssuingDistributionPoint = asn1.ObjectIdentifier{2, 5, 29, 28}
	OIDCertificateIssuer        = asn1.ObjectIdentifier{2, 5, 29, 29}
	OIDNameConstraints          = asn1.ObjectIdentifier{2, 5, 29, 30}
	OIDCRLDistributionPoints    = asn1.ObjectIdentifier{2, 5, 29, 31}
	OIDCertificatePolicies      = asn1.ObjectIdentifier{2, 5, 29, 32}
	OIDPolicyMappings           = asn1.ObjectIdentifier{2, 5, 29, 33}
	OIDPolicyConstraints        = asn1.ObjectIdentifier{2, 5, 29, 36}
	OIDExtendedKeyUsage         = asn1.ObjectIdentifier{2, 5, 29, 37}
	OIDFreshestCRL              = asn1.ObjectIdentifier{2, 5, 29, 46}
	OIDInhibitAnyPolicy         = asn1.ObjectIdentifier{2, 5, 29, 54}
	OIDAuthorityInfoAccess      = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 1, 1}
	OIDSubjectInfoAccess        = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 1, 11}
	OIDOCSPNoCheck              = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 48, 1, 5}
	OIDNetscapeCertType         = asn1.ObjectIdentifier{2, 16, 840, 1, 113730, 1, 1}
)

// factory adapts a typed parse function to a Factory.
func factory[E Extension](parse func(critical bool, value []byte) (E, error)) Factory {
	return func(critical bool, value []byte) (Extension, error) {
		e, err := parse(critical, value)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
}

func init() {
	for _, e := range []oidmap.Entry[Factory]{
		{Name: NameAuthorityKeyIdentifier, OID: OIDAuthorityKeyIdentifier, Handler: factory(ParseAuthorityKeyIdentifier)},
		{Name: NameSubjectKeyIdentifier, OID: OIDSubjectKeyIdentifier, Handler: factory(ParseSubjectKeyIdentifier)},
		{Name: NameKeyUsage, OID: OIDKeyUsage, Handler: factory(ParseKeyUsage)},
		{Name: NamePrivateKeyUsage, OID: OIDPrivateKeyUsagePeriod, Handler: factory(ParsePrivateKeyUsagePeriod)},
		{Name: NameSubjectAlternativeName, OID: OIDSubjectAlternativeName, Handler: factory(ParseSubjectAlternativeName)},
		{Name: NameIssuerAlternativeName, OID: OIDIssuerAlternativeName, Handler: factory(ParseIssuerAlternativeName)},
		{Name: NameBasicConstraints, OID: OIDBasicConstraints, Handler: factory(ParseBasicConstraints)},
		{Name: NameCRLNumber, OID: OIDCRLNumber, Handler: factory(ParseCRLNumber)},
		{Name: NameCRLReasonCode, OID: OIDCRLReasonCode, Handler: factory(ParseCRLReasonCode)},
		{Name: NameInvalidityDate, OID: OIDInvalidityDate, Handler: factory(ParseInvalidityDate)},
		{Name: NameDeltaCRLIndicator, OID: OIDDeltaCRLIndicator, Handler: factory(ParseDeltaCRLIndicator)},
		{Name: NameIssuingDistributionPoint, OID: OIDIssuingDistributionPoint, Handler: factory(ParseIssuingDistributionPoint)},
		{Name: NameCertificateIssuer, OID: OIDCertificateIssuer, Handler: factory(ParseCertificateIssuer)},
		{Name: NameNameConstraints, OID: OIDNameConstraints, Handler: factory(ParseNameConstraints)},
		{Name: NameCRLDistributionPoints, OID: OIDCRLDistributionPoints, Handler: factory(ParseCRLDistributionPoints)},
		{Name: NameCertificatePolicies, OID: OIDCertificatePolicies, Handler: factory(ParseCertificatePolicies)},
		{Name: NamePolicyMappings, OID: OIDPolicyMappings, Handler: factory(ParsePolicyMappings)},
		{Name: NamePolicyConstraints, OID: OIDPolicyConstraints, Handler: factory(ParsePolicyConstraints)},
		{Name: NameExtendedKeyUsage, OID: OIDExtendedKeyUsage, Handler: factory(ParseExtendedKeyUsage)},
		{Name: NameFreshestCRL, OID: OIDFreshestCRL, Handler: factory(ParseFreshestCRL)},
		{Name: NameInhibitAnyPolicy, OID: OIDInhibitAnyPolicy, Handler: factory(ParseInhibitAnyPolicy)},
		{Name: NameAuthorityInfoAccess, OID: OIDAuthorityInfoAccess, Handler: factory(ParseAuthorityInfoAccess)},
		{Name: NameSubjectInfoAccess, OID: OIDSubjectInfoAccess, Handler: factory(ParseSubjectInfoAccess)},
		{Name: NameOCSPNoCheck, OID: OIDOCSPNoCheck, Handler: factory(ParseOCSPNoCheck)},
		{Name: NameNetscapeCertType, OID: OIDNetscapeCertType, Handler: factory(ParseNetscapeCertType)},
	} {
		registry.MustRegister(e.Name, e.OID, e.Handler)
	}
}

// Register adds a handler for a new extension OID. Both the name and the OID
// must be unused.
func Register(name string, oid asn1.ObjectIdentifier, f Factory) error {
	if f == nil {
		return fmt.Errorf("%w: nil factory for %s", oidmap.ErrInvalid, name)
	}
	return registry.Register(name, oid, f)
}

// RegisterRaw names an extension OID without giving it a decoder. Matching
// extensions decode as [*RawExtension] carrying name.
func RegisterRaw(name string, oid asn1.ObjectIdentifier) error {
	return Register(name, oid, func(critical bool, value []byte) (Extension, error) {
		return newRawExtension(name, oid, critical, value, false), nil
	})
}

// Lookup returns the factory registered for oid.
func Lookup(oid asn1.ObjectIdentifier) (Factory, bool) {
	e, ok := registry.Lookup(oid)
	return e.Handler, ok
}

// LookupName returns the OID and factory registered under name.
func LookupName(name string) (asn1.ObjectIdentifier, Factory, bool) {
	e, ok := registry.LookupName(name)
	return e.OID, e.Handler, ok
}

// NameOf returns the registered name of oid, or its dotted form.
func NameOf(oid asn1.ObjectIdentifier) string { return registry.NameOf(oid) }

// Registered lists the names of all registered extensions, sorted.
func Registered() []string {
	entries := registry.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

// ParseExtension decodes one DER encoded Extension SEQUENCE.
func ParseExtension(b []byte) (Extension, error) {
	v, err := der.Decode(b)
	if err != nil {
		return nil, err
	}
	return DecodeExtension(v)
}

// DecodeExtension decodes an Extension SEQUENCE and dispatches its value to
// the registered factory. Unknown OIDs yield a [*RawExtension].
func DecodeExtension(v der.Value) (Extension, error) {
	id, critical, value, err := decodeRecord(v)
	if err != nil {
		return nil, err
	}
	f, ok := Lookup(id)
	if !ok {
		return newRawExtension("", id, critical, value, false), nil
	}
	ext, err := f(critical, value)
	if err != nil {
		return nil, fmt.Errorf("x509ext: %s: %w", NameOf(id), err)
	}
	return ext, nil
}

// decodeRecord splits an Extension SEQUENCE into its three fields.
func decodeRecord(v der.Value) (asn1.ObjectIdentifier, bool, []byte, error) {
	r, err := v.Sequence()
	if err != nil {
		return nil, false, nil, err
	}
	ov, err := r.Next()
	if err != nil {
		return nil, false, nil, err
	}
	id, err := ov.OID()
	if err != nil {
		return nil, false, nil, err
	}
	var critical bool
	if cv, ok, err := r.NextIf(der.ClassUniversal, der.TagBoolean); err != nil {
		return nil, false, nil, err
	} else if ok {
		if critical, err = cv.Boolean(); err != nil {
			return nil, false, nil, err
		}
	}
	vv, err := r.Next()
	if err != nil {
		return nil, false, nil, err
	}
	value, err := vv.OctetString()
	if err != nil {
		return nil, false, nil, err
	}
	if err := r.Finish(); err != nil {
		return nil, false, nil, err
	}
	return id, critical, value, nil
}
