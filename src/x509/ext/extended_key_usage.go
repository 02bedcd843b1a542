// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ext

import (
	"crypto/x509"
	"encoding/asn1"
	"slices"
	"strings"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
	"github.com/H0llyW00dzZ/x509-der-codec/src/x509/oidmap"
)

// AttrUsages is the ExtendedKeyUsage attribute name.
const AttrUsages = "usages"

// extKeyUsages maps well-known key purposes to their crypto/x509 values.
var extKeyUsages = oidmap.New[x509.ExtKeyUsage]()

func init() {
	for _, e := range []oidmap.Entry[x509.ExtKeyUsage]{
		{Name: "anyExtendedKeyUsage", OID: asn1.ObjectIdentifier{2, 5, 29, 37, 0}, Handler: x509.ExtKeyUsageAny},
		{Name: "serverAuth", OID: asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 1}, Handler: x509.ExtKeyUsageServerAuth},
		{Name: "clientAuth", OID: asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 2}, Handler: x509.ExtKeyUsageClientAuth},
		{Name: "codeSigning", OID: asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 3}, Handler: x509.ExtKeyUsageCodeSigning},
		{Name: "emailProtection", OID: asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 4}, Handler: x509.ExtKeyUsageEmailProtection},
		{Name: "ipsecEndSystem", OID: asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 5}, Handler: x509.ExtKeyUsageIPSECEndSystem},
		{Name: "ipsecTunnel", OID: asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 6}, Handler: x509.ExtKeyUsageIPSECTunnel},
		{Name: "ipsecUser", OID: asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 7}, Handler: x509.ExtKeyUsageIPSECUser},
		{Name: "timeStamping", OID: asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 8}, Handler: x509.ExtKeyUsageTimeStamping},
		{Name: "OCSPSigning", OID: asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 9}, Handler: x509.ExtKeyUsageOCSPSigning},
		{Name: "msSGC", OID: asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 311, 10, 3, 3}, Handler: x509.ExtKeyUsageMicrosoftServerGatedCrypto},
		{Name: "nsSGC", OID: asn1.ObjectIdentifier{2, 16, 840, 1, 113730, 4, 1}, Handler: x509.ExtKeyUsageNetscapeServerGatedCrypto},
	} {
		extKeyUsages.MustRegister(e.Name, e.OID, e.Handler)
	}
}

// ExtKeyUsageOID returns the OID of a crypto/x509 key purpose.
func ExtKeyUsageOID(u x509.ExtKeyUsage) (asn1.ObjectIdentifier, bool) {
	for _, e := range extKeyUsages.Entries() {
		if e.Handler == u {
			return e.OID, true
		}
	}
	return nil, false
}

// ExtendedKeyUsage lists the purposes for which the certified key may be used.
type ExtendedKeyUsage struct {
	extension
	usages []asn1.ObjectIdentifier
}

// NewExtendedKeyUsage builds the extension from a non-empty list.
func NewExtendedKeyUsage(critical bool, usages ...asn1.ObjectIdentifier) (*ExtendedKeyUsage, error) {
	e := &ExtendedKeyUsage{extension: extension{id: slices.Clone(OIDExtendedKeyUsage), critical: critical}, usages: cloneOIDs(usages)}
	if err := e.derive(e.encodeValue); err != nil {
		return nil, err
	}
	return e, nil
}

func cloneOIDs(in []asn1.ObjectIdentifier) []asn1.ObjectIdentifier {
	if in == nil {
		return nil
	}
	out := make([]asn1.ObjectIdentifier, len(in))
	for i, o := range in {
		out[i] = slices.Clone(o)
	}
	return out
}

// ParseExtendedKeyUsage decodes an extnValue.
func ParseExtendedKeyUsage(critical bool, value []byte) (*ExtendedKeyUsage, error) {
	v, err := decodeValue(NameExtendedKeyUsage, value)
	if err != nil {
		return nil, err
	}
	r, err := v.Sequence()
	if err != nil {
		return nil, err
	}
	e := &ExtendedKeyUsage{extension: extension{id: slices.Clone(OIDExtendedKeyUsage), critical: critical}}
	for !r.Empty() {
		ov, err := r.Next()
		if err != nil {
			return nil, err
		}
		oid, err := ov.OID()
		if err != nil {
			return nil, err
		}
		e.usages = append(e.usages, oid)
	}
	if len(e.usages) == 0 {
		return nil, der.Invalidf("ExtendedKeyUsage: no key purposes")
	}
	e.keep(value)
	return e, nil
}

func (e *ExtendedKeyUsage) encodeValue(b *der.Builder) {
	if len(e.usages) == 0 {
		b.SetError(der.Invalidf("ExtendedKeyUsage: no key purposes"))
		return
	}
	b.AddSequence(func(b *der.Builder) {
		for _, u := range e.usages {
			b.AddOID(u)
		}
	})
}

func (e *ExtendedKeyUsage) rederive() error { return e.derive(e.encodeValue) }

func (e *ExtendedKeyUsage) Name() string { return NameExtendedKeyUsage }

// Usages returns a copy of the key purpose OIDs.
func (e *ExtendedKeyUsage) Usages() []asn1.ObjectIdentifier { return cloneOIDs(e.usages) }

// X509 splits the purposes into those crypto/x509 knows and the rest.
func (e *ExtendedKeyUsage) X509() (known []x509.ExtKeyUsage, unknown []asn1.ObjectIdentifier) {
	for _, u := range e.usages {
		if entry, ok := extKeyUsages.Lookup(u); ok {
			known = append(known, entry.Handler)
		} else {
			unknown = append(unknown, slices.Clone(u))
		}
	}
	return known, unknown
}

var extendedKeyUsageFields = newFields(NameExtendedKeyUsage, []string{AttrUsages}, map[string]field[ExtendedKeyUsage]{
	AttrUsages: {
		get: func(e *ExtendedKeyUsage) any { return cloneOIDs(e.usages) },
		set: func(e *ExtendedKeyUsage, v any) error {
			u, err := as[[]asn1.ObjectIdentifier](AttrUsages, v)
			e.usages = cloneOIDs(u)
			return err
		},
	},
})

func (e *ExtendedKeyUsage) Get(name string) (any, error) { return extendedKeyUsageFields.get(e, name) }
func (e *ExtendedKeyUsage) Set(name string, v any) error {
	return extendedKeyUsageFields.set(e, name, v, e.rederive)
}
func (e *ExtendedKeyUsage) Delete(name string) error {
	return extendedKeyUsageFields.delete(e, name, e.rederive)
}
func (e *ExtendedKeyUsage) AttributeNames() []string { return extendedKeyUsageFields.attributeNames() }

func (e *ExtendedKeyUsage) String() string {
	parts := make([]string, len(e.usages))
	for i, u := range e.usages {
		parts[i] = "  " + extKeyUsages.NameOf(u)
	}
	return header(e) + "ExtendedKeyUsages [\n" + strings.Join(parts, "\n") + "\n]\n"
}
