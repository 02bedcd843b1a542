// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ext

import (
	"encoding/asn1"
	"fmt"
	"slices"
	"strings"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
	x509names "github.com/H0llyW00dzZ/x509-der-codec/src/x509/names"
)

// Distribution point attribute names.
const (
	AttrPoints = "points"
)

// ReasonFlags bit positions.
const (
	FlagUnused = iota
	FlagKeyCompromise
	FlagCACompromise
	FlagAffiliationChanged
	FlagSuperseded
	FlagCessationOfOperation
	FlagCertificateHold
	FlagPrivilegeWithdrawn
	FlagAACompromise
)

var reasonFlagNames = []string{
	"unused",
	"key_compromise",
	"ca_compromise",
	"affiliation_changed",
	"superseded",
	"cessation_of_operation",
	"certificate_hold",
	"privilege_withdrawn",
	"aa_compromise",
}

// ReasonFlags is the named-bit set of revocation reasons a distribution point
// covers.
type ReasonFlags []bool

// NewReasonFlags returns flags with the given positions set.
func NewReasonFlags(positions ...int) ReasonFlags {
	var n namedBits
	for _, pos := range positions {
		if pos >= 0 {
			n = n.with(pos, true)
		}
	}
	return ReasonFlags(n)
}

// IsSet is false for any position past the end.
func (r ReasonFlags) IsSet(pos int) bool { return namedBits(r).isSet(pos) }

func (r ReasonFlags) encode(b *der.Builder) { b.AddTruncatedBools(r) }

func (r ReasonFlags) String() string { return bitString(reasonFlagNames, namedBits(r)) }

// DistributionPointName is either a full name or a name relative to the CRL
// issuer. Exactly one of the two is set.
type DistributionPointName struct {
	FullName     x509names.GeneralNames
	RelativeName x509names.RDN
}

// NewFullName returns a full-name distribution point name.
func NewFullName(names ...x509names.GeneralName) *DistributionPointName {
	return &DistributionPointName{FullName: names}
}

// NewRelativeName returns a name relative to the CRL issuer.
func NewRelativeName(rdn x509names.RDN) *DistributionPointName {
	return &DistributionPointName{RelativeName: slices.Clone(rdn)}
}

// encode writes the CHOICE. The caller supplies the enclosing [0] tag.
func (n *DistributionPointName) encode(b *der.Builder) {
	switch {
	case len(n.FullName) > 0 && len(n.RelativeName) > 0:
		b.SetError(der.Invalidf("DistributionPointName has both fullName and nameRelativeToCRLIssuer"))
	case len(n.FullName) > 0:
		n.FullName.EncodeImplicit(b, 0)
	case len(n.RelativeName) > 0:
		b.AddImplicit(1, n.RelativeName.Encode)
	default:
		b.SetError(der.Invalidf("DistributionPointName is empty"))
	}
}

// decodeDistributionPointName reads the CHOICE held by the [0] EXPLICIT
// wrapper w.
func decodeDistributionPointName(w der.Value) (*DistributionPointName, error) {
	children, err := w.Children()
	if err != nil {
		return nil, err
	}
	if len(children) == 2 && children[0].IsContext(0) && children[1].IsContext(1) {
		return nil, der.Invalidf("DistributionPointName has both fullName and nameRelativeToCRLIssuer")
	}
	if len(children) != 1 {
		return nil, der.Malformedf("DistributionPointName: expected one alternative, found %d", len(children))
	}
	c := children[0]
	switch {
	case c.IsContext(0):
		names, err := x509names.DecodeGeneralNames(c.Implicit(der.TagSequence))
		if err != nil {
			return nil, err
		}
		return &DistributionPointName{FullName: names}, nil
	case c.IsContext(1):
		rdn, err := x509names.DecodeRDN(c.Implicit(der.TagSet))
		if err != nil {
			return nil, err
		}
		return &DistributionPointName{RelativeName: rdn}, nil
	default:
		return nil, der.Malformedf("DistributionPointName: unexpected %s", c)
	}
}

// Equal compares both alternatives.
func (n *DistributionPointName) Equal(o *DistributionPointName) bool {
	if n == nil || o == nil {
		return n == o
	}
	if len(n.RelativeName) != len(o.RelativeName) {
		return false
	}
	return n.FullName.Equal(o.FullName) && (len(n.RelativeName) == 0 || n.RelativeName.Equal(o.RelativeName))
}

func (n *DistributionPointName) String() string {
	if len(n.FullName) > 0 {
		return "FullName: " + n.FullName.String()
	}
	return "RelativeName: " + n.RelativeName.String()
}

// DistributionPoint says where to find a CRL. Nil fields are absent.
type DistributionPoint struct {
	Name      *DistributionPointName
	Reasons   ReasonFlags
	CRLIssuer x509names.GeneralNames
}

// Encode writes the DistributionPoint SEQUENCE.
func (p DistributionPoint) Encode(b *der.Builder) {
	if p.Name == nil && len(p.CRLIssuer) == 0 {
		b.SetError(der.Invalidf("DistributionPoint needs a name or a CRL issuer"))
		return
	}
	b.AddSequence(func(b *der.Builder) {
		if p.Name != nil {
			b.AddExplicit(0, p.Name.encode)
		}
		if p.Reasons != nil {
			b.AddImplicit(1, p.Reasons.encode)
		}
		if len(p.CRLIssuer) > 0 {
			p.CRLIssuer.EncodeImplicit(b, 2)
		}
	})
}

// DecodeDistributionPoint decodes a DistributionPoint SEQUENCE.
func DecodeDistributionPoint(v der.Value) (DistributionPoint, error) {
	r, err := v.Sequence()
	if err != nil {
		return DistributionPoint{}, err
	}
	var p DistributionPoint
	if w, ok, err := r.NextIf(der.ClassContextSpecific, 0); err != nil {
		return DistributionPoint{}, err
	} else if ok {
		if p.Name, err = decodeDistributionPointName(w); err != nil {
			return DistributionPoint{}, err
		}
	}
	if f, ok, err := r.NextIf(der.ClassContextSpecific, 1); err != nil {
		return DistributionPoint{}, err
	} else if ok {
		bits, err := f.Implicit(der.TagBitString).Bools()
		if err != nil {
			return DistributionPoint{}, err
		}
		p.Reasons = ReasonFlags(bits)
	}
	if f, ok, err := r.NextIf(der.ClassContextSpecific, 2); err != nil {
		return DistributionPoint{}, err
	} else if ok {
		if p.CRLIssuer, err = x509names.DecodeGeneralNames(f.Implicit(der.TagSequence)); err != nil {
			return DistributionPoint{}, err
		}
	}
	if err := r.Finish(); err != nil {
		return DistributionPoint{}, err
	}
	if p.Name == nil && p.CRLIssuer == nil {
		return DistributionPoint{}, der.Invalidf("DistributionPoint needs a name or a CRL issuer")
	}
	return p, nil
}

// Equal compares all three fields.
func (p DistributionPoint) Equal(o DistributionPoint) bool {
	return p.Name.Equal(o.Name) && slices.Equal(p.Reasons, o.Reasons) && p.CRLIssuer.Equal(o.CRLIssuer)
}

// URIs returns the URIs of a full-name point.
func (p DistributionPoint) URIs() []string {
	if p.Name == nil {
		return nil
	}
	var out []string
	for _, n := range p.Name.FullName.OfType(x509names.TypeURI) {
		out = append(out, n.(x509names.URIName).URI())
	}
	return out
}

func (p DistributionPoint) String() string {
	var parts []string
	if p.Name != nil {
		parts = append(parts, p.Name.String())
	}
	if p.Reasons != nil {
		parts = append(parts, "Reasons: "+p.Reasons.String())
	}
	if p.CRLIssuer != nil {
		parts = append(parts, "CRLIssuer: "+p.CRLIssuer.String())
	}
	return "DistributionPoint:\n     [" + strings.Join(parts, "; ") + "]"
}

// CRLDistributionPoints lists where the CRLs covering a certificate are
// published.
type CRLDistributionPoints struct {
	extension
	points []DistributionPoint
}

func newPoints(id asn1.ObjectIdentifier, critical bool, points []DistributionPoint) (CRLDistributionPoints, error) {
	e := CRLDistributionPoints{extension: extension{id: slices.Clone(id), critical: critical}, points: slices.Clone(points)}
	if err := e.derive(e.encodeValue); err != nil {
		return CRLDistributionPoints{}, err
	}
	return e, nil
}

func parsePoints(name string, id asn1.ObjectIdentifier, critical bool, value []byte) (CRLDistributionPoints, error) {
	v, err := decodeValue(name, value)
	if err != nil {
		return CRLDistributionPoints{}, err
	}
	r, err := v.Sequence()
	if err != nil {
		return CRLDistributionPoints{}, err
	}
	e := CRLDistributionPoints{extension: extension{id: slices.Clone(id), critical: critical}}
	for !r.Empty() {
		pv, err := r.Next()
		if err != nil {
			return CRLDistributionPoints{}, err
		}
		p, err := DecodeDistributionPoint(pv)
		if err != nil {
			return CRLDistributionPoints{}, err
		}
		e.points = append(e.points, p)
	}
	if len(e.points) == 0 {
		return CRLDistributionPoints{}, der.Invalidf("%s: no distribution points", name)
	}
	e.keep(value)
	return e, nil
}

// NewCRLDistributionPoints builds the extension from a non-empty list.
func NewCRLDistributionPoints(critical bool, points ...DistributionPoint) (*CRLDistributionPoints, error) {
	e, err := newPoints(OIDCRLDistributionPoints, critical, points)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ParseCRLDistributionPoints decodes an extnValue.
func ParseCRLDistributionPoints(critical bool, value []byte) (*CRLDistributionPoints, error) {
	e, err := parsePoints(NameCRLDistributionPoints, OIDCRLDistributionPoints, critical, value)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (e *CRLDistributionPoints) encodeValue(b *der.Builder) {
	if len(e.points) == 0 {
		b.SetError(der.Invalidf("no distribution points"))
		return
	}
	b.AddSequence(func(b *der.Builder) {
		for _, p := range e.points {
			p.Encode(b)
		}
	})
}

func (e *CRLDistributionPoints) rederive() error { return e.derive(e.encodeValue) }

func (e *CRLDistributionPoints) Name() string { return NameCRLDistributionPoints }

// Points returns a copy of the distribution points.
func (e *CRLDistributionPoints) Points() []DistributionPoint { return slices.Clone(e.points) }

var crlDistributionPointsFields = newFields(NameCRLDistributionPoints, []string{AttrPoints}, map[string]field[CRLDistributionPoints]{
	AttrPoints: {
		get: func(e *CRLDistributionPoints) any { return slices.Clone(e.points) },
		set: func(e *CRLDistributionPoints, v any) error {
			points, err := as[[]DistributionPoint](AttrPoints, v)
			if err != nil {
				return err
			}
			e.points = slices.Clone(points)
			return nil
		},
	},
})

func (e *CRLDistributionPoints) Get(name string) (any, error) {
	return crlDistributionPointsFields.get(e, name)
}
func (e *CRLDistributionPoints) Set(name string, v any) error {
	return crlDistributionPointsFields.set(e, name, v, e.rederive)
}
func (e *CRLDistributionPoints) Delete(name string) error {
	return crlDistributionPointsFields.delete(e, name, e.rederive)
}
func (e *CRLDistributionPoints) AttributeNames() []string {
	return crlDistributionPointsFields.attributeNames()
}

func (e *CRLDistributionPoints) pointsString(title string) string {
	s := header(e) + title + " [\n"
	for i, p := range e.points {
		s += fmt.Sprintf("  [%d]%s\n", i+1, p)
	}
	return s + "]\n"
}

func (e *CRLDistributionPoints) String() string { return e.pointsString("CRLDistributionPoints") }

// FreshestCRL points at delta CRLs. Its value has the CRLDistributionPoints
// syntax.
type FreshestCRL struct{ CRLDistributionPoints }

// NewFreshestCRL builds the extension. RFC 5280 requires it to be
// non-critical.
func NewFreshestCRL(points ...DistributionPoint) (*FreshestCRL, error) {
	e, err := newPoints(OIDFreshestCRL, false, points)
	if err != nil {
		return nil, err
	}
	return &FreshestCRL{e}, nil
}

// ParseFreshestCRL decodes an extnValue.
func ParseFreshestCRL(critical bool, value []byte) (*FreshestCRL, error) {
	e, err := parsePoints(NameFreshestCRL, OIDFreshestCRL, critical, value)
	if err != nil {
		return nil, err
	}
	return &FreshestCRL{e}, nil
}

func (e *FreshestCRL) Name() string { return NameFreshestCRL }

func (e *FreshestCRL) String() string { return e.pointsString("FreshestCRL") }
