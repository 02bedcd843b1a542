// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ext

import (
	"slices"
	"strings"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
)

// IssuingDistributionPoint attribute names.
const (
	AttrPoint              = "point"
	AttrReasons            = "reasons"
	AttrOnlyUserCerts      = "only_user_certs"
	AttrOnlyCACerts        = "only_ca_certs"
	AttrOnlyAttributeCerts = "only_attribute_certs"
	AttrIndirectCRL        = "indirect_crl"
)

// IssuingDistributionPoint describes the scope of a CRL. At most one of the
// three "only contains" flags may be set.
type IssuingDistributionPoint struct {
	extension
	point         *DistributionPointName
	reasons       ReasonFlags
	onlyUser      bool
	onlyCA        bool
	onlyAttribute bool
	indirect      bool
}

// IssuingDistributionPointOptions holds the optional fields.
type IssuingDistributionPointOptions struct {
	Point              *DistributionPointName
	Reasons            ReasonFlags
	OnlyUserCerts      bool
	OnlyCACerts        bool
	OnlyAttributeCerts bool
	IndirectCRL        bool
}

// NewIssuingDistributionPoint builds the extension. RFC 5280 requires it to
// be critical.
func NewIssuingDistributionPoint(opts IssuingDistributionPointOptions) (*IssuingDistributionPoint, error) {
	e := &IssuingDistributionPoint{
		extension:     extension{id: slices.Clone(OIDIssuingDistributionPoint), critical: true},
		point:         opts.Point,
		reasons:       slices.Clone(opts.Reasons),
		onlyUser:      opts.OnlyUserCerts,
		onlyCA:        opts.OnlyCACerts,
		onlyAttribute: opts.OnlyAttributeCerts,
		indirect:      opts.IndirectCRL,
	}
	if err := e.derive(e.encodeValue); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *IssuingDistributionPoint) checkScope() error {
	n := 0
	for _, on := range []bool{e.onlyUser, e.onlyCA, e.onlyAttribute} {
		if on {
			n++
		}
	}
	if n > 1 {
		return der.Invalidf("IssuingDistributionPoint: more than one onlyContains flag set")
	}
	return nil
}

// ParseIssuingDistributionPoint decodes an extnValue.
func ParseIssuingDistributionPoint(critical bool, value []byte) (*IssuingDistributionPoint, error) {
	v, err := decodeValue(NameIssuingDistributionPoint, value)
	if err != nil {
		return nil, err
	}
	r, err := v.Sequence()
	if err != nil {
		return nil, err
	}
	e := &IssuingDistributionPoint{extension: extension{id: slices.Clone(OIDIssuingDistributionPoint), critical: critical}}
	last := -1
	for !r.Empty() {
		f, err := r.Next()
		if err != nil {
			return nil, err
		}
		if f.Class != der.ClassContextSpecific || f.Tag > 5 {
			return nil, der.Malformedf("IssuingDistributionPoint: unexpected %s", f)
		}
		if int(f.Tag) <= last {
			return nil, der.Invalidf("IssuingDistributionPoint: field [%d] out of order or repeated", f.Tag)
		}
		last = int(f.Tag)
		switch f.Tag {
		case 0:
			if e.point, err = decodeDistributionPointName(f); err != nil {
				return nil, err
			}
		case 3:
			bits, err := f.Implicit(der.TagBitString).Bools()
			if err != nil {
				return nil, err
			}
			e.reasons = ReasonFlags(bits)
		default:
			on, err := f.Implicit(der.TagBoolean).Boolean()
			if err != nil {
				return nil, err
			}
			*e.flag(f.Tag) = on
		}
	}
	if err := e.checkScope(); err != nil {
		return nil, err
	}
	e.keep(value)
	return e, nil
}

// flag maps a BOOLEAN field tag to its storage.
func (e *IssuingDistributionPoint) flag(tag uint8) *bool {
	switch tag {
	case 1:
		return &e.onlyUser
	case 2:
		return &e.onlyCA
	case 4:
		return &e.indirect
	default:
		return &e.onlyAttribute
	}
}

func (e *IssuingDistributionPoint) encodeValue(b *der.Builder) {
	if err := e.checkScope(); err != nil {
		b.SetError(err)
		return
	}
	addFlag := func(b *der.Builder, tag uint8, on bool) {
		if on {
			b.AddImplicit(tag, func(b *der.Builder) { b.AddBoolean(true) })
		}
	}
	b.AddSequence(func(b *der.Builder) {
		if e.point != nil {
			b.AddExplicit(0, e.point.encode)
		}
		addFlag(b, 1, e.onlyUser)
		addFlag(b, 2, e.onlyCA)
		if e.reasons != nil {
			b.AddImplicit(3, e.reasons.encode)
		}
		addFlag(b, 4, e.indirect)
		addFlag(b, 5, e.onlyAttribute)
	})
}

func (e *IssuingDistributionPoint) rederive() error { return e.derive(e.encodeValue) }

func (e *IssuingDistributionPoint) Name() string { return NameIssuingDistributionPoint }

// Point returns the distribution point name, or nil.
func (e *IssuingDistributionPoint) Point() *DistributionPointName { return e.point }

// Reasons returns the onlySomeReasons flags, or nil when absent.
func (e *IssuingDistributionPoint) Reasons() ReasonFlags { return slices.Clone(e.reasons) }

func (e *IssuingDistributionPoint) OnlyUserCerts() bool      { return e.onlyUser }
func (e *IssuingDistributionPoint) OnlyCACerts() bool        { return e.onlyCA }
func (e *IssuingDistributionPoint) OnlyAttributeCerts() bool { return e.onlyAttribute }
func (e *IssuingDistributionPoint) IndirectCRL() bool        { return e.indirect }

func idpFlag(name string, tag uint8) field[IssuingDistributionPoint] {
	return field[IssuingDistributionPoint]{
		get: func(e *IssuingDistributionPoint) any { return *e.flag(tag) },
		set: func(e *IssuingDistributionPoint, v any) error {
			on, err := as[bool](name, v)
			if err != nil {
				return err
			}
			*e.flag(tag) = on
			return nil
		},
		del: func(e *IssuingDistributionPoint) error { *e.flag(tag) = false; return nil },
	}
}

var issuingDistributionPointFields = newFields(NameIssuingDistributionPoint,
	[]string{AttrPoint, AttrReasons, AttrOnlyUserCerts, AttrOnlyCACerts, AttrOnlyAttributeCerts, AttrIndirectCRL},
	map[string]field[IssuingDistributionPoint]{
		AttrPoint: {
			get: func(e *IssuingDistributionPoint) any { return e.point },
			set: func(e *IssuingDistributionPoint, v any) error {
				p, err := as[*DistributionPointName](AttrPoint, v)
				e.point = p
				return err
			},
			del: func(e *IssuingDistributionPoint) error { e.point = nil; return nil },
		},
		AttrReasons: {
			get: func(e *IssuingDistributionPoint) any { return slices.Clone(e.reasons) },
			set: func(e *IssuingDistributionPoint, v any) error {
				r, err := as[ReasonFlags](AttrReasons, v)
				e.reasons = slices.Clone(r)
				return err
			},
			del: func(e *IssuingDistributionPoint) error { e.reasons = nil; return nil },
		},
		AttrOnlyUserCerts:      idpFlag(AttrOnlyUserCerts, 1),
		AttrOnlyCACerts:        idpFlag(AttrOnlyCACerts, 2),
		AttrIndirectCRL:        idpFlag(AttrIndirectCRL, 4),
		AttrOnlyAttributeCerts: idpFlag(AttrOnlyAttributeCerts, 5),
	})

func (e *IssuingDistributionPoint) Get(name string) (any, error) {
	return issuingDistributionPointFields.get(e, name)
}
func (e *IssuingDistributionPoint) Set(name string, v any) error {
	return issuingDistributionPointFields.set(e, name, v, e.rederive)
}
func (e *IssuingDistributionPoint) Delete(name string) error {
	return issuingDistributionPointFields.delete(e, name, e.rederive)
}
func (e *IssuingDistributionPoint) AttributeNames() []string {
	return issuingDistributionPointFields.attributeNames()
}

func (e *IssuingDistributionPoint) String() string {
	var parts []string
	if e.point != nil {
		parts = append(parts, "  DistributionPoint: "+e.point.String())
	}
	for _, f := range []struct {
		name string
		on   bool
	}{
		{"OnlyUserCerts", e.onlyUser},
		{"OnlyCACerts", e.onlyCA},
		{"OnlyAttributeCerts", e.onlyAttribute},
		{"IndirectCRL", e.indirect},
	} {
		if f.on {
			parts = append(parts, "  "+f.name+": true")
		}
	}
	if e.reasons != nil {
		parts = append(parts, "  OnlySomeReasons: "+e.reasons.String())
	}
	return header(e) + "IssuingDistributionPoint [\n" + strings.Join(parts, "\n") + "\n]\n"
}
