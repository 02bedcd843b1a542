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
)

// Policy attribute names.
const (
	AttrPolicies  = "policies"
	AttrMap       = "map"
	AttrRequire   = "require"
	AttrInhibit   = "inhibit"
	AttrSkipCerts = "skip_certs"
)

var (
	// OIDAnyPolicy is the special anyPolicy identifier.
	OIDAnyPolicy = asn1.ObjectIdentifier{2, 5, 29, 32, 0}
	// OIDQualifierCPS is id-qt-cps.
	OIDQualifierCPS = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 2, 1}
	// OIDQualifierUserNotice is id-qt-unotice.
	OIDQualifierUserNotice = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 2, 2}
)

// PolicyQualifierInfo is a qualifier identifier with its opaque value.
type PolicyQualifierInfo struct {
	ID        asn1.ObjectIdentifier
	Qualifier der.Value
}

// NewCPSQualifier returns a CPS pointer qualifier.
func NewCPSQualifier(uri string) (PolicyQualifierInfo, error) {
	if !der.IsIA5(uri) {
		return PolicyQualifierInfo{}, der.Invalidf("CPS URI is not IA5")
	}
	return PolicyQualifierInfo{ID: slices.Clone(OIDQualifierCPS), Qualifier: der.Value{Tag: der.TagIA5String, Content: []byte(uri)}}, nil
}

// NewUserNoticeQualifier returns a user notice carrying explicit text.
func NewUserNoticeQualifier(text string) (PolicyQualifierInfo, error) {
	raw, err := der.Marshal(func(b *der.Builder) {
		b.AddSequence(func(b *der.Builder) { b.AddUTF8String(text) })
	})
	if err != nil {
		return PolicyQualifierInfo{}, err
	}
	v, err := der.Decode(raw)
	if err != nil {
		return PolicyQualifierInfo{}, err
	}
	return PolicyQualifierInfo{ID: slices.Clone(OIDQualifierUserNotice), Qualifier: v}, nil
}

// CPS returns the URI of a CPS qualifier.
func (q PolicyQualifierInfo) CPS() (string, bool) {
	if !q.ID.Equal(OIDQualifierCPS) {
		return "", false
	}
	s, err := q.Qualifier.IA5String()
	return s, err == nil
}

// Equal compares identifier and encoded value.
func (q PolicyQualifierInfo) Equal(o PolicyQualifierInfo) bool {
	return q.ID.Equal(o.ID) && q.Qualifier.Equal(o.Qualifier)
}

func (q PolicyQualifierInfo) encode(b *der.Builder) {
	b.AddSequence(func(b *der.Builder) {
		b.AddOID(q.ID)
		b.AddValue(q.Qualifier)
	})
}

func (q PolicyQualifierInfo) String() string {
	if uri, ok := q.CPS(); ok {
		return "CPS: " + uri
	}
	if q.ID.Equal(OIDQualifierUserNotice) {
		if r, err := q.Qualifier.Sequence(); err == nil {
			for !r.Empty() {
				v, err := r.Next()
				if err != nil {
					break
				}
				if s, err := v.Text(); err == nil {
					return "UserNotice: " + s
				}
			}
		}
	}
	return fmt.Sprintf("%s: %x", q.ID, q.Qualifier.Marshal())
}

// PolicyInformation is one certificate policy. Qualifiers keep insertion
// order and hold no duplicates.
type PolicyInformation struct {
	ID         asn1.ObjectIdentifier
	qualifiers []PolicyQualifierInfo
}

// NewPolicyInformation builds a policy, dropping repeated qualifiers.
func NewPolicyInformation(id asn1.ObjectIdentifier, qualifiers ...PolicyQualifierInfo) PolicyInformation {
	p := PolicyInformation{ID: slices.Clone(id)}
	for _, q := range qualifiers {
		p.AddQualifier(q)
	}
	return p
}

// AddQualifier appends q unless an equal qualifier is present. It reports
// whether q was added.
func (p *PolicyInformation) AddQualifier(q PolicyQualifierInfo) bool {
	if slices.ContainsFunc(p.qualifiers, q.Equal) {
		return false
	}
	p.qualifiers = append(p.qualifiers, q)
	return true
}

// Qualifiers returns a copy of the qualifiers.
func (p PolicyInformation) Qualifiers() []PolicyQualifierInfo { return slices.Clone(p.qualifiers) }

// Equal compares identifiers and qualifier sets.
func (p PolicyInformation) Equal(o PolicyInformation) bool {
	if !p.ID.Equal(o.ID) || len(p.qualifiers) != len(o.qualifiers) {
		return false
	}
	for _, q := range p.qualifiers {
		if !slices.ContainsFunc(o.qualifiers, q.Equal) {
			return false
		}
	}
	return true
}

func (p PolicyInformation) encode(b *der.Builder) {
	b.AddSequence(func(b *der.Builder) {
		b.AddOID(p.ID)
		if len(p.qualifiers) > 0 {
			b.AddSequence(func(b *der.Builder) {
				for _, q := range p.qualifiers {
					q.encode(b)
				}
			})
		}
	})
}

func decodePolicyInformation(v der.Value) (PolicyInformation, error) {
	r, err := v.Sequence()
	if err != nil {
		return PolicyInformation{}, err
	}
	iv, err := r.Next()
	if err != nil {
		return PolicyInformation{}, err
	}
	id, err := iv.OID()
	if err != nil {
		return PolicyInformation{}, err
	}
	p := PolicyInformation{ID: id}
	if qv, ok, err := r.NextIf(der.ClassUniversal, der.TagSequence); err != nil {
		return PolicyInformation{}, err
	} else if ok {
		qs, err := qv.Children()
		if err != nil {
			return PolicyInformation{}, err
		}
		if len(qs) == 0 {
			return PolicyInformation{}, der.Invalidf("empty policyQualifiers")
		}
		for _, q := range qs {
			qr, err := q.Sequence()
			if err != nil {
				return PolicyInformation{}, err
			}
			idv, err := qr.Next()
			if err != nil {
				return PolicyInformation{}, err
			}
			qid, err := idv.OID()
			if err != nil {
				return PolicyInformation{}, err
			}
			val, err := qr.Next()
			if err != nil {
				return PolicyInformation{}, err
			}
			if err := qr.Finish(); err != nil {
				return PolicyInformation{}, err
			}
			p.AddQualifier(PolicyQualifierInfo{ID: qid, Qualifier: val})
		}
	}
	return p, r.Finish()
}

func (p PolicyInformation) String() string {
	s := "[CertificatePolicyId: [" + p.ID.String() + "]"
	for _, q := range p.qualifiers {
		s += "\n  " + q.String()
	}
	return s + "]"
}

// CertificatePolicies lists the policies under which a certificate was issued.
type CertificatePolicies struct {
	extension
	policies []PolicyInformation
}

// NewCertificatePolicies builds the extension from a non-empty list.
func NewCertificatePolicies(critical bool, policies ...PolicyInformation) (*CertificatePolicies, error) {
	e := &CertificatePolicies{extension: extension{id: slices.Clone(OIDCertificatePolicies), critical: critical}, policies: slices.Clone(policies)}
	if err := e.derive(e.encodeValue); err != nil {
		return nil, err
	}
	return e, nil
}

// ParseCertificatePolicies decodes an extnValue. A policy identifier may
// appear only once.
func ParseCertificatePolicies(critical bool, value []byte) (*CertificatePolicies, error) {
	v, err := decodeValue(NameCertificatePolicies, value)
	if err != nil {
		return nil, err
	}
	if !v.Is(der.TagSequence) {
		return nil, der.Malformedf("CertificatePolicies: expected SEQUENCE, found %s", v)
	}
	children, err := v.Children()
	if err != nil {
		return nil, err
	}
	e := &CertificatePolicies{extension: extension{id: slices.Clone(OIDCertificatePolicies), critical: critical}}
	for _, c := range children {
		p, err := decodePolicyInformation(c)
		if err != nil {
			return nil, err
		}
		e.policies = append(e.policies, p)
	}
	if err := checkPolicies(e.policies); err != nil {
		return nil, err
	}
	e.keep(value)
	return e, nil
}

func checkPolicies(policies []PolicyInformation) error {
	if len(policies) == 0 {
		return der.Invalidf("CertificatePolicies: no policies")
	}
	seen := make(map[string]bool, len(policies))
	for _, p := range policies {
		if seen[p.ID.String()] {
			return der.Invalidf("CertificatePolicies: policy %s repeated", p.ID)
		}
		seen[p.ID.String()] = true
	}
	return nil
}

func (e *CertificatePolicies) encodeValue(b *der.Builder) {
	if err := checkPolicies(e.policies); err != nil {
		b.SetError(err)
		return
	}
	b.AddSequence(func(b *der.Builder) {
		for _, p := range e.policies {
			p.encode(b)
		}
	})
}

func (e *CertificatePolicies) rederive() error { return e.derive(e.encodeValue) }

func (e *CertificatePolicies) Name() string { return NameCertificatePolicies }

// Policies returns a copy of the policies.
func (e *CertificatePolicies) Policies() []PolicyInformation { return slices.Clone(e.policies) }

// PolicyIDs returns the policy identifiers in order.
func (e *CertificatePolicies) PolicyIDs() []asn1.ObjectIdentifier {
	out := make([]asn1.ObjectIdentifier, len(e.policies))
	for i, p := range e.policies {
		out[i] = slices.Clone(p.ID)
	}
	return out
}

var certificatePoliciesFields = newFields(NameCertificatePolicies, []string{AttrPolicies}, map[string]field[CertificatePolicies]{
	AttrPolicies: {
		get: func(e *CertificatePolicies) any { return slices.Clone(e.policies) },
		set: func(e *CertificatePolicies, v any) error {
			p, err := as[[]PolicyInformation](AttrPolicies, v)
			e.policies = slices.Clone(p)
			return err
		},
	},
})

func (e *CertificatePolicies) Get(name string) (any, error) {
	return certificatePoliciesFields.get(e, name)
}
func (e *CertificatePolicies) Set(name string, v any) error {
	return certificatePoliciesFields.set(e, name, v, e.rederive)
}
func (e *CertificatePolicies) Delete(name string) error {
	return certificatePoliciesFields.delete(e, name, e.rederive)
}
func (e *CertificatePolicies) AttributeNames() []string {
	return certificatePoliciesFields.attributeNames()
}

func (e *CertificatePolicies) String() string {
	s := header(e) + "CertificatePolicies [\n"
	for i, p := range e.policies {
		s += fmt.Sprintf("  [%d]: %s\n", i+1, p)
	}
	return s + "]\n"
}

// PolicyMapping maps an issuer domain policy to a subject domain policy.
type PolicyMapping struct {
	IssuerDomain  asn1.ObjectIdentifier
	SubjectDomain asn1.ObjectIdentifier
}

func (m PolicyMapping) String() string {
	return "IssuerDomain: " + m.IssuerDomain.String() + " SubjectDomain: " + m.SubjectDomain.String()
}

// PolicyMappings lists policy equivalences between issuer and subject domains.
type PolicyMappings struct {
	extension
	mappings []PolicyMapping
}

// NewPolicyMappings builds the extension from a non-empty list.
func NewPolicyMappings(critical bool, mappings ...PolicyMapping) (*PolicyMappings, error) {
	e := &PolicyMappings{extension: extension{id: slices.Clone(OIDPolicyMappings), critical: critical}, mappings: slices.Clone(mappings)}
	if err := e.derive(e.encodeValue); err != nil {
		return nil, err
	}
	return e, nil
}

// ParsePolicyMappings decodes an extnValue.
func ParsePolicyMappings(critical bool, value []byte) (*PolicyMappings, error) {
	v, err := decodeValue(NamePolicyMappings, value)
	if err != nil {
		return nil, err
	}
	r, err := v.Sequence()
	if err != nil {
		return nil, err
	}
	e := &PolicyMappings{extension: extension{id: slices.Clone(OIDPolicyMappings), critical: critical}}
	for !r.Empty() {
		mv, err := r.Next()
		if err != nil {
			return nil, err
		}
		mr, err := mv.Sequence()
		if err != nil {
			return nil, err
		}
		var m PolicyMapping
		for _, dst := range []*asn1.ObjectIdentifier{&m.IssuerDomain, &m.SubjectDomain} {
			ov, err := mr.Next()
			if err != nil {
				return nil, err
			}
			if *dst, err = ov.OID(); err != nil {
				return nil, err
			}
		}
		if err := mr.Finish(); err != nil {
			return nil, err
		}
		e.mappings = append(e.mappings, m)
	}
	if len(e.mappings) == 0 {
		return nil, der.Invalidf("PolicyMappings: no mappings")
	}
	e.keep(value)
	return e, nil
}

func (e *PolicyMappings) encodeValue(b *der.Builder) {
	if len(e.mappings) == 0 {
		b.SetError(der.Invalidf("PolicyMappings: no mappings"))
		return
	}
	b.AddSequence(func(b *der.Builder) {
		for _, m := range e.mappings {
			b.AddSequence(func(b *der.Builder) {
				b.AddOID(m.IssuerDomain)
				b.AddOID(m.SubjectDomain)
			})
		}
	})
}

func (e *PolicyMappings) rederive() error { return e.derive(e.encodeValue) }

func (e *PolicyMappings) Name() string { return NamePolicyMappings }

// Mappings returns a copy of the mappings.
func (e *PolicyMappings) Mappings() []PolicyMapping { return slices.Clone(e.mappings) }

var policyMappingsFields = newFields(NamePolicyMappings, []string{AttrMap}, map[string]field[PolicyMappings]{
	AttrMap: {
		get: func(e *PolicyMappings) any { return slices.Clone(e.mappings) },
		set: func(e *PolicyMappings, v any) error {
			m, err := as[[]PolicyMapping](AttrMap, v)
			e.mappings = slices.Clone(m)
			return err
		},
	},
})

func (e *PolicyMappings) Get(name string) (any, error) { return policyMappingsFields.get(e, name) }
func (e *PolicyMappings) Set(name string, v any) error {
	return policyMappingsFields.set(e, name, v, e.rederive)
}
func (e *PolicyMappings) Delete(name string) error {
	return policyMappingsFields.delete(e, name, e.rederive)
}
func (e *PolicyMappings) AttributeNames() []string { return policyMappingsFields.attributeNames() }

func (e *PolicyMappings) String() string {
	parts := make([]string, len(e.mappings))
	for i, m := range e.mappings {
		parts[i] = "  [" + m.String() + "]"
	}
	return header(e) + "PolicyMappings [\n" + strings.Join(parts, "\n") + "\n]\n"
}

// PolicyConstraints bounds policy processing depth. A value of -1 is absent.
type PolicyConstraints struct {
	extension
	require int
	inhibit int
}

// NewPolicyConstraints builds the extension. Pass -1 to omit a field.
func NewPolicyConstraints(critical bool, require, inhibit int) (*PolicyConstraints, error) {
	e := &PolicyConstraints{extension: extension{id: slices.Clone(OIDPolicyConstraints), critical: critical}, require: require, inhibit: inhibit}
	if err := e.derive(e.encodeValue); err != nil {
		return nil, err
	}
	return e, nil
}

// ParsePolicyConstraints decodes an extnValue. Each field may appear once.
func ParsePolicyConstraints(critical bool, value []byte) (*PolicyConstraints, error) {
	v, err := decodeValue(NamePolicyConstraints, value)
	if err != nil {
		return nil, err
	}
	r, err := v.Sequence()
	if err != nil {
		return nil, err
	}
	e := &PolicyConstraints{extension: extension{id: slices.Clone(OIDPolicyConstraints), critical: critical}, require: -1, inhibit: -1}
	for !r.Empty() {
		f, err := r.Next()
		if err != nil {
			return nil, err
		}
		if f.Class != der.ClassContextSpecific || f.Tag > 1 || f.Constructed {
			return nil, der.Malformedf("PolicyConstraints: unexpected %s", f)
		}
		dst := &e.require
		if f.Tag == 1 {
			dst = &e.inhibit
		}
		if *dst != -1 {
			return nil, der.Invalidf("PolicyConstraints: duplicate [%d]", f.Tag)
		}
		n, err := f.Implicit(der.TagInteger).Int()
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, der.Invalidf("PolicyConstraints: negative skip count %d", n)
		}
		*dst = n
	}
	e.keep(value)
	return e, nil
}

func (e *PolicyConstraints) encodeValue(b *der.Builder) {
	if e.require < -1 || e.inhibit < -1 {
		b.SetError(der.Invalidf("PolicyConstraints: skip counts must be -1 or non-negative"))
		return
	}
	b.AddSequence(func(b *der.Builder) {
		if e.require >= 0 {
			b.AddImplicit(0, func(b *der.Builder) { b.AddInt64(int64(e.require)) })
		}
		if e.inhibit >= 0 {
			b.AddImplicit(1, func(b *der.Builder) { b.AddInt64(int64(e.inhibit)) })
		}
	})
}

func (e *PolicyConstraints) rederive() error { return e.derive(e.encodeValue) }

func (e *PolicyConstraints) Name() string { return NamePolicyConstraints }

// RequireExplicitPolicy returns the skip count, or -1 when absent.
func (e *PolicyConstraints) RequireExplicitPolicy() int { return e.require }

// InhibitPolicyMapping returns the skip count, or -1 when absent.
func (e *PolicyConstraints) InhibitPolicyMapping() int { return e.inhibit }

func skipField(name string, dst func(e *PolicyConstraints) *int) field[PolicyConstraints] {
	return field[PolicyConstraints]{
		get: func(e *PolicyConstraints) any { return *dst(e) },
		set: func(e *PolicyConstraints, v any) error {
			n, err := as[int](name, v)
			if err != nil {
				return err
			}
			if n < -1 {
				return attributeValue(name, "must be -1 or non-negative")
			}
			*dst(e) = n
			return nil
		},
		del: func(e *PolicyConstraints) error { *dst(e) = -1; return nil },
	}
}

var policyConstraintsFields = newFields(NamePolicyConstraints, []string{AttrRequire, AttrInhibit}, map[string]field[PolicyConstraints]{
	AttrRequire: skipField(AttrRequire, func(e *PolicyConstraints) *int { return &e.require }),
	AttrInhibit: skipField(AttrInhibit, func(e *PolicyConstraints) *int { return &e.inhibit }),
})

func (e *PolicyConstraints) Get(name string) (any, error) {
	return policyConstraintsFields.get(e, name)
}
func (e *PolicyConstraints) Set(name string, v any) error {
	return policyConstraintsFields.set(e, name, v, e.rederive)
}
func (e *PolicyConstraints) Delete(name string) error {
	return policyConstraintsFields.delete(e, name, e.rederive)
}
func (e *PolicyConstraints) AttributeNames() []string {
	return policyConstraintsFields.attributeNames()
}

func (e *PolicyConstraints) String() string {
	s := header(e) + "PolicyConstraints: [  Require: "
	if e.require == -1 {
		s += "unspecified;"
	} else {
		s += fmt.Sprintf("%d;", e.require)
	}
	s += "\tInhibit: "
	if e.inhibit == -1 {
		s += "unspecified"
	} else {
		s += fmt.Sprint(e.inhibit)
	}
	return s + " ]\n"
}

// InhibitAnyPolicy limits how many further certificates may assert
// anyPolicy. It is critical on every construction path.
type InhibitAnyPolicy struct {
	extension
	skipCerts int
}

// NewInhibitAnyPolicy builds the extension. A skipCerts of -1 means
// [Unlimited]. critical must be true.
func NewInhibitAnyPolicy(critical bool, skipCerts int) (*InhibitAnyPolicy, error) {
	if !critical {
		return nil, der.Invalidf("InhibitAnyPolicy must be critical")
	}
	if skipCerts < -1 {
		return nil, der.Invalidf("InhibitAnyPolicy: skipCerts %d", skipCerts)
	}
	if skipCerts == -1 {
		skipCerts = Unlimited
	}
	e := &InhibitAnyPolicy{extension: extension{id: slices.Clone(OIDInhibitAnyPolicy), critical: true}, skipCerts: skipCerts}
	if err := e.derive(e.encodeValue); err != nil {
		return nil, err
	}
	return e, nil
}

// ParseInhibitAnyPolicy decodes an extnValue. A non-critical extension is
// rejected.
func ParseInhibitAnyPolicy(critical bool, value []byte) (*InhibitAnyPolicy, error) {
	if !critical {
		return nil, der.Invalidf("InhibitAnyPolicy must be critical")
	}
	v, err := decodeValue(NameInhibitAnyPolicy, value)
	if err != nil {
		return nil, err
	}
	n, err := v.Int64()
	if err != nil {
		return nil, err
	}
	if n < 0 || n > Unlimited {
		return nil, der.Invalidf("InhibitAnyPolicy: skipCerts %d", n)
	}
	e := &InhibitAnyPolicy{extension: extension{id: slices.Clone(OIDInhibitAnyPolicy), critical: true}, skipCerts: int(n)}
	e.keep(value)
	return e, nil
}

func (e *InhibitAnyPolicy) encodeValue(b *der.Builder) { b.AddInt64(int64(e.skipCerts)) }

func (e *InhibitAnyPolicy) rederive() error { return e.derive(e.encodeValue) }

func (e *InhibitAnyPolicy) Name() string { return NameInhibitAnyPolicy }

// SkipCerts returns the skip count, [Unlimited] when unbounded.
func (e *InhibitAnyPolicy) SkipCerts() int { return e.skipCerts }

var inhibitAnyPolicyFields = newFields(NameInhibitAnyPolicy, []string{AttrSkipCerts}, map[string]field[InhibitAnyPolicy]{
	AttrSkipCerts: {
		get: func(e *InhibitAnyPolicy) any { return e.skipCerts },
		set: func(e *InhibitAnyPolicy, v any) error {
			n, err := as[int](AttrSkipCerts, v)
			if err != nil {
				return err
			}
			switch {
			case n == -1:
				n = Unlimited
			case n < -1 || n > Unlimited:
				return attributeValue(AttrSkipCerts, "out of range")
			}
			e.skipCerts = n
			return nil
		},
	},
})

func (e *InhibitAnyPolicy) Get(name string) (any, error) { return inhibitAnyPolicyFields.get(e, name) }
func (e *InhibitAnyPolicy) Set(name string, v any) error {
	return inhibitAnyPolicyFields.set(e, name, v, e.rederive)
}
func (e *InhibitAnyPolicy) Delete(name string) error {
	return inhibitAnyPolicyFields.delete(e, name, e.rederive)
}
func (e *InhibitAnyPolicy) AttributeNames() []string { return inhibitAnyPolicyFields.attributeNames() }

func (e *InhibitAnyPolicy) String() string {
	return header(e) + fmt.Sprintf("InhibitAnyPolicy: %d\n", e.skipCerts)
}
