// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509names

import (
	"bytes"
	"encoding/asn1"
	"encoding/hex"
	"slices"
	"strings"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Attribute types with a string keyword.
var (
	OIDCommonName         = asn1.ObjectIdentifier{2, 5, 4, 3}
	OIDSurname            = asn1.ObjectIdentifier{2, 5, 4, 4}
	OIDSerialNumber       = asn1.ObjectIdentifier{2, 5, 4, 5}
	OIDCountry            = asn1.ObjectIdentifier{2, 5, 4, 6}
	OIDLocality           = asn1.ObjectIdentifier{2, 5, 4, 7}
	OIDProvince           = asn1.ObjectIdentifier{2, 5, 4, 8}
	OIDStreet             = asn1.ObjectIdentifier{2, 5, 4, 9}
	OIDOrganization       = asn1.ObjectIdentifier{2, 5, 4, 10}
	OIDOrganizationalUnit = asn1.ObjectIdentifier{2, 5, 4, 11}
	OIDTitle              = asn1.ObjectIdentifier{2, 5, 4, 12}
	OIDGivenName          = asn1.ObjectIdentifier{2, 5, 4, 42}
	OIDDNQualifier        = asn1.ObjectIdentifier{2, 5, 4, 46}
	OIDEmailAddress       = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 1}
	OIDDomainComponent    = asn1.ObjectIdentifier{0, 9, 2342, 19200300, 100, 1, 25}
	OIDUserID             = asn1.ObjectIdentifier{0, 9, 2342, 19200300, 100, 1, 1}
)

var keywords = []struct {
	name string
	oid  asn1.ObjectIdentifier
	tag  uint8
}{
	{"CN", OIDCommonName, 0},
	{"SURNAME", OIDSurname, 0},
	{"SERIALNUMBER", OIDSerialNumber, der.TagPrintableString},
	{"C", OIDCountry, der.TagPrintableString},
	{"L", OIDLocality, 0},
	{"ST", OIDProvince, 0},
	{"STREET", OIDStreet, 0},
	{"O", OIDOrganization, 0},
	{"OU", OIDOrganizationalUnit, 0},
	{"T", OIDTitle, 0},
	{"GIVENNAME", OIDGivenName, 0},
	{"DNQUALIFIER", OIDDNQualifier, der.TagPrintableString},
	{"EMAILADDRESS", OIDEmailAddress, der.TagIA5String},
	{"DC", OIDDomainComponent, der.TagIA5String},
	{"UID", OIDUserID, 0},
}

func keywordOf(oid asn1.ObjectIdentifier) (string, uint8, bool) {
	for _, k := range keywords {
		if k.oid.Equal(oid) {
			return k.name, k.tag, true
		}
	}
	return "", 0, false
}

// AVA is one AttributeTypeAndValue.
type AVA struct {
	Type  asn1.ObjectIdentifier
	Value der.Value
}

// NewAVA builds an attribute whose value is a directory string. Country,
// serial number and DN qualifier use PrintableString; email address and domain
// component use IA5String; everything else uses PrintableString when the text
// allows it and UTF8String otherwise.
func NewAVA(oid asn1.ObjectIdentifier, text string) (AVA, error) {
	_, tag, _ := keywordOf(oid)
	if tag == 0 {
		tag = der.TagUTF8String
		if der.IsPrintable(text) {
			tag = der.TagPrintableString
		}
	}
	enc, err := der.Marshal(func(b *der.Builder) { b.AddString(tag, text) })
	if err != nil {
		return AVA{}, err
	}
	v, err := der.Decode(enc)
	if err != nil {
		return AVA{}, err
	}
	return AVA{Type: slices.Clone(oid), Value: v}, nil
}

// Text returns the value as a string when it is a character string type.
func (a AVA) Text() (string, bool) {
	s, err := a.Value.Text()
	return s, err == nil
}

func (a AVA) encode(b *der.Builder) {
	b.AddSequence(func(b *der.Builder) {
		b.AddOID(a.Type)
		b.AddValue(a.Value)
	})
}

// canonical returns the comparison form: case folded, compatibility
// decomposed, with runs of whitespace collapsed.
func (a AVA) canonical() string {
	key := a.Type.String() + "="
	if s, ok := a.Text(); ok {
		s = cases.Fold().String(norm.NFKD.String(s))
		return key + strings.Join(strings.Fields(s), " ")
	}
	return key + "#" + hex.EncodeToString(a.Value.Marshal())
}

// Equal compares attribute type and canonical value.
func (a AVA) Equal(o AVA) bool { return a.canonical() == o.canonical() }

func (a AVA) String() string {
	key, _, ok := keywordOf(a.Type)
	if !ok {
		key = a.Type.String()
	}
	if s, ok := a.Text(); ok {
		return key + "=" + escapeValue(s)
	}
	return key + "=#" + hex.EncodeToString(a.Value.Marshal())
}

func escapeValue(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case strings.IndexByte(`,+"\<>;=`, c) >= 0,
			i == 0 && (c == ' ' || c == '#'),
			i == len(s)-1 && c == ' ':
			sb.WriteByte('\\')
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// RDN is a RelativeDistinguishedName: a non-empty set of attributes.
type RDN []AVA

// Equal compares the attribute sets regardless of order.
func (r RDN) Equal(o RDN) bool { return r.canonical() == o.canonical() }

func (r RDN) canonical() string {
	parts := make([]string, len(r))
	for i, a := range r {
		parts[i] = a.canonical()
	}
	slices.Sort(parts)
	return strings.Join(parts, "+")
}

// Encode writes the RDN as a DER-sorted SET OF.
func (r RDN) Encode(b *der.Builder) {
	if len(r) == 0 {
		b.SetError(der.Invalidf("empty RelativeDistinguishedName"))
		return
	}
	b.AddSetOf(func(b *der.Builder) {
		for _, a := range r {
			a.encode(b)
		}
	})
}

func (r RDN) String() string {
	parts := make([]string, len(r))
	for i, a := range r {
		parts[i] = a.String()
	}
	return strings.Join(parts, "+")
}

// DecodeRDN decodes a RelativeDistinguishedName SET.
func DecodeRDN(v der.Value) (RDN, error) {
	r, err := v.SetOf()
	if err != nil {
		return nil, err
	}
	var rdn RDN
	for !r.Empty() {
		av, err := r.Next()
		if err != nil {
			return nil, err
		}
		fields, err := av.Sequence()
		if err != nil {
			return nil, err
		}
		tv, err := fields.Next()
		if err != nil {
			return nil, err
		}
		oid, err := tv.OID()
		if err != nil {
			return nil, err
		}
		val, err := fields.Next()
		if err != nil {
			return nil, err
		}
		if err := fields.Finish(); err != nil {
			return nil, err
		}
		rdn = append(rdn, AVA{Type: oid, Value: val})
	}
	if len(rdn) == 0 {
		return nil, der.Malformedf("empty RelativeDistinguishedName")
	}
	return rdn, nil
}

// X500Name is a directoryName holding an RDNSequence, most significant RDN first.
//
// A decoded name keeps its original encoding and re-emits it unchanged.
type X500Name struct {
	rdns []RDN
	raw  []byte
}

// NewX500Name builds a name from RDNs in encoding order (country first).
func NewX500Name(rdns ...RDN) X500Name { return X500Name{rdns: slices.Clone(rdns)} }

// DecodeX500Name decodes a Name.
func DecodeX500Name(v der.Value) (X500Name, error) {
	r, err := v.Sequence()
	if err != nil {
		return X500Name{}, err
	}
	var rdns []RDN
	for !r.Empty() {
		sv, err := r.Next()
		if err != nil {
			return X500Name{}, err
		}
		rdn, err := DecodeRDN(sv)
		if err != nil {
			return X500Name{}, err
		}
		rdns = append(rdns, rdn)
	}
	return X500Name{rdns: rdns, raw: v.Marshal()}, nil
}

// ParseX500NameDER decodes a DER encoded Name.
func ParseX500NameDER(b []byte) (X500Name, error) {
	v, err := der.Decode(b)
	if err != nil {
		return X500Name{}, err
	}
	return DecodeX500Name(v)
}

// RDNs returns the relative names in encoding order.
func (n X500Name) RDNs() []RDN { return slices.Clone(n.rdns) }

// IsEmpty reports whether n is the empty (root) name.
func (n X500Name) IsEmpty() bool { return len(n.rdns) == 0 }

// CommonName returns the most specific CN attribute, or "".
func (n X500Name) CommonName() string {
	for i := len(n.rdns) - 1; i >= 0; i-- {
		for _, a := range n.rdns[i] {
			if a.Type.Equal(OIDCommonName) {
				s, _ := a.Text()
				return s
			}
		}
	}
	return ""
}

// Marshal returns the DER encoding of the Name.
func (n X500Name) Marshal() ([]byte, error) { return der.Marshal(n.Encode) }

func (X500Name) generalName() {}

// Type returns [TypeDirectory].
func (X500Name) Type() NameType { return TypeDirectory }

// Encode writes the Name SEQUENCE.
func (n X500Name) Encode(b *der.Builder) {
	if n.raw != nil {
		b.AddRaw(n.raw)
		return
	}
	b.AddSequence(func(b *der.Builder) {
		for _, rdn := range n.rdns {
			rdn.Encode(b)
		}
	})
}

// Equal compares RDN by RDN using the canonical attribute form.
func (n X500Name) Equal(other GeneralName) bool {
	o, ok := other.(X500Name)
	return ok && n.canonical() == o.canonical()
}

func (n X500Name) canonical() string {
	parts := make([]string, len(n.rdns))
	for i, rdn := range n.rdns {
		parts[i] = rdn.canonical()
	}
	return strings.Join(parts, ",")
}

// Key returns the canonical form.
func (n X500Name) Key() string { return "dn:" + n.canonical() }

// within reports whether base is a prefix of n.
func (n X500Name) within(base X500Name) bool {
	if len(n.rdns) < len(base.rdns) {
		return false
	}
	for i := range base.rdns {
		if !n.rdns[i].Equal(base.rdns[i]) {
			return false
		}
	}
	return true
}

// Constrains compares RDN prefixes. The empty name contains every name.
func (n X500Name) Constrains(other GeneralName) (Constraint, error) {
	o, ok := other.(X500Name)
	if !ok {
		return DiffType, nil
	}
	switch {
	case n.Equal(o):
		return Match, nil
	case o.IsEmpty() || n.within(o):
		return Narrows, nil
	case n.IsEmpty() || o.within(n):
		return Widens, nil
	}
	return SameType, nil
}

// SubtreeDepth returns the number of RDNs.
func (n X500Name) SubtreeDepth() (int, error) { return len(n.rdns), nil }

// DN returns the RFC 4514 string form, most specific RDN first.
func (n X500Name) DN() string {
	parts := make([]string, 0, len(n.rdns))
	for i := len(n.rdns) - 1; i >= 0; i-- {
		parts = append(parts, n.rdns[i].String())
	}
	return strings.Join(parts, ",")
}

func (n X500Name) String() string { return "DirName:" + n.DN() }

// ParseX500Name parses an RFC 4514 string such as "CN=leaf,O=Example,C=US".
// Semicolons are accepted as RDN separators and blanks around separators are
// ignored. A value starting with '#' is the hex DER encoding of the value.
func ParseX500Name(s string) (X500Name, error) {
	if strings.TrimSpace(s) == "" {
		return X500Name{}, nil
	}
	rdnStrs, err := splitUnescaped(s, ",;")
	if err != nil {
		return X500Name{}, err
	}
	rdns := make([]RDN, len(rdnStrs))
	for i, rs := range rdnStrs {
		avaStrs, err := splitUnescaped(rs, "+")
		if err != nil {
			return X500Name{}, err
		}
		var rdn RDN
		for _, as := range avaStrs {
			a, err := parseAVA(as)
			if err != nil {
				return X500Name{}, err
			}
			rdn = append(rdn, a)
		}
		// the string form lists the most specific RDN first
		rdns[len(rdnStrs)-1-i] = rdn
	}
	return X500Name{rdns: rdns}, nil
}

func parseAVA(s string) (AVA, error) {
	parts, err := splitUnescaped(s, "=")
	if err != nil {
		return AVA{}, err
	}
	if len(parts) < 2 {
		return AVA{}, invalidName("attribute %q has no value", s)
	}
	key := strings.TrimSpace(parts[0])
	// an unescaped '=' inside the value is tolerated
	value := strings.Join(parts[1:], "=")

	oid, err := attributeOID(key)
	if err != nil {
		return AVA{}, err
	}
	value = trimValue(value)
	if strings.HasPrefix(value, "#") {
		raw, err := hex.DecodeString(value[1:])
		if err != nil {
			return AVA{}, invalidName("attribute %s: bad hex value", key)
		}
		v, err := der.Decode(raw)
		if err != nil {
			return AVA{}, err
		}
		return AVA{Type: oid, Value: v}, nil
	}
	text, err := unescapeValue(value)
	if err != nil {
		return AVA{}, err
	}
	return NewAVA(oid, text)
}

func attributeOID(key string) (asn1.ObjectIdentifier, error) {
	upper := strings.ToUpper(key)
	for _, k := range keywords {
		if k.name == upper {
			return slices.Clone(k.oid), nil
		}
	}
	if upper == "E" {
		return slices.Clone(OIDEmailAddress), nil
	}
	dotted := strings.TrimPrefix(upper, "OID.")
	var oid asn1.ObjectIdentifier
	for _, arc := range strings.Split(dotted, ".") {
		n := 0
		if arc == "" {
			return nil, invalidName("unknown attribute type %q", key)
		}
		for _, c := range arc {
			if c < '0' || c > '9' {
				return nil, invalidName("unknown attribute type %q", key)
			}
			n = n*10 + int(c-'0')
		}
		oid = append(oid, n)
	}
	if len(oid) < 2 {
		return nil, invalidName("unknown attribute type %q", key)
	}
	return oid, nil
}

// splitUnescaped splits s at any byte of seps that is neither escaped with a
// backslash nor inside double quotes.
func splitUnescaped(s, seps string) ([]string, error) {
	var (
		out    []string
		start  int
		quoted bool
	)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\':
			i++
		case c == '"':
			quoted = !quoted
		case !quoted && strings.IndexByte(seps, c) >= 0:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	if quoted {
		return nil, invalidName("unterminated quote in %q", s)
	}
	return append(out, s[start:]), nil
}

// trimValue drops surrounding blanks but keeps an escaped trailing blank.
func trimValue(s string) string {
	s = strings.TrimLeft(s, " ")
	for strings.HasSuffix(s, " ") && !strings.HasSuffix(s, `\ `) {
		s = s[:len(s)-1]
	}
	return s
}

func unescapeValue(s string) (string, error) {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	var out bytes.Buffer
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' {
			continue
		}
		if c != '\\' {
			out.WriteByte(c)
			continue
		}
		if i+1 >= len(s) {
			return "", invalidName("dangling escape in %q", s)
		}
		if i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b, _ := hex.DecodeString(s[i+1 : i+3])
			out.Write(b)
			i += 2
			continue
		}
		out.WriteByte(s[i+1])
		i++
	}
	return out.String(), nil
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
