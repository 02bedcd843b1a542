// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package der

import (
	"bytes"
	encoding_asn1 "encoding/asn1"
	"math/big"
	"time"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// Value is one decoded tag-length-value record.
//
// Content holds the value octets exactly as they appeared on the wire. For a
// constructed value they are the concatenated encodings of its children, which
// are parsed only when [Value.Reader] or [Value.Children] is called.
type Value struct {
	Class       Class
	Constructed bool
	Tag         uint8
	Content     []byte
}

func valueOf(tag asn1.Tag, content []byte) Value {
	return Value{
		Class:       Class(uint8(tag) >> 6),
		Constructed: uint8(tag)&0x20 != 0,
		Tag:         uint8(tag) & 0x1f,
		Content:     content,
	}
}

func (v Value) identifier() asn1.Tag { return identifier(v.Class, v.Constructed, v.Tag) }

// Is reports whether v carries the given universal tag.
func (v Value) Is(tag uint8) bool { return v.Class == ClassUniversal && v.Tag == tag }

// IsContext reports whether v carries the given context-specific tag, in either form.
func (v Value) IsContext(tag uint8) bool { return v.Class == ClassContextSpecific && v.Tag == tag }

// WithTag returns v re-tagged with class and tag. The constructed bit and the
// content are preserved, which is what IMPLICIT tagging requires.
func (v Value) WithTag(class Class, tag uint8) Value {
	v.Class = class
	v.Tag = tag
	return v
}

// Implicit returns v re-tagged as the universal type tag.
func (v Value) Implicit(tag uint8) Value { return v.WithTag(ClassUniversal, tag) }

// Marshal returns the full DER encoding of v. It returns nil if v carries a
// tag number that needs the high-tag-number form.
func (v Value) Marshal() []byte {
	if v.Tag > maxTag {
		return nil
	}
	b := cryptobyte.NewBuilder(make([]byte, 0, len(v.Content)+6))
	b.AddASN1(v.identifier(), func(c *cryptobyte.Builder) { c.AddBytes(v.Content) })
	out, err := b.Bytes()
	if err != nil {
		return nil
	}
	return out
}

// Equal reports whether v and o have identical encodings.
func (v Value) Equal(o Value) bool {
	return v.Class == o.Class && v.Constructed == o.Constructed && v.Tag == o.Tag && bytes.Equal(v.Content, o.Content)
}

func (v Value) String() string { return describe(v.Class, v.Constructed, v.Tag) }

func (v Value) expect(tag uint8, constructed bool) error {
	if v.Class != ClassUniversal || v.Tag != tag || v.Constructed != constructed {
		return Malformedf("expected %s, found %s", describe(ClassUniversal, constructed, tag), v)
	}
	return nil
}

// element returns the encoding of v for the cryptobyte readers, which parse
// whole elements rather than bare content.
func (v Value) element() cryptobyte.String { return cryptobyte.String(v.Marshal()) }

// Reader returns a cursor over the children of a constructed value.
func (v Value) Reader() (*Reader, error) {
	if !v.Constructed {
		return nil, Malformedf("%s is not constructed", v)
	}
	return NewReader(v.Content), nil
}

// Sequence returns a cursor over the members of a SEQUENCE.
func (v Value) Sequence() (*Reader, error) {
	if err := v.expect(TagSequence, true); err != nil {
		return nil, err
	}
	return NewReader(v.Content), nil
}

// SetOf returns a cursor over the members of a SET or SET OF.
func (v Value) SetOf() (*Reader, error) {
	if err := v.expect(TagSet, true); err != nil {
		return nil, err
	}
	return NewReader(v.Content), nil
}

// Children decodes every child of a constructed value.
func (v Value) Children() ([]Value, error) {
	r, err := v.Reader()
	if err != nil {
		return nil, err
	}
	var out []Value
	for !r.Empty() {
		c, err := r.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Boolean decodes a BOOLEAN. Any non-zero octet is accepted as true.
func (v Value) Boolean() (bool, error) {
	if err := v.expect(TagBoolean, false); err != nil {
		return false, err
	}
	if len(v.Content) != 1 {
		return false, Malformedf("BOOLEAN of length %d", len(v.Content))
	}
	return v.Content[0] != 0, nil
}

// Int64 decodes an INTEGER that fits in 64 bits.
func (v Value) Int64() (int64, error) {
	if err := v.expect(TagInteger, false); err != nil {
		return 0, err
	}
	var n int64
	s := v.element()
	if !s.ReadASN1Integer(&n) {
		return 0, Malformedf("INTEGER is not minimally encoded or does not fit in 64 bits")
	}
	return n, nil
}

// Int decodes an INTEGER into an int.
func (v Value) Int() (int, error) {
	if err := v.expect(TagInteger, false); err != nil {
		return 0, err
	}
	var n int
	s := v.element()
	if !s.ReadASN1Integer(&n) {
		return 0, Malformedf("INTEGER is not minimally encoded or does not fit in an int")
	}
	return n, nil
}

// BigInt decodes an INTEGER of any size.
func (v Value) BigInt() (*big.Int, error) {
	if err := v.expect(TagInteger, false); err != nil {
		return nil, err
	}
	n := new(big.Int)
	s := v.element()
	if !s.ReadASN1Integer(n) {
		return nil, Malformedf("INTEGER is not minimally encoded")
	}
	return n, nil
}

// Enumerated decodes an ENUMERATED.
func (v Value) Enumerated() (int, error) {
	if err := v.expect(TagEnumerated, false); err != nil {
		return 0, err
	}
	var n int
	s := v.element()
	if !s.ReadASN1Enum(&n) {
		return 0, Malformedf("ENUMERATED is not minimally encoded")
	}
	return n, nil
}

// OctetString returns the content of an OCTET STRING.
func (v Value) OctetString() ([]byte, error) {
	if err := v.expect(TagOctetString, false); err != nil {
		return nil, err
	}
	return v.Content, nil
}

// Null checks that v is a NULL.
func (v Value) Null() error {
	if err := v.expect(TagNull, false); err != nil {
		return err
	}
	if len(v.Content) != 0 {
		return Malformedf("NULL with %d content octets", len(v.Content))
	}
	return nil
}

// OID decodes an OBJECT IDENTIFIER.
func (v Value) OID() (encoding_asn1.ObjectIdentifier, error) {
	if err := v.expect(TagOID, false); err != nil {
		return nil, err
	}
	var oid encoding_asn1.ObjectIdentifier
	s := v.element()
	if !s.ReadASN1ObjectIdentifier(&oid) {
		return nil, Malformedf("invalid OBJECT IDENTIFIER")
	}
	return oid, nil
}

// BitString decodes a BIT STRING. Unused trailing bits must be zero.
func (v Value) BitString() (encoding_asn1.BitString, error) {
	if err := v.expect(TagBitString, false); err != nil {
		return encoding_asn1.BitString{}, err
	}
	var bs encoding_asn1.BitString
	s := v.element()
	if !s.ReadASN1BitString(&bs) {
		return encoding_asn1.BitString{}, Malformedf("invalid BIT STRING")
	}
	return bs, nil
}

// Bools decodes a BIT STRING into one bool per bit, most significant bit first.
func (v Value) Bools() ([]bool, error) {
	bs, err := v.BitString()
	if err != nil {
		return nil, err
	}
	out := make([]bool, bs.BitLength)
	for i := range out {
		out[i] = bs.At(i) == 1
	}
	return out, nil
}

// UTCTime decodes a UTCTime. Two-digit years 50 through 99 map to 19xx.
func (v Value) UTCTime() (time.Time, error) {
	if err := v.expect(TagUTCTime, false); err != nil {
		return time.Time{}, err
	}
	var t time.Time
	s := v.element()
	if !s.ReadASN1UTCTime(&t) {
		return time.Time{}, Malformedf("invalid UTCTime %q", v.Content)
	}
	return t.UTC(), nil
}

// GeneralizedTime decodes a GeneralizedTime.
func (v Value) GeneralizedTime() (time.Time, error) {
	if err := v.expect(TagGeneralizedTime, false); err != nil {
		return time.Time{}, err
	}
	var t time.Time
	s := v.element()
	if !s.ReadASN1GeneralizedTime(&t) {
		return time.Time{}, Malformedf("invalid GeneralizedTime %q", v.Content)
	}
	return t.UTC(), nil
}

// Time decodes either time form, as found in a PKIX Time CHOICE. The form must
// be the one [Builder.AddTime] picks for the instant: UTCTime for 1950
// through 2049, GeneralizedTime otherwise.
func (v Value) Time() (time.Time, error) {
	var (
		t   time.Time
		err error
	)
	switch {
	case v.Is(TagUTCTime):
		t, err = v.UTCTime()
	case v.Is(TagGeneralizedTime):
		t, err = v.GeneralizedTime()
	default:
		return time.Time{}, Malformedf("expected UTCTime or GeneralizedTime, found %s", v)
	}
	if err != nil {
		return time.Time{}, err
	}
	if UsesUTCTime(t) != v.Is(TagUTCTime) {
		return time.Time{}, Malformedf("%s used for year %d", v, t.Year())
	}
	return t, nil
}
