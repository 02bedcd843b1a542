// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package der

import (
	"bytes"
	encoding_asn1 "encoding/asn1"
	"fmt"
	"math/big"
	"slices"
	"time"

	"github.com/H0llyW00dzZ/x509-der-codec/src/internal/helper/gc"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// Builder writes DER. The first error recorded by any Add call (or by
// [Builder.SetError]) sticks and is returned from [Builder.Bytes]; later
// calls become no-ops.
//
// Nested builders handed to callbacks are only valid inside the callback.
type Builder struct{ b *cryptobyte.Builder }

// NewBuilder returns a Builder appending to buf.
func NewBuilder(buf []byte) *Builder { return &Builder{b: cryptobyte.NewBuilder(buf)} }

// Marshal runs f against a fresh Builder backed by a pooled buffer and returns
// a copy of the result.
func Marshal(f func(b *Builder)) ([]byte, error) {
	return gc.Scratch(func(buf gc.Buffer) error {
		b := NewBuilder(buf.Bytes()[:0])
		f(b)
		out, err := b.Bytes()
		if err != nil {
			return err
		}
		buf.Set(out)
		return nil
	})
}

// Bytes returns the encoding built so far, or the first recorded error.
func (b *Builder) Bytes() ([]byte, error) {
	out, err := b.b.Bytes()
	if err != nil {
		return nil, wrapBuildError(err)
	}
	return out, nil
}

// SetError records err, aborting the build.
func (b *Builder) SetError(err error) { b.b.SetError(err) }

func wrapBuildError(err error) error {
	if IsDecodeError(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInvalidValue, err)
}

func (b *Builder) child(c *cryptobyte.Builder) *Builder { return &Builder{b: c} }

// AddSequence writes a SEQUENCE whose members are written by f.
func (b *Builder) AddSequence(f func(b *Builder)) {
	b.b.AddASN1(asn1.SEQUENCE, func(c *cryptobyte.Builder) { f(b.child(c)) })
}

// AddSet writes a SET whose members are written by f in the given order.
func (b *Builder) AddSet(f func(b *Builder)) {
	b.b.AddASN1(asn1.SET, func(c *cryptobyte.Builder) { f(b.child(c)) })
}

// AddSetOf writes a SET OF whose members, written by f, are sorted by their
// encodings as DER requires.
func (b *Builder) AddSetOf(f func(b *Builder)) {
	inner := NewBuilder(nil)
	f(inner)
	content, err := inner.Bytes()
	if err != nil {
		b.SetError(err)
		return
	}
	var elems [][]byte
	r := NewReader(content)
	for !r.Empty() {
		v, err := r.Next()
		if err != nil {
			b.SetError(err)
			return
		}
		elems = append(elems, v.Marshal())
	}
	slices.SortFunc(elems, bytes.Compare)
	b.b.AddASN1(asn1.SET, func(c *cryptobyte.Builder) {
		for _, e := range elems {
			c.AddBytes(e)
		}
	})
}

// AddConstructed writes a constructed value with an arbitrary class and tag.
func (b *Builder) AddConstructed(class Class, tag uint8, f func(b *Builder)) {
	if tag > maxTag {
		b.SetError(Invalidf("tag %d needs the high tag number form", tag))
		return
	}
	b.b.AddASN1(identifier(class, true, tag), func(c *cryptobyte.Builder) { f(b.child(c)) })
}

// AddExplicit writes an EXPLICIT context-specific tag around whatever f writes.
func (b *Builder) AddExplicit(tag uint8, f func(b *Builder)) {
	b.AddConstructed(ClassContextSpecific, tag, f)
}

// AddImplicit writes the single value produced by f with its identifier
// replaced by the context-specific tag. The constructed bit of the inner value
// is kept.
func (b *Builder) AddImplicit(tag uint8, f func(b *Builder)) {
	inner := NewBuilder(nil)
	f(inner)
	enc, err := inner.Bytes()
	if err != nil {
		b.SetError(err)
		return
	}
	v, err := Decode(enc)
	if err != nil {
		b.SetError(err)
		return
	}
	b.AddValue(v.WithTag(ClassContextSpecific, tag))
}

// AddPrimitive writes a primitive value with an arbitrary class and tag.
func (b *Builder) AddPrimitive(class Class, tag uint8, content []byte) {
	b.AddValue(Value{Class: class, Tag: tag, Content: content})
}

// AddValue writes a previously decoded or hand-assembled value.
func (b *Builder) AddValue(v Value) {
	if v.Tag > maxTag {
		b.SetError(Invalidf("tag %d needs the high tag number form", v.Tag))
		return
	}
	b.b.AddASN1(v.identifier(), func(c *cryptobyte.Builder) { c.AddBytes(v.Content) })
}

// AddRaw appends pre-encoded DER verbatim.
func (b *Builder) AddRaw(p []byte) { b.b.AddBytes(p) }

// AddBoolean writes a BOOLEAN, using 0xFF for true.
func (b *Builder) AddBoolean(v bool) { b.b.AddASN1Boolean(v) }

// AddInt64 writes an INTEGER.
func (b *Builder) AddInt64(n int64) { b.b.AddASN1Int64(n) }

// AddBigInt writes an INTEGER of any size.
func (b *Builder) AddBigInt(n *big.Int) {
	if n == nil {
		b.SetError(Invalidf("nil INTEGER"))
		return
	}
	b.b.AddASN1BigInt(n)
}

// AddEnumerated writes an ENUMERATED.
func (b *Builder) AddEnumerated(n int64) { b.b.AddASN1Enum(n) }

// AddOctetString writes an OCTET STRING.
func (b *Builder) AddOctetString(p []byte) { b.b.AddASN1OctetString(p) }

// AddNull writes a NULL.
func (b *Builder) AddNull() { b.b.AddASN1NULL() }

// AddOID writes an OBJECT IDENTIFIER.
func (b *Builder) AddOID(oid encoding_asn1.ObjectIdentifier) {
	if len(oid) < 2 || oid[0] > 2 || (oid[0] < 2 && oid[1] >= 40) {
		b.SetError(Invalidf("invalid OBJECT IDENTIFIER %v", oid))
		return
	}
	b.b.AddASN1ObjectIdentifier(oid)
}

// AddBitString writes a BIT STRING with the given number of unused bits in
// the final octet. Unused bits must be zero.
func (b *Builder) AddBitString(data []byte, unused int) {
	switch {
	case unused < 0 || unused > 7:
		b.SetError(Invalidf("%d unused bits", unused))
		return
	case len(data) == 0 && unused != 0:
		b.SetError(Invalidf("empty BIT STRING with %d unused bits", unused))
		return
	case len(data) > 0 && data[len(data)-1]&(1<<unused-1) != 0:
		b.SetError(Invalidf("BIT STRING has non-zero padding"))
		return
	}
	b.b.AddASN1(asn1.BIT_STRING, func(c *cryptobyte.Builder) {
		c.AddUint8(uint8(unused))
		c.AddBytes(data)
	})
}

// AddBools writes a BIT STRING holding exactly len(bits) bits, index 0 being
// the most significant bit of the first octet.
func (b *Builder) AddBools(bits []bool) {
	data := make([]byte, (len(bits)+7)/8)
	for i, set := range bits {
		if set {
			data[i/8] |= 0x80 >> (i % 8)
		}
	}
	b.AddBitString(data, (8-len(bits)%8)%8)
}

// AddTruncatedBools writes a named-bit BIT STRING: trailing false bits are
// dropped before encoding.
func (b *Builder) AddTruncatedBools(bits []bool) {
	n := len(bits)
	for n > 0 && !bits[n-1] {
		n--
	}
	b.AddBools(bits[:n])
}

// AddString writes s as the character string type tag.
func (b *Builder) AddString(tag uint8, s string) {
	content, err := encodeString(tag, s)
	if err != nil {
		b.SetError(err)
		return
	}
	b.AddPrimitive(ClassUniversal, tag, content)
}

// AddIA5String writes an IA5String.
func (b *Builder) AddIA5String(s string) { b.AddString(TagIA5String, s) }

// AddPrintableString writes a PrintableString.
func (b *Builder) AddPrintableString(s string) { b.AddString(TagPrintableString, s) }

// AddUTF8String writes a UTF8String.
func (b *Builder) AddUTF8String(s string) { b.AddString(TagUTF8String, s) }

// AddUTCTime writes a UTCTime. t must fall in 1950 through 2049.
func (b *Builder) AddUTCTime(t time.Time) {
	b.b.AddASN1UTCTime(t.UTC().Truncate(time.Second))
}

// AddGeneralizedTime writes a GeneralizedTime without fractional seconds.
func (b *Builder) AddGeneralizedTime(t time.Time) {
	b.b.AddASN1GeneralizedTime(t.UTC().Truncate(time.Second))
}

// AddTime writes t as a PKIX Time.
func (b *Builder) AddTime(t time.Time) {
	if UsesUTCTime(t) {
		b.AddUTCTime(t)
		return
	}
	b.AddGeneralizedTime(t)
}

// UsesUTCTime reports whether the PKIX profile encodes t as UTCTime.
func UsesUTCTime(t time.Time) bool {
	y := t.UTC().Year()
	return y >= 1950 && y < 2050
}
