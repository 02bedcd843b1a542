// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package der

import (
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// Reader is a forward cursor over concatenated DER values.
//
// A Reader is not safe for concurrent use.
type Reader struct{ s cryptobyte.String }

// NewReader returns a Reader over b. The values it returns alias b.
func NewReader(b []byte) *Reader { return &Reader{s: cryptobyte.String(b)} }

// Empty reports whether all input has been consumed.
func (r *Reader) Empty() bool { return r.s.Empty() }

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.s) }

// Next decodes the next value and advances past it.
func (r *Reader) Next() (Value, error) {
	if err := checkHeader(r.s); err != nil {
		return Value{}, err
	}
	var (
		content cryptobyte.String
		tag     asn1.Tag
	)
	if !r.s.ReadAnyASN1(&content, &tag) {
		return Value{}, Malformedf("invalid length")
	}
	return valueOf(tag, content), nil
}

// Peek decodes the next value without advancing.
func (r *Reader) Peek() (Value, error) {
	tmp := Reader{s: r.s}
	return tmp.Next()
}

// NextIf decodes and consumes the next value only when it carries the given
// class and tag number. It reports false, with no error, when the input is
// exhausted or the next value has a different tag.
func (r *Reader) NextIf(class Class, tag uint8) (Value, bool, error) {
	if r.Empty() {
		return Value{}, false, nil
	}
	v, err := r.Peek()
	if err != nil {
		return Value{}, false, err
	}
	if v.Class != class || v.Tag != tag {
		return Value{}, false, nil
	}
	if _, err := r.Next(); err != nil {
		return Value{}, false, err
	}
	return v, true, nil
}

// Finish returns an error if any input remains.
func (r *Reader) Finish() error {
	if !r.Empty() {
		return Malformedf("%d trailing bytes", len(r.s))
	}
	return nil
}

// Decode decodes exactly one value from b. Trailing bytes are an error.
func Decode(b []byte) (Value, error) {
	r := NewReader(b)
	v, err := r.Next()
	if err != nil {
		return Value{}, err
	}
	if err := r.Finish(); err != nil {
		return Value{}, err
	}
	return v, nil
}

// checkHeader inspects the identifier and length octets at the start of b so
// the caller gets a precise reason instead of a bare parse failure.
func checkHeader(b []byte) error {
	if len(b) == 0 {
		return Malformedf("unexpected end of input")
	}
	if b[0]&0x1f == 0x1f {
		return Malformedf("high tag number form is not supported")
	}
	if len(b) < 2 {
		return Malformedf("truncated length")
	}
	lb := b[1]
	if lb == 0x80 {
		return Malformedf("indefinite length")
	}
	var length uint64
	hdr := 2
	if lb&0x80 == 0 {
		length = uint64(lb)
	} else {
		n := int(lb & 0x7f)
		if n > 4 {
			return Malformedf("length of %d octets is too large", n)
		}
		if len(b) < 2+n {
			return Malformedf("truncated length")
		}
		if b[2] == 0 {
			return Malformedf("non-minimal length")
		}
		for _, c := range b[2 : 2+n] {
			length = length<<8 | uint64(c)
		}
		if length < 0x80 {
			return Malformedf("non-minimal length")
		}
		hdr += n
	}
	if uint64(len(b)-hdr) < length {
		return Malformedf("truncated content: need %d bytes, have %d", length, len(b)-hdr)
	}
	return nil
}
