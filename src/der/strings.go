// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package der

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

var (
	bmpEncoding       = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	universalEncoding = utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)
	// T61 is decoded as Latin-1, which is what issuers actually put there.
	t61Encoding = charmap.ISO8859_1
)

// IsPrintable reports whether s fits the PrintableString alphabet.
// '*' and '&' are tolerated because deployed certificates carry them.
func IsPrintable(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isPrintableByte(s[i]) {
			return false
		}
	}
	return true
}

func isPrintableByte(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case ' ', '\'', '(', ')', '+', ',', '-', '.', '/', ':', '=', '?', '*', '&':
		return true
	}
	return false
}

// IsIA5 reports whether s is plain ASCII.
func IsIA5(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func isNumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if (s[i] < '0' || s[i] > '9') && s[i] != ' ' {
			return false
		}
	}
	return true
}

// IA5String decodes an IA5String.
func (v Value) IA5String() (string, error) {
	if err := v.expect(TagIA5String, false); err != nil {
		return "", err
	}
	s := string(v.Content)
	if !IsIA5(s) {
		return "", Malformedf("IA5String contains non-ASCII octets")
	}
	return s, nil
}

// Text decodes any of the character string types found in directory
// attributes and policy qualifiers into UTF-8.
func (v Value) Text() (string, error) {
	if v.Class != ClassUniversal || v.Constructed {
		return "", Malformedf("expected a character string, found %s", v)
	}
	switch v.Tag {
	case TagUTF8String:
		if !utf8.Valid(v.Content) {
			return "", Malformedf("UTF8String is not valid UTF-8")
		}
		return string(v.Content), nil
	case TagPrintableString:
		s := string(v.Content)
		if !IsPrintable(s) {
			return "", Malformedf("PrintableString contains invalid characters")
		}
		return s, nil
	case TagIA5String, TagVisibleString:
		s := string(v.Content)
		if !IsIA5(s) {
			return "", Malformedf("%s contains non-ASCII octets", v)
		}
		return s, nil
	case TagNumericString:
		s := string(v.Content)
		if !isNumeric(s) {
			return "", Malformedf("NumericString contains invalid characters")
		}
		return s, nil
	case TagBMPString:
		if len(v.Content)%2 != 0 {
			return "", Malformedf("BMPString has odd length")
		}
		return decodeWith(bmpEncoding, v)
	case TagUniversalString:
		if len(v.Content)%4 != 0 {
			return "", Malformedf("UniversalString length is not a multiple of four")
		}
		return decodeWith(universalEncoding, v)
	case TagT61String:
		return decodeWith(t61Encoding, v)
	default:
		return "", Malformedf("expected a character string, found %s", v)
	}
}

func decodeWith(enc encoding.Encoding, v Value) (string, error) {
	out, err := enc.NewDecoder().Bytes(v.Content)
	if err != nil {
		return "", Malformedf("%s: %v", v, err)
	}
	return string(out), nil
}

// encodeString converts s into the content octets of the string type tag.
func encodeString(tag uint8, s string) ([]byte, error) {
	switch tag {
	case TagUTF8String:
		if !utf8.ValidString(s) {
			return nil, Invalidf("UTF8String value is not valid UTF-8")
		}
		return []byte(s), nil
	case TagPrintableString:
		if !IsPrintable(s) {
			return nil, Invalidf("%q cannot be a PrintableString", s)
		}
		return []byte(s), nil
	case TagIA5String, TagVisibleString:
		if !IsIA5(s) {
			return nil, Invalidf("%q is not ASCII", s)
		}
		return []byte(s), nil
	case TagNumericString:
		if !isNumeric(s) {
			return nil, Invalidf("%q cannot be a NumericString", s)
		}
		return []byte(s), nil
	case TagBMPString:
		return encodeWith(bmpEncoding, s)
	case TagUniversalString:
		return encodeWith(universalEncoding, s)
	case TagT61String:
		return encodeWith(t61Encoding, s)
	default:
		return nil, Invalidf("tag %d is not a character string type", tag)
	}
}

func encodeWith(enc encoding.Encoding, s string) ([]byte, error) {
	out, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, Invalidf("%q: %v", s, err)
	}
	return out, nil
}
