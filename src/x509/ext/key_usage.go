// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ext

import (
	"crypto/x509"
	"slices"
	"strings"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
)

// namedBits is a named-bit BIT STRING, index 0 being the first bit.
type namedBits []bool

// isSet is false for any position past the end.
func (n namedBits) isSet(pos int) bool { return pos >= 0 && pos < len(n) && n[pos] }

func (n namedBits) with(pos int, v bool) namedBits {
	out := slices.Clone(n)
	if pos >= len(out) {
		if !v {
			return out
		}
		out = append(out, make([]bool, pos+1-len(out))...)
	}
	out[pos] = v
	return out
}

func decodeNamedBits(name string, value []byte) (namedBits, error) {
	v, err := decodeValue(name, value)
	if err != nil {
		return nil, err
	}
	bits, err := v.Bools()
	if err != nil {
		return nil, err
	}
	return namedBits(bits), nil
}

// bitFields builds the attribute table for a named-bit extension.
func bitFields[T any](ext string, names []string, bits func(e *T) *namedBits) fields[T] {
	m := make(map[string]field[T], len(names))
	var order []string
	for pos, name := range names {
		if name == "" {
			continue
		}
		order = append(order, name)
		m[name] = field[T]{
			get: func(e *T) any { return bits(e).isSet(pos) },
			set: func(e *T, v any) error {
				on, err := as[bool](name, v)
				if err != nil {
					return err
				}
				*bits(e) = bits(e).with(pos, on)
				return nil
			},
			del: func(e *T) error { *bits(e) = bits(e).with(pos, false); return nil },
		}
	}
	return newFields(ext, order, m)
}

func bitString(names []string, bits namedBits) string {
	var set []string
	for pos, name := range names {
		if name != "" && bits.isSet(pos) {
			set = append(set, name)
		}
	}
	return strings.Join(set, ", ")
}

// KeyUsage bit positions.
const (
	DigitalSignature = iota
	NonRepudiation
	KeyEncipherment
	DataEncipherment
	KeyAgreement
	KeyCertSign
	CRLSign
	EncipherOnly
	DecipherOnly
)

var keyUsageNames = []string{
	"digital_signature",
	"non_repudiation",
	"key_encipherment",
	"data_encipherment",
	"key_agreement",
	"key_certsign",
	"crl_sign",
	"encipher_only",
	"decipher_only",
}

// KeyUsage restricts the purposes of the certified key.
type KeyUsage struct {
	extension
	bits namedBits
}

// NewKeyUsage builds the extension with the given bit positions set.
func NewKeyUsage(critical bool, positions ...int) (*KeyUsage, error) {
	e := &KeyUsage{extension: extension{id: slices.Clone(OIDKeyUsage), critical: critical}}
	for _, pos := range positions {
		if pos < 0 || pos > DecipherOnly {
			return nil, der.Invalidf("KeyUsage: bit %d", pos)
		}
		e.bits = e.bits.with(pos, true)
	}
	if err := e.derive(e.encodeValue); err != nil {
		return nil, err
	}
	return e, nil
}

// NewKeyUsageFromX509 converts a crypto/x509 usage mask.
func NewKeyUsageFromX509(critical bool, ku x509.KeyUsage) (*KeyUsage, error) {
	var positions []int
	for pos := DigitalSignature; pos <= DecipherOnly; pos++ {
		if ku&(1<<pos) != 0 {
			positions = append(positions, pos)
		}
	}
	return NewKeyUsage(critical, positions...)
}

// ParseKeyUsage decodes an extnValue.
func ParseKeyUsage(critical bool, value []byte) (*KeyUsage, error) {
	bits, err := decodeNamedBits(NameKeyUsage, value)
	if err != nil {
		return nil, err
	}
	e := &KeyUsage{extension: extension{id: slices.Clone(OIDKeyUsage), critical: critical}, bits: bits}
	e.keep(value)
	return e, nil
}

func (e *KeyUsage) encodeValue(b *der.Builder) { b.AddTruncatedBools(e.bits) }

func (e *KeyUsage) Name() string { return NameKeyUsage }

// IsSet reports whether the bit at pos is set. Positions past the decoded
// length are unset.
func (e *KeyUsage) IsSet(pos int) bool { return e.bits.isSet(pos) }

// Bits returns a copy of the bit array.
func (e *KeyUsage) Bits() []bool { return slices.Clone(e.bits) }

// X509 returns the equivalent crypto/x509 mask.
func (e *KeyUsage) X509() x509.KeyUsage {
	var ku x509.KeyUsage
	for pos := DigitalSignature; pos <= DecipherOnly; pos++ {
		if e.bits.isSet(pos) {
			ku |= 1 << pos
		}
	}
	return ku
}

var keyUsageFields = bitFields(NameKeyUsage, keyUsageNames, func(e *KeyUsage) *namedBits { return &e.bits })

func (e *KeyUsage) rederive() error { return e.derive(e.encodeValue) }

func (e *KeyUsage) Get(name string) (any, error) { return keyUsageFields.get(e, name) }
func (e *KeyUsage) Set(name string, v any) error {
	return keyUsageFields.set(e, name, v, e.rederive)
}
func (e *KeyUsage) Delete(name string) error { return keyUsageFields.delete(e, name, e.rederive) }
func (e *KeyUsage) AttributeNames() []string { return keyUsageFields.attributeNames() }

func (e *KeyUsage) String() string {
	return header(e) + "KeyUsage [\n  " + bitString(keyUsageNames, e.bits) + "\n]\n"
}

// NetscapeCertType bit positions. Bit 4 is reserved.
const (
	NetscapeSSLClient = iota
	NetscapeSSLServer
	NetscapeSMIME
	NetscapeObjectSigning
	_
	NetscapeSSLCA
	NetscapeSMIMECA
	NetscapeObjectSigningCA
)

var netscapeCertTypeNames = []string{
	"ssl_client",
	"ssl_server",
	"s_mime",
	"object_signing",
	"",
	"ssl_ca",
	"s_mime_ca",
	"object_signing_ca",
}

// NetscapeCertType is the legacy Netscape certificate type bit mask.
type NetscapeCertType struct {
	extension
	bits namedBits
}

// NewNetscapeCertType builds the extension with the given bit positions set.
func NewNetscapeCertType(critical bool, positions ...int) (*NetscapeCertType, error) {
	e := &NetscapeCertType{extension: extension{id: slices.Clone(OIDNetscapeCertType), critical: critical}}
	for _, pos := range positions {
		if pos < 0 || pos > NetscapeObjectSigningCA {
			return nil, der.Invalidf("NetscapeCertType: bit %d", pos)
		}
		e.bits = e.bits.with(pos, true)
	}
	if err := e.derive(e.encodeValue); err != nil {
		return nil, err
	}
	return e, nil
}

// ParseNetscapeCertType decodes an extnValue.
func ParseNetscapeCertType(critical bool, value []byte) (*NetscapeCertType, error) {
	bits, err := decodeNamedBits(NameNetscapeCertType, value)
	if err != nil {
		return nil, err
	}
	e := &NetscapeCertType{extension: extension{id: slices.Clone(OIDNetscapeCertType), critical: critical}, bits: bits}
	e.keep(value)
	return e, nil
}

func (e *NetscapeCertType) encodeValue(b *der.Builder) { b.AddTruncatedBools(e.bits) }

func (e *NetscapeCertType) Name() string { return NameNetscapeCertType }

// IsSet reports whether the bit at pos is set.
func (e *NetscapeCertType) IsSet(pos int) bool { return e.bits.isSet(pos) }

var netscapeCertTypeFields = bitFields(NameNetscapeCertType, netscapeCertTypeNames, func(e *NetscapeCertType) *namedBits { return &e.bits })

func (e *NetscapeCertType) rederive() error { return e.derive(e.encodeValue) }

func (e *NetscapeCertType) Get(name string) (any, error) { return netscapeCertTypeFields.get(e, name) }
func (e *NetscapeCertType) Set(name string, v any) error {
	return netscapeCertTypeFields.set(e, name, v, e.rederive)
}
func (e *NetscapeCertType) Delete(name string) error {
	return netscapeCertTypeFields.delete(e, name, e.rederive)
}
func (e *NetscapeCertType) AttributeNames() []string { return netscapeCertTypeFields.attributeNames() }

func (e *NetscapeCertType) String() string {
	return header(e) + "NetscapeCertType [\n  " + bitString(netscapeCertTypeNames, e.bits) + "\n]\n"
}
