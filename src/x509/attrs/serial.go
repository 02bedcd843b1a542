// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509attrs

import (
	"math/big"
	"strings"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
)

// SerialNumber is a certificate serial number of arbitrary size.
type SerialNumber struct{ n *big.Int }

// NewSerialNumber copies n.
func NewSerialNumber(n *big.Int) SerialNumber {
	if n == nil {
		return SerialNumber{n: new(big.Int)}
	}
	return SerialNumber{n: new(big.Int).Set(n)}
}

// NewSerialNumberInt64 is a convenience for small serials.
func NewSerialNumberInt64(n int64) SerialNumber { return SerialNumber{n: big.NewInt(n)} }

// DecodeSerialNumber decodes an INTEGER serial. Re-tag IMPLICIT fields first.
func DecodeSerialNumber(v der.Value) (SerialNumber, error) {
	n, err := v.BigInt()
	if err != nil {
		return SerialNumber{}, err
	}
	return SerialNumber{n: n}, nil
}

// BigInt returns a copy of the value.
func (s SerialNumber) BigInt() *big.Int {
	if s.n == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(s.n)
}

// Encode writes the serial as an INTEGER.
func (s SerialNumber) Encode(b *der.Builder) { b.AddBigInt(s.BigInt()) }

// Equal compares values.
func (s SerialNumber) Equal(o SerialNumber) bool { return s.BigInt().Cmp(o.BigInt()) == 0 }

// String returns colon separated hex octets, as certificate viewers print them.
func (s SerialNumber) String() string {
	n := s.BigInt()
	prefix := ""
	if n.Sign() < 0 {
		prefix = "-"
		n.Neg(n)
	}
	raw := n.Bytes()
	if len(raw) == 0 {
		raw = []byte{0}
	}
	parts := make([]string, len(raw))
	for i, c := range raw {
		parts[i] = hexByte(c)
	}
	return prefix + strings.Join(parts, ":")
}

func hexByte(c byte) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[c>>4], digits[c&0x0f]})
}
