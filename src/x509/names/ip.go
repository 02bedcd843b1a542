// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509names

import (
	"bytes"
	"encoding/hex"
	"math/bits"
	"net/netip"
	"strconv"
	"strings"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
)

// IPAddressName is an iPAddress: a 4 or 16 byte address, or in name
// constraints an address followed by a mask of the same size (8 or 32 bytes).
type IPAddressName struct{ b []byte }

// NewIPAddressName wraps the raw octets of an iPAddress.
func NewIPAddressName(p []byte) (IPAddressName, error) {
	switch len(p) {
	case 4, 8, 16, 32:
		return IPAddressName{b: bytes.Clone(p)}, nil
	default:
		return IPAddressName{}, invalidName("iPAddress of %d octets", len(p))
	}
}

// ParseIPAddressName parses "192.0.2.1", "2001:db8::1", a CIDR prefix such as
// "10.0.0.0/8", or an IPv4 address with a dotted mask ("10.0.0.0/255.0.0.0").
func ParseIPAddressName(s string) (IPAddressName, error) {
	addrPart, maskPart, hasMask := strings.Cut(s, "/")
	addr, err := netip.ParseAddr(addrPart)
	if err != nil || addr.Zone() != "" {
		return IPAddressName{}, invalidName("IP address %q", s)
	}
	raw := addr.AsSlice()
	if !hasMask {
		return IPAddressName{b: raw}, nil
	}

	var mask []byte
	if bitsLen, err := strconv.Atoi(maskPart); err == nil {
		if bitsLen < 0 || bitsLen > addr.BitLen() {
			return IPAddressName{}, invalidName("IP prefix length in %q", s)
		}
		mask = prefixMask(bitsLen, len(raw))
	} else {
		m, err := netip.ParseAddr(maskPart)
		if err != nil || m.BitLen() != addr.BitLen() {
			return IPAddressName{}, invalidName("IP mask in %q", s)
		}
		mask = m.AsSlice()
		if _, ok := maskLength(mask); !ok {
			return IPAddressName{}, invalidName("IP mask in %q is not contiguous", s)
		}
	}
	return IPAddressName{b: append(raw, mask...)}, nil
}

func prefixMask(ones, size int) []byte {
	mask := make([]byte, size)
	for i := range mask {
		switch {
		case ones >= 8:
			mask[i] = 0xff
			ones -= 8
		case ones > 0:
			mask[i] = ^byte(0xff >> ones)
			ones = 0
		}
	}
	return mask
}

func maskLength(mask []byte) (int, bool) {
	ones := 0
	for i, m := range mask {
		if m == 0xff {
			ones += 8
			continue
		}
		n := bits.LeadingZeros8(^m)
		if m<<n != 0 {
			return 0, false
		}
		for _, rest := range mask[i+1:] {
			if rest != 0 {
				return 0, false
			}
		}
		return ones + n, true
	}
	return ones, true
}

// Bytes returns a copy of the raw octets.
func (n IPAddressName) Bytes() []byte { return bytes.Clone(n.b) }

// IsSubnet reports whether n carries a mask.
func (n IPAddressName) IsSubnet() bool { return len(n.b) == 8 || len(n.b) == 32 }

func (n IPAddressName) addrLen() int {
	if n.IsSubnet() {
		return len(n.b) / 2
	}
	return len(n.b)
}

func (n IPAddressName) addr() []byte { return n.b[:n.addrLen()] }

func (n IPAddressName) mask() []byte {
	if n.IsSubnet() {
		return n.b[n.addrLen():]
	}
	return bytes.Repeat([]byte{0xff}, len(n.b))
}

// contains reports whether every address of o is in n. Both must be the same family.
func (n IPAddressName) contains(o IPAddressName) bool {
	nm, om := n.mask(), o.mask()
	na, oa := n.addr(), o.addr()
	for i := range nm {
		if nm[i]&^om[i] != 0 {
			return false
		}
		if na[i]&nm[i] != oa[i]&nm[i] {
			return false
		}
	}
	return true
}

func (IPAddressName) generalName() {}

// Type returns [TypeIPAddress].
func (IPAddressName) Type() NameType { return TypeIPAddress }

// Encode writes the octets as an OCTET STRING.
func (n IPAddressName) Encode(b *der.Builder) { b.AddOctetString(n.b) }

// Equal compares the raw octets.
func (n IPAddressName) Equal(other GeneralName) bool {
	o, ok := other.(IPAddressName)
	return ok && bytes.Equal(n.b, o.b)
}

// Key returns the hex octets.
func (n IPAddressName) Key() string { return "ip:" + hex.EncodeToString(n.b) }

// Constrains compares subnet membership within one address family.
func (n IPAddressName) Constrains(other GeneralName) (Constraint, error) {
	o, ok := other.(IPAddressName)
	if !ok {
		return DiffType, nil
	}
	switch {
	case n.Equal(o):
		return Match, nil
	case n.addrLen() != o.addrLen():
		return SameType, nil
	case o.IsSubnet() && o.contains(n):
		return Narrows, nil
	case n.IsSubnet() && n.contains(o):
		return Widens, nil
	}
	return SameType, nil
}

// SubtreeDepth is not defined for addresses.
func (IPAddressName) SubtreeDepth() (int, error) { return 0, ErrUnsupported }

func (n IPAddressName) String() string {
	if len(n.b) == 0 {
		return "IP:<invalid>"
	}
	addr, _ := netip.AddrFromSlice(n.addr())
	if !n.IsSubnet() {
		return "IP:" + addr.String()
	}
	mask := n.mask()
	if ones, ok := maskLength(mask); ok {
		return "IP:" + addr.String() + "/" + strconv.Itoa(ones)
	}
	m, _ := netip.AddrFromSlice(mask)
	return "IP:" + addr.String() + "/" + m.String()
}
