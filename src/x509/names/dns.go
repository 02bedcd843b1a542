// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509names

import (
	"strings"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
)

// DNSName is a dNSName. Comparison is case-insensitive.
//
// Values decoded from DER are taken as-is; use [NewDNSName] or
// [NewWildcardDNSName] to validate user input.
type DNSName string

// NewDNSName validates name against the RFC 1123 label rules.
func NewDNSName(name string) (DNSName, error) {
	if err := validateDNS(name, false); err != nil {
		return "", err
	}
	return DNSName(name), nil
}

// NewWildcardDNSName is like [NewDNSName] but also accepts a single leading
// "*." label, as in "*.example.com".
func NewWildcardDNSName(name string) (DNSName, error) {
	if err := validateDNS(name, true); err != nil {
		return "", err
	}
	return DNSName(name), nil
}

func isAlphaDigit(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

func validateDNS(name string, wildcard bool) error {
	switch {
	case name == "":
		return invalidName("DNS name must not be empty")
	case strings.Contains(name, " "):
		return invalidName("DNS name %q contains a blank", name)
	case strings.HasPrefix(name, ".") || strings.HasSuffix(name, "."):
		return invalidName("DNS name %q may not begin or end with a dot", name)
	}

	for i, label := range strings.Split(name, ".") {
		if label == "" {
			return invalidName("DNS name %q has an empty label", name)
		}
		if !isAlphaDigit(label[0]) {
			// Only "*" as the whole first label, followed by a label that
			// itself starts with a letter or digit.
			if !wildcard || i != 0 || label != "*" || len(name) < 3 || !isAlphaDigit(name[2]) {
				return invalidName("DNS name %q: labels must begin with a letter or digit", name)
			}
			continue
		}
		for j := 1; j < len(label); j++ {
			if !isAlphaDigit(label[j]) && label[j] != '-' {
				return invalidName("DNS name %q: labels may contain only letters, digits and hyphens", name)
			}
		}
	}
	return nil
}

func (DNSName) generalName() {}

// Type returns [TypeDNS].
func (DNSName) Type() NameType { return TypeDNS }

// Encode writes the name as an IA5String.
func (n DNSName) Encode(b *der.Builder) { b.AddIA5String(string(n)) }

// Equal reports case-insensitive equality.
func (n DNSName) Equal(other GeneralName) bool {
	o, ok := other.(DNSName)
	return ok && strings.EqualFold(string(n), string(o))
}

// Key returns the upper-cased name.
func (n DNSName) Key() string { return "dns:" + strings.ToUpper(string(n)) }

// Constrains compares by label suffix. A suffix only counts when it starts on
// a label boundary, so "hostile.example.com" is unrelated to
// "host.example.com".
func (n DNSName) Constrains(other GeneralName) (Constraint, error) {
	o, ok := other.(DNSName)
	if !ok {
		return DiffType, nil
	}
	return dnsRelation(strings.ToLower(string(n)), strings.ToLower(string(o))), nil
}

// dnsRelation relates two lower-cased DNS names.
func dnsRelation(a, b string) Constraint {
	switch {
	case a == b:
		return Match
	case b == "" || withinDomain(a, b):
		return Narrows
	case a == "" || withinDomain(b, a):
		return Widens
	default:
		return SameType
	}
}

// withinDomain reports whether name lies below the label boundary of base.
func withinDomain(name, base string) bool {
	if !strings.HasSuffix(name, base) || len(name) == len(base) {
		return false
	}
	return base[0] == '.' || name[len(name)-len(base)-1] == '.'
}

// SubtreeDepth returns the number of labels.
func (n DNSName) SubtreeDepth() (int, error) {
	return strings.Count(string(n), ".") + 1, nil
}

func (n DNSName) String() string { return "DNS:" + string(n) }
