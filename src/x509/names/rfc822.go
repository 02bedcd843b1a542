// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509names

import (
	"strings"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
)

// RFC822Name is an rfc822Name: a mailbox such as "user@example.com", or in
// name constraints a host ("example.com") or domain (".example.com").
type RFC822Name string

// NewRFC822Name validates an email name or email constraint.
func NewRFC822Name(name string) (RFC822Name, error) {
	if name == "" {
		return "", invalidName("RFC822 name must not be empty")
	}
	domain := name[strings.IndexByte(name, '@')+1:]
	switch {
	case domain == "":
		return "", invalidName("RFC822 name %q may not end with @", name)
	case domain == ".":
		return "", invalidName("RFC822 name %q: domain may not be just a dot", name)
	}
	return RFC822Name(name), nil
}

func (RFC822Name) generalName() {}

// Type returns [TypeRFC822].
func (RFC822Name) Type() NameType { return TypeRFC822 }

// Encode writes the name as an IA5String.
func (n RFC822Name) Encode(b *der.Builder) { b.AddIA5String(string(n)) }

// Equal reports case-insensitive equality.
func (n RFC822Name) Equal(other GeneralName) bool {
	o, ok := other.(RFC822Name)
	return ok && strings.EqualFold(string(n), string(o))
}

// Key returns the upper-cased name.
func (n RFC822Name) Key() string { return "email:" + strings.ToUpper(string(n)) }

// Constrains follows the RFC 5280 email constraint forms: a full mailbox only
// matches itself, a host matches every mailbox on that host, and a domain with
// a leading dot matches every mailbox below it.
func (n RFC822Name) Constrains(other GeneralName) (Constraint, error) {
	o, ok := other.(RFC822Name)
	if !ok {
		return DiffType, nil
	}
	a, b := strings.ToLower(string(n)), strings.ToLower(string(o))
	switch {
	case a == b:
		return Match, nil
	case strings.HasSuffix(a, b):
		if emailCovers(b, a) {
			return Narrows, nil
		}
	case strings.HasSuffix(b, a):
		if emailCovers(a, b) {
			return Widens, nil
		}
	}
	return SameType, nil
}

// emailCovers reports whether the constraint base covers name, given that
// name already ends with base.
func emailCovers(base, name string) bool {
	switch {
	case strings.Contains(base, "@"):
		return false
	case strings.HasPrefix(base, "."):
		return true
	default:
		return name[len(name)-len(base)-1] == '@'
	}
}

// SubtreeDepth counts the domain labels plus one for a local part.
func (n RFC822Name) SubtreeDepth() (int, error) {
	s := string(n)
	depth := 1
	if at := strings.LastIndexByte(s, '@'); at >= 0 {
		depth++
		s = s[at+1:]
	}
	return depth + strings.Count(s, "."), nil
}

func (n RFC822Name) String() string { return "email:" + string(n) }
