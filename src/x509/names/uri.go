// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509names

import (
	"net/netip"
	"net/url"
	"strings"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
)

// URIName is a uniformResourceIdentifier.
//
// In certificates it is an absolute URI with a scheme. As the base of a name
// constraint it is a bare host ("example.com") or a domain (".example.com").
type URIName struct {
	raw    string
	scheme string
	host   string
	ip     netip.Addr
	// constraint marks the bare host or domain form.
	constraint bool
}

// NewURIName parses an absolute URI.
func NewURIName(s string) (URIName, error) {
	u, err := url.Parse(s)
	if err != nil {
		return URIName{}, invalidName("URI %q: %v", s, err)
	}
	if u.Scheme == "" {
		return URIName{}, invalidName("URI %q must include a scheme", s)
	}
	n := URIName{raw: s, scheme: strings.ToLower(u.Scheme)}
	if host := u.Hostname(); host != "" {
		if ip, err := netip.ParseAddr(host); err == nil {
			n.ip = ip
		} else if _, err := NewDNSName(host); err != nil {
			return URIName{}, invalidName("URI %q has an invalid host: %v", s, err)
		}
		n.host = host
	}
	return n, nil
}

// NewURINameConstraint parses the host or domain form used in name constraints.
func NewURINameConstraint(s string) (URIName, error) {
	if strings.Contains(s, "://") || strings.Contains(s, ":") {
		return URIName{}, invalidName("URI name constraint %q must be a host or domain", s)
	}
	if _, err := NewDNSName(strings.TrimPrefix(s, ".")); err != nil {
		return URIName{}, invalidName("URI name constraint %q: %v", s, err)
	}
	return URIName{raw: s, host: s, constraint: true}, nil
}

// URI returns the name as written.
func (n URIName) URI() string { return n.raw }

// Scheme returns the lower-cased scheme, empty for constraints.
func (n URIName) Scheme() string { return n.scheme }

// Host returns the host part, or the whole constraint.
func (n URIName) Host() string { return n.host }

// IsDomain reports whether n is a domain constraint such as ".example.com".
func (n URIName) IsDomain() bool { return strings.HasPrefix(n.host, ".") }

func (URIName) generalName() {}

// Type returns [TypeURI].
func (URIName) Type() NameType { return TypeURI }

// Encode writes the URI as an IA5String.
func (n URIName) Encode(b *der.Builder) { b.AddIA5String(n.raw) }

// Equal compares scheme and host case-insensitively and the rest exactly.
func (n URIName) Equal(other GeneralName) bool {
	o, ok := other.(URIName)
	return ok && n.Key() == o.Key()
}

// Key returns the URI with its scheme and host lower-cased.
func (n URIName) Key() string {
	if n.constraint || n.host == "" {
		if n.scheme != "" {
			return "uri:" + n.scheme + n.raw[len(n.scheme):]
		}
		return "uri:" + strings.ToLower(n.raw)
	}
	i := strings.Index(strings.ToLower(n.raw), strings.ToLower(n.host))
	return "uri:" + n.scheme + n.raw[len(n.scheme):i] + strings.ToLower(n.host) + n.raw[i+len(n.host):]
}

// Constrains relates the hosts of two URIs. Only a domain constraint can
// contain another name; two plain hosts either match or are unrelated.
func (n URIName) Constrains(other GeneralName) (Constraint, error) {
	o, ok := other.(URIName)
	if !ok {
		return DiffType, nil
	}
	if n.host == "" || o.host == "" {
		if n.Equal(o) {
			return Match, nil
		}
		return SameType, nil
	}
	if strings.EqualFold(n.host, o.host) {
		return Match, nil
	}
	if n.ip.IsValid() || o.ip.IsValid() {
		return SameType, nil
	}

	nDomain, oDomain := n.IsDomain(), o.IsDomain()
	c := dnsRelation(strings.ToLower(strings.TrimPrefix(n.host, ".")), strings.ToLower(strings.TrimPrefix(o.host, ".")))
	switch {
	case !nDomain && !oDomain && (c == Narrows || c == Widens):
		return SameType, nil
	case c == Match:
		// ".example.com" and "example.com" name disjoint sets.
		return SameType, nil
	case c == Narrows && nDomain && !oDomain:
		return SameType, nil
	case c == Widens && oDomain && !nDomain:
		return SameType, nil
	}
	return c, nil
}

// SubtreeDepth returns the depth of the host as a DNS name.
func (n URIName) SubtreeDepth() (int, error) {
	if n.host == "" || n.ip.IsValid() {
		return 0, ErrUnsupported
	}
	return DNSName(strings.TrimPrefix(n.host, ".")).SubtreeDepth()
}

func (n URIName) String() string { return "URI:" + n.raw }
