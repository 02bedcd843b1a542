// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509names

import (
	"errors"
	"fmt"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
)

var (
	// ErrUnsupported is returned by Constrains and SubtreeDepth for variants
	// that have no naming hierarchy.
	ErrUnsupported = errors.New("x509names: operation not supported for this name type")
	// ErrInvalidName is returned when a name fails syntax validation. It
	// also matches [der.ErrInvalidValue].
	ErrInvalidName = fmt.Errorf("x509names: invalid name: %w", der.ErrInvalidValue)
)

// NameType is the GeneralName CHOICE alternative, equal to its context tag.
type NameType int

const (
	TypeOther NameType = iota
	TypeRFC822
	TypeDNS
	TypeX400
	TypeDirectory
	TypeEDIParty
	TypeURI
	TypeIPAddress
	TypeRegisteredID
)

var typeNames = [...]string{
	"otherName",
	"rfc822Name",
	"dNSName",
	"x400Address",
	"directoryName",
	"ediPartyName",
	"uniformResourceIdentifier",
	"iPAddress",
	"registeredID",
}

func (t NameType) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

// Constraint is the relation between two general names.
type Constraint int

const (
	// DiffType means the names are of different variants.
	DiffType Constraint = -1
	// Match means the names are equal.
	Match Constraint = 0
	// Narrows means the receiver lies within the argument's subtree.
	Narrows Constraint = 1
	// Widens means the argument lies within the receiver's subtree.
	Widens Constraint = 2
	// SameType means same variant, unrelated subtrees.
	SameType Constraint = 3
)

func (c Constraint) String() string {
	switch c {
	case DiffType:
		return "different-type"
	case Match:
		return "match"
	case Narrows:
		return "narrows"
	case Widens:
		return "widens"
	case SameType:
		return "same-type"
	}
	return "unknown"
}

// GeneralName is one alternative of the GeneralName CHOICE.
//
// The set of implementations is closed: [OtherName], [RFC822Name], [DNSName],
// [X400Address], [X500Name], [EDIPartyName], [URIName], [IPAddressName] and
// [OIDName].
type GeneralName interface {
	// Type returns the variant, which is also its context tag.
	Type() NameType
	// Encode writes the variant's untagged payload. Use [EncodeGeneralName]
	// to write the tagged CHOICE.
	Encode(b *der.Builder)
	// Equal reports name equality under the variant's comparison rules.
	Equal(other GeneralName) bool
	// Key returns a string that is equal for equal names.
	Key() string
	// Constrains returns the relation of the receiver to other.
	Constrains(other GeneralName) (Constraint, error)
	// SubtreeDepth returns the number of naming levels.
	SubtreeDepth() (int, error)
	String() string

	generalName()
}

// EncodeGeneralName writes n as a tagged GeneralName. Directory names take an
// EXPLICIT tag because Name is itself a CHOICE; every other variant is
// IMPLICIT.
func EncodeGeneralName(b *der.Builder, n GeneralName) {
	if n == nil {
		b.SetError(der.Invalidf("nil general name"))
		return
	}
	tag := uint8(n.Type())
	if n.Type() == TypeDirectory {
		b.AddExplicit(tag, n.Encode)
		return
	}
	b.AddImplicit(tag, n.Encode)
}

// MarshalGeneralName returns the DER encoding of n as a tagged GeneralName.
func MarshalGeneralName(n GeneralName) ([]byte, error) {
	return der.Marshal(func(b *der.Builder) { EncodeGeneralName(b, n) })
}

// ParseGeneralName decodes one tagged GeneralName from b.
func ParseGeneralName(b []byte) (GeneralName, error) {
	v, err := der.Decode(b)
	if err != nil {
		return nil, err
	}
	return DecodeGeneralName(v)
}

// DecodeGeneralName decodes a tagged GeneralName as it appears in alternative
// name and distribution point fields.
func DecodeGeneralName(v der.Value) (GeneralName, error) {
	return decodeGeneralName(v, false)
}

// DecodeGeneralNameConstraint decodes the base of a GeneralSubtree, where URI
// names are host or domain constraints rather than full URIs.
func DecodeGeneralNameConstraint(v der.Value) (GeneralName, error) {
	return decodeGeneralName(v, true)
}

func decodeGeneralName(v der.Value, constraint bool) (GeneralName, error) {
	if v.Class != der.ClassContextSpecific {
		return nil, der.Malformedf("GeneralName: unexpected %s", v)
	}
	t := NameType(v.Tag)
	constructed := t == TypeOther || t == TypeX400 || t == TypeDirectory || t == TypeEDIParty
	if t > TypeRegisteredID {
		return nil, der.Malformedf("GeneralName: unknown tag [%d]", v.Tag)
	}
	if v.Constructed != constructed {
		return nil, der.Malformedf("GeneralName: %s has the wrong form for %s", v, t)
	}

	switch t {
	case TypeOther:
		return decodeOtherName(v.Implicit(der.TagSequence))
	case TypeRFC822:
		s, err := v.Implicit(der.TagIA5String).IA5String()
		if err != nil {
			return nil, err
		}
		return NewRFC822Name(s)
	case TypeDNS:
		s, err := v.Implicit(der.TagIA5String).IA5String()
		if err != nil {
			return nil, err
		}
		return DNSName(s), nil
	case TypeX400:
		return X400Address{content: v.Content}, nil
	case TypeDirectory:
		r, _ := v.Reader()
		inner, err := r.Next()
		if err != nil {
			return nil, err
		}
		if err := r.Finish(); err != nil {
			return nil, err
		}
		return DecodeX500Name(inner)
	case TypeEDIParty:
		return decodeEDIPartyName(v.Implicit(der.TagSequence))
	case TypeURI:
		s, err := v.Implicit(der.TagIA5String).IA5String()
		if err != nil {
			return nil, err
		}
		if constraint {
			return NewURINameConstraint(s)
		}
		return NewURIName(s)
	case TypeIPAddress:
		p, err := v.Implicit(der.TagOctetString).OctetString()
		if err != nil {
			return nil, err
		}
		return NewIPAddressName(p)
	default:
		oid, err := v.Implicit(der.TagOID).OID()
		if err != nil {
			return nil, err
		}
		return OIDName(oid), nil
	}
}

// exactOnly implements Constrains for variants that only support matching.
func exactOnly(a, b GeneralName) (Constraint, error) {
	switch {
	case b == nil || a.Type() != b.Type():
		return DiffType, nil
	case a.Equal(b):
		return Match, nil
	default:
		return 0, ErrUnsupported
	}
}

func invalidName(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidName, fmt.Sprintf(format, args...))
}
