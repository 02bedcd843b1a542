// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509names

import (
	"encoding/asn1"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
)

// OIDName is a registeredID.
type OIDName asn1.ObjectIdentifier

func (OIDName) generalName() {}

// Type returns [TypeRegisteredID].
func (OIDName) Type() NameType { return TypeRegisteredID }

// Encode writes the identifier.
func (n OIDName) Encode(b *der.Builder) { b.AddOID(asn1.ObjectIdentifier(n)) }

// Equal compares arcs.
func (n OIDName) Equal(other GeneralName) bool {
	o, ok := other.(OIDName)
	return ok && asn1.ObjectIdentifier(n).Equal(asn1.ObjectIdentifier(o))
}

// Key returns the dotted identifier.
func (n OIDName) Key() string { return "rid:" + asn1.ObjectIdentifier(n).String() }

// Constrains only supports exact matches.
func (n OIDName) Constrains(other GeneralName) (Constraint, error) { return exactOnly(n, other) }

// SubtreeDepth is not defined for registered identifiers.
func (OIDName) SubtreeDepth() (int, error) { return 0, ErrUnsupported }

func (n OIDName) String() string { return "RID:" + asn1.ObjectIdentifier(n).String() }
