// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509names

import (
	"encoding/asn1"
	"encoding/hex"
	"slices"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
	"github.com/H0llyW00dzZ/x509-der-codec/src/x509/oidmap"
)

// OtherNameDecoder turns the value of an otherName into display text. It
// fails when the value does not have the shape its type-id promises.
type OtherNameDecoder func(v der.Value) (string, error)

var (
	// OIDUserPrincipalName is the Microsoft UPN other-name type.
	OIDUserPrincipalName = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 311, 20, 2, 3}
	// OIDSmtpUTF8Mailbox is the internationalized email other-name type of RFC 9598.
	OIDSmtpUTF8Mailbox = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 8, 9}

	otherNames = oidmap.New[OtherNameDecoder]()
)

func init() {
	utf8Decoder := func(v der.Value) (string, error) {
		if !v.Is(der.TagUTF8String) {
			return "", der.Malformedf("expected UTF8String, found %s", v)
		}
		return v.Text()
	}
	otherNames.MustRegister("UPN", OIDUserPrincipalName, utf8Decoder)
	otherNames.MustRegister("SmtpUTF8Mailbox", OIDSmtpUTF8Mailbox, utf8Decoder)
}

// RegisterOtherName adds a decoder for otherName values of the given type-id.
// Names and identifiers may only be registered once.
func RegisterOtherName(name string, oid asn1.ObjectIdentifier, dec OtherNameDecoder) error {
	return otherNames.Register(name, oid, dec)
}

// OtherName is an otherName: a type-id and a value whose syntax the type-id
// defines.
type OtherName struct {
	typeID asn1.ObjectIdentifier
	value  der.Value
	// text is set when a registered decoder understood the value.
	text string
	kind string
}

// NewOtherName builds an other name from its type-id and value. A registered
// decoder for the type-id, if any, must accept the value.
func NewOtherName(typeID asn1.ObjectIdentifier, value der.Value) (OtherName, error) {
	n := OtherName{typeID: slices.Clone(typeID), value: value}
	if e, ok := otherNames.Lookup(typeID); ok {
		text, err := e.Handler(value)
		if err != nil {
			return OtherName{}, err
		}
		n.text, n.kind = text, e.Name
	}
	return n, nil
}

// NewUPN builds a Microsoft user principal name.
func NewUPN(upn string) (OtherName, error) {
	return NewOtherName(OIDUserPrincipalName, der.Value{Tag: der.TagUTF8String, Content: []byte(upn)})
}

// NewSmtpUTF8Mailbox builds an internationalized mailbox name.
func NewSmtpUTF8Mailbox(mailbox string) (OtherName, error) {
	return NewOtherName(OIDSmtpUTF8Mailbox, der.Value{Tag: der.TagUTF8String, Content: []byte(mailbox)})
}

func decodeOtherName(v der.Value) (OtherName, error) {
	r, err := v.Sequence()
	if err != nil {
		return OtherName{}, err
	}
	idv, err := r.Next()
	if err != nil {
		return OtherName{}, err
	}
	typeID, err := idv.OID()
	if err != nil {
		return OtherName{}, err
	}
	wrapped, err := r.Next()
	if err != nil {
		return OtherName{}, err
	}
	if !wrapped.IsContext(0) || !wrapped.Constructed {
		return OtherName{}, der.Malformedf("otherName: expected [0] EXPLICIT value, found %s", wrapped)
	}
	if err := r.Finish(); err != nil {
		return OtherName{}, err
	}
	inner := der.NewReader(wrapped.Content)
	value, err := inner.Next()
	if err != nil {
		return OtherName{}, err
	}
	if err := inner.Finish(); err != nil {
		return OtherName{}, err
	}
	return NewOtherName(typeID, value)
}

// TypeID returns the type identifier.
func (n OtherName) TypeID() asn1.ObjectIdentifier { return slices.Clone(n.typeID) }

// Value returns the raw value inside the [0] EXPLICIT wrapper.
func (n OtherName) Value() der.Value { return n.value }

// Text returns the decoded value and true when a registered decoder handled it.
func (n OtherName) Text() (string, bool) { return n.text, n.kind != "" }

func (OtherName) generalName() {}

// Type returns [TypeOther].
func (OtherName) Type() NameType { return TypeOther }

// Encode writes the OtherName SEQUENCE.
func (n OtherName) Encode(b *der.Builder) {
	b.AddSequence(func(b *der.Builder) {
		b.AddOID(n.typeID)
		b.AddExplicit(0, func(b *der.Builder) { b.AddValue(n.value) })
	})
}

// Equal compares the type-id and the value encoding.
func (n OtherName) Equal(other GeneralName) bool {
	o, ok := other.(OtherName)
	return ok && n.typeID.Equal(o.typeID) && n.value.Equal(o.value)
}

func (n OtherName) Key() string {
	return "other:" + n.typeID.String() + ":" + hex.EncodeToString(n.value.Marshal())
}

// Constrains only supports exact matches.
func (n OtherName) Constrains(other GeneralName) (Constraint, error) { return exactOnly(n, other) }

// SubtreeDepth is not defined for other names.
func (OtherName) SubtreeDepth() (int, error) { return 0, ErrUnsupported }

func (n OtherName) String() string {
	if n.kind != "" {
		return "othername:" + n.kind + ":" + n.text
	}
	return "othername:" + n.typeID.String() + ":#" + hex.EncodeToString(n.value.Marshal())
}
