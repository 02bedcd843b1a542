// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509names

import (
	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
)

// EDIPartyName is an ediPartyName: an optional name assigner and a party name,
// each a DirectoryString.
type EDIPartyName struct {
	assigner    string
	party       string
	hasAssigner bool
	// original string encodings, kept for byte-exact re-encoding
	assignerValue der.Value
	partyValue    der.Value
}

// NewEDIPartyName builds an EDI party name. An empty assigner is omitted.
func NewEDIPartyName(assigner, party string) (EDIPartyName, error) {
	if party == "" {
		return EDIPartyName{}, invalidName("EDI party name must not be empty")
	}
	n := EDIPartyName{party: party, partyValue: directoryString(party)}
	if assigner != "" {
		n.assigner, n.hasAssigner = assigner, true
		n.assignerValue = directoryString(assigner)
	}
	return n, nil
}

// directoryString picks PrintableString when possible, else UTF8String.
func directoryString(s string) der.Value {
	tag := der.TagUTF8String
	if der.IsPrintable(s) {
		tag = der.TagPrintableString
	}
	return der.Value{Class: der.ClassUniversal, Tag: tag, Content: []byte(s)}
}

func decodeEDIPartyName(v der.Value) (EDIPartyName, error) {
	r, err := v.Sequence()
	if err != nil {
		return EDIPartyName{}, err
	}
	var n EDIPartyName

	explicitString := func(outer der.Value) (string, der.Value, error) {
		inner, err := outer.Reader()
		if err != nil {
			return "", der.Value{}, err
		}
		s, err := inner.Next()
		if err != nil {
			return "", der.Value{}, err
		}
		if err := inner.Finish(); err != nil {
			return "", der.Value{}, err
		}
		text, err := s.Text()
		return text, s, err
	}

	if a, ok, err := r.NextIf(der.ClassContextSpecific, 0); err != nil {
		return EDIPartyName{}, err
	} else if ok {
		if n.assigner, n.assignerValue, err = explicitString(a); err != nil {
			return EDIPartyName{}, err
		}
		n.hasAssigner = true
	}
	p, ok, err := r.NextIf(der.ClassContextSpecific, 1)
	if err != nil {
		return EDIPartyName{}, err
	}
	if !ok {
		return EDIPartyName{}, der.Malformedf("EDIPartyName: missing partyName")
	}
	if n.party, n.partyValue, err = explicitString(p); err != nil {
		return EDIPartyName{}, err
	}
	if err := r.Finish(); err != nil {
		return EDIPartyName{}, err
	}
	return n, nil
}

// Assigner returns the name assigner and whether it is present.
func (n EDIPartyName) Assigner() (string, bool) { return n.assigner, n.hasAssigner }

// Party returns the party name.
func (n EDIPartyName) Party() string { return n.party }

func (EDIPartyName) generalName() {}

// Type returns [TypeEDIParty].
func (EDIPartyName) Type() NameType { return TypeEDIParty }

// Encode writes the EDIPartyName SEQUENCE.
func (n EDIPartyName) Encode(b *der.Builder) {
	b.AddSequence(func(b *der.Builder) {
		if n.hasAssigner {
			b.AddExplicit(0, func(b *der.Builder) { b.AddValue(n.assignerValue) })
		}
		b.AddExplicit(1, func(b *der.Builder) { b.AddValue(n.partyValue) })
	})
}

// Equal compares the decoded strings, ignoring which string type carried them.
func (n EDIPartyName) Equal(other GeneralName) bool {
	o, ok := other.(EDIPartyName)
	return ok && n.hasAssigner == o.hasAssigner && n.assigner == o.assigner && n.party == o.party
}

func (n EDIPartyName) Key() string {
	if n.hasAssigner {
		return "edi:1:" + n.assigner + "\x00" + n.party
	}
	return "edi:0:" + n.party
}

// Constrains only supports exact matches.
func (n EDIPartyName) Constrains(other GeneralName) (Constraint, error) { return exactOnly(n, other) }

// SubtreeDepth is not defined for EDI party names.
func (EDIPartyName) SubtreeDepth() (int, error) { return 0, ErrUnsupported }

func (n EDIPartyName) String() string {
	if n.hasAssigner {
		return "EDI:" + n.assigner + "/" + n.party
	}
	return "EDI:" + n.party
}
