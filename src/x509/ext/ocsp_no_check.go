// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ext

import "slices"

// OCSPNoCheck tells OCSP clients not to check the revocation status of the
// responder certificate. It has no fields; every attribute call fails.
type OCSPNoCheck struct{ extension }

// NewOCSPNoCheck builds the extension with an empty value.
func NewOCSPNoCheck(critical bool) *OCSPNoCheck {
	return &OCSPNoCheck{extension{id: slices.Clone(OIDOCSPNoCheck), critical: critical, value: []byte{}}}
}

// ParseOCSPNoCheck accepts an empty value or an encoded NULL and keeps
// whichever it was given.
func ParseOCSPNoCheck(critical bool, value []byte) (*OCSPNoCheck, error) {
	if len(value) > 0 {
		v, err := decodeValue(NameOCSPNoCheck, value)
		if err != nil {
			return nil, err
		}
		if err := v.Null(); err != nil {
			return nil, err
		}
	}
	e := &OCSPNoCheck{extension{id: slices.Clone(OIDOCSPNoCheck), critical: critical}}
	e.keep(value)
	if e.value == nil {
		e.value = []byte{}
	}
	return e, nil
}

func (e *OCSPNoCheck) Name() string { return NameOCSPNoCheck }

func (e *OCSPNoCheck) Get(name string) (any, error) {
	return nil, unknownAttribute(NameOCSPNoCheck, name)
}
func (e *OCSPNoCheck) Set(name string, _ any) error { return unknownAttribute(NameOCSPNoCheck, name) }
func (e *OCSPNoCheck) Delete(name string) error     { return unknownAttribute(NameOCSPNoCheck, name) }
func (e *OCSPNoCheck) AttributeNames() []string     { return nil }

func (e *OCSPNoCheck) String() string { return header(e) + "NoCheck\n" }
