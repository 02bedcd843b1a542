// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ext

import (
	"encoding/asn1"
	"fmt"
	"math/big"
	"slices"
	"time"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
)

// CRL extension attribute names.
const (
	AttrValue  = "value"
	AttrReason = "reason"
	AttrDate   = "date"
)

// CRLNumber is the monotonically increasing sequence number of a CRL.
type CRLNumber struct {
	extension
	number *big.Int
}

func newCRLNumber(id asn1.ObjectIdentifier, critical bool, n *big.Int) (CRLNumber, error) {
	if n == nil || n.Sign() < 0 {
		return CRLNumber{}, der.Invalidf("CRL number must be non-negative")
	}
	e := CRLNumber{extension: extension{id: slices.Clone(id), critical: critical}, number: new(big.Int).Set(n)}
	if err := e.derive(e.encodeValue); err != nil {
		return CRLNumber{}, err
	}
	return e, nil
}

func parseCRLNumber(name string, id asn1.ObjectIdentifier, critical bool, value []byte) (CRLNumber, error) {
	v, err := decodeValue(name, value)
	if err != nil {
		return CRLNumber{}, err
	}
	n, err := v.BigInt()
	if err != nil {
		return CRLNumber{}, err
	}
	if n.Sign() < 0 {
		return CRLNumber{}, der.Invalidf("%s %s is negative", name, n)
	}
	e := CRLNumber{extension: extension{id: slices.Clone(id), critical: critical}, number: n}
	e.keep(value)
	return e, nil
}

// NewCRLNumber builds the extension. RFC 5280 requires it to be non-critical.
func NewCRLNumber(n *big.Int) (*CRLNumber, error) {
	e, err := newCRLNumber(OIDCRLNumber, false, n)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ParseCRLNumber decodes an extnValue.
func ParseCRLNumber(critical bool, value []byte) (*CRLNumber, error) {
	e, err := parseCRLNumber(NameCRLNumber, OIDCRLNumber, critical, value)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (e *CRLNumber) encodeValue(b *der.Builder) { b.AddBigInt(e.number) }

func (e *CRLNumber) rederive() error { return e.derive(e.encodeValue) }

func (e *CRLNumber) Name() string { return NameCRLNumber }

// Number returns a copy of the value.
func (e *CRLNumber) Number() *big.Int { return new(big.Int).Set(e.number) }

var crlNumberFields = newFields(NameCRLNumber, []string{AttrValue}, map[string]field[CRLNumber]{
	AttrValue: {
		get: func(e *CRLNumber) any { return new(big.Int).Set(e.number) },
		set: func(e *CRLNumber, v any) error {
			n, err := as[*big.Int](AttrValue, v)
			if err != nil {
				return err
			}
			if n == nil || n.Sign() < 0 {
				return attributeValue(AttrValue, "must be non-negative")
			}
			e.number = new(big.Int).Set(n)
			return nil
		},
	},
})

func (e *CRLNumber) Get(name string) (any, error) { return crlNumberFields.get(e, name) }
func (e *CRLNumber) Set(name string, v any) error {
	return crlNumberFields.set(e, name, v, e.rederive)
}
func (e *CRLNumber) Delete(name string) error { return crlNumberFields.delete(e, name, e.rederive) }
func (e *CRLNumber) AttributeNames() []string { return crlNumberFields.attributeNames() }
func (e *CRLNumber) String() string           { return header(e) + "CRL Number: " + e.number.String() + "\n" }

// DeltaCRLIndicator marks a delta CRL and carries the number of its base CRL.
type DeltaCRLIndicator struct{ CRLNumber }

// NewDeltaCRLIndicator builds the extension. It is always critical.
func NewDeltaCRLIndicator(base *big.Int) (*DeltaCRLIndicator, error) {
	e, err := newCRLNumber(OIDDeltaCRLIndicator, true, base)
	if err != nil {
		return nil, err
	}
	return &DeltaCRLIndicator{e}, nil
}

// ParseDeltaCRLIndicator decodes an extnValue.
func ParseDeltaCRLIndicator(critical bool, value []byte) (*DeltaCRLIndicator, error) {
	e, err := parseCRLNumber(NameDeltaCRLIndicator, OIDDeltaCRLIndicator, critical, value)
	if err != nil {
		return nil, err
	}
	return &DeltaCRLIndicator{e}, nil
}

func (e *DeltaCRLIndicator) Name() string { return NameDeltaCRLIndicator }

func (e *DeltaCRLIndicator) String() string {
	return header(e) + "Base CRL Number: " + e.number.String() + "\n"
}

// Reason is a CRLReason code.
type Reason int

const (
	ReasonUnspecified          Reason = 0
	ReasonKeyCompromise        Reason = 1
	ReasonCACompromise         Reason = 2
	ReasonAffiliationChanged   Reason = 3
	ReasonSuperseded           Reason = 4
	ReasonCessationOfOperation Reason = 5
	ReasonCertificateHold      Reason = 6
	ReasonRemoveFromCRL        Reason = 8
	ReasonPrivilegeWithdrawn   Reason = 9
	ReasonAACompromise         Reason = 10
)

var reasonNames = map[Reason]string{
	ReasonUnspecified:          "Unspecified",
	ReasonKeyCompromise:        "Key_Compromise",
	ReasonCACompromise:         "CA_Compromise",
	ReasonAffiliationChanged:   "Affiliation_Changed",
	ReasonSuperseded:           "Superseded",
	ReasonCessationOfOperation: "Cessation_Of_Operation",
	ReasonCertificateHold:      "Certificate_Hold",
	ReasonRemoveFromCRL:        "Remove_From_CRL",
	ReasonPrivilegeWithdrawn:   "Privilege_Withdrawn",
	ReasonAACompromise:         "AA_Compromise",
}

// Valid reports whether r is a defined code. Value 7 is unused.
func (r Reason) Valid() bool {
	_, ok := reasonNames[r]
	return ok
}

func (r Reason) String() string {
	if s, ok := reasonNames[r]; ok {
		return s
	}
	return fmt.Sprintf("Unrecognized reason code (%d)", int(r))
}

// CRLReasonCode is the CRL entry extension giving the revocation reason.
type CRLReasonCode struct {
	extension
	reason Reason
}

// NewCRLReasonCode builds the extension.
func NewCRLReasonCode(critical bool, reason Reason) (*CRLReasonCode, error) {
	if !reason.Valid() {
		return nil, der.Invalidf("CRL reason %d", int(reason))
	}
	e := &CRLReasonCode{extension: extension{id: slices.Clone(OIDCRLReasonCode), critical: critical}, reason: reason}
	if err := e.derive(e.encodeValue); err != nil {
		return nil, err
	}
	return e, nil
}

// ParseCRLReasonCode decodes an extnValue.
func ParseCRLReasonCode(critical bool, value []byte) (*CRLReasonCode, error) {
	v, err := decodeValue(NameCRLReasonCode, value)
	if err != nil {
		return nil, err
	}
	n, err := v.Enumerated()
	if err != nil {
		return nil, err
	}
	if !Reason(n).Valid() {
		return nil, der.Invalidf("CRL reason %d", n)
	}
	e := &CRLReasonCode{extension: extension{id: slices.Clone(OIDCRLReasonCode), critical: critical}, reason: Reason(n)}
	e.keep(value)
	return e, nil
}

func (e *CRLReasonCode) encodeValue(b *der.Builder) { b.AddEnumerated(int64(e.reason)) }

func (e *CRLReasonCode) rederive() error { return e.derive(e.encodeValue) }

func (e *CRLReasonCode) Name() string { return NameCRLReasonCode }

// Reason returns the revocation reason.
func (e *CRLReasonCode) Reason() Reason { return e.reason }

var crlReasonCodeFields = newFields(NameCRLReasonCode, []string{AttrReason}, map[string]field[CRLReasonCode]{
	AttrReason: {
		get: func(e *CRLReasonCode) any { return e.reason },
		set: func(e *CRLReasonCode, v any) error {
			r, err := as[Reason](AttrReason, v)
			if err != nil {
				return err
			}
			if !r.Valid() {
				return attributeValue(AttrReason, "undefined reason %d", int(r))
			}
			e.reason = r
			return nil
		},
	},
})

func (e *CRLReasonCode) Get(name string) (any, error) { return crlReasonCodeFields.get(e, name) }
func (e *CRLReasonCode) Set(name string, v any) error {
	return crlReasonCodeFields.set(e, name, v, e.rederive)
}
func (e *CRLReasonCode) Delete(name string) error {
	return crlReasonCodeFields.delete(e, name, e.rederive)
}
func (e *CRLReasonCode) AttributeNames() []string { return crlReasonCodeFields.attributeNames() }
func (e *CRLReasonCode) String() string {
	return header(e) + "Reason Code: " + e.reason.String() + "\n"
}

// InvalidityDate is the CRL entry extension giving the date on which the key
// is known or suspected to have been compromised.
type InvalidityDate struct {
	extension
	date time.Time
}

// NewInvalidityDate builds the extension. The date is truncated to the second.
func NewInvalidityDate(critical bool, date time.Time) (*InvalidityDate, error) {
	if date.IsZero() {
		return nil, der.Invalidf("InvalidityDate: zero date")
	}
	e := &InvalidityDate{extension: extension{id: slices.Clone(OIDInvalidityDate), critical: critical}, date: seconds(date)}
	if err := e.derive(e.encodeValue); err != nil {
		return nil, err
	}
	return e, nil
}

// ParseInvalidityDate decodes an extnValue.
func ParseInvalidityDate(critical bool, value []byte) (*InvalidityDate, error) {
	v, err := decodeValue(NameInvalidityDate, value)
	if err != nil {
		return nil, err
	}
	t, err := v.GeneralizedTime()
	if err != nil {
		return nil, err
	}
	e := &InvalidityDate{extension: extension{id: slices.Clone(OIDInvalidityDate), critical: critical}, date: t}
	e.keep(value)
	return e, nil
}

func (e *InvalidityDate) encodeValue(b *der.Builder) { b.AddGeneralizedTime(e.date) }

func (e *InvalidityDate) rederive() error { return e.derive(e.encodeValue) }

func (e *InvalidityDate) Name() string { return NameInvalidityDate }

// Date returns the invalidity date.
func (e *InvalidityDate) Date() time.Time { return e.date }

var invalidityDateFields = newFields(NameInvalidityDate, []string{AttrDate}, map[string]field[InvalidityDate]{
	AttrDate: {
		get: func(e *InvalidityDate) any { return e.date },
		set: func(e *InvalidityDate, v any) error {
			t, err := as[time.Time](AttrDate, v)
			if err != nil {
				return err
			}
			if t.IsZero() {
				return attributeValue(AttrDate, "zero date")
			}
			e.date = seconds(t)
			return nil
		},
	},
})

func (e *InvalidityDate) Get(name string) (any, error) { return invalidityDateFields.get(e, name) }
func (e *InvalidityDate) Set(name string, v any) error {
	return invalidityDateFields.set(e, name, v, e.rederive)
}
func (e *InvalidityDate) Delete(name string) error {
	return invalidityDateFields.delete(e, name, e.rederive)
}
func (e *InvalidityDate) AttributeNames() []string { return invalidityDateFields.attributeNames() }

func (e *InvalidityDate) String() string {
	return header(e) + "Invalidity Date: " + e.date.Format(time.RFC3339) + "\n"
}
