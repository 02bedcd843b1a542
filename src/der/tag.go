// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package der

import (
	"fmt"

	"golang.org/x/crypto/cryptobyte/asn1"
)

// Class is the two-bit class of an identifier octet.
type Class uint8

const (
	ClassUniversal       Class = 0
	ClassApplication     Class = 1
	ClassContextSpecific Class = 2
	ClassPrivate         Class = 3
)

func (c Class) String() string {
	switch c {
	case ClassUniversal:
		return "UNIVERSAL"
	case ClassApplication:
		return "APPLICATION"
	case ClassContextSpecific:
		return "CONTEXT"
	default:
		return "PRIVATE"
	}
}

// Universal tag numbers used by X.509.
const (
	TagBoolean         uint8 = 1
	TagInteger         uint8 = 2
	TagBitString       uint8 = 3
	TagOctetString     uint8 = 4
	TagNull            uint8 = 5
	TagOID             uint8 = 6
	TagEnumerated      uint8 = 10
	TagUTF8String      uint8 = 12
	TagSequence        uint8 = 16
	TagSet             uint8 = 17
	TagNumericString   uint8 = 18
	TagPrintableString uint8 = 19
	TagT61String       uint8 = 20
	TagIA5String       uint8 = 22
	TagUTCTime         uint8 = 23
	TagGeneralizedTime uint8 = 24
	TagVisibleString   uint8 = 26
	TagUniversalString uint8 = 28
	TagBMPString       uint8 = 30
)

// maxTag is the largest tag number expressible in the low-tag-number form.
const maxTag = 30

var universalNames = map[uint8]string{
	TagBoolean:         "BOOLEAN",
	TagInteger:         "INTEGER",
	TagBitString:       "BIT STRING",
	TagOctetString:     "OCTET STRING",
	TagNull:            "NULL",
	TagOID:             "OBJECT IDENTIFIER",
	TagEnumerated:      "ENUMERATED",
	TagUTF8String:      "UTF8String",
	TagSequence:        "SEQUENCE",
	TagSet:             "SET",
	TagNumericString:   "NumericString",
	TagPrintableString: "PrintableString",
	TagT61String:       "T61String",
	TagIA5String:       "IA5String",
	TagUTCTime:         "UTCTime",
	TagGeneralizedTime: "GeneralizedTime",
	TagVisibleString:   "VisibleString",
	TagUniversalString: "UniversalString",
	TagBMPString:       "BMPString",
}

// identifier packs class, constructed bit and tag number into an identifier octet.
func identifier(class Class, constructed bool, tag uint8) asn1.Tag {
	t := asn1.Tag(uint8(class)<<6 | tag)
	if constructed {
		t = t.Constructed()
	}
	return t
}

func describe(class Class, constructed bool, tag uint8) string {
	if class == ClassUniversal {
		if name, ok := universalNames[tag]; ok {
			return name
		}
	}
	form := "primitive"
	if constructed {
		form = "constructed"
	}
	if class == ClassContextSpecific {
		return fmt.Sprintf("[%d] %s", tag, form)
	}
	return fmt.Sprintf("[%s %d] %s", class, tag, form)
}
