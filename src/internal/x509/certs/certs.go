// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
	x509attrs "github.com/H0llyW00dzZ/x509-der-codec/src/x509/attrs"
	x509ext "github.com/H0llyW00dzZ/x509-der-codec/src/x509/ext"
	"github.com/cloudflare/cfssl/crypto/pkcs7"
)

var (
	// ErrInvalidPEMBlock indicates that the provided data does not contain a valid PEM block.
	ErrInvalidPEMBlock = errors.New("x509certs: invalid PEM block")

	// ErrInvalidBlockType indicates that the PEM block type is not the expected type.
	ErrInvalidBlockType = errors.New("x509certs: invalid block type")

	// ErrParseCertificate indicates a failure to decode a certificate.
	ErrParseCertificate = errors.New("x509certs: failed to parse certificate")

	// ErrParseCRL indicates a failure to decode a certificate revocation list.
	ErrParseCRL = errors.New("x509certs: failed to parse CRL")

	// ErrParsePKCS7 indicates a failure to parse PKCS7 formatted data.
	ErrParsePKCS7 = errors.New("x509certs: failed to parse PKCS7 data")

	// ErrNoCertificatesInPKCS indicates that no certificates were found in the PKCS7 data.
	ErrNoCertificatesInPKCS = errors.New("x509certs: no certificates found in PKCS7 data")
)

// Certificate is a certificate decoded down to its extensions.
type Certificate struct {
	// Raw is the complete DER encoding.
	Raw    []byte
	Signed x509attrs.Signed
	TBS    x509attrs.TBSCertificate
	// Extensions is nil when the certificate carries none.
	Extensions *x509ext.CertificateExtensions
}

// ParseCertificate decodes one DER encoded certificate.
func ParseCertificate(b []byte) (*Certificate, error) {
	signed, err := x509attrs.ParseSigned(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseCertificate, err)
	}
	tbs, err := x509attrs.DecodeTBSCertificate(signed.TBS)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseCertificate, err)
	}
	c := &Certificate{Raw: b, Signed: signed, TBS: tbs}
	if tbs.Extensions != nil {
		if c.Extensions, err = x509ext.ParseCertificateExtensions(tbs.Extensions.Marshal()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseCertificate, err)
		}
	}
	return c, nil
}

// CRL is a certificate revocation list decoded down to its extensions.
type CRL struct {
	// Raw is the complete DER encoding.
	Raw    []byte
	Signed x509attrs.Signed
	TBS    x509attrs.TBSCertList
	// Extensions is nil when the list carries none.
	Extensions *x509ext.CRLExtensions
	// EntryExtensions is parallel to TBS.Revoked; an entry without
	// extensions has a nil element.
	EntryExtensions []*x509ext.CRLExtensions
}

// ParseCRL decodes one DER encoded CRL.
func ParseCRL(b []byte) (*CRL, error) {
	signed, err := x509attrs.ParseSigned(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseCRL, err)
	}
	tbs, err := x509attrs.DecodeTBSCertList(signed.TBS)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseCRL, err)
	}
	c := &CRL{Raw: b, Signed: signed, TBS: tbs, EntryExtensions: make([]*x509ext.CRLExtensions, len(tbs.Revoked))}
	if tbs.Extensions != nil {
		if c.Extensions, err = x509ext.ParseCRLExtensions(tbs.Extensions.Marshal()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseCRL, err)
		}
	}
	for i, rc := range tbs.Revoked {
		if rc.Extensions == nil {
			continue
		}
		if c.EntryExtensions[i], err = x509ext.DecodeCRLExtensions(*rc.Extensions); err != nil {
			return nil, fmt.Errorf("%w: entry %s: %w", ErrParseCRL, rc.Serial, err)
		}
	}
	return c, nil
}

// Decoder reads certificates and CRLs in the formats found on disk.
type Decoder struct {
	certBlockType string
	crlBlockType  string
}

// New creates a new Decoder with default settings.
func New() *Decoder {
	return &Decoder{
		certBlockType: "CERTIFICATE",
		crlBlockType:  "X509 CRL",
	}
}

// IsPEM checks if the data is in PEM format.
func (d *Decoder) IsPEM(data []byte) bool {
	block, _ := pem.Decode(data)
	return block != nil
}

// decodePEMBlock decodes a PEM block and checks its type.
func (d *Decoder) decodePEMBlock(data []byte, blockType string) (*pem.Block, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEMBlock
	}
	if block.Type != blockType {
		return nil, ErrInvalidBlockType
	}
	return block, nil
}

// DecodeMultiple decodes every certificate in data: a run of PEM blocks or
// of concatenated DER certificates.
func (d *Decoder) DecodeMultiple(data []byte) ([]*Certificate, error) {
	var certs []*Certificate

	if d.IsPEM(data) {
		for len(data) > 0 {
			block, rest := pem.Decode(data)
			if block == nil {
				break
			}
			if block.Type != d.certBlockType {
				return nil, ErrInvalidBlockType
			}

			cert, err := ParseCertificate(block.Bytes)
			if err != nil {
				return nil, err
			}

			certs = append(certs, cert)
			data = rest
		}

		return certs, nil
	}

	r := der.NewReader(data)
	for !r.Empty() {
		v, err := r.Next()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseCertificate, err)
		}
		cert, err := ParseCertificate(v.Marshal())
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}

	return certs, nil
}

// Decode decodes a single certificate from PEM, DER, or a PKCS7 bundle, in
// which case the first certificate is returned.
func (d *Decoder) Decode(data []byte) (*Certificate, error) {
	if d.IsPEM(data) {
		block, err := d.decodePEMBlock(data, d.certBlockType)
		if err != nil {
			return nil, err
		}

		return ParseCertificate(block.Bytes)
	}

	cert, err := ParseCertificate(data)
	if err == nil {
		return cert, nil
	}

	// Attempt to parse as PKCS7 using Cloudflare's library
	p, perr := pkcs7.ParsePKCS7(data)
	if perr != nil {
		return nil, fmt.Errorf("%w: %w", ErrParsePKCS7, err)
	}
	if len(p.Content.SignedData.Certificates) == 0 {
		return nil, ErrNoCertificatesInPKCS
	}

	return ParseCertificate(p.Content.SignedData.Certificates[0].Raw)
}

// DecodeCRL decodes a CRL from PEM or DER. Every failure wraps [ErrParseCRL].
func (d *Decoder) DecodeCRL(data []byte) (*CRL, error) {
	if d.IsPEM(data) {
		block, err := d.decodePEMBlock(data, d.crlBlockType)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseCRL, err)
		}
		data = block.Bytes
	}
	return ParseCRL(data)
}

// EncodePEM encodes a certificate to PEM format.
func (d *Decoder) EncodePEM(cert *Certificate) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: d.certBlockType, Bytes: cert.Raw})
}

// EncodeCRLPEM encodes a CRL to PEM format.
func (d *Decoder) EncodeCRLPEM(crl *CRL) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: d.crlBlockType, Bytes: crl.Raw})
}
