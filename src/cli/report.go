// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	x509certs "github.com/H0llyW00dzZ/x509-der-codec/src/internal/x509/certs"
	x509ext "github.com/H0llyW00dzZ/x509-der-codec/src/x509/ext"
)

// rawPreview caps the number of value bytes shown for opaque extensions.
const rawPreview = 32

// Report is the dump of one certificate or CRL.
type Report struct {
	Source     string          `json:"source" yaml:"source"`
	Kind       string          `json:"kind" yaml:"kind"`
	Subject    string          `json:"subject,omitempty" yaml:"subject,omitempty"`
	Issuer     string          `json:"issuer" yaml:"issuer"`
	Serial     string          `json:"serial,omitempty" yaml:"serial,omitempty"`
	ThisUpdate string          `json:"thisUpdate,omitempty" yaml:"thisUpdate,omitempty"`
	Extensions []ExtensionInfo `json:"extensions" yaml:"extensions"`
	Entries    []EntryReport   `json:"entries,omitempty" yaml:"entries,omitempty"`
}

// ExtensionInfo describes one extension in a [Report].
type ExtensionInfo struct {
	Name     string `json:"name" yaml:"name"`
	OID      string `json:"oid" yaml:"oid"`
	Critical bool   `json:"critical" yaml:"critical"`
	// Opaque is set when the value is shown as bytes only.
	Opaque  bool   `json:"opaque,omitempty" yaml:"opaque,omitempty"`
	Details string `json:"details" yaml:"details"`
}

// EntryReport is one revoked certificate of a CRL.
type EntryReport struct {
	Serial         string          `json:"serial" yaml:"serial"`
	RevocationDate string          `json:"revocationDate" yaml:"revocationDate"`
	Extensions     []ExtensionInfo `json:"extensions,omitempty" yaml:"extensions,omitempty"`
}

func certificateReport(source string, c *x509certs.Certificate) *Report {
	r := &Report{
		Source:  source,
		Kind:    "certificate",
		Subject: c.TBS.Subject.String(),
		Issuer:  c.TBS.Issuer.String(),
		Serial:  c.TBS.Serial.String(),
	}
	if c.Extensions != nil {
		r.Extensions = describe(c.Extensions.All())
	}
	return r
}

func crlReport(source string, c *x509certs.CRL) *Report {
	r := &Report{
		Source:     source,
		Kind:       "crl",
		Issuer:     c.TBS.Issuer.String(),
		ThisUpdate: c.TBS.ThisUpdate.UTC().Format(time.RFC3339),
	}
	if c.Extensions != nil {
		r.Extensions = describe(c.Extensions.All())
	}
	for i, rc := range c.TBS.Revoked {
		e := EntryReport{
			Serial:         rc.Serial.String(),
			RevocationDate: rc.RevocationDate.UTC().Format(time.RFC3339),
		}
		if exts := c.EntryExtensions[i]; exts != nil {
			e.Extensions = describe(exts.All())
		}
		r.Entries = append(r.Entries, e)
	}
	return r
}

func describe(exts []x509ext.Extension) []ExtensionInfo {
	out := make([]ExtensionInfo, 0, len(exts))
	for _, ext := range exts {
		info := ExtensionInfo{
			Name:     ext.Name(),
			OID:      ext.ID().String(),
			Critical: ext.Critical(),
		}
		if raw, ok := ext.(*x509ext.RawExtension); ok {
			info.Opaque = true
			info.Details = preview(raw.Value())
		} else {
			info.Details = summarize(ext.String())
		}
		out = append(out, info)
	}
	return out
}

// summarize drops the ObjectId header line and folds the rest onto one line.
func summarize(s string) string {
	if _, body, ok := strings.Cut(s, "\n"); ok {
		s = body
	}
	return strings.Join(strings.Fields(s), " ")
}

func preview(value []byte) string {
	if len(value) <= rawPreview {
		return fmt.Sprintf("%d bytes: %s", len(value), hex.EncodeToString(value))
	}
	return fmt.Sprintf("%d bytes: %s...", len(value), hex.EncodeToString(value[:rawPreview]))
}
