// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"bytes"
	"crypto/x509"
	"encoding/json"
	"strings"
	"testing"

	x509ext "github.com/H0llyW00dzZ/x509-der-codec/src/x509/ext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleReport(t *testing.T) *Report {
	t.Helper()
	bc, err := x509ext.NewBasicConstraints(true, true, 0)
	require.NoError(t, err)
	ku, err := x509ext.NewKeyUsageFromX509(true, x509.KeyUsageCRLSign|x509.KeyUsageCertSign)
	require.NoError(t, err)
	return &Report{
		Source:     "ca.pem",
		Kind:       "certificate",
		Subject:    "CN=Example CA",
		Issuer:     "CN=Example CA",
		Serial:     "01",
		Extensions: describe([]x509ext.Extension{bc, ku}),
	}
}

func TestDescribe(t *testing.T) {
	r := sampleReport(t)
	require.Len(t, r.Extensions, 2)

	bc := r.Extensions[0]
	assert.Equal(t, x509ext.NameBasicConstraints, bc.Name)
	assert.Equal(t, "2.5.29.19", bc.OID)
	assert.True(t, bc.Critical)
	assert.False(t, bc.Opaque)
	assert.NotContains(t, bc.Details, "ObjectId")
	assert.NotContains(t, bc.Details, "\n")
	assert.Contains(t, bc.Details, "CA:true")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "2 bytes: 0500", preview([]byte{0x05, 0x00}))
	long := preview(bytes.Repeat([]byte{0xab}, 40))
	assert.True(t, strings.HasPrefix(long, "40 bytes: abab"))
	assert.True(t, strings.HasSuffix(long, "..."))
	assert.Len(t, long, len("40 bytes: ")+2*rawPreview+len("..."))
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "a b c", summarize("ObjectId: 2.5.29.19 Criticality=true\n a\n\tb  c\n"))
	assert.Equal(t, "single line", summarize("single   line"))
}

func TestRender(t *testing.T) {
	r := sampleReport(t)

	tests := []struct {
		format string
		check  func(t *testing.T, out string)
	}{
		{formatJSON, func(t *testing.T, out string) {
			var got Report
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			assert.Equal(t, *r, got)
		}},
		{formatYAML, func(t *testing.T, out string) {
			var got Report
			require.NoError(t, yaml.Unmarshal([]byte(out), &got))
			assert.Equal(t, *r, got)
		}},
		{formatTable, func(t *testing.T, out string) {
			assert.True(t, strings.HasPrefix(out, "# ca.pem\n"))
			assert.Contains(t, out, "- Serial: 01")
			assert.Contains(t, out, x509ext.NameKeyUsage)
			assert.Contains(t, out, "2.5.29.15")
			assert.Contains(t, out, "|")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, render(&buf, r, tt.format))
			tt.check(t, buf.String())
		})
	}

	assert.ErrorIs(t, render(&bytes.Buffer{}, r, "xml"), ErrUnknownFormat)
}

func TestRenderTable_Entries(t *testing.T) {
	r := &Report{
		Source: "list.crl",
		Kind:   "crl",
		Issuer: "CN=Example CA",
		Entries: []EntryReport{
			{Serial: "0a", RevocationDate: "2026-01-02T03:04:05Z"},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, render(&buf, r, formatTable))
	out := buf.String()
	assert.NotContains(t, out, "Subject")
	assert.Contains(t, out, "## Revoked 0a (2026-01-02T03:04:05Z)")
	assert.Equal(t, 2, strings.Count(out, "No extensions."))
}
