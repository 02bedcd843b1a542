// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --format.
const (
	formatTable = "table"
	formatYAML  = "yaml"
	formatJSON  = "json"
)

// ErrUnknownFormat is returned for an unsupported --format value.
var ErrUnknownFormat = errors.New("cli: unknown output format")

// render writes r to w in the given format.
func render(w io.Writer, r *Report, format string) error {
	switch format {
	case formatTable:
		return renderTable(w, r)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// renderTable writes a short header followed by one markdown table per
// extension list.
func renderTable(w io.Writer, r *Report) error {
	fmt.Fprintf(w, "# %s\n\n", r.Source)
	if r.Subject != "" {
		fmt.Fprintf(w, "- Subject: %s\n", r.Subject)
	}
	fmt.Fprintf(w, "- Issuer: %s\n", r.Issuer)
	if r.Serial != "" {
		fmt.Fprintf(w, "- Serial: %s\n", r.Serial)
	}
	if r.ThisUpdate != "" {
		fmt.Fprintf(w, "- This update: %s\n", r.ThisUpdate)
	}
	fmt.Fprintln(w)

	if err := extensionTable(w, r.Extensions); err != nil {
		return err
	}

	for _, e := range r.Entries {
		fmt.Fprintf(w, "\n## Revoked %s (%s)\n\n", e.Serial, e.RevocationDate)
		if err := extensionTable(w, e.Extensions); err != nil {
			return err
		}
	}
	return nil
}

func extensionTable(w io.Writer, exts []ExtensionInfo) error {
	if len(exts) == 0 {
		_, err := fmt.Fprintln(w, "No extensions.")
		return err
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)

	headers := []string{"#", "Extension", "OID", "Critical", "Details"}
	table.Header(headers)

	rows := make([][]string, 0, len(exts))
	for i, e := range exts {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			e.Name,
			e.OID,
			strconv.FormatBool(e.Critical),
			e.Details,
		})
	}

	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to build table: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}
