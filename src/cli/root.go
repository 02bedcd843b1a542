// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/H0llyW00dzZ/x509-der-codec/src/internal/helper/gc"
	"github.com/H0llyW00dzZ/x509-der-codec/src/internal/helper/posix"
	x509certs "github.com/H0llyW00dzZ/x509-der-codec/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/x509-der-codec/src/logger"
	x509ext "github.com/H0llyW00dzZ/x509-der-codec/src/x509/ext"
	"github.com/spf13/cobra"
)

// ErrInputFileRequired is returned when neither --file nor a positional
// argument names the input.
var ErrInputFileRequired = errors.New("cli: input file is required")

var (
	// OperationPerformed is set once an input file has been read.
	OperationPerformed bool
	// OperationPerformedSuccessfully is set once the dump has been written.
	OperationPerformedSuccessfully bool
)

// options holds the parsed command line flags.
type options struct {
	file       string
	output     string
	format     string
	configPath string
	crl        bool
	logJSON    bool
}

// Execute builds and runs the root command. Errors are returned rather
// than printed so the caller decides the exit status.
func Execute(ctx context.Context, version string, log logger.Logger) error {
	OperationPerformed = false
	OperationPerformedSuccessfully = false

	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   posix.ExecutableName() + " [FILE]",
		Short: "Decode and dump X.509 certificate and CRL extensions",
		Example: posix.Examples(
			"cert.pem",
			"--format yaml -f bundle.p7b",
			"--crl --format json -o list.json list.crl",
		),
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execCli(cmd, args, opts, log)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "input certificate or CRL (PEM, DER, or PKCS#7)")
	flags.StringVarP(&opts.output, "output", "o", "", "output to OUTPUT_FILE (default: stdout)")
	flags.StringVar(&opts.format, "format", formatTable, "output format: table, yaml, or json")
	flags.StringVar(&opts.configPath, "config", "", "config file (JSON or YAML, default: $"+ConfigEnv+")")
	flags.BoolVar(&opts.crl, "crl", false, "treat the input as a certificate revocation list")
	flags.BoolVar(&opts.logJSON, "log-json", false, "emit log messages as JSON lines")

	return rootCmd.ExecuteContext(ctx)
}

// execCli reads the input, decodes its extensions, and writes the dump.
func execCli(cmd *cobra.Command, args []string, opts *options, log logger.Logger) error {
	if opts.logJSON {
		log = logger.NewJSONLogger(cmd.ErrOrStderr(), false)
	}

	config, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if err := registerExtensions(config, log); err != nil {
		return err
	}

	format := opts.format
	if !cmd.Flags().Changed("format") {
		format = config.Defaults.Format
	}
	switch format {
	case formatTable, formatYAML, formatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	input := opts.file
	if input == "" && len(args) > 0 {
		input = args[0]
	}
	if input == "" {
		return ErrInputFileRequired
	}

	data, err := readInput(input)
	if err != nil {
		return err
	}
	OperationPerformed = true

	report, err := decode(input, data, opts.crl, log)
	if err != nil {
		return err
	}

	if err := cmd.Context().Err(); err != nil {
		return err
	}

	if err := writeReport(cmd.OutOrStdout(), opts.output, report, format); err != nil {
		return err
	}

	OperationPerformedSuccessfully = true
	log.Printf("Decoded %d extensions from %s", len(report.Extensions), input)
	return nil
}

// readInput reads the whole file through a pooled buffer.
func readInput(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error reading input file: %w", err)
	}
	defer f.Close()

	return gc.Scratch(func(buf gc.Buffer) error {
		if _, err := buf.ReadFrom(f); err != nil {
			return fmt.Errorf("error reading input file: %w", err)
		}
		return nil
	})
}

func decode(source string, data []byte, crl bool, log logger.Logger) (*Report, error) {
	decoder := x509certs.New()

	if crl {
		list, err := decoder.DecodeCRL(data)
		if err != nil {
			return nil, fmt.Errorf("error decoding CRL: %w", err)
		}
		if list.Extensions != nil {
			warnUnsupported(log, "CRL", list.Extensions.All())
		}
		for i, exts := range list.EntryExtensions {
			if exts != nil {
				warnUnsupported(log, "entry "+list.TBS.Revoked[i].Serial.String(), exts.All())
			}
		}
		return crlReport(source, list), nil
	}

	cert, err := decoder.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("error decoding certificate: %w", err)
	}
	if cert.Extensions != nil {
		for _, raw := range cert.Extensions.Unparseable() {
			log.Warnf("extension %s (%s) could not be decoded; kept as raw bytes", raw.Name(), raw.ID())
		}
		warnUnsupported(log, "certificate", cert.Extensions.All())
	}
	return certificateReport(source, cert), nil
}

// warnUnsupported logs every critical extension the registry cannot decode.
func warnUnsupported(log logger.Logger, where string, exts []x509ext.Extension) {
	for _, ext := range exts {
		if raw, ok := ext.(*x509ext.RawExtension); ok && raw.Critical() {
			log.Warnf("%s carries unsupported critical extension %s (%s)", where, raw.Name(), raw.ID())
		}
	}
}

func writeReport(stdout io.Writer, path string, r *Report, format string) error {
	if path == "" {
		return render(stdout, r, format)
	}

	out, err := gc.Scratch(func(buf gc.Buffer) error { return render(buf, r, format) })
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("error writing to output file: %w", err)
	}
	return nil
}
