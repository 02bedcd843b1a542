// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	_ "embed"
	"encoding/asn1"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/H0llyW00dzZ/x509-der-codec/src/logger"
	x509ext "github.com/H0llyW00dzZ/x509-der-codec/src/x509/ext"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// ConfigEnv names the environment variable holding the config file path
// when --config is not given.
const ConfigEnv = "X509_DER_CODEC_CONFIG"

// ErrInvalidConfig is returned when a config file does not match the schema.
var ErrInvalidConfig = errors.New("cli: invalid config")

//go:embed config.schema.json
var configSchema string

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
)

// Config is the x509-ext-dump configuration file.
type Config struct {
	// Defaults holds values used when the matching flag is not given.
	Defaults struct {
		// Format is the output format: table, yaml, or json.
		Format string `json:"format" yaml:"format"`
	} `json:"defaults" yaml:"defaults"`

	// Extensions names private extension OIDs so dumps show a name instead
	// of the dotted OID. Their values stay opaque.
	Extensions []CustomExtension `json:"extensions" yaml:"extensions"`
}

// CustomExtension maps one OID to a display name.
type CustomExtension struct {
	Name string `json:"name" yaml:"name"`
	OID  string `json:"oid" yaml:"oid"`
}

// detectConfigFormat determines the configuration file format based on file
// extension, case-insensitively. Anything other than .yaml or .yml is JSON.
func detectConfigFormat(configPath string) configFormat {
	ext := strings.ToLower(filepath.Ext(configPath))
	switch ext {
	case ".yaml", ".yml":
		return configFormatYAML
	default:
		return configFormatJSON
	}
}

// unmarshalConfig unmarshals configuration data based on the specified format.
func unmarshalConfig(data []byte, v any, format configFormat) error {
	switch format {
	case configFormatYAML:
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	return nil
}

// validateConfig checks the raw document against the embedded schema.
func validateConfig(data []byte, format configFormat) error {
	var doc any
	if err := unmarshalConfig(data, &doc, format); err != nil {
		return err
	}

	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(configSchema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("failed to validate config file: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
	}
	return nil
}

// loadConfig loads the configuration from configPath, or from the file named
// by [ConfigEnv] when configPath is empty. With neither, defaults apply.
//
// Configuration Priority:
//  1. Default values are set
//  2. Config file values override defaults
//  3. Flags given on the command line override both
func loadConfig(configPath string) (*Config, error) {
	config := &Config{}
	config.Defaults.Format = formatTable

	if configPath == "" {
		configPath = os.Getenv(ConfigEnv)
	}
	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	format := detectConfigFormat(configPath)
	if err := validateConfig(data, format); err != nil {
		return nil, err
	}
	if err := unmarshalConfig(data, config, format); err != nil {
		return nil, err
	}

	if config.Defaults.Format == "" {
		config.Defaults.Format = formatTable
	}
	return config, nil
}

// parseOID parses a dotted object identifier such as "1.3.6.1.4.1.11129.2.4.2".
func parseOID(s string) (asn1.ObjectIdentifier, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: OID %q needs at least two arcs", ErrInvalidConfig, s)
	}
	oid := make(asn1.ObjectIdentifier, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: OID %q has an invalid arc %q", ErrInvalidConfig, s, p)
		}
		oid[i] = n
	}
	return oid, nil
}

// registerExtensions adds the configured names to the extension registry.
// A name already registered for the same OID is accepted again, so a
// config may be loaded more than once per process.
func registerExtensions(config *Config, log logger.Logger) error {
	for _, ce := range config.Extensions {
		oid, err := parseOID(ce.OID)
		if err != nil {
			return err
		}
		if existing, _, ok := x509ext.LookupName(ce.Name); ok && existing.Equal(oid) {
			continue
		}
		if err := x509ext.RegisterRaw(ce.Name, oid); err != nil {
			return fmt.Errorf("config: extension %s: %w", ce.Name, err)
		}
		log.Printf("Registered extension %s (%s)", ce.Name, oid)
	}
	return nil
}
