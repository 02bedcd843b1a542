// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface of x509-ext-dump.
// It implements a Cobra-based command that decodes the extensions of a
// certificate or CRL and prints them as a markdown table, YAML, or JSON.
// Private extension OIDs can be named through a JSON or YAML config file,
// which is validated against an embedded JSON schema before use.
package cli
