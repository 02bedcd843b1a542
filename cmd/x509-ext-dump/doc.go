// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
// Use of this source code is governed by a BSD 3-Clause
// license that can be found in the LICENSE file.

// x509-ext-dump is a command-line tool for decoding and inspecting the
// extensions of X.509 certificates and certificate revocation lists.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/H0llyW00dzZ/x509-der-codec/cmd/x509-ext-dump@latest
//
// # Usage
//
//	x509-ext-dump [FLAGS] [FILE]
//
// # Flags
//
//	-f, --file      Input certificate or CRL (PEM, DER, or PKCS#7)
//	-o, --output    Destination file (default: stdout)
//	    --format    Output format: table, yaml, or json (default: table)
//	    --crl       Treat the input as a certificate revocation list
//	    --config    JSON or YAML config file (default: $X509_DER_CODEC_CONFIG)
//	    --log-json  Emit log messages as JSON lines
//
// # Configuration
//
// A config file sets the default format and names private extensions:
//
//	defaults:
//	  format: yaml
//	extensions:
//	  - name: CTPrecertificateSCTs
//	    oid: "1.3.6.1.4.1.11129.2.4.2"
//
// # Examples
//
// Dump the extensions of a certificate as a markdown table:
//
//	x509-ext-dump cert.pem
//
// Dump a CRL and its entry extensions as JSON:
//
//	x509-ext-dump --crl --format json -f list.crl > list.json
//
// Compare against OpenSSL:
//
//	openssl x509 -in cert.pem -noout -text
package main
