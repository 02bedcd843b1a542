// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"os"
	"strings"
)

// DefaultName is used when the invocation name is unavailable.
const DefaultName = "x509-ext-dump"

// ExecutableName returns the base name of os.Args[0] without a .exe suffix.
func ExecutableName() string {
	if len(os.Args) == 0 {
		return DefaultName
	}
	return baseName(os.Args[0])
}

// baseName splits on both separators so a Windows path is handled on Unix
// and the other way around.
func baseName(arg0 string) string {
	parts := strings.FieldsFunc(arg0, func(r rune) bool { return r == '/' || r == '\\' })
	if len(parts) == 0 {
		return DefaultName
	}
	name := strings.TrimSuffix(parts[len(parts)-1], ".exe")
	if name == "" {
		return DefaultName
	}
	return name
}

// Examples formats one usage line per argument set, prefixed with the
// executable name and indented for cobra's Example field.
func Examples(argSets ...string) string {
	name := ExecutableName()
	lines := make([]string, len(argSets))
	for i, args := range argSets {
		lines[i] = "  " + name + " " + args
	}
	return strings.Join(lines, "\n")
}
