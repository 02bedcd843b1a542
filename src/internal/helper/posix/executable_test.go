// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseName(t *testing.T) {
	tests := []struct {
		name     string
		arg0     string
		expected string
	}{
		{"Just filename", "x509-ext-dump", "x509-ext-dump"},
		{"Relative path", "./dump", "dump"},
		{"Unix absolute path", "/usr/local/bin/dump", "dump"},
		{"Windows path with .exe", `C:\Program Files\dump.exe`, "dump"},
		{"Windows path on Unix", `C:\windows\style\path\system.exe`, "system"},
		{"Mixed separators", `C:\tools/bin\dump.exe`, "dump"},
		{"Trailing separator", "/usr/bin/", "bin"},
		{"Only .exe", ".exe", DefaultName},
		{"Empty", "", DefaultName},
		{"Only separators", "///", DefaultName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, baseName(tt.arg0))
		})
	}
}

func TestExecutableName(t *testing.T) {
	saved := os.Args
	t.Cleanup(func() { os.Args = saved })

	os.Args = nil
	assert.Equal(t, DefaultName, ExecutableName())

	os.Args = []string{"/opt/bin/dumper", "-f", "cert.pem"}
	assert.Equal(t, "dumper", ExecutableName())
	assert.Equal(t, "  dumper cert.pem\n  dumper --crl -f list.crl", Examples("cert.pem", "--crl -f list.crl"))
}
