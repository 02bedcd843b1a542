// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/H0llyW00dzZ/x509-der-codec/src/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer guards a bytes.Buffer for the concurrent tests.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestCLILogger(t *testing.T) {
	tests := []struct {
		name string
		log  func(l *logger.CLILogger)
		want string
	}{
		{"Printf", func(l *logger.CLILogger) { l.Printf("decoded %d extensions", 3) }, "decoded 3 extensions\n"},
		{"Println", func(l *logger.CLILogger) { l.Println("decoded", "cert.pem") }, "decoded cert.pem\n"},
		{"Warnf", func(l *logger.CLILogger) { l.Warnf("%s kept raw", "KeyUsage") }, "warning: KeyUsage kept raw\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := logger.NewCLILogger()
			l.SetOutput(&buf)
			tt.log(l)
			assert.Equal(t, tt.want, buf.String())
		})
	}

	t.Run("SetOutput", func(t *testing.T) {
		var buf1, buf2 bytes.Buffer
		l := logger.NewCLILogger()

		l.SetOutput(&buf1)
		l.Println("first")
		l.SetOutput(&buf2)
		l.Println("second")

		assert.Equal(t, "first\n", buf1.String())
		assert.Equal(t, "second\n", buf2.String())
	})

	t.Run("ConcurrentUsage", func(t *testing.T) {
		var buf syncBuffer
		l := logger.NewCLILogger()
		l.SetOutput(&buf)

		const goroutines, messages = 50, 10
		var wg sync.WaitGroup
		for i := range goroutines {
			wg.Go(func() {
				for j := range messages {
					l.Printf("goroutine %d message %d", i, j)
				}
			})
		}
		wg.Wait()

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		assert.Len(t, lines, goroutines*messages)
	})
}

func decodeLines(t *testing.T, s string) []map[string]string {
	t.Helper()
	var out []map[string]string
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		var e map[string]string
		require.NoError(t, json.Unmarshal([]byte(line), &e), "line %q", line)
		out = append(out, e)
	}
	return out
}

func TestJSONLogger(t *testing.T) {
	tests := []struct {
		name    string
		log     func(l *logger.JSONLogger)
		level   string
		message string
	}{
		{"Printf", func(l *logger.JSONLogger) { l.Printf("decoded %d extensions", 3) }, "info", "decoded 3 extensions"},
		{"Println", func(l *logger.JSONLogger) { l.Println("decoded ", "cert.pem") }, "info", "decoded cert.pem"},
		{"Warnf", func(l *logger.JSONLogger) { l.Warnf("%q kept raw", "x") }, "warn", `"x" kept raw`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := logger.NewJSONLogger(&buf, false)
			tt.log(l)

			entries := decodeLines(t, buf.String())
			require.Len(t, entries, 1)
			assert.Equal(t, tt.level, entries[0]["level"])
			assert.Equal(t, tt.message, entries[0]["message"])
		})
	}

	t.Run("Silent", func(t *testing.T) {
		var buf bytes.Buffer
		l := logger.NewJSONLogger(&buf, true)
		l.Printf("hidden %d", 1)
		l.Warnf("hidden")
		assert.Zero(t, buf.Len())
	})

	t.Run("NilWriter", func(t *testing.T) {
		l := logger.NewJSONLogger(nil, false)
		assert.NotPanics(t, func() { l.Println("discarded") })
	})

	t.Run("SetOutput", func(t *testing.T) {
		var buf1, buf2 bytes.Buffer
		l := logger.NewJSONLogger(&buf1, false)

		l.Println("first")
		l.SetOutput(&buf2)
		l.Println("second")
		l.SetOutput(nil)
		l.Println("third")

		assert.Contains(t, buf1.String(), "first")
		assert.NotContains(t, buf1.String(), "second")
		assert.Contains(t, buf2.String(), "second")
		assert.NotContains(t, buf2.String(), "third")
	})

	t.Run("ConcurrentUsage", func(t *testing.T) {
		var buf syncBuffer
		l := logger.NewJSONLogger(&buf, false)

		const goroutines, messages = 50, 10
		var wg sync.WaitGroup
		for i := range goroutines {
			wg.Go(func() {
				for j := range messages {
					l.Printf("goroutine %d message %d", i, j)
				}
			})
		}
		wg.Wait()

		assert.Len(t, decodeLines(t, buf.String()), goroutines*messages)
	})

	t.Run("Interface", func(t *testing.T) {
		var _ logger.Logger = logger.NewJSONLogger(nil, true)
		var _ logger.Logger = logger.NewCLILogger()
	})
}
