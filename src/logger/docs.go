// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package logger provides the logging used by the x509-ext-dump command.
// It defines the Logger interface and two implementations: CLILogger for
// human-readable output and JSONLogger for one JSON object per line. Both
// are safe for concurrent use; JSONLogger encodes through pooled buffers.
package logger
