// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package posix provides [POSIX]-style helpers for command-line usage text.
//
// [ExecutableName] returns the name the binary was invoked as, stripped of
// directories and a trailing .exe, so help output matches what the user typed:
//
//	rootCmd := &cobra.Command{
//	    Use:     posix.ExecutableName() + " [FILE]",
//	    Example: posix.Examples("cert.pem", "--crl -f list.crl"),
//	}
//
// [POSIX]: https://pubs.opengroup.org/onlinepubs/9799919799/
package posix
