// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package gc provides reusable byte buffer pooling to reduce garbage collection overhead.
// It abstracts the [bytebufferpool] library so the DER encoder and the input
// readers of the command line tool share one buffer management strategy.
//
// Encoding an extension allocates one scratch buffer per call; with thousands of
// certificates parsed and re-encoded in a batch the pool keeps those scratch
// buffers warm instead of handing them to the garbage collector.
//
// [bytebufferpool]: https://github.com/valyala/bytebufferpool
package gc
