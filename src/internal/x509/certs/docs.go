// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509certs reads [X.509] certificates and CRLs from the formats they
// are stored in ([PEM], DER, and [PKCS7] bundles) and decodes them with this
// module's own codec down to their extension containers. It is the input
// layer of the x509-ext-dump command.
//
// [X.509]: https://grokipedia.com/page/X.509
// [PKCS7]: https://grokipedia.com/page/PKCS_7
// [PEM]: https://grokipedia.com/page/PEM#privacy-enhanced-mail
package x509certs
