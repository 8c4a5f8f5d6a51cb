// Package spec embeds the OpenAPI specification for the device lending API.
// The server serves it at /openapi.yaml and internal/handler/gen is generated from it.
package spec

import _ "embed"

// OpenAPI contains the raw bytes of openapi.yaml, embedded at compile time.
//
//go:embed openapi.yaml
var OpenAPI []byte
