// Package openapi embeds the OpenAPI document of the product catalog API.
package openapi

import _ "embed"

// YAML is served at /openapi.yaml.
//
//go:embed openapi.yaml
var YAML []byte
