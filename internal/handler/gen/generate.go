// Package gen holds the types and chi bindings generated from spec/openapi.yaml.
package gen

//go:generate go run github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen@v2.4.1 --config=config.yaml ../../../spec/openapi.yaml
