// Package openapi embeds the HTTP contract served under /api/v1. The gin
// server interface and request models in internal/api/generated are produced
// from the same file.
//
// Import Path: soundstake.io/soundstake/internal/api/openapi
package openapi

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:generate go tool oapi-codegen -config oapi-codegen.yaml openapi.yaml

//go:embed openapi.yaml
var spec []byte

var (
	loadOnce sync.Once
	loaded   *openapi3.T
	loadErr  error
)

// Raw returns the contract as YAML.
func Raw() []byte { return spec }

// Load parses and validates the embedded contract once.
func Load() (*openapi3.T, error) {
	loadOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(spec)
		if err != nil {
			loadErr = fmt.Errorf("parse openapi contract: %w", err)
			return
		}
		if err := doc.Validate(context.Background()); err != nil {
			loadErr = fmt.Errorf("validate openapi contract: %w", err)
			return
		}
		loaded = doc
	})
	return loaded, loadErr
}
