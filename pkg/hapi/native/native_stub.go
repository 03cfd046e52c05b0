//go:build !hengine

// Package native provides the CGo binding to the native cook engine.
// When the "hengine" build tag is not set, this stub package is compiled
// instead, returning an error from New().
//
// Build with: go build -tags=hengine
package native

import (
	"github.com/otl-tools/otlbridge/pkg/hapi"
)

// New returns an error indicating the native engine is not available.
// Build with -tags=hengine to enable.
func New() (hapi.Engine, error) {
	return nil, hapi.ErrUnsupportedPlatform
}
