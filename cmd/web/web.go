// Package web bundles the browser viewer.
package web

import "embed"

// Static holds index.html and the viewer bundle written by `go run ./cmd/build`.
//
//go:embed static
var Static embed.FS
