// Package web embeds the static viewer UI served by bookgraph-server.
package web

import "embed"

// Dist holds the built static assets.
//
//go:embed dist
var Dist embed.FS
