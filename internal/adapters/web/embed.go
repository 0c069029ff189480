// Package web serves the annotation API and a small playground page over
// HTTP. Binds to localhost by default; there is no auth.
package web

import "embed"

//go:embed static/index.html static/playground.js
var staticFS embed.FS
