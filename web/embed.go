// Package web holds the page template and browser assets served by the
// HTTP layer.
package web

import "embed"

// TemplatesFS holds index.html, rendered with the configured currency.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the front-end script and stylesheet.
//
//go:embed static/*.js static/*.css
var StaticFS embed.FS
