// Package views holds the embedded HTML templates for the public site.
package views

import "embed"

//go:embed *.html
var FS embed.FS
