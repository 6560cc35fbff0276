// Package web embeds the upload page served at the site root.
package web

import "embed"

//go:embed *.html
var Files embed.FS
