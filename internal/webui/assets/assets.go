// Package assets embeds the page template and stylesheet.
package assets

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.tmpl static/*
var files embed.FS

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.ParseFS(files, "templates/*.tmpl")
}

// Static returns the embedded static files rooted at static/.
func Static() (fs.FS, error) {
	return fs.Sub(files, "static")
}
