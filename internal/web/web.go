// Package web holds the embedded page templates and static assets.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"mime"
	"path"
	"strings"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed assets/*
var assetsFS embed.FS

// IndexTemplate is the name of the task list page.
const IndexTemplate = "index.html"

// ParseTemplates parses every embedded template, each registered under its
// base file name.
func ParseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"plural": func(n int, singular, plural string) string {
			if n == 1 {
				return singular
			}
			return plural
		},
	}

	tmpl := template.New("").Funcs(funcMap)

	matches, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob templates: %w", err)
	}

	for _, match := range matches {
		content, err := templatesFS.ReadFile(match)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", match, err)
		}

		name := path.Base(match)
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
	}

	if tmpl.Lookup(IndexTemplate) == nil {
		return nil, fmt.Errorf("template %s not found", IndexTemplate)
	}

	return tmpl, nil
}

// Asset returns the embedded asset stored under name, a slash separated
// path relative to the assets directory.
func Asset(name string) ([]byte, bool) {
	name = strings.TrimPrefix(name, "/")
	if name == "" || !fs.ValidPath(name) {
		return nil, false
	}

	data, err := assetsFS.ReadFile("assets/" + name)
	if err != nil {
		return nil, false
	}
	return data, true
}

// ContentType guesses the media type of an asset from its extension.
func ContentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
