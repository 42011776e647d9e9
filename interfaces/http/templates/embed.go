// Package templates renders the HTML pages served to e-paper readers. Every
// page is a single self-contained template with inline styling; the devices
// this serves do not fetch stylesheets or run scripts reliably.
package templates

import (
	"bytes"
	"embed"
	"html/template"
)

//go:embed *.tmpl
var files embed.FS

// Parse parses the named template from the embedded filesystem.
func Parse(name string) (*template.Template, error) {
	return template.New(name).Funcs(template.FuncMap{
		"safeHTML": func(s string) template.HTML { return template.HTML(s) },
	}).ParseFS(files, name)
}

func execute(name string, data any) ([]byte, error) {
	tmpl, err := Parse(name)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
