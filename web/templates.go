package web

import (
	"embed"
	"html/template"
	"io/fs"
	"sync"
)

//go:embed *.html
var templateFiles embed.FS

//go:embed static
var staticFiles embed.FS

var (
	tmpl *template.Template
	once sync.Once
)

// Templates returns the parsed HTML templates for the dashboard, embedded at
// build time. layout.html defines "layout", which pulls in the "chart" card.
func Templates() *template.Template {
	once.Do(func() {
		tmpl = template.Must(template.ParseFS(templateFiles, "*.html"))
	})
	return tmpl
}

// StaticFS exposes the files under static/, such as app.css, rooted at that
// directory. Template sources are not part of it.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
