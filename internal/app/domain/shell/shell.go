// Package shell renders the console pages: the sign-in form, the console
// shell with its sidebar, and the restricted pending-review page.
package shell

import (
	"embed"
	"html/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.gohtml
var templatesFS embed.FS

// Templates parses the embedded shell templates.
func Templates() (*template.Template, error) {
	titleCaser := cases.Title(language.English)
	return template.New("shell").
		Funcs(template.FuncMap{
			"title": func(s string) string { return titleCaser.String(s) },
		}).
		ParseFS(templatesFS, "templates/*.gohtml")
}
