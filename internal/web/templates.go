package web

import (
	"embed"
	"html/template"

	"github.com/mmcdole/marquee/internal/router"
	"github.com/mmcdole/marquee/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"openHref": openHref,
		"homeHref": func() string {
			_, loc := router.GotoHome()
			return openHref(loc)
		},
		"placeholder": func() string { return service.PlaceholderGlyph },
	}
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}
