package email

import (
	"embed"
	"html/template"

	"github.com/Masterminds/sprig/v3"
)

// Template names an embedded email body under templates/.
type Template string

const (
	TemplateWelcome           Template = "welcome"
	TemplateTournamentResults Template = "tournament_results"
)

//go:embed templates/*.html
var templateFS embed.FS

// templates is parsed once; sprig adds helpers such as join and default.
var templates = template.Must(
	template.New("emails").Funcs(sprig.FuncMap()).ParseFS(templateFS, "templates/*.html"),
)

func (t Template) file() string {
	return string(t) + ".html"
}
