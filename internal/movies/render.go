package movies

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	"topmovies/internal/tmdb"
	"topmovies/pkg/models"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"rating": func(r *float64) string {
			if r == nil {
				return "unrated"
			}
			return strings.TrimSuffix(fmt.Sprintf("%.1f", *r), ".0")
		},
		"text": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"year": func(date string) string {
			if len(date) >= 4 {
				return date[:4]
			}
			return date
		},
	}
	return template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

type listPage struct {
	Movies  []models.RankedMovie
	Count   int
	Flashes []string
}

type editPage struct {
	MovieID int64
	Title   string
	Year    int
	Rating  string
	Review  string
	Errors  map[string]string
}

type addPage struct {
	Title  string
	Errors map[string]string
}

type selectPage struct {
	Query   string
	Results []tmdb.SearchResult
}

type errorPage struct {
	Status  int
	Message string
}
