package export

import (
	"bytes"
	"embed"
	"html/template"
	"strings"
	"time"

	"herbar/client/internal/catalog"
)

//go:embed templates/*.html
var templateFS embed.FS

var catalogTemplate = template.Must(template.ParseFS(templateFS, "templates/catalog.html"))

// TemplateData holds data for catalog template rendering
type TemplateData struct {
	Title       string
	Count       int
	Filters     []string
	GeneratedAt time.Time
	Plants      []TemplatePlant
}

// TemplatePlant holds one record for the template
type TemplatePlant struct {
	Name           string
	ScientificName string
	Category       string
	Difficulty     string
	Toxic          bool
	Favorite       bool
	Tags           []string
	Care           []string
}

func templateData(req Request) TemplateData {
	data := TemplateData{
		Title:       req.Title,
		Count:       len(req.Records),
		Filters:     req.Filters,
		GeneratedAt: req.GeneratedAt,
		Plants:      make([]TemplatePlant, 0, len(req.Records)),
	}
	if data.Title == "" {
		data.Title = "Plante"
	}
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now()
	}
	for _, r := range req.Records {
		p := TemplatePlant{
			Name:           r.Name,
			ScientificName: r.ScientificName,
			Category:       r.Category,
			Difficulty:     r.DifficultyClass(),
			Toxic:          r.Toxicity != catalog.NonToxic,
			Favorite:       req.Favorites[r.ID],
			Tags:           r.Tags,
		}
		if req.IncludeCare {
			p.Care = paragraphs(r.CareGuide)
		}
		data.Plants = append(data.Plants, p)
	}
	return data
}

// paragraphs splits free text on blank lines.
func paragraphs(text string) []string {
	var out []string
	for _, block := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if block = strings.TrimSpace(block); block != "" {
			out = append(out, strings.Join(strings.Fields(block), " "))
		}
	}
	return out
}

// RenderCatalogHTML renders the catalog template for req.
func RenderCatalogHTML(req Request) (string, error) {
	var buf bytes.Buffer
	if err := catalogTemplate.Execute(&buf, templateData(req)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
