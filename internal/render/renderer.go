// Package render turns thesis, review and stats data into HTML. Rendering is
// pure: the same input always yields the same bytes.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"time"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/SAP-F-2025/thesis-review-portal/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// TimeLayout is how submission and review times are shown.
const TimeLayout = "2006-01-02 15:04:05"

type Options struct {
	// DownloadURL maps a thesis file path to its download link.
	DownloadURL func(filePath string) string
	// Location is the timezone timestamps are displayed in. Defaults to UTC.
	Location *time.Location
	// Markdown renders thesis content and review comments as markdown with raw
	// HTML dropped. Off by default.
	Markdown bool
}

// Page is everything a full page template needs.
type Page struct {
	Authenticated bool
	User          *models.User
	Query         models.ListQuery
	Stats         *models.Stats
	ThesisList    template.HTML
	Notifications []string
}

type Renderer struct {
	templates *template.Template
	opts      Options
}

func New(opts Options) (*Renderer, error) {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.DownloadURL == nil {
		opts.DownloadURL = func(filePath string) string { return "/api/uploads/" + filePath }
	}

	r := &Renderer{opts: opts}
	templates, err := template.New("").Funcs(r.funcMap()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.templates = templates
	return r, nil
}

// Templates exposes the parsed set for gin's HTML renderer.
func (r *Renderer) Templates() *template.Template {
	return r.templates
}

// Static returns the embedded stylesheet and script.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// ThesisList renders one card per record, in the given order.
func (r *Renderer) ThesisList(records []models.Thesis) (template.HTML, error) {
	return r.fragment("thesis_list", records)
}

// Stats renders the counter row. A nil snapshot renders placeholders.
func (r *Renderer) Stats(stats *models.Stats) (template.HTML, error) {
	return r.fragment("stats", stats)
}

// Page writes the named full page template.
func (r *Renderer) Page(w io.Writer, name string, page Page) error {
	return r.templates.ExecuteTemplate(w, name, page)
}

func (r *Renderer) fragment(name string, data interface{}) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) funcMap() template.FuncMap {
	return template.FuncMap{
		"formatTime":   r.formatTime,
		"averageScore": averageScore,
		"downloadURL":  r.downloadURL,
		"richText":     r.richText,
		"json":         toJSON,
	}
}

func (r *Renderer) formatTime(ts models.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.In(r.opts.Location).Format(TimeLayout)
}

func (r *Renderer) downloadURL(filePath *string) string {
	if filePath == nil {
		return ""
	}
	return r.opts.DownloadURL(*filePath)
}

func averageScore(score *float64) string {
	if score == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *score)
}

func (r *Renderer) richText(text string) template.HTML {
	if !r.opts.Markdown {
		return template.HTML(template.HTMLEscapeString(text))
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.SkipHTML | mdhtml.Safelink | mdhtml.HrefTargetBlank,
	})
	return template.HTML(markdown.ToHTML([]byte(text), p, renderer))
}

func toJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
