package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// ShareTemplateData is the input of the share notification template.
type ShareTemplateData struct {
	From             string
	DownloadPageLink string
	Filename         string
	FileSize         string
}

// Renderer produces the HTML body of a share notification.
type Renderer interface {
	Render(data ShareTemplateData) (string, error)
}

// HTMLRenderer renders the embedded share template. Values are escaped.
type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/share.html")
	if err != nil {
		return nil, fmt.Errorf("parse share template: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

func (r *HTMLRenderer) Render(data ShareTemplateData) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "share.html", data); err != nil {
		return "", fmt.Errorf("render share template: %w", err)
	}
	return buf.String(), nil
}
