// Package render turns invoice contexts into documents.
//
// Templates are plain Go templates executed against a Context. The template
// language is picked from the file extension:
//
//   - .html, .htm: html/template, with contextual escaping
//   - .tex: text/template with [[ ]] delimiters, since braces are LaTeX syntax
//   - anything else: text/template with the default {{ }} delimiters
package render

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"
)

//go:embed templates/invoice.tex.tmpl
var templates embed.FS

// DefaultTemplateName is the name of the embedded LaTeX template.
const DefaultTemplateName = "invoice.tex.tmpl"

// Renderer produces one document from a rendering context.
type Renderer interface {
	Render(ctx Context) ([]byte, error)
}

type executor interface {
	Execute(w io.Writer, data any) error
}

// TemplateRenderer renders contexts with a parsed Go template.
type TemplateRenderer struct {
	name string
	tpl  executor
}

// NewDefaultRenderer returns a renderer for the embedded LaTeX template.
func NewDefaultRenderer() (*TemplateRenderer, error) {
	text, err := templates.ReadFile("templates/" + DefaultTemplateName)
	if err != nil {
		return nil, &RenderError{Template: DefaultTemplateName, Err: err}
	}
	return ParseTemplate(DefaultTemplateName, string(text))
}

// NewTemplateRenderer returns a renderer for the template file at path.
func NewTemplateRenderer(path string) (*TemplateRenderer, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, &RenderError{Template: path, Err: err}
	}
	return ParseTemplate(filepath.Base(path), string(text))
}

// ParseTemplate parses text as a template. name selects the template
// language by extension; a trailing .tmpl is ignored for that purpose.
func ParseTemplate(name, text string) (*TemplateRenderer, error) {
	var (
		tpl executor
		err error
	)

	switch kind := templateKind(name); kind {
	case "html":
		tpl, err = htmltemplate.New(name).
			Funcs(htmltemplate.FuncMap(funcs())).
			Option("missingkey=error").
			Parse(text)
	default:
		left, right := "{{", "}}"
		if kind == "tex" {
			left, right = "[[", "]]"
		}
		tpl, err = texttemplate.New(name).
			Delims(left, right).
			Funcs(texttemplate.FuncMap(funcs())).
			Option("missingkey=error").
			Parse(text)
	}
	if err != nil {
		return nil, &RenderError{Template: name, Err: err}
	}

	return &TemplateRenderer{name: name, tpl: tpl}, nil
}

func templateKind(name string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(name, ".tmpl")))
	switch ext {
	case ".html", ".htm":
		return "html"
	case ".tex":
		return "tex"
	default:
		return "text"
	}
}

// Name returns the template name.
func (r *TemplateRenderer) Name() string {
	return r.name
}

// Render executes the template against ctx.
func (r *TemplateRenderer) Render(ctx Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, ctx); err != nil {
		return nil, &RenderError{InvoiceID: ctx.ID, Template: r.name, Err: err}
	}
	return buf.Bytes(), nil
}
