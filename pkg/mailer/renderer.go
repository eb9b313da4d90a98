package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer turns markdown templates into HTML wrapped in an HTML layout.
// Parsed templates and layouts are cached.
type Renderer struct {
	fsys      fs.FS
	md        goldmark.Markdown
	bodies    map[string]*parsedBody
	layouts   map[string]*template.Template
	layoutDir string
	mu        sync.Mutex
}

type parsedBody struct {
	meta map[string]any
	tmpl *texttemplate.Template
}

// NewRenderer reads templates from the root of fsys and layouts from layoutDir.
func NewRenderer(fsys fs.FS, layoutDir string) *Renderer {
	return &Renderer{
		fsys:      fsys,
		md:        goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Table)),
		bodies:    make(map[string]*parsedBody),
		layouts:   make(map[string]*template.Template),
		layoutDir: layoutDir,
	}
}

// Rendered holds the HTML, the executed markdown as plain text, and metadata.
type Rendered struct {
	Metadata map[string]any
	HTML     string
	Text     string
}

func (r *Renderer) Render(layout, name string, data any) (*Rendered, error) {
	body, err := r.body(name)
	if err != nil {
		return nil, err
	}

	var md bytes.Buffer
	if err := body.tmpl.Execute(&md, data); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRenderFailed, name, err)
	}

	var content bytes.Buffer
	if err := r.md.Convert(md.Bytes(), &content); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRenderFailed, name, err)
	}

	lt, err := r.layout(layout)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := lt.Execute(&out, map[string]any{
		"Content":  template.HTML(content.String()), //nolint:gosec // produced by goldmark from our own templates
		"Metadata": body.meta,
	}); err != nil {
		return nil, fmt.Errorf("%w: layout %s: %w", ErrRenderFailed, layout, err)
	}

	return &Rendered{Metadata: body.meta, HTML: out.String(), Text: md.String()}, nil
}

func (r *Renderer) body(name string) (*parsedBody, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.bodies[name]; ok {
		return b, nil
	}

	raw, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	tpl, err := ParseTemplate(raw)
	if err != nil {
		return nil, err
	}
	tmpl, err := texttemplate.New(name).Parse(tpl.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRenderFailed, name, err)
	}

	b := &parsedBody{meta: tpl.Metadata, tmpl: tmpl}
	r.bodies[name] = b
	return b, nil
}

func (r *Renderer) layout(name string) (*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.layouts[name]; ok {
		return t, nil
	}

	raw, err := fs.ReadFile(r.fsys, path.Join(r.layoutDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLayoutNotFound, name)
	}
	t, err := template.New(name).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: layout %s: %w", ErrRenderFailed, name, err)
	}
	r.layouts[name] = t
	return t, nil
}
