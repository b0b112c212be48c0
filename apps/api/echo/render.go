package echoapi

import (
	"html/template"
	"io"
	"io/fs"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const htmlTemplatesDir = "templates/html"

// pages are rendered inside the layout; fragments stand alone.
var (
	pages     = []string{"list", "login", "schedule"}
	fragments = []string{"modal"}
)

type templateRenderer struct {
	templates map[string]*template.Template
}

var _ echo.Renderer = (*templateRenderer)(nil)

func newTemplateRenderer(fsys fs.FS) (*templateRenderer, error) {
	r := &templateRenderer{templates: make(map[string]*template.Template, len(pages)+len(fragments))}
	layout := path.Join(htmlTemplatesDir, "layout.gohtml")
	for _, name := range pages {
		tmpl, err := template.ParseFS(fsys, layout, path.Join(htmlTemplatesDir, name+".gohtml"))
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s page", name)
		}
		r.templates[name] = tmpl
	}
	for _, name := range fragments {
		tmpl, err := template.ParseFS(fsys, path.Join(htmlTemplatesDir, name+".gohtml"))
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s fragment", name)
		}
		r.templates[name] = tmpl
	}
	return r, nil
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return errors.Errorf("unknown template %q", name)
	}
	root := "layout"
	if tmpl.Lookup(root) == nil {
		root = name
	}
	return tmpl.ExecuteTemplate(w, root, data)
}
