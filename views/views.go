// Package views renders the server-side pages from embedded templates.
package views

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"campus/services/materials"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

var funcMap = template.FuncMap{
	"formatSize": materials.FormatFileSize,
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"first": func(errs map[string][]string, field string) string {
		if msgs := errs[field]; len(msgs) > 0 {
			return msgs[0]
		}
		return ""
	},
	"lower": strings.ToLower,
}

// Renderer holds one template set per page, each sharing the layout.
type Renderer struct {
	pages map[string]*template.Template
}

func New() (*Renderer, error) {
	base, err := template.New(path.Base(layoutFile)).Funcs(funcMap).ParseFS(templateFS, layoutFile)
	if err != nil {
		return nil, errors.Wrap(err, "parsing layout")
	}

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: map[string]*template.Template{}}
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		page, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := page.ParseFS(templateFS, file); err != nil {
			return nil, errors.Wrapf(err, "parsing %s", file)
		}
		r.pages[strings.TrimSuffix(path.Base(file), ".html")] = page
	}
	return r, nil
}

// Render executes page inside the layout and writes it with status.
func (r *Renderer) Render(c *fiber.Ctx, status int, page string, data fiber.Map) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return errors.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return errors.Wrapf(err, "rendering %s", page)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}
