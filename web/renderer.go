// Package web renders the portal's HTML pages from Jinja-style templates.
package web

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"net/http"

	"github.com/flosch/pongo2/v6"
	"github.com/labstack/echo/v4"
)

//go:embed templates
var embedded embed.FS

// Page template names
const (
	PageIndex    = "main/index.html"
	PageRegister = "auth/register.html"
)

// ErrorPage returns the template name of the page rendered for an HTTP status.
func ErrorPage(status int) string {
	return fmt.Sprintf("errors/%d.html", status)
}

// Options configures a Renderer.
type Options struct {
	// Dir loads templates from disk instead of the embedded set.
	Dir string
	// Reload re-reads templates on every render instead of caching them.
	Reload bool
	// Globals are available to every template.
	Globals map[string]any
}

// Renderer renders pongo2 templates and implements echo.Renderer.
type Renderer struct {
	set *pongo2.TemplateSet
}

var _ echo.Renderer = (*Renderer)(nil)

// NewRenderer creates a template set over the embedded pages or opts.Dir.
func NewRenderer(opts Options) (*Renderer, error) {
	loader, err := newLoader(opts.Dir)
	if err != nil {
		return nil, err
	}

	set := pongo2.NewSet("pages", loader)
	set.Debug = opts.Reload
	set.Globals.Update(pongo2.Context(opts.Globals))

	return &Renderer{set: set}, nil
}

func newLoader(dir string) (pongo2.TemplateLoader, error) {
	if dir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open template directory %s: %w", dir, err)
		}
		return loader, nil
	}

	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded templates: %w", err)
	}
	loader, err := pongo2.NewHttpFileSystemLoader(http.FS(sub), "")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded templates: %w", err)
	}
	return loader, nil
}

// Render executes the named template with data into w. Map data is exposed
// as top-level variables; any other value is exposed as "data". Nothing is
// written when rendering fails.
func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	tpl, err := r.set.FromCache(name)
	if err != nil {
		return fmt.Errorf("failed to load template %s: %w", name, err)
	}

	ctx := pongo2.Context{}
	if c != nil && c.Request() != nil {
		ctx["request_path"] = c.Request().URL.Path
	}
	switch d := data.(type) {
	case nil:
	case pongo2.Context:
		ctx.Update(d)
	case map[string]any:
		ctx.Update(pongo2.Context(d))
	default:
		ctx["data"] = d
	}

	if err := tpl.ExecuteWriter(ctx, w); err != nil {
		return fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return nil
}

// Has reports whether the named template can be loaded.
func (r *Renderer) Has(name string) bool {
	_, err := r.set.FromCache(name)
	return err == nil
}
