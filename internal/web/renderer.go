package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-portal/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// mdRenderer converts AI replies to HTML. Raw HTML in the source is dropped.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Page is the data every template receives.
type Page struct {
	Title     string
	User      *models.User
	Flash     *models.Flash
	CSRFToken string
	Path      string
	Data      interface{}
}

// Renderer holds one parsed template set per page, each combined with the
// shared layout.
type Renderer struct {
	pages  map[string]*template.Template
	logger *zap.Logger
}

// NewRenderer parses every embedded page.
func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(file), ".html")
		tpl, err := template.New("layout.html").Funcs(Funcs()).ParseFS(templateFS, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tpl
	}
	return &Renderer{pages: pages, logger: logger}, nil
}

// Render writes page with status. The flash message is consumed from the
// session so it shows exactly once.
func (r *Renderer) Render(c *gin.Context, status int, page string, sess *models.Session, title string, data interface{}) {
	tpl, ok := r.pages[page]
	if !ok {
		r.logger.Error("unknown template", zap.String("page", page))
		c.String(500, "template %q not found", page)
		return
	}

	view := Page{
		Title:     title,
		CSRFToken: csrf.Token(c.Request),
		Path:      c.Request.URL.Path,
		Data:      data,
	}
	if sess != nil {
		view.User = sess.User
		view.Flash = sess.TakeFlash()
	}

	buf := &bytes.Buffer{}
	if err := tpl.ExecuteTemplate(buf, "layout.html", view); err != nil {
		r.logger.Error("render failed", zap.String("page", page), zap.Error(err))
		c.String(500, "render error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// Funcs are the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"markdown": Markdown,
		"money": func(amount float64) string {
			return fmt.Sprintf("₹%.0f", amount)
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"add": func(a, b int) int { return a + b },
		"query": func(values url.Values, key, value string) template.URL {
			next := url.Values{}
			for k, v := range values {
				next[k] = append([]string(nil), v...)
			}
			if value == "" {
				next.Del(key)
			} else {
				next.Set(key, value)
			}
			if len(next) == 0 {
				return ""
			}
			return template.URL("?" + next.Encode())
		},
		"contains": func(list []string, s string) bool {
			for _, item := range list {
				if item == s {
					return true
				}
			}
			return false
		},
	}
}

// Markdown renders md to HTML, falling back to escaped text.
func Markdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}
