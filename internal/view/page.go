package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Afrawles/actionfeed/internal/activity"
	"github.com/Afrawles/actionfeed/internal/poller"
)

//go:embed "templates"
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/page.tmpl"))

// Page renders the activity list as an HTML document. It can be written to
// a file on every update, served over HTTP, or both.
type Page struct {
	mu      sync.RWMutex
	path    string
	title   string
	refresh time.Duration
	logger  *slog.Logger

	entries []activity.Entry
	status  poller.Status
}

type PageOptions struct {
	// Path, if set, receives the rendered page after every update.
	Path  string
	Title string
	// Refresh is the browser reload interval; zero disables it.
	Refresh time.Duration
	Logger  *slog.Logger
}

func NewPage(opts PageOptions) *Page {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Title == "" {
		opts.Title = "Repository Activity"
	}
	return &Page{
		path:    opts.Path,
		title:   opts.Title,
		refresh: opts.Refresh,
		logger:  opts.Logger,
	}
}

var _ poller.View = (*Page)(nil)

func (p *Page) Render(entries []activity.Entry) {
	p.mu.Lock()
	p.entries = entries
	p.mu.Unlock()
	p.persist()
}

func (p *Page) RenderEmpty() {
	p.mu.Lock()
	p.entries = nil
	p.mu.Unlock()
	p.persist()
}

func (p *Page) SetStatus(s poller.Status) {
	p.mu.Lock()
	p.status = s
	p.mu.Unlock()
	p.persist()
}

// Bytes returns the current document.
func (p *Page) Bytes() ([]byte, error) {
	p.mu.RLock()
	data := map[string]any{
		"Title":          p.title,
		"Entries":        p.entries,
		"Status":         p.status,
		"RefreshSeconds": int(p.refresh / time.Second),
	}
	p.mu.RUnlock()

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render HTML: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *Page) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := p.Bytes()
	if err != nil {
		p.logger.Error("page render failed", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(body)
}

func (p *Page) persist() {
	if p.path == "" {
		return
	}
	if err := p.WriteFile(p.path); err != nil {
		p.logger.Error("failed to write HTML page", "path", p.path, "error", err)
	}
}

// WriteFile renders the page to path via a temp file and rename, so readers
// never see a half-written document.
func (p *Page) WriteFile(path string) error {
	body, err := p.Bytes()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".actionfeed-*.html")
	if err != nil {
		return fmt.Errorf("failed to create HTML file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write HTML file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write HTML file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to write HTML file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
