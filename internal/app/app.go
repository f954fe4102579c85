package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/Afrawles/actionfeed/internal/activity"
	"github.com/Afrawles/actionfeed/internal/config"
	"github.com/Afrawles/actionfeed/internal/export"
	"github.com/Afrawles/actionfeed/internal/feed"
	"github.com/Afrawles/actionfeed/internal/logging"
	"github.com/Afrawles/actionfeed/internal/metrics"
	"github.com/Afrawles/actionfeed/internal/poller"
	"github.com/Afrawles/actionfeed/internal/view"
)

const shutdownTimeout = 5 * time.Second

type Application struct {
	Config  *config.Config
	Logger  *slog.Logger
	Client  *feed.Client
	Metrics *metrics.Collector
	Page    *view.Page
}

func New(cfg *config.Config, logOut io.Writer) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(cfg.Logging, logOut)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	collector, err := metrics.NewCollector()
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics collector: %w", err)
	}

	client := feed.NewClient(cfg.Feed.BaseURL, cfg.Feed.Path, &http.Client{
		Timeout: cfg.Feed.RequestTimeout,
	})
	logger.Info("feed client initialized", "url", client.URL(), "timeout", cfg.Feed.RequestTimeout)

	page := view.NewPage(view.PageOptions{
		Path:    cfg.Output.HTMLPath,
		Refresh: cfg.Poll.Interval,
		Logger:  logger,
	})

	return &Application{
		Config:  cfg,
		Logger:  logger,
		Client:  client,
		Metrics: collector,
		Page:    page,
	}, nil
}

// NewPoller builds a poller that drives v, plus the HTML page when it is
// written to disk or served.
func (app *Application) NewPoller(v poller.View) (*poller.Poller, error) {
	views := []poller.View{v}
	if app.Config.Output.HTMLPath != "" || app.Config.Server.Listen != "" {
		views = append(views, app.Page)
	}

	return poller.New(
		poller.Config{Interval: app.Config.Poll.Interval},
		app.Client,
		view.Multi(views...),
		poller.WithLogger(app.Logger),
		poller.WithObserver(app.Metrics),
	)
}

// Handler serves the HTML page, metrics and a liveness probe.
func (app *Application) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /{$}", app.Page)
	mux.Handle("GET /metrics", app.Metrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Watch polls until ctx is done. Every receive on refresh is a manual
// refresh, subject to the refresh rate limit.
func (app *Application) Watch(ctx context.Context, v poller.View, refresh <-chan struct{}) error {
	p, err := app.NewPoller(v)
	if err != nil {
		return err
	}

	var srv *http.Server
	if addr := app.Config.Server.Listen; addr != "" {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", addr, err)
		}
		srv = &http.Server{Handler: app.Handler(), ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				app.Logger.Error("http server failed", "error", err)
			}
		}()
		app.Logger.Info("serving page and metrics", "addr", ln.Addr().String())
	}

	if err := p.Start(ctx); err != nil {
		return err
	}
	defer p.StopPolling()

	limiter := rate.NewLimiter(rate.Every(app.Config.Refresh.MinInterval), app.Config.Refresh.Burst)

	for {
		select {
		case <-ctx.Done():
			if srv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					app.Logger.Warn("http server shutdown", "error", err)
				}
			}
			return nil
		case _, ok := <-refresh:
			if !ok {
				refresh = nil
				continue
			}
			if !limiter.Allow() {
				app.Logger.Debug("manual refresh throttled")
				continue
			}
			p.Refresh()
		}
	}
}

// FetchOnce runs a single fetch through a poller and reports the outcome.
func (app *Application) FetchOnce(ctx context.Context, v poller.View) (poller.Status, error) {
	p, err := app.NewPoller(v)
	if err != nil {
		return poller.Status{}, err
	}
	p.FetchAndRender(ctx)
	return p.Status(), nil
}

// Snapshot fetches the list once for export. Unlike the poller it returns
// fetch errors to the caller.
func (app *Application) Snapshot(ctx context.Context) (export.Snapshot, error) {
	records, err := app.Client.Fetch(ctx)
	if err != nil {
		return export.Snapshot{}, err
	}
	now := time.Now()
	return export.Snapshot{
		FetchedAt: now,
		Source:    app.Client.URL(),
		Entries:   activity.Render(records, now),
	}, nil
}

// Export writes snapshot s once per format and returns the written paths.
func (app *Application) Export(s export.Snapshot, formats []string) ([]string, error) {
	exporter := export.NewExporter(app.Config.Output.Directory)

	var paths []string
	for _, format := range formats {
		path, err := exporter.Export(s, format)
		if err != nil {
			app.Logger.Error("export failed", "format", format, "error", err)
			return paths, err
		}
		app.Logger.Info("snapshot exported", "format", format, "file", path, "entries", len(s.Entries))
		paths = append(paths, path)
	}
	return paths, nil
}
