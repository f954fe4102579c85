package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/Afrawles/actionfeed/internal/activity"
)

var ErrAlreadyRunning = errors.New("poller: already running")

// Config is the minimal runtime config the poller needs.
type Config struct {
	Interval time.Duration
}

type Option func(*Poller)

func WithClock(c clock.Clock) Option {
	return func(p *Poller) { p.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) { p.logger = l }
}

func WithObserver(o Observer) Option {
	return func(p *Poller) { p.observer = o }
}

// Poller fetches the activity list on a fixed interval and on demand,
// and pushes the outcome into a View.
type Poller struct {
	cfg      Config
	fetcher  Fetcher
	view     View
	clock    clock.Clock
	logger   *slog.Logger
	observer Observer

	mu      sync.Mutex
	status  Status
	lastGen uint64 // last generation handed out
	applied uint64 // generation whose outcome the view shows
	handle  *timerHandle
}

// timerHandle owns the repeating ticker. It exists iff polling is running.
type timerHandle struct {
	ticker *clock.Ticker
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func New(cfg Config, fetcher Fetcher, view View, opts ...Option) (*Poller, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if fetcher == nil {
		return nil, errors.New("poller: fetcher required")
	}
	if view == nil {
		return nil, errors.New("poller: view required")
	}

	p := &Poller{
		cfg:      cfg,
		fetcher:  fetcher,
		view:     view,
		clock:    clock.New(),
		logger:   slog.Default(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Start acquires the ticker and begins polling. The first fetch runs
// immediately, without waiting for a tick. ctx bounds the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.handle != nil {
		p.mu.Unlock()
		return ErrAlreadyRunning
	}
	loopCtx, cancel := context.WithCancel(ctx)
	h := &timerHandle{
		ticker: p.clock.Ticker(p.cfg.Interval),
		ctx:    loopCtx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	p.handle = h
	p.mu.Unlock()

	p.logger.Info("polling started", "interval", p.cfg.Interval)
	go p.loop(h)
	return nil
}

// loop runs tick-driven fetches one at a time.
func (p *Poller) loop(h *timerHandle) {
	defer close(h.done)

	p.FetchAndRender(h.ctx)

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.ticker.C:
			p.FetchAndRender(h.ctx)
		}
	}
}

// StopPolling releases the ticker and waits for the loop to exit.
// In-flight loop fetches are cancelled. Safe to call when not running.
func (p *Poller) StopPolling() {
	p.mu.Lock()
	h := p.handle
	p.handle = nil
	p.mu.Unlock()

	if h == nil {
		return
	}

	h.cancel()
	h.ticker.Stop()
	<-h.done
	p.logger.Info("polling stopped")
}

// Run polls until ctx is done, then stops.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.Start(ctx); err != nil {
		return err
	}
	defer p.StopPolling()

	<-ctx.Done()
	return nil
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handle != nil
}

func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Refresh starts an immediate fetch on its own goroutine. It may overlap
// a tick-driven fetch; the generation guard in FetchAndRender keeps the
// newest outcome on screen.
func (p *Poller) Refresh() {
	p.mu.Lock()
	ctx := context.Background()
	if p.handle != nil {
		ctx = p.handle.ctx
	}
	p.mu.Unlock()

	go p.FetchAndRender(ctx)
}

// FetchAndRender performs one fetch and applies its outcome to the view.
// Failures only downgrade the status; the rendered list is left as is.
func (p *Poller) FetchAndRender(ctx context.Context) {
	gen := p.nextGeneration()

	start := p.clock.Now()
	records, err := p.fetcher.Fetch(ctx)
	took := p.clock.Since(start)

	if ctx.Err() != nil {
		p.logger.Debug("fetch abandoned", "generation", gen, "error", ctx.Err())
		return
	}

	p.observer.ObserveFetch(err, took)

	p.mu.Lock()
	defer p.mu.Unlock()

	// A newer fetch already finished; this outcome is out of date.
	if gen < p.applied {
		p.logger.Debug("discarding stale fetch", "generation", gen, "applied", p.applied)
		p.observer.ObserveStale()
		return
	}
	p.applied = gen

	if err != nil {
		p.logger.Error("error fetching actions", "error", err, "generation", gen)
		p.setStatus(false, false)
		return
	}

	if len(records) == 0 {
		p.logger.Debug("no activities", "generation", gen)
		p.view.RenderEmpty()
		p.setStatus(true, false)
		return
	}

	p.logger.Debug("activities fetched", "generation", gen, "count", len(records))
	p.view.Render(activity.Render(records, p.clock.Now()))
	p.setStatus(true, true)
}

func (p *Poller) nextGeneration() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastGen++
	return p.lastGen
}

// setStatus must be called with p.mu held.
func (p *Poller) setStatus(connected, stamp bool) {
	p.status.Connected = connected
	if connected && stamp {
		p.status.LastUpdated = p.clock.Now()
	}
	p.view.SetStatus(p.status)
	p.observer.ObserveStatus(p.status)
}
