package poller

import (
	"context"
	"time"

	"github.com/Afrawles/actionfeed/internal/activity"
)

// Fetcher retrieves the current activity list.
type Fetcher interface {
	Fetch(ctx context.Context) ([]activity.Record, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) ([]activity.Record, error)

func (f FetcherFunc) Fetch(ctx context.Context) ([]activity.Record, error) { return f(ctx) }

// View is the render target driven by the poller.
// Calls are serialized by the poller.
type View interface {
	// Render replaces the list with entries and hides the empty placeholder.
	Render(entries []activity.Entry)
	// RenderEmpty clears the list and shows the empty placeholder.
	RenderEmpty()
	// SetStatus updates the connectivity indicator.
	SetStatus(s Status)
}

// Status is the connectivity indicator state.
type Status struct {
	Connected bool
	// LastUpdated is the client time of the last successful non-empty fetch.
	LastUpdated time.Time
}

// Observer is notified of fetch outcomes.
type Observer interface {
	ObserveFetch(err error, took time.Duration)
	ObserveStale()
	ObserveStatus(s Status)
}

type nopObserver struct{}

func (nopObserver) ObserveFetch(error, time.Duration) {}
func (nopObserver) ObserveStale()                     {}
func (nopObserver) ObserveStatus(Status)              {}
