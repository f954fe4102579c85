package view

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Afrawles/actionfeed/internal/activity"
	"github.com/Afrawles/actionfeed/internal/poller"
)

const (
	ansiClear = "\033[H\033[2J"
	ansiGreen = "\033[32m"
	ansiRed   = "\033[31m"
	ansiDim   = "\033[2m"
	ansiReset = "\033[0m"
)

const (
	EmptyText        = "No activities yet"
	ConnectedText    = "Connected"
	DisconnectedText = "Disconnected"
	TimeLayout       = "15:04:05"
)

// Terminal draws the activity list and status line to a writer.
// With Live set it clears the screen before each frame.
type Terminal struct {
	mu      sync.Mutex
	out     io.Writer
	live    bool
	color   bool
	title   string
	entries []activity.Entry
	empty   bool
	status  poller.Status
}

type TerminalOptions struct {
	Title string
	Live  bool
	Color bool
}

func NewTerminal(out io.Writer, opts TerminalOptions) *Terminal {
	return &Terminal{
		out:   out,
		live:  opts.Live,
		color: opts.Color,
		title: opts.Title,
	}
}

var _ poller.View = (*Terminal)(nil)

func (t *Terminal) Render(entries []activity.Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = entries
	t.empty = false
	t.draw()
}

func (t *Terminal) RenderEmpty() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = nil
	t.empty = true
	t.draw()
}

func (t *Terminal) SetStatus(s poller.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = s
	t.draw()
}

// draw writes one full frame. Callers hold t.mu.
func (t *Terminal) draw() {
	if !t.live {
		return
	}
	_, _ = t.out.Write(t.frame())
}

// Flush writes the current frame once. Used in non-live mode.
func (t *Terminal) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.out.Write(t.frame())
	return err
}

func (t *Terminal) frame() []byte {
	var b bytes.Buffer

	if t.live && t.color {
		b.WriteString(ansiClear)
	}
	if t.title != "" {
		fmt.Fprintf(&b, "%s\n\n", t.title)
	}

	dot, label := t.paint(ansiGreen, "●"), ConnectedText
	if !t.status.Connected {
		dot, label = t.paint(ansiRed, "●"), DisconnectedText
	}
	fmt.Fprintf(&b, "%s %s", dot, label)
	if !t.status.LastUpdated.IsZero() {
		fmt.Fprintf(&b, "   Last updated: %s", t.status.LastUpdated.Format(TimeLayout))
	}
	b.WriteString("\n\n")

	if t.empty || len(t.entries) == 0 {
		fmt.Fprintf(&b, "  %s\n", t.paint(ansiDim, EmptyText))
		return b.Bytes()
	}

	for _, e := range t.entries {
		lines := strings.Split(e.Message, "\n")
		fmt.Fprintf(&b, "  %-3s %s\n", e.Glyph, lines[0])
		for _, l := range lines[1:] {
			fmt.Fprintf(&b, "      %s\n", strings.TrimSpace(l))
		}
		fmt.Fprintf(&b, "      %s\n", t.paint(ansiDim, e.TimeAgo))
	}

	return b.Bytes()
}

func (t *Terminal) paint(code, s string) string {
	if !t.color {
		return s
	}
	return code + s + ansiReset
}
