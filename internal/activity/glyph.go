package activity

import "golang.org/x/text/cases"

const (
	KindPush        = "push"
	KindPullRequest = "pull_request"
	KindMerge       = "merge"

	DefaultGlyph = "•"
)

var glyphs = map[string]string{
	KindPush:        "↑",
	KindPullRequest: "PR",
	KindMerge:       "⚡",
}

// Kind folds an activity type for case-insensitive comparison.
func Kind(t string) string {
	// Casers carry state, so one is built per call.
	return cases.Fold().String(t)
}

// Glyph returns the icon text for an activity type. Unknown types map to DefaultGlyph.
func Glyph(t string) string {
	if g, ok := glyphs[Kind(t)]; ok {
		return g
	}
	return DefaultGlyph
}
