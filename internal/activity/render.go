package activity

import "time"

// Render maps records to entries, preserving input order.
func Render(records []Record, now time.Time) []Entry {
	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		e := Entry{
			ID:      r.ID,
			Kind:    Kind(r.Type),
			Glyph:   Glyph(r.Type),
			Message: r.Message,
			TimeAgo: UnknownTime,
		}
		if at, err := ParseTimestamp(r.Timestamp); err == nil {
			e.At = at
			e.TimeAgo = Since(at, now)
		}
		entries = append(entries, e)
	}
	return entries
}
