package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Afrawles/actionfeed/internal/activity"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var Formats = []string{FormatJSON, FormatCSV, FormatXLSX}

type Exporter struct {
	OutputDir string
}

func NewExporter(outputDir string) *Exporter {
	return &Exporter{OutputDir: outputDir}
}

// Snapshot is one fetched activity list as written to disk.
type Snapshot struct {
	FetchedAt time.Time        `json:"fetched_at"`
	Source    string           `json:"source"`
	Entries   []activity.Entry `json:"entries"`
}

// Export writes the snapshot in the given format and returns the file path.
func (e *Exporter) Export(s Snapshot, format string) (string, error) {
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(e.OutputDir, Filename(s.FetchedAt, format))

	var err error
	switch format {
	case FormatJSON:
		err = e.ExportJSON(s, filename)
	case FormatCSV:
		err = e.ExportCSV(s, filename)
	case FormatXLSX:
		err = e.ExportExcel(s, filename)
	default:
		return "", fmt.Errorf("unsupported export format: %s", format)
	}
	if err != nil {
		return "", err
	}
	return filename, nil
}

// Filename is actions_<timestamp>.<format>.
func Filename(at time.Time, format string) string {
	return fmt.Sprintf("actions_%s.%s", at.Format("20060102_150405"), format)
}

func (e *Exporter) ExportJSON(s Snapshot, filename string) error {
	data, err := json.MarshalIndent(s, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// KindCount is the number of entries of one kind.
type KindCount struct {
	Kind  string
	Label string
	Count int
}

// Statistics counts entries per kind, most frequent first.
func Statistics(entries []activity.Entry) []KindCount {
	counts := make(map[string]int)
	for _, e := range entries {
		kind := e.Kind
		if kind == "" {
			kind = "unknown"
		}
		counts[kind]++
	}

	title := cases.Title(language.English)
	out := make([]KindCount, 0, len(counts))
	for kind, n := range counts {
		out = append(out, KindCount{Kind: kind, Label: title.String(kindLabel(kind)), Count: n})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

func kindLabel(kind string) string {
	return strings.ReplaceAll(kind, "_", " ")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
