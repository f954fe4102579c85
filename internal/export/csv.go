package export

import (
	"encoding/csv"
	"fmt"
	"os"
)

var header = []string{"#", "Type", "Icon", "Message", "Timestamp", "Time Ago", "ID"}

func (e *Exporter) ExportCSV(s Snapshot, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(header); err != nil {
		return err
	}

	for i, entry := range s.Entries {
		row := []string{
			fmt.Sprintf("%d", i+1),
			entry.Kind,
			entry.Glyph,
			entry.Message,
			formatTime(entry.At),
			entry.TimeAgo,
			entry.ID,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}
