package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	activitySheet = "Activity"
	summarySheet  = "Summary"
)

func (e *Exporter) ExportExcel(s Snapshot, filename string) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("failed to create wrap style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", activitySheet); err != nil {
		return err
	}

	for i, h := range header {
		f.SetCellValue(activitySheet, cellName(i+1, 1), h)
	}
	f.SetCellStyle(activitySheet, "A1", cellName(len(header), 1), headerStyle)

	for i, entry := range s.Entries {
		row := i + 2
		values := []any{i + 1, entry.Kind, entry.Glyph, entry.Message, formatTime(entry.At), entry.TimeAgo, entry.ID}
		for col, v := range values {
			f.SetCellValue(activitySheet, cellName(col+1, row), v)
		}
	}
	if len(s.Entries) > 0 {
		f.SetCellStyle(activitySheet, "D2", cellName(4, len(s.Entries)+1), wrapStyle)
	}
	f.SetColWidth(activitySheet, "D", "D", 60)
	f.SetColWidth(activitySheet, "E", "F", 22)

	if err := e.createSummarySheet(f, s, headerStyle); err != nil {
		return fmt.Errorf("failed to create summary: %w", err)
	}

	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("failed to save excel file: %w", err)
	}
	return nil
}

func (e *Exporter) createSummarySheet(f *excelize.File, s Snapshot, headerStyle int) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	f.SetCellValue(summarySheet, "A1", "Fetched At:")
	f.SetCellValue(summarySheet, "B1", formatTime(s.FetchedAt))
	f.SetCellValue(summarySheet, "A2", "Source:")
	f.SetCellValue(summarySheet, "B2", s.Source)

	f.SetCellValue(summarySheet, "A4", "Type")
	f.SetCellValue(summarySheet, "B4", "Count")
	f.SetCellStyle(summarySheet, "A4", "B4", headerStyle)

	row := 5
	for _, kc := range Statistics(s.Entries) {
		f.SetCellValue(summarySheet, cellName(1, row), kc.Label)
		f.SetCellValue(summarySheet, cellName(2, row), kc.Count)
		row++
	}
	f.SetCellValue(summarySheet, cellName(1, row), "Total")
	f.SetCellValue(summarySheet, cellName(2, row), len(s.Entries))

	f.SetColWidth(summarySheet, "A", "B", 18)
	return nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
