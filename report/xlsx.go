package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/lucasjlepore/lap-drift/tcx"
)

// LapsSheet is the worksheet holding one row per lap.
const LapsSheet = "laps"

// WriteXLSX writes the detailed projection as a workbook. The embedded sample
// series is left out; it belongs in the samples export.
func (r *Report) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", LapsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1c399e"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Font:      &excelize.Font{Color: "ffffff", Bold: true},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	cols := spreadsheetColumns()
	header := make([]any, 0, len(cols)+1)
	header = append(header, IndexLabel)
	for _, c := range cols {
		header = append(header, c.name)
	}
	if err := f.SetSheetRow(LapsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(LapsSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, m := range r.Rows {
		row := make([]any, 0, len(cols)+1)
		row = append(row, m.Ordinal)
		for _, c := range cols {
			row = append(row, spreadsheetValue(c.value(m)))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(LapsSheet, cell, &row); err != nil {
			return fmt.Errorf("write lap %d: %w", m.Ordinal, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func spreadsheetColumns() []column {
	out := make([]column, 0, len(detailedColumns))
	for _, c := range detailedColumns {
		if c.name == SamplesColumn {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Times and durations go in as text so zone offsets survive the round trip.
func spreadsheetValue(v any) any {
	switch x := v.(type) {
	case time.Time, time.Duration, []tcx.Sample:
		return formatCell(x)
	default:
		return v
	}
}
