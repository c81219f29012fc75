package payroll

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	linesSheet   = "Lines"
)

var (
	summaryHeader = []any{"Username", "Name", "Role", "Total Hours", "Total Pay", "Average Rate"}
	linesHeader   = []any{"Username", "Date", "Kind", "Shift Type", "Start", "End", "Hours", "Rate", "Pay", "Description"}
)

// Workbook renders summaries as an XLSX file with one summary sheet and one
// sheet listing every line.
func Workbook(summaries []Summary) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(linesSheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return nil, err
	}

	if err := writeRow(f, summarySheet, 1, summaryHeader); err != nil {
		return nil, err
	}
	if err := writeRow(f, linesSheet, 1, linesHeader); err != nil {
		return nil, err
	}
	_ = f.SetRowStyle(summarySheet, 1, 1, bold)
	_ = f.SetRowStyle(linesSheet, 1, 1, bold)

	var totalHours, totalPay float64
	lineRow := 2
	for i, s := range summaries {
		row := i + 2
		if err := writeRow(f, summarySheet, row, []any{
			s.Username, s.Name, string(s.Role), s.TotalHours, s.TotalPay, s.AverageRate,
		}); err != nil {
			return nil, err
		}
		totalHours += s.TotalHours
		totalPay += s.TotalPay

		for _, l := range s.Lines {
			if err := writeRow(f, linesSheet, lineRow, []any{
				s.Username, l.Date.String(), string(l.Kind), string(l.ShiftType),
				l.Start, l.End, l.Hours, l.Rate, l.Pay, l.Description,
			}); err != nil {
				return nil, err
			}
			lineRow++
		}
	}

	totalRow := len(summaries) + 2
	if err := writeRow(f, summarySheet, totalRow, []any{"Total", "", "", round2(totalHours), round2(totalPay)}); err != nil {
		return nil, err
	}
	_ = f.SetRowStyle(summarySheet, totalRow, totalRow, bold)
	_ = f.SetColStyle(summarySheet, "E:F", money)
	_ = f.SetColStyle(linesSheet, "H:I", money)
	_ = f.SetColWidth(summarySheet, "A", "F", 16)
	_ = f.SetColWidth(linesSheet, "J", "J", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
