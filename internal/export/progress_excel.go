package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/school-service/internal/models"
)

// ProgressRow is one line of the progress report.
type ProgressRow struct {
	StudentName  string
	StudentEmail string
	ChapterTitle string
	SubjectName  string
	Status       models.ProgressStatus
	Completion   float64
	CompletedAt  *time.Time
	UpdatedAt    time.Time
}

var progressHeader = []string{
	"Student", "Email", "Subject", "Chapter", "Status", "Completion %", "Completed At", "Last Update",
}

// BuildProgressWorkbook renders progress rows into a single-sheet workbook.
// The caller owns the returned file and must Close it.
func BuildProgressWorkbook(title string, rows []ProgressRow) (*excelize.File, error) {
	f := excelize.NewFile()

	sheet := "Progress"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for col, h := range progressHeader {
		cell := fmt.Sprintf("%s1", columnName(col+1))
		if err := f.SetCellStr(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("set header %s: %w", cell, err)
		}
	}
	end := columnName(len(progressHeader)) + "1"
	_ = f.SetCellStyle(sheet, "A1", end, bold)
	_ = f.AutoFilter(sheet, "A1:"+end, nil)

	for r, row := range rows {
		completedAt := ""
		if row.CompletedAt != nil {
			completedAt = row.CompletedAt.Format("2006-01-02 15:04")
		}
		values := []interface{}{
			row.StudentName,
			row.StudentEmail,
			row.SubjectName,
			row.ChapterTitle,
			string(row.Status),
			row.Completion,
			completedAt,
			row.UpdatedAt.Format("2006-01-02 15:04"),
		}
		for c, v := range values {
			cell := fmt.Sprintf("%s%d", columnName(c+1), r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	applyColumnWidths(f, sheet, progressHeader)

	if title != "" {
		_ = f.SetDocProps(&excelize.DocProperties{Title: title})
	}

	return f, nil
}

// applyColumnWidths sizes columns by header length with a sane floor and cap.
func applyColumnWidths(f *excelize.File, sheet string, header []string) {
	for c := 1; c <= len(header); c++ {
		w := float64(len(header[c-1])) * 1.3
		if w < 12 {
			w = 12
		}
		if w > 40 {
			w = 40
		}
		_ = f.SetColWidth(sheet, columnName(c), columnName(c), w)
	}
}

func columnName(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}
