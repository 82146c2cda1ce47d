package exporter

import (
	"bytes"
	"fmt"

	"github.com/examlink/examlink-backend/internal/model"
	"github.com/xuri/excelize/v2"
)

// ResultsWorkbook renders an exam's persisted result rows into an XLSX
// workbook for the owning teacher.
func ResultsWorkbook(examTitle string, results []model.ResultRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{
		"Student", "Score", "Total", "Percent", "Rating",
		"Cheating Attempts", "Started At", "Finished At",
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for row, r := range results {
		started, finished := "", ""
		if r.StartedAt != nil {
			started = r.StartedAt.UTC().Format("2006-01-02 15:04:05")
		}
		if r.FinishedAt != nil {
			finished = r.FinishedAt.UTC().Format("2006-01-02 15:04:05")
		}

		values := []interface{}{
			r.StudentName, r.Score, r.TotalQuestions, r.Percent, r.Rating,
			r.CheatingAttempts, started, finished,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("result cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("write result row: %w", err)
			}
		}
	}

	// Sheet title row with the exam name would shift the data table; the
	// exam title goes into the workbook properties instead.
	_ = f.SetDocProps(&excelize.DocProperties{Title: examTitle})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
