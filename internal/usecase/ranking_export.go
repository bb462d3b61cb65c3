package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-resume-screener/pkg/apperror"
	"go-resume-screener/pkg/security"

	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{"RANK", "SCORE", "CANDIDATE ID", "NAME", "EMAIL", "PHONE", "LOCATION", "RESUME ID", "FILENAME", "SKILLS", "EXPERIENCE (YEARS)"}

// ExportRanking renders the semantic ranking of a job as XLSX or CSV.
func (u *rankingUsecase) ExportRanking(ctx context.Context, jobID int64, limit int, format string) ([]byte, string, error) {
	if format != "" && format != "xlsx" && format != "csv" {
		return nil, "", apperror.BadRequest("unsupported export format: " + format)
	}

	ranked, err := u.Rank(ctx, jobID, limit)
	if err != nil {
		return nil, "", err
	}

	if format == "" {
		format = "xlsx"
	}
	u.audit.Log(ctx, security.SecurityEvent{
		Event:        security.EventDataExport,
		SubjectType:  "job_id",
		SubjectValue: strconv.FormatInt(jobID, 10),
		Details:      map[string]interface{}{"format": format, "rows": len(ranked)},
	})

	rows := make([][]interface{}, 0, len(ranked))
	for i, r := range ranked {
		rows = append(rows, []interface{}{
			i + 1,
			fmt.Sprintf("%.4f", r.Score),
			r.Candidate.ID,
			r.Candidate.Name,
			r.Candidate.Email,
			deref(r.Candidate.Phone),
			deref(r.Candidate.Location),
			r.Resume.ID,
			r.Resume.Filename,
			strings.Join(r.Resume.Skills, ", "),
			r.Resume.ExperienceYears,
		})
	}

	stamp := time.Now().Format("20060102_150405")
	if format == "csv" {
		data, err := exportCSV(rows)
		return data, fmt.Sprintf("job_%d_ranking_%s.csv", jobID, stamp), err
	}
	data, err := exportExcel(rows)
	return data, fmt.Sprintf("job_%d_ranking_%s.xlsx", jobID, stamp), err
}

func exportExcel(rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Ranking"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	// Dark blue header with white text
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range exportHeaders {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func exportCSV(rows [][]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeaders); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprintf("%v", v)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
