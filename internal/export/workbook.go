// Package export writes the thesis list to an XLSX workbook, one row per thesis
// plus a sheet with every review.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/thesis-review-portal/internal/models"
)

const (
	ThesisSheet = "Theses"
	ReviewSheet = "Reviews"

	timeLayout = "2006-01-02 15:04:05"
)

var (
	thesisHeaders = []string{"ID", "Title", "Author", "Status", "Submitted", "Reviews", "Average", "Median", "Std Dev", "Min", "Max"}
	reviewHeaders = []string{"Thesis ID", "Thesis", "Reviewer", "Score", "Comments", "Reviewed"}
)

// ScoreSummary describes the review scores of one thesis.
type ScoreSummary struct {
	Count  int
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize computes the score statistics of a thesis. ok is false when the
// thesis has no reviews.
func Summarize(thesis models.Thesis) (summary ScoreSummary, ok bool, err error) {
	scores := thesis.Scores()
	if len(scores) == 0 {
		return ScoreSummary{}, false, nil
	}

	summary.Count = len(scores)
	if summary.Mean, err = stats.Mean(scores); err != nil {
		return ScoreSummary{}, false, err
	}
	if summary.Median, err = stats.Median(scores); err != nil {
		return ScoreSummary{}, false, err
	}
	if summary.StdDev, err = stats.StandardDeviation(scores); err != nil {
		return ScoreSummary{}, false, err
	}
	if summary.Min, err = stats.Min(scores); err != nil {
		return ScoreSummary{}, false, err
	}
	if summary.Max, err = stats.Max(scores); err != nil {
		return ScoreSummary{}, false, err
	}
	return summary, true, nil
}

type Exporter struct {
	location *time.Location
}

func New(location *time.Location) *Exporter {
	if location == nil {
		location = time.UTC
	}
	return &Exporter{location: location}
}

// WriteThesisList writes records, in order, as an XLSX workbook to w.
func (e *Exporter) WriteThesisList(w io.Writer, records []models.Thesis) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ThesisSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(ReviewSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := writeRow(f, ThesisSheet, 1, toCells(thesisHeaders)); err != nil {
		return err
	}
	if err := writeRow(f, ReviewSheet, 1, toCells(reviewHeaders)); err != nil {
		return err
	}

	reviewRow := 2
	for i, thesis := range records {
		row, err := e.thesisRow(thesis)
		if err != nil {
			return fmt.Errorf("failed to summarize thesis %d: %w", thesis.ID, err)
		}
		if err := writeRow(f, ThesisSheet, i+2, row); err != nil {
			return err
		}

		for _, review := range thesis.Reviews {
			cells := []interface{}{thesis.ID, thesis.Title, review.Reviewer, review.Score, review.Comments, e.formatTime(review.CreatedAt)}
			if err := writeRow(f, ReviewSheet, reviewRow, cells); err != nil {
				return err
			}
			reviewRow++
		}
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (e *Exporter) thesisRow(thesis models.Thesis) ([]interface{}, error) {
	row := []interface{}{
		thesis.ID,
		thesis.Title,
		thesis.Author,
		string(thesis.Status),
		e.formatTime(thesis.CreatedAt),
		len(thesis.Reviews),
	}

	summary, ok, err := Summarize(thesis)
	if err != nil {
		return nil, err
	}
	if !ok {
		return row, nil
	}

	// The backend average wins when present.
	average := summary.Mean
	if thesis.AverageScore != nil {
		average = *thesis.AverageScore
	}
	return append(row, average, summary.Median, summary.StdDev, summary.Min, summary.Max), nil
}

func (e *Exporter) formatTime(ts models.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.In(e.location).Format(timeLayout)
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	for col, value := range cells {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
