// Package export writes stored transcripts to spreadsheet files for
// offline review.
package export

import (
	"fmt"
	"time"

	"github.com/tealeg/xlsx"

	"video-transcript/internal/app/model"
	"video-transcript/internal/app/timestamp"
)

// ToExcel writes records to an xlsx workbook at outputFilePath, one row
// per transcript, newest first in whatever order records arrive.
func ToExcel(records []model.TranscriptRecord, outputFilePath string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Transcripts")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range []string{"ID", "Video ID", "Title", "Source", "Diarized", "Duration", "Created", "Filename", "Transcript"} {
		headerRow.AddCell().Value = h
	}

	for _, rec := range records {
		row := sheet.AddRow()
		row.AddCell().Value = fmt.Sprint(rec.ID)
		row.AddCell().Value = rec.VideoID
		row.AddCell().Value = rec.Title
		row.AddCell().Value = rec.Source
		row.AddCell().Value = fmt.Sprint(rec.Diarized)
		row.AddCell().Value = timestamp.FormatSeconds(rec.Duration, false)
		row.AddCell().Value = rec.CreatedAt.Format(time.RFC3339)
		row.AddCell().Value = rec.Filename
		row.AddCell().Value = rec.Transcript
	}

	if err := file.Save(outputFilePath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
