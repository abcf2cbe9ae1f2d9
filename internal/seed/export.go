package seed

import (
	"bytes"
	"context"
	"fmt"

	"ruangbelajar/internal/library"

	"github.com/xuri/excelize/v2"
)

type libraryLister interface {
	List(ctx context.Context, userID string) ([]library.Entry, error)
}

var libraryHeaders = []string{"materi_id", "judul", "mapel_id", "nama_mapel", "level_id", "nama_tingkat", "disimpan"}

// ExportLibrary writes a learner's saved topics, newest first, to a single
// sheet workbook.
func ExportLibrary(ctx context.Context, lib libraryLister, userID string) ([]byte, error) {
	entries, err := lib.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheetName := f.GetSheetName(0)
	for i, h := range libraryHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}
	for i, e := range entries {
		values := []any{
			e.TopicID,
			e.Topic.Title,
			e.SubjectID,
			e.Subject.Name,
			e.LevelID,
			e.Level.Name,
			e.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}
	_ = f.SetColWidth(sheetName, "A", "G", 22)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}
