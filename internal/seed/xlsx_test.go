package seed

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, sheets map[string][][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	first := f.GetSheetName(0)
	for name, rows := range sheets {
		if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("new sheet %s: %v", name, err)
		}
		for r, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}
	require.NoError(t, f.DeleteSheet(first))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func curriculumSheets() map[string][][]any {
	return map[string][][]any{
		SheetSubjects: {{"id", "nama_mapel", "image_url"}, {"mtk", "Matematika", ""}},
		SheetLevels:   {{"id", "nama_tingkat"}, {"sd", "SD"}},
		SheetTopics:   {{"id", "judul", "mapel_id", "tingkat_id"}, {"bangun-datar", "Bangun Datar", "mtk", "sd"}},
		SheetSubTopics: {
			{"id", "materi_id", "nama_submateri", "dokumen", "video"},
			{"lingkaran", "bangun-datar", "Lingkaran", "<p>r</p>", "https://v/1 | https://v/2"},
			{},
			{"persegi", "bangun-datar", "Persegi", "", ""},
		},
		SheetQuestions: {
			{"id", "materi_id", "pertanyaan", "a", "b", "c", "d", "benar"},
			{"q1", "bangun-datar", "Bangun tanpa sudut?", "Persegi", "Lingkaran", "Segitiga", "", "B"},
			{"q2", "bangun-datar", "Sisi persegi?", "3", "4", "", "", "b"},
		},
	}
}

func TestParseWorkbook(t *testing.T) {
	b, err := ParseWorkbook(buildWorkbook(t, curriculumSheets()))
	require.NoError(t, err)

	require.Len(t, b.Topics, 1)
	topic := b.Topics[0]
	require.Len(t, topic.SubTopics, 2, "blank rows are skipped")
	assert.Equal(t, []string{"https://v/1", "https://v/2"}, topic.SubTopics[0].Videos)
	assert.Empty(t, topic.SubTopics[1].Videos)

	require.NotNil(t, topic.Quiz)
	require.Len(t, topic.Quiz.Questions, 2)
	q1 := topic.Quiz.Questions[0]
	assert.Len(t, q1.Options, 3, "empty option cells are dropped")
	assert.Equal(t, "q1-b", q1.CorrectOptionID)
	assert.Equal(t, "quiz-bangun-datar", topic.QuizID())
}

func TestParseWorkbookUnknownTopic(t *testing.T) {
	sheets := curriculumSheets()
	sheets[SheetQuestions] = append(sheets[SheetQuestions], []any{"q3", "tidak-ada", "?", "x", "y", "", "", "a"})
	_, err := ParseWorkbook(buildWorkbook(t, sheets))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidBundle))
	assert.Contains(t, err.Error(), "soal baris 4")
}

func TestParseWorkbookCorrectLetterWithoutOption(t *testing.T) {
	sheets := curriculumSheets()
	sheets[SheetQuestions] = [][]any{
		{"id", "materi_id", "pertanyaan", "a", "b", "c", "d", "benar"},
		{"q1", "bangun-datar", "?", "x", "y", "", "", "d"},
	}
	_, err := ParseWorkbook(buildWorkbook(t, sheets))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "q1-d")
}

func TestParseWorkbookMissingRequiredSheet(t *testing.T) {
	sheets := curriculumSheets()
	delete(sheets, SheetLevels)
	_, err := ParseWorkbook(buildWorkbook(t, sheets))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidBundle))
}

func TestParseWorkbookMissingColumn(t *testing.T) {
	sheets := curriculumSheets()
	sheets[SheetTopics] = [][]any{{"id", "judul", "mapel_id"}, {"bangun-datar", "Bangun Datar", "mtk"}}
	_, err := ParseWorkbook(buildWorkbook(t, sheets))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tingkat_id")
}
