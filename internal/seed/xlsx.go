package seed

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	SheetSubjects  = "mapel"
	SheetLevels    = "tingkat"
	SheetTopics    = "materi"
	SheetSubTopics = "sub_materi"
	SheetQuestions = "soal"
	SheetEvents    = "event"
)

var optionLetters = []string{"a", "b", "c", "d"}

// sheet is a header-indexed view over the rows of one worksheet.
type sheet struct {
	name   string
	header map[string]int
	rows   [][]string
}

func (s *sheet) get(row []string, col string) string {
	idx, ok := s.header[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func readSheet(f *excelize.File, name string, required ...string) (*sheet, error) {
	idx, err := f.GetSheetIndex(name)
	if err != nil || idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", name, err)
	}
	s := &sheet{name: name, header: map[string]int{}}
	if len(rows) == 0 {
		return s, nil
	}
	for i, h := range rows[0] {
		s.header[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range required {
		if _, ok := s.header[col]; !ok {
			return nil, fmt.Errorf("%w: sheet %s tidak memiliki kolom %s", ErrInvalidBundle, name, col)
		}
	}
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		s.rows = append(s.rows, row)
	}
	return s, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ParseWorkbook reads a curriculum workbook. Sheets mapel, tingkat and
// materi are required; sub_materi, soal and event are optional. In soal each
// row is one question with option columns a..d and the correct letter in
// "benar".
func ParseWorkbook(r io.Reader) (*Bundle, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open excel: %w", err)
	}
	defer func() { _ = f.Close() }()

	subjects, err := readSheet(f, SheetSubjects, "id", "nama_mapel")
	if err != nil {
		return nil, err
	}
	levels, err := readSheet(f, SheetLevels, "id", "nama_tingkat")
	if err != nil {
		return nil, err
	}
	topics, err := readSheet(f, SheetTopics, "id", "judul", "mapel_id", "tingkat_id")
	if err != nil {
		return nil, err
	}
	if subjects == nil || levels == nil || topics == nil {
		return nil, fmt.Errorf("%w: sheet %s, %s dan %s wajib ada", ErrInvalidBundle, SheetSubjects, SheetLevels, SheetTopics)
	}
	subTopics, err := readSheet(f, SheetSubTopics, "id", "materi_id", "nama_submateri")
	if err != nil {
		return nil, err
	}
	questions, err := readSheet(f, SheetQuestions, "id", "materi_id", "pertanyaan", "benar")
	if err != nil {
		return nil, err
	}
	events, err := readSheet(f, SheetEvents, "id", "name_event")
	if err != nil {
		return nil, err
	}

	b := &Bundle{}
	for _, row := range subjects.rows {
		b.Subjects = append(b.Subjects, Subject{
			ID:       subjects.get(row, "id"),
			Name:     subjects.get(row, "nama_mapel"),
			ImageURL: subjects.get(row, "image_url"),
		})
	}
	for _, row := range levels.rows {
		b.Levels = append(b.Levels, Level{
			ID:   levels.get(row, "id"),
			Name: levels.get(row, "nama_tingkat"),
		})
	}

	topicIdx := map[string]int{}
	for _, row := range topics.rows {
		t := Topic{
			ID:        topics.get(row, "id"),
			Title:     topics.get(row, "judul"),
			SubjectID: topics.get(row, "mapel_id"),
			LevelID:   topics.get(row, "tingkat_id"),
		}
		topicIdx[t.ID] = len(b.Topics)
		b.Topics = append(b.Topics, t)
	}

	var errs []error
	if subTopics != nil {
		for i, row := range subTopics.rows {
			topicID := subTopics.get(row, "materi_id")
			ti, ok := topicIdx[topicID]
			if !ok {
				errs = append(errs, fmt.Errorf("%s baris %d: materi_id %q tidak dikenal", SheetSubTopics, i+2, topicID))
				continue
			}
			st := SubTopic{
				ID:       subTopics.get(row, "id"),
				Title:    subTopics.get(row, "nama_submateri"),
				Document: subTopics.get(row, "dokumen"),
			}
			for _, v := range strings.Split(subTopics.get(row, "video"), "|") {
				if v = strings.TrimSpace(v); v != "" {
					st.Videos = append(st.Videos, v)
				}
			}
			b.Topics[ti].SubTopics = append(b.Topics[ti].SubTopics, st)
		}
	}

	if questions != nil {
		for i, row := range questions.rows {
			topicID := questions.get(row, "materi_id")
			ti, ok := topicIdx[topicID]
			if !ok {
				errs = append(errs, fmt.Errorf("%s baris %d: materi_id %q tidak dikenal", SheetQuestions, i+2, topicID))
				continue
			}
			q := Question{
				ID:   questions.get(row, "id"),
				Text: questions.get(row, "pertanyaan"),
			}
			for _, letter := range optionLetters {
				label := questions.get(row, letter)
				if label == "" {
					continue
				}
				q.Options = append(q.Options, Option{ID: q.ID + "-" + letter, Label: label})
			}
			if letter := strings.ToLower(questions.get(row, "benar")); letter != "" {
				q.CorrectOptionID = q.ID + "-" + letter
			}
			if b.Topics[ti].Quiz == nil {
				b.Topics[ti].Quiz = &Quiz{}
			}
			b.Topics[ti].Quiz.Questions = append(b.Topics[ti].Quiz.Questions, q)
		}
	}

	if events != nil {
		for _, row := range events.rows {
			b.Events = append(b.Events, Event{
				ID:    events.get(row, "id"),
				Name:  events.get(row, "name_event"),
				Image: events.get(row, "image_event"),
			})
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBundle, errors.Join(errs...))
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}
