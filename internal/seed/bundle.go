// Package seed provisions curriculum content (subjects, levels, topics,
// sub-topics, documents, videos, quizzes and events) from YAML files or
// Excel workbooks.
package seed

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidBundle = errors.New("invalid bundle")

type Bundle struct {
	Subjects []Subject `yaml:"mapel"`
	Levels   []Level   `yaml:"tingkat"`
	Topics   []Topic   `yaml:"materi"`
	Events   []Event   `yaml:"event"`
}

type Subject struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"nama_mapel"`
	ImageURL string `yaml:"image_url"`
}

type Level struct {
	ID   string `yaml:"id"`
	Name string `yaml:"nama_tingkat"`
}

type Topic struct {
	ID        string     `yaml:"id"`
	Title     string     `yaml:"judul"`
	SubjectID string     `yaml:"mapel_id"`
	LevelID   string     `yaml:"tingkat_id"`
	SubTopics []SubTopic `yaml:"sub_materi"`
	Quiz      *Quiz      `yaml:"quiz"`
}

type SubTopic struct {
	ID       string   `yaml:"id"`
	Title    string   `yaml:"nama_submateri"`
	Document string   `yaml:"dokumen"`
	Videos   []string `yaml:"video"`
}

type Quiz struct {
	ID        string     `yaml:"id"`
	Questions []Question `yaml:"soal"`
}

type Question struct {
	ID              string   `yaml:"id"`
	Text            string   `yaml:"pertanyaan"`
	Options         []Option `yaml:"opsi"`
	CorrectOptionID string   `yaml:"benar"`
}

type Option struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

type Event struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name_event"`
	Image string `yaml:"image_event"`
}

// QuizID falls back to a topic-derived id when the bundle leaves it empty.
func (t Topic) QuizID() string {
	if t.Quiz == nil {
		return ""
	}
	if id := strings.TrimSpace(t.Quiz.ID); id != "" {
		return id
	}
	return "quiz-" + t.ID
}

// Validate checks referential integrity inside the bundle. Every problem is
// reported, not only the first one.
func (b *Bundle) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	subjects := map[string]bool{}
	for i, s := range b.Subjects {
		if strings.TrimSpace(s.ID) == "" || strings.TrimSpace(s.Name) == "" {
			fail("mapel[%d]: id dan nama_mapel wajib diisi", i)
			continue
		}
		if subjects[s.ID] {
			fail("mapel %s: id duplikat", s.ID)
		}
		subjects[s.ID] = true
	}

	levels := map[string]bool{}
	for i, l := range b.Levels {
		if strings.TrimSpace(l.ID) == "" || strings.TrimSpace(l.Name) == "" {
			fail("tingkat[%d]: id dan nama_tingkat wajib diisi", i)
			continue
		}
		if levels[l.ID] {
			fail("tingkat %s: id duplikat", l.ID)
		}
		levels[l.ID] = true
	}

	topics := map[string]bool{}
	subTopics := map[string]bool{}
	questions := map[string]bool{}
	options := map[string]bool{}
	for i, t := range b.Topics {
		if strings.TrimSpace(t.ID) == "" || strings.TrimSpace(t.Title) == "" {
			fail("materi[%d]: id dan judul wajib diisi", i)
			continue
		}
		if topics[t.ID] {
			fail("materi %s: id duplikat", t.ID)
		}
		topics[t.ID] = true
		if !subjects[t.SubjectID] {
			fail("materi %s: mapel_id %q tidak dikenal", t.ID, t.SubjectID)
		}
		if !levels[t.LevelID] {
			fail("materi %s: tingkat_id %q tidak dikenal", t.ID, t.LevelID)
		}

		for j, st := range t.SubTopics {
			if strings.TrimSpace(st.ID) == "" || strings.TrimSpace(st.Title) == "" {
				fail("materi %s sub_materi[%d]: id dan nama_submateri wajib diisi", t.ID, j)
				continue
			}
			if subTopics[st.ID] {
				fail("sub_materi %s: id duplikat", st.ID)
			}
			subTopics[st.ID] = true
		}

		if t.Quiz == nil {
			continue
		}
		for j, q := range t.Quiz.Questions {
			if strings.TrimSpace(q.ID) == "" || strings.TrimSpace(q.Text) == "" {
				fail("materi %s soal[%d]: id dan pertanyaan wajib diisi", t.ID, j)
				continue
			}
			if questions[q.ID] {
				fail("soal %s: id duplikat", q.ID)
			}
			questions[q.ID] = true
			if len(q.Options) < 2 {
				fail("soal %s: minimal 2 opsi", q.ID)
				continue
			}
			// quiz_opsi.id is a table-wide key; a reused id would move the
			// option to whichever question is written last.
			found := false
			for _, o := range q.Options {
				if strings.TrimSpace(o.ID) == "" {
					fail("soal %s: id opsi wajib diisi", q.ID)
					continue
				}
				if options[o.ID] {
					fail("opsi %s: id duplikat", o.ID)
				}
				options[o.ID] = true
				if o.ID == q.CorrectOptionID {
					found = true
				}
			}
			if !found {
				fail("soal %s: jawaban benar %q bukan salah satu opsi", q.ID, q.CorrectOptionID)
			}
		}
	}

	for i, e := range b.Events {
		if strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.Name) == "" {
			fail("event[%d]: id dan name_event wajib diisi", i)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidBundle, errors.Join(errs...))
}
