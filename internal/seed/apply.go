package seed

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
)

type Stats struct {
	Subjects  int `json:"mapel"`
	Levels    int `json:"tingkat"`
	Topics    int `json:"materi"`
	SubTopics int `json:"sub_materi"`
	Questions int `json:"soal"`
	Events    int `json:"event"`
}

// Apply upserts the bundle in one transaction. Rows are keyed on their ids
// so re-running the same bundle only refreshes content.
func Apply(ctx context.Context, db *sql.DB, b *Bundle) (*Stats, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	st := &Stats{}
	for _, s := range b.Subjects {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO mata_pelajaran (id, nama_mapel, image_url) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET nama_mapel = EXCLUDED.nama_mapel, image_url = EXCLUDED.image_url`,
			s.ID, s.Name, s.ImageURL); err != nil {
			return nil, fmt.Errorf("upsert mapel %s: %w", s.ID, err)
		}
		st.Subjects++
	}

	for _, l := range b.Levels {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tingkat_pendidikan (id, nama_tingkat) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET nama_tingkat = EXCLUDED.nama_tingkat`,
			l.ID, l.Name); err != nil {
			return nil, fmt.Errorf("upsert tingkat %s: %w", l.ID, err)
		}
		st.Levels++
	}

	for _, t := range b.Topics {
		if err := applyTopic(ctx, tx, t, st); err != nil {
			return nil, err
		}
	}

	for _, e := range b.Events {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO event (id, name_event, image_event) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name_event = EXCLUDED.name_event, image_event = EXCLUDED.image_event`,
			e.ID, e.Name, e.Image); err != nil {
			return nil, fmt.Errorf("upsert event %s: %w", e.ID, err)
		}
		st.Events++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit seed: %w", err)
	}
	return st, nil
}

func applyTopic(ctx context.Context, tx *sql.Tx, t Topic, st *Stats) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO materi (id, judul, mata_pelajaran_id, tingkat_pendidikan_id) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET judul = EXCLUDED.judul,
			mata_pelajaran_id = EXCLUDED.mata_pelajaran_id,
			tingkat_pendidikan_id = EXCLUDED.tingkat_pendidikan_id`,
		t.ID, t.Title, t.SubjectID, t.LevelID); err != nil {
		return fmt.Errorf("upsert materi %s: %w", t.ID, err)
	}
	st.Topics++

	for _, sub := range t.SubTopics {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO nama_sub_materi (id, nama_submateri, materi_id) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET nama_submateri = EXCLUDED.nama_submateri, materi_id = EXCLUDED.materi_id`,
			sub.ID, sub.Title, t.ID); err != nil {
			return fmt.Errorf("upsert sub_materi %s: %w", sub.ID, err)
		}
		if sub.Document != "" {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO isi_sub_materi (id, sub_materi_id, dokumen) VALUES ($1, $2, $3)
				ON CONFLICT (id) DO UPDATE SET dokumen = EXCLUDED.dokumen`,
				sub.ID+"-doc", sub.ID, sub.Document); err != nil {
				return fmt.Errorf("upsert dokumen %s: %w", sub.ID, err)
			}
		}
		for i, v := range sub.Videos {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO video_sub_materi (id, sub_materi_id, video_submateri) VALUES ($1, $2, $3)
				ON CONFLICT (id) DO UPDATE SET video_submateri = EXCLUDED.video_submateri`,
				sub.ID+"-v"+strconv.Itoa(i+1), sub.ID, v); err != nil {
				return fmt.Errorf("upsert video %s: %w", sub.ID, err)
			}
		}
		st.SubTopics++
	}

	if t.Quiz == nil {
		return nil
	}
	quizID := t.QuizID()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO quiz (id, materi_id) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET materi_id = EXCLUDED.materi_id`,
		quizID, t.ID); err != nil {
		return fmt.Errorf("upsert quiz %s: %w", quizID, err)
	}
	for qi, q := range t.Quiz.Questions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO quiz_soal (id, quiz_id, pertanyaan, correct_option_id, urutan) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET quiz_id = EXCLUDED.quiz_id, pertanyaan = EXCLUDED.pertanyaan,
				correct_option_id = EXCLUDED.correct_option_id, urutan = EXCLUDED.urutan`,
			q.ID, quizID, q.Text, q.CorrectOptionID, qi+1); err != nil {
			return fmt.Errorf("upsert soal %s: %w", q.ID, err)
		}
		for oi, o := range q.Options {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO quiz_opsi (id, soal_id, label, urutan) VALUES ($1, $2, $3, $4)
				ON CONFLICT (id) DO UPDATE SET soal_id = EXCLUDED.soal_id, label = EXCLUDED.label, urutan = EXCLUDED.urutan`,
				o.ID, q.ID, o.Label, oi+1); err != nil {
				return fmt.Errorf("upsert opsi %s: %w", o.ID, err)
			}
		}
		st.Questions++
	}
	return nil
}
