package quiz

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"ruangbelajar/internal/db/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTopic(ctx context.Context, t *testing.T, db *sql.DB, sfx string) string {
	t.Helper()
	stmts := []struct {
		q    string
		args []any
	}{
		{`INSERT INTO mata_pelajaran (id, nama_mapel) VALUES ($1, 'Matematika')`, []any{"mp-" + sfx}},
		{`INSERT INTO tingkat_pendidikan (id, nama_tingkat) VALUES ($1, 'SMP')`, []any{"tp-" + sfx}},
		{`INSERT INTO materi (id, judul, mata_pelajaran_id, tingkat_pendidikan_id) VALUES ($1, 'Lingkaran', $2, $3)`, []any{"m-" + sfx, "mp-" + sfx, "tp-" + sfx}},
	}
	for _, s := range stmts {
		_, err := db.ExecContext(ctx, s.q, s.args...)
		require.NoError(t, err)
	}
	return "m-" + sfx
}

func TestGetQuizIntegration(t *testing.T) {
	db := dbtest.Open(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	sfx := dbtest.Suffix()
	topicID := seedTopic(ctx, t, db, sfx)
	svc := NewService(db, nil, Options{})

	got, err := svc.GetQuiz(ctx, topicID)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got, "topic without quiz returns []")

	exec := func(q string, args ...any) {
		_, err := db.ExecContext(ctx, q, args...)
		require.NoError(t, err)
	}
	exec(`INSERT INTO quiz (id, materi_id, created_at) VALUES ($1, $2, now() - interval '1 hour')`, "qz-a-"+sfx, topicID)
	exec(`INSERT INTO quiz (id, materi_id, created_at) VALUES ($1, $2, now())`, "qz-b-"+sfx, topicID)
	exec(`INSERT INTO quiz_soal (id, quiz_id, pertanyaan, correct_option_id, urutan) VALUES ($1, $2, 'Rumus keliling?', $3, 1)`, "s1-"+sfx, "qz-a-"+sfx, "o3-"+sfx)
	exec(`INSERT INTO quiz_soal (id, quiz_id, pertanyaan, correct_option_id, urutan) VALUES ($1, $2, 'r=9, K=?', $3, 2)`, "s2-"+sfx, "qz-a-"+sfx, "o6-"+sfx)
	exec(`INSERT INTO quiz_soal (id, quiz_id, pertanyaan, correct_option_id, urutan) VALUES ($1, $2, 'other quiz', 'x', 1)`, "s9-"+sfx, "qz-b-"+sfx)
	for i, o := range []struct{ id, soal, label string }{
		{"o1", "s1", "K=2×πr"}, {"o3", "s1", "K=2πr"},
		{"o5", "s2", "50,25"}, {"o6", "s2", "56,52"},
		{"o9", "s9", "not in selected quiz"},
	} {
		exec(`INSERT INTO quiz_opsi (id, soal_id, label, urutan) VALUES ($1, $2, $3, $4)`, o.id+"-"+sfx, o.soal+"-"+sfx, o.label, i)
	}

	got, err = svc.GetQuiz(ctx, topicID)
	require.NoError(t, err)
	require.Len(t, got, 2, "oldest quiz is selected")
	assert.Equal(t, "s1-"+sfx, got[0].ID)
	assert.Equal(t, "o3-"+sfx, got[0].CorrectOptionID)
	require.Len(t, got[0].Options, 2)
	require.Len(t, got[1].Options, 2)

	res, err := svc.Submit(ctx, topicID, map[string]string{"s1-" + sfx: "o3-" + sfx, "s2-" + sfx: "o5-" + sfx})
	require.NoError(t, err)
	assert.Equal(t, 1, res.CorrectCount)
	assert.Equal(t, 2, res.TotalCount)
	assert.Equal(t, 50.0, res.ScorePercent)
	assert.False(t, res.Passed)

	hidden := NewService(db, nil, Options{HideAnswerKey: true})
	got, err = hidden.GetQuiz(ctx, topicID)
	require.NoError(t, err)
	for _, q := range got {
		assert.Empty(t, q.CorrectOptionID)
	}
	res, err = hidden.Submit(ctx, topicID, map[string]string{"s1-" + sfx: "o3-" + sfx, "s2-" + sfx: "o6-" + sfx})
	require.NoError(t, err)
	assert.True(t, res.Passed)
}
