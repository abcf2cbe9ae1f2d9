package seed

import (
	"context"
	"testing"
	"time"

	"ruangbelajar/internal/curriculum"
	"ruangbelajar/internal/db/dbtest"
	"ruangbelajar/internal/quiz"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func suffixed(b *Bundle, sfx string) *Bundle {
	for i := range b.Subjects {
		b.Subjects[i].ID += "-" + sfx
	}
	for i := range b.Levels {
		b.Levels[i].ID += "-" + sfx
	}
	for i := range b.Topics {
		t := &b.Topics[i]
		t.ID += "-" + sfx
		t.SubjectID += "-" + sfx
		t.LevelID += "-" + sfx
		for j := range t.SubTopics {
			t.SubTopics[j].ID += "-" + sfx
		}
		if t.Quiz == nil {
			continue
		}
		for j := range t.Quiz.Questions {
			q := &t.Quiz.Questions[j]
			q.ID += "-" + sfx
			q.CorrectOptionID += "-" + sfx
			for k := range q.Options {
				q.Options[k].ID += "-" + sfx
			}
		}
	}
	return b
}

func TestApplyIntegration(t *testing.T) {
	db := dbtest.Open(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	b := suffixed(validBundle(), dbtest.Suffix())
	topicID := b.Topics[0].ID

	st, err := Apply(ctx, db, b)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Topics)
	assert.Equal(t, 1, st.Questions)

	b.Topics[0].Title = "Bangun Datar (revisi)"
	_, err = Apply(ctx, db, b)
	require.NoError(t, err, "re-applying the same ids must upsert")

	topics, err := curriculum.NewService(db, nil).ListTopics(ctx, b.Topics[0].SubjectID, b.Topics[0].LevelID)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "Bangun Datar (revisi)", topics[0].Title)

	subs, err := curriculum.NewService(db, nil).ListSubTopics(ctx, topicID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.Len(t, subs[0].Videos, 1)

	questions, err := quiz.NewService(db, nil, quiz.Options{}).GetQuiz(ctx, topicID)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Len(t, questions[0].Options, 2)
	assert.Equal(t, b.Topics[0].Quiz.Questions[0].CorrectOptionID, questions[0].CorrectOptionID)
}
