package seed

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBundle() *Bundle {
	return &Bundle{
		Subjects: []Subject{{ID: "mtk", Name: "Matematika"}},
		Levels:   []Level{{ID: "sd", Name: "SD"}},
		Topics: []Topic{{
			ID: "bangun-datar", Title: "Bangun Datar", SubjectID: "mtk", LevelID: "sd",
			SubTopics: []SubTopic{{ID: "lingkaran", Title: "Lingkaran", Document: "<p>r</p>", Videos: []string{"https://v/1"}}},
			Quiz: &Quiz{Questions: []Question{{
				ID: "q1", Text: "Berapa sisi persegi?",
				Options:         []Option{{ID: "q1-a", Label: "3"}, {ID: "q1-b", Label: "4"}},
				CorrectOptionID: "q1-b",
			}}},
		}},
	}
}

func TestValidateAcceptsConsistentBundle(t *testing.T) {
	require.NoError(t, validBundle().Validate())
}

func TestValidateReportsEveryProblem(t *testing.T) {
	b := validBundle()
	b.Topics[0].SubjectID = "ipa"
	b.Topics[0].Quiz.Questions[0].CorrectOptionID = "q1-z"
	b.Topics = append(b.Topics, Topic{ID: "t2", Title: "T2", SubjectID: "mtk", LevelID: "smp"})

	err := b.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidBundle))
	msg := err.Error()
	assert.Contains(t, msg, `mapel_id "ipa"`)
	assert.Contains(t, msg, `tingkat_id "smp"`)
	assert.Contains(t, msg, "q1-z")
}

func TestValidateRequiresTwoOptions(t *testing.T) {
	b := validBundle()
	b.Topics[0].Quiz.Questions[0].Options = b.Topics[0].Quiz.Questions[0].Options[1:]
	err := b.Validate()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "minimal 2 opsi"))
}

func TestValidateRejectsDuplicateIDs(t *testing.T) {
	b := validBundle()
	b.Subjects = append(b.Subjects, Subject{ID: "mtk", Name: "Matematika Lagi"})
	err := b.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapel mtk: id duplikat")
}

func TestValidateRejectsOptionIDsReusedAcrossQuestions(t *testing.T) {
	b := validBundle()
	quiz := b.Topics[0].Quiz
	quiz.Questions[0].Options = []Option{{ID: "a", Label: "3"}, {ID: "b", Label: "4"}}
	quiz.Questions[0].CorrectOptionID = "b"
	quiz.Questions = append(quiz.Questions, Question{
		ID: "q2", Text: "Berapa sisi segitiga?",
		Options:         []Option{{ID: "a", Label: "3"}, {ID: "b", Label: "4"}},
		CorrectOptionID: "a",
	})

	err := b.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidBundle))
	assert.Contains(t, err.Error(), "opsi a: id duplikat")
	assert.Contains(t, err.Error(), "opsi b: id duplikat")
}

func TestValidateRejectsDuplicateOptionWithinQuestion(t *testing.T) {
	b := validBundle()
	q := &b.Topics[0].Quiz.Questions[0]
	q.Options = append(q.Options, Option{ID: "q1-b", Label: "lagi"})
	err := b.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opsi q1-b: id duplikat")
}

func TestQuizIDFallsBackToTopic(t *testing.T) {
	b := validBundle()
	assert.Equal(t, "quiz-bangun-datar", b.Topics[0].QuizID())
	b.Topics[0].Quiz.ID = "kuis-1"
	assert.Equal(t, "kuis-1", b.Topics[0].QuizID())
	assert.Equal(t, "", Topic{ID: "x"}.QuizID())
}
