package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func circlesQuiz() []Question {
	return []Question{
		{ID: "q1", Text: "Rumus keliling lingkaran adalah...", CorrectOptionID: "o3", Options: []Option{{ID: "o1"}, {ID: "o2"}, {ID: "o3"}, {ID: "o4"}}},
		{ID: "q2", Text: "Jari-jari 9 cm. Keliling lingkaran adalah...", CorrectOptionID: "o6", Options: []Option{{ID: "o5"}, {ID: "o6"}, {ID: "o7"}, {ID: "o8"}}},
	}
}

func TestScoreSubmission(t *testing.T) {
	tests := []struct {
		name    string
		answers map[string]string
		correct int
		score   float64
		passed  bool
		message string
	}{
		{name: "circles one right one wrong", answers: map[string]string{"q1": "o3", "q2": "o5"}, correct: 1, score: 50, passed: false, message: "Belajar Lagi Yuk!"},
		{name: "all correct", answers: map[string]string{"q1": "o3", "q2": "o6"}, correct: 2, score: 100, passed: true, message: "Luar Biasa!"},
		{name: "empty submission", answers: map[string]string{}, correct: 0, score: 0, passed: false, message: "Belajar Lagi Yuk!"},
		{name: "nil submission", answers: nil, correct: 0, score: 0, passed: false, message: "Belajar Lagi Yuk!"},
		{name: "unknown question ignored", answers: map[string]string{"q1": "o3", "zz": "o6"}, correct: 1, score: 50, passed: false, message: "Belajar Lagi Yuk!"},
		{name: "blank answer is unanswered", answers: map[string]string{"q1": "", "q2": "o6"}, correct: 1, score: 50, passed: false, message: "Belajar Lagi Yuk!"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ScoreSubmission(circlesQuiz(), tc.answers)
			assert.Equal(t, tc.correct, got.CorrectCount)
			assert.Equal(t, 2, got.TotalCount)
			assert.Equal(t, tc.score, got.ScorePercent)
			assert.Equal(t, tc.passed, got.Passed)
			assert.Equal(t, tc.message, got.Message)
			assert.Len(t, got.Breakdown, 2, "one breakdown entry per question")
		})
	}
}

func TestScoreSubmission_AllCorrectForAnySize(t *testing.T) {
	for k := 1; k <= 12; k++ {
		questions := make([]Question, 0, k)
		answers := map[string]string{}
		for i := 0; i < k; i++ {
			id := string(rune('a' + i))
			questions = append(questions, Question{ID: id, CorrectOptionID: id + "-ok"})
			answers[id] = id + "-ok"
		}
		got := ScoreSubmission(questions, answers)
		assert.Equal(t, k, got.CorrectCount, "k=%d", k)
		assert.Equal(t, 100.0, got.ScorePercent, "k=%d", k)
		assert.True(t, got.Passed, "k=%d", k)

		empty := ScoreSubmission(questions, map[string]string{})
		assert.Zero(t, empty.CorrectCount, "k=%d", k)
		assert.Zero(t, empty.ScorePercent, "k=%d", k)
		assert.False(t, empty.Passed, "k=%d", k)
	}
}

func TestScoreSubmission_NoQuestions(t *testing.T) {
	got := ScoreSubmission(nil, map[string]string{"q1": "o1"})
	assert.Zero(t, got.TotalCount)
	assert.Zero(t, got.ScorePercent)
	assert.False(t, got.Passed)
	assert.NotNil(t, got.Breakdown, "breakdown must encode as [] not null")
}

func TestScoreSubmission_Idempotent(t *testing.T) {
	answers := map[string]string{"q1": "o3", "q2": "o5"}
	first := ScoreSubmission(circlesQuiz(), answers)
	second := ScoreSubmission(circlesQuiz(), answers)
	assert.Equal(t, first, second)
}

func TestIsPassing_Boundary(t *testing.T) {
	tests := []struct {
		score float64
		want  bool
	}{
		{70, true},
		{69.999, false},
		{70.0001, true},
		{0, false},
		{100, true},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, IsPassing(tc.score), "IsPassing(%v)", tc.score)
	}
}

func TestScoreSubmission_SevenOfTenPasses(t *testing.T) {
	questions := make([]Question, 10)
	answers := map[string]string{}
	for i := range questions {
		id := string(rune('a' + i))
		questions[i] = Question{ID: id, CorrectOptionID: "ok"}
		if i < 7 {
			answers[id] = "ok"
		}
	}
	got := ScoreSubmission(questions, answers)
	require.Equal(t, 70.0, got.ScorePercent)
	assert.True(t, got.Passed)
	assert.Equal(t, "Bagus!", got.Message)
}

func TestFeedbackMessage(t *testing.T) {
	tests := map[float64]string{
		100: "Luar Biasa!",
		90:  "Luar Biasa!",
		85:  "Bagus Sekali!",
		70:  "Bagus!",
		65:  "Cukup Baik!",
		59:  "Belajar Lagi Yuk!",
	}
	for score, want := range tests {
		assert.Equal(t, want, FeedbackMessage(score), "FeedbackMessage(%v)", score)
	}
}
