package quiz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachOptions_DropsOrphans(t *testing.T) {
	questions := []Question{{ID: "q1"}, {ID: "q2"}}
	options := []optionRow{
		{QuestionID: "q1", Option: Option{ID: "o1", Label: "K=2πr"}},
		{QuestionID: "qX", Option: Option{ID: "o9", Label: "orphan"}},
		{QuestionID: "q1", Option: Option{ID: "o2", Label: "K=πd"}},
	}

	got := attachOptions(questions, options)
	require.Len(t, got, 2)
	assert.Equal(t, []Option{{ID: "o1", Label: "K=2πr"}, {ID: "o2", Label: "K=πd"}}, got[0].Options)
	assert.NotNil(t, got[1].Options, "q2 must have an empty, non-nil option list")
	assert.Empty(t, got[1].Options)
}

func TestGetQuiz_RequiresTopic(t *testing.T) {
	svc := NewService(nil, nil, Options{})
	for _, id := range []string{"", "   "} {
		_, err := svc.GetQuiz(context.Background(), id)
		assert.ErrorIs(t, err, ErrInvalidInput, "GetQuiz(%q)", id)
		_, err = svc.Submit(context.Background(), id, nil)
		assert.ErrorIs(t, err, ErrInvalidInput, "Submit(%q)", id)
	}
}
