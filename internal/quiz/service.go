package quiz

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ruangbelajar/internal/platform/logger"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	db            *sql.DB
	log           *logger.Logger
	hideAnswerKey bool
}

type Options struct {
	// HideAnswerKey strips correctOptionId from GetQuiz responses.
	// Submit still scores against the stored key.
	HideAnswerKey bool
}

func NewService(db *sql.DB, log *logger.Logger, opts Options) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{db: db, log: log, hideAnswerKey: opts.HideAnswerKey}
}

// GetQuiz returns the questions of the topic's quiz with their options.
// A topic without a quiz yields an empty slice.
func (s *Service) GetQuiz(ctx context.Context, topicID string) ([]Question, error) {
	questions, err := s.loadQuiz(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if s.hideAnswerKey {
		for i := range questions {
			questions[i].CorrectOptionID = ""
		}
	}
	return questions, nil
}

// Submit reloads the topic's quiz and scores answers against the stored key.
func (s *Service) Submit(ctx context.Context, topicID string, answers map[string]string) (*Result, error) {
	questions, err := s.loadQuiz(ctx, topicID)
	if err != nil {
		return nil, err
	}
	res := ScoreSubmission(questions, answers)
	return &res, nil
}

func (s *Service) loadQuiz(ctx context.Context, topicID string) ([]Question, error) {
	topicID = strings.TrimSpace(topicID)
	if topicID == "" {
		return nil, ErrInvalidInput
	}

	quizID, err := s.resolveQuizID(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if quizID == "" {
		return []Question{}, nil
	}

	questions, err := s.loadQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return questions, nil
	}

	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	options, err := s.loadOptions(ctx, ids)
	if err != nil {
		return nil, err
	}
	return attachOptions(questions, options), nil
}

// resolveQuizID picks the oldest quiz of the topic. More than one quiz per
// topic is a content anomaly and is logged.
func (s *Service) resolveQuizID(ctx context.Context, topicID string) (string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id
		FROM quiz
		WHERE materi_id = $1
		ORDER BY created_at ASC, id ASC
	`, topicID)
	if err != nil {
		return "", fmt.Errorf("query quiz: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan quiz: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate quiz: %w", err)
	}
	if len(ids) == 0 {
		return "", nil
	}
	if len(ids) > 1 {
		s.log.Warn("multiple quizzes configured for topic", "topic_id", topicID, "count", len(ids), "selected_quiz_id", ids[0])
	}
	return ids[0], nil
}

func (s *Service) loadQuestions(ctx context.Context, quizID string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, pertanyaan, correct_option_id
		FROM quiz_soal
		WHERE quiz_id = $1
		ORDER BY urutan ASC, id ASC
	`, quizID)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	out := make([]Question, 0, 16)
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.Text, &q.CorrectOptionID); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Options = []Option{}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return out, nil
}

type optionRow struct {
	QuestionID string
	Option     Option
}

func (s *Service) loadOptions(ctx context.Context, questionIDs []string) ([]optionRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT soal_id, id, label
		FROM quiz_opsi
		WHERE soal_id = ANY($1)
		ORDER BY soal_id ASC, urutan ASC, id ASC
	`, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("query options: %w", err)
	}
	defer rows.Close()

	out := make([]optionRow, 0, len(questionIDs)*4)
	for rows.Next() {
		var r optionRow
		if err := rows.Scan(&r.QuestionID, &r.Option.ID, &r.Option.Label); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate options: %w", err)
	}
	return out, nil
}

// attachOptions groups options under their question. Options pointing at a
// question not in the list are dropped.
func attachOptions(questions []Question, options []optionRow) []Question {
	idx := make(map[string]int, len(questions))
	for i := range questions {
		idx[questions[i].ID] = i
		if questions[i].Options == nil {
			questions[i].Options = []Option{}
		}
	}
	for _, o := range options {
		i, ok := idx[o.QuestionID]
		if !ok {
			continue
		}
		questions[i].Options = append(questions[i].Options, o.Option)
	}
	return questions
}
