package quiz

// PassThreshold is inclusive: a score of exactly 70 passes.
const PassThreshold = 70.0

type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type Question struct {
	ID              string   `json:"id"`
	Text            string   `json:"question"`
	Options         []Option `json:"options"`
	CorrectOptionID string   `json:"correctOptionId,omitempty"`
}

type QuestionScore struct {
	QuestionID      string `json:"question_id"`
	Selected        string `json:"selected,omitempty"`
	CorrectOptionID string `json:"correct_option_id"`
	Answered        bool   `json:"answered"`
	Correct         bool   `json:"correct"`
}

type Result struct {
	CorrectCount int             `json:"correct"`
	TotalCount   int             `json:"total"`
	ScorePercent float64         `json:"score_percent"`
	Passed       bool            `json:"passed"`
	Message      string          `json:"message"`
	Breakdown    []QuestionScore `json:"breakdown"`
}

// ScoreSubmission awards one point per question whose submitted option id
// equals its correct option id. Answers for question ids not in questions
// are ignored.
func ScoreSubmission(questions []Question, answers map[string]string) Result {
	res := Result{
		TotalCount: len(questions),
		Breakdown:  make([]QuestionScore, 0, len(questions)),
	}
	for _, q := range questions {
		selected, answered := answers[q.ID]
		if selected == "" {
			answered = false
		}
		correct := answered && selected == q.CorrectOptionID
		if correct {
			res.CorrectCount++
		}
		res.Breakdown = append(res.Breakdown, QuestionScore{
			QuestionID:      q.ID,
			Selected:        selected,
			CorrectOptionID: q.CorrectOptionID,
			Answered:        answered,
			Correct:         correct,
		})
	}
	res.ScorePercent = ScorePercent(res.CorrectCount, res.TotalCount)
	res.Passed = IsPassing(res.ScorePercent)
	res.Message = FeedbackMessage(res.ScorePercent)
	return res
}

// ScorePercent is 0 when total is 0. Multiplying before dividing keeps
// whole-number percentages exact (7 of 10 is 70, not 69.99...).
func ScorePercent(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct*100) / float64(total)
}

func IsPassing(scorePercent float64) bool {
	return scorePercent >= PassThreshold
}

func FeedbackMessage(scorePercent float64) string {
	switch {
	case scorePercent >= 90:
		return "Luar Biasa!"
	case scorePercent >= 80:
		return "Bagus Sekali!"
	case scorePercent >= 70:
		return "Bagus!"
	case scorePercent >= 60:
		return "Cukup Baik!"
	default:
		return "Belajar Lagi Yuk!"
	}
}
