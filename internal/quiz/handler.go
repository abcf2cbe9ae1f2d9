package quiz

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"ruangbelajar/internal/app/apiresp"
	"ruangbelajar/internal/app/schema"
)

type Handler struct {
	svc        quizService
	production bool
}

type quizService interface {
	GetQuiz(ctx context.Context, topicID string) ([]Question, error)
	Submit(ctx context.Context, topicID string, answers map[string]string) (*Result, error)
}

var submitSchema = schema.MustCompile(schema.Schema{
	Name: "quiz_submit",
	Source: `{
		"type": "object",
		"required": ["materi_id", "answers"],
		"properties": {
			"materi_id": {"type": "string", "minLength": 1},
			"answers": {
				"type": "object",
				"additionalProperties": {"type": "string"}
			}
		}
	}`,
})

type submitRequest struct {
	TopicID string            `json:"materi_id"`
	Answers map[string]string `json:"answers"`
}

func NewHandler(svc quizService, production bool) *Handler {
	return &Handler{svc: svc, production: production}
}

// GetQuiz serves GET /quiz?materiId=...
func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	topicID := strings.TrimSpace(r.URL.Query().Get("materiId"))
	if topicID == "" {
		apiresp.WriteError(w, r, http.StatusBadRequest, "materiId wajib diisi")
		return
	}
	questions, err := h.svc.GetQuiz(r.Context(), topicID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteJSON(w, http.StatusOK, questions)
}

// Submit serves POST /quiz/submit.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := schema.Decode(r.Body, submitSchema, &req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.Submit(r.Context(), req.TopicID, req.Answers)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
	default:
		apiresp.WriteUpstream(w, r, err, h.production)
	}
}
