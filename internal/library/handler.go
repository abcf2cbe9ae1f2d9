package library

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"ruangbelajar/internal/app/apiresp"
	"ruangbelajar/internal/app/schema"
)

type Handler struct {
	svc        libraryService
	production bool
}

type libraryService interface {
	Save(ctx context.Context, in SaveInput) (*SaveResult, error)
	List(ctx context.Context, userID string) ([]Entry, error)
}

var saveSchema = schema.MustCompile(schema.Schema{
	Name: "library_save",
	Source: `{
		"type": "object",
		"required": ["user_id", "mapel_id", "level_id", "materi_id"],
		"properties": {
			"user_id": {"type": "string", "minLength": 1},
			"mapel_id": {"type": "string", "minLength": 1},
			"level_id": {"type": "string", "minLength": 1},
			"materi_id": {"type": "string", "minLength": 1}
		}
	}`,
})

type saveRequest struct {
	UserID    string `json:"user_id"`
	SubjectID string `json:"mapel_id"`
	LevelID   string `json:"level_id"`
	TopicID   string `json:"materi_id"`
}

func NewHandler(svc libraryService, production bool) *Handler {
	return &Handler{svc: svc, production: production}
}

// Save serves POST /library. 201 when a new entry was stored, 200 when it
// already existed.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := schema.Decode(r.Body, saveSchema, &req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.Save(r.Context(), SaveInput{
		UserID:    req.UserID,
		SubjectID: req.SubjectID,
		LevelID:   req.LevelID,
		TopicID:   req.TopicID,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	status := http.StatusOK
	if res.Status == StatusCreated {
		status = http.StatusCreated
	}
	apiresp.WriteJSON(w, status, res)
}

// List serves GET /library?user_id=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		apiresp.WriteError(w, r, http.StatusBadRequest, "user_id wajib diisi")
		return
	}
	entries, err := h.svc.List(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		apiresp.WriteError(w, r, http.StatusBadRequest, "user_id, mapel_id, level_id dan materi_id wajib diisi")
	default:
		apiresp.WriteUpstream(w, r, err, h.production)
	}
}
