package curriculum

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"ruangbelajar/internal/app/apiresp"
	"ruangbelajar/internal/app/schema"
)

type Handler struct {
	svc        curriculumService
	production bool
}

type curriculumService interface {
	ListEducationLevels(ctx context.Context) ([]EducationLevel, error)
	ListSubjects(ctx context.Context) ([]Subject, error)
	ListTopics(ctx context.Context, subjectID, levelID string) ([]Topic, error)
	ListSubTopics(ctx context.Context, topicID string) ([]SubTopic, error)
	GetContentDocument(ctx context.Context, subTopicID string) (*ContentDocument, error)
	ListEvents(ctx context.Context) ([]Event, error)
}

type topicsQuery struct {
	SubjectID string `validate:"required"`
	LevelID   string `validate:"required"`
}

func NewHandler(svc curriculumService, production bool) *Handler {
	return &Handler{svc: svc, production: production}
}

func (h *Handler) EducationLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.svc.ListEducationLevels(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteJSON(w, http.StatusOK, levels)
}

func (h *Handler) Subjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.svc.ListSubjects(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteJSON(w, http.StatusOK, subjects)
}

// Topics serves GET /materi?mapelId=&levelId=
func (h *Handler) Topics(w http.ResponseWriter, r *http.Request) {
	q := topicsQuery{
		SubjectID: strings.TrimSpace(r.URL.Query().Get("mapelId")),
		LevelID:   strings.TrimSpace(r.URL.Query().Get("levelId")),
	}
	if err := schema.Struct(q); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "mapelId dan levelId wajib diisi")
		return
	}
	topics, err := h.svc.ListTopics(r.Context(), q.SubjectID, q.LevelID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteJSON(w, http.StatusOK, topics)
}

// SubTopics serves GET /sub-materi?materiId=
func (h *Handler) SubTopics(w http.ResponseWriter, r *http.Request) {
	topicID := strings.TrimSpace(r.URL.Query().Get("materiId"))
	if topicID == "" {
		apiresp.WriteError(w, r, http.StatusBadRequest, "materiId wajib diisi")
		return
	}
	subs, err := h.svc.ListSubTopics(r.Context(), topicID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteJSON(w, http.StatusOK, subs)
}

// ContentDocument serves GET /sub-materi/detail?subMateriId=
func (h *Handler) ContentDocument(w http.ResponseWriter, r *http.Request) {
	subTopicID := strings.TrimSpace(r.URL.Query().Get("subMateriId"))
	if subTopicID == "" {
		apiresp.WriteError(w, r, http.StatusBadRequest, "subMateriId wajib diisi")
		return
	}
	doc, err := h.svc.GetContentDocument(r.Context(), subTopicID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteJSON(w, http.StatusOK, events)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		apiresp.WriteError(w, r, http.StatusNotFound, "materi tidak ditemukan")
	default:
		apiresp.WriteUpstream(w, r, err, h.production)
	}
}
