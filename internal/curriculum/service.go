package curriculum

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ruangbelajar/internal/platform/logger"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

const (
	cacheKeyLevels   = "curriculum:levels"
	cacheKeySubjects = "curriculum:subjects"
)

// Cache is the read-through store for small, rarely changing lists.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
}

type Service struct {
	db       *sql.DB
	log      *logger.Logger
	cache    Cache
	cacheTTL time.Duration
}

type Subject struct {
	ID       string `json:"id"`
	Name     string `json:"nama_mapel"`
	ImageURL string `json:"image_url"`
}

type EducationLevel struct {
	ID   string `json:"id"`
	Name string `json:"nama_tingkat"`
}

type Topic struct {
	ID        string    `json:"id"`
	Title     string    `json:"judul"`
	SubjectID string    `json:"mata_pelajaran_id"`
	LevelID   string    `json:"tingkat_pendidikan_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Video struct {
	VideoID *string `json:"video_subMateri"`
}

type SubTopic struct {
	ID    string  `json:"id"`
	Title string  `json:"nama_subMateri"`
	Video *string `json:"video"`
	// Videos keeps the nested shape older app builds read.
	Videos []Video `json:"video_sub_materi"`
}

type ContentDocument struct {
	ID         string `json:"id"`
	SubTopicID string `json:"sub_materi_id"`
	Document   string `json:"dokumen"`
}

type Event struct {
	ID    string `json:"id"`
	Name  string `json:"name_event"`
	Image string `json:"image_event"`
}

// CacheKeys lists the keys written by the read-through cache. Content
// imports delete them so new subjects and levels show up immediately.
func CacheKeys() []string {
	return []string{cacheKeyLevels, cacheKeySubjects}
}

func NewService(db *sql.DB, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{db: db, log: log}
}

// WithCache enables read-through caching of levels and subjects.
func (s *Service) WithCache(c Cache, ttl time.Duration) *Service {
	s.cache = c
	s.cacheTTL = ttl
	return s
}

func (s *Service) ListEducationLevels(ctx context.Context) ([]EducationLevel, error) {
	var out []EducationLevel
	err := s.readThrough(ctx, cacheKeyLevels, &out, func() error {
		levels, err := s.queryEducationLevels(ctx)
		out = levels
		return err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []EducationLevel{}
	}
	return out, nil
}

func (s *Service) queryEducationLevels(ctx context.Context) ([]EducationLevel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, nama_tingkat
		FROM tingkat_pendidikan
		ORDER BY nama_tingkat ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query education levels: %w", err)
	}
	defer rows.Close()

	out := make([]EducationLevel, 0, 4)
	for rows.Next() {
		var l EducationLevel
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("scan education level: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate education levels: %w", err)
	}
	return out, nil
}

func (s *Service) ListSubjects(ctx context.Context) ([]Subject, error) {
	var out []Subject
	err := s.readThrough(ctx, cacheKeySubjects, &out, func() error {
		subjects, err := s.querySubjects(ctx)
		out = subjects
		return err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Subject{}
	}
	return out, nil
}

func (s *Service) querySubjects(ctx context.Context) ([]Subject, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, nama_mapel, COALESCE(image_url, '')
		FROM mata_pelajaran
		ORDER BY nama_mapel ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query subjects: %w", err)
	}
	defer rows.Close()

	out := make([]Subject, 0, 8)
	for rows.Next() {
		var sub Subject
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.ImageURL); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subjects: %w", err)
	}
	return out, nil
}

// ListTopics filters on both the subject and the level.
func (s *Service) ListTopics(ctx context.Context, subjectID, levelID string) ([]Topic, error) {
	subjectID = strings.TrimSpace(subjectID)
	levelID = strings.TrimSpace(levelID)
	if subjectID == "" || levelID == "" {
		return nil, ErrInvalidInput
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, judul, mata_pelajaran_id, tingkat_pendidikan_id, created_at
		FROM materi
		WHERE mata_pelajaran_id = $1 AND tingkat_pendidikan_id = $2
		ORDER BY created_at ASC, id ASC
	`, subjectID, levelID)
	if err != nil {
		return nil, fmt.Errorf("query topics: %w", err)
	}
	defer rows.Close()

	out := make([]Topic, 0, 16)
	for rows.Next() {
		var t Topic
		if err := rows.Scan(&t.ID, &t.Title, &t.SubjectID, &t.LevelID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topics: %w", err)
	}
	return out, nil
}

// ListSubTopics returns sub-topics in insertion order. Video is the first
// attached video id, or null.
func (s *Service) ListSubTopics(ctx context.Context, topicID string) ([]SubTopic, error) {
	topicID = strings.TrimSpace(topicID)
	if topicID == "" {
		return nil, ErrInvalidInput
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.nama_submateri, v.video_submateri
		FROM nama_sub_materi s
		LEFT JOIN video_sub_materi v ON v.sub_materi_id = s.id
		WHERE s.materi_id = $1
		ORDER BY s.created_at ASC, s.id ASC, v.id ASC
	`, topicID)
	if err != nil {
		return nil, fmt.Errorf("query sub topics: %w", err)
	}
	defer rows.Close()

	out := make([]SubTopic, 0, 16)
	for rows.Next() {
		var (
			id, title string
			video     sql.NullString
		)
		if err := rows.Scan(&id, &title, &video); err != nil {
			return nil, fmt.Errorf("scan sub topic: %w", err)
		}
		out = appendSubTopicRow(out, id, title, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sub topics: %w", err)
	}
	return out, nil
}

// appendSubTopicRow folds one joined row into out. Rows for the same
// sub-topic arrive consecutively.
func appendSubTopicRow(out []SubTopic, id, title string, video sql.NullString) []SubTopic {
	if n := len(out); n == 0 || out[n-1].ID != id {
		out = append(out, SubTopic{ID: id, Title: title, Videos: []Video{}})
	}
	last := &out[len(out)-1]
	if !video.Valid {
		return out
	}
	v := video.String
	last.Videos = append(last.Videos, Video{VideoID: &v})
	if last.Video == nil && strings.TrimSpace(v) != "" {
		last.Video = &v
	}
	return out
}

func (s *Service) GetContentDocument(ctx context.Context, subTopicID string) (*ContentDocument, error) {
	subTopicID = strings.TrimSpace(subTopicID)
	if subTopicID == "" {
		return nil, ErrInvalidInput
	}

	var doc ContentDocument
	err := s.db.QueryRowContext(ctx, `
		SELECT id, sub_materi_id, dokumen
		FROM isi_sub_materi
		WHERE sub_materi_id = $1
		ORDER BY id ASC
		LIMIT 1
	`, subTopicID).Scan(&doc.ID, &doc.SubTopicID, &doc.Document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get content document: %w", err)
	}
	return &doc, nil
}

func (s *Service) ListEvents(ctx context.Context) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name_event, COALESCE(image_event, '')
		FROM event
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	out := make([]Event, 0, 8)
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Image); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

// readThrough serves key from the cache when possible, otherwise runs load
// and stores the result. Cache failures are logged and never returned.
func (s *Service) readThrough(ctx context.Context, key string, dst any, load func() error) error {
	if s.cache != nil {
		hit, err := s.cache.GetJSON(ctx, key, dst)
		if err != nil {
			s.log.Warn("cache read failed", "key", key, "error", err)
		} else if hit {
			return nil
		}
	}

	if err := load(); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, dst, s.cacheTTL); err != nil {
			s.log.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return nil
}
