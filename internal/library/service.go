package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	internaldb "ruangbelajar/internal/db"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

const (
	StatusCreated = "created"
	StatusExists  = "exists"
)

type Service struct {
	db *sql.DB
}

type SaveInput struct {
	UserID    string
	SubjectID string
	LevelID   string
	TopicID   string
}

type SaveResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type TopicRef struct {
	Title string `json:"judul"`
}

type SubjectRef struct {
	Name string `json:"nama_mapel"`
}

type LevelRef struct {
	Name string `json:"nama_tingkat"`
}

type Entry struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	SubjectID string     `json:"mapel_id"`
	LevelID   string     `json:"level_id"`
	TopicID   string     `json:"materi_id"`
	CreatedAt time.Time  `json:"created_at"`
	Topic     TopicRef   `json:"materi"`
	Subject   SubjectRef `json:"mata_pelajaran"`
	Level     LevelRef   `json:"tingkat_pendidikan"`
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

func (in SaveInput) normalize() (SaveInput, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	in.SubjectID = strings.TrimSpace(in.SubjectID)
	in.LevelID = strings.TrimSpace(in.LevelID)
	in.TopicID = strings.TrimSpace(in.TopicID)
	if in.UserID == "" || in.SubjectID == "" || in.LevelID == "" || in.TopicID == "" {
		return in, ErrInvalidInput
	}
	return in, nil
}

// Save bookmarks a topic for a user. The unique constraint on
// (user_id, mapel_id, level_id, materi_id) decides between created and
// exists, so concurrent duplicates never produce two rows.
func (s *Service) Save(ctx context.Context, in SaveInput) (*SaveResult, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	var id string
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO library (id, user_id, mapel_id, level_id, materi_id, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id, mapel_id, level_id, materi_id) DO NOTHING
		RETURNING id
	`, uuid.NewString(), in.UserID, in.SubjectID, in.LevelID, in.TopicID).Scan(&id)
	switch {
	case err == nil:
		return &SaveResult{Status: StatusCreated, Message: "Materi berhasil disimpan ke library"}, nil
	case errors.Is(err, sql.ErrNoRows), internaldb.IsUniqueViolation(err):
		return &SaveResult{Status: StatusExists, Message: "Materi sudah ada di library"}, nil
	default:
		return nil, fmt.Errorf("save library entry: %w", err)
	}
}

// List returns the user's entries newest first, with display names joined
// in. Entries whose topic rows were removed are still listed.
func (s *Service) List(ctx context.Context, userID string) ([]Entry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.user_id, l.mapel_id, l.level_id, l.materi_id, l.created_at,
			COALESCE(m.judul, ''), COALESCE(mp.nama_mapel, ''), COALESCE(tp.nama_tingkat, '')
		FROM library l
		LEFT JOIN materi m ON m.id = l.materi_id
		LEFT JOIN mata_pelajaran mp ON mp.id = l.mapel_id
		LEFT JOIN tingkat_pendidikan tp ON tp.id = l.level_id
		WHERE l.user_id = $1
		ORDER BY l.created_at DESC, l.id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query library: %w", err)
	}
	defer rows.Close()

	out := make([]Entry, 0, 16)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.SubjectID, &e.LevelID, &e.TopicID, &e.CreatedAt,
			&e.Topic.Title, &e.Subject.Name, &e.Level.Name,
		); err != nil {
			return nil, fmt.Errorf("scan library entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate library: %w", err)
	}
	return out, nil
}
