package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ruangbelajar/internal/platform/logger"
)

const defaultSekolah = "Belum diisi"

type Service struct {
	gw  Gateway
	db  *sql.DB
	log *logger.Logger
}

type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Sekolah   *string   `json:"sekolah"`
	Picture   *string   `json:"picture"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterInput struct {
	Name     string
	Email    string
	Sekolah  string
	Password string
}

type RegisterResult struct {
	Message string         `json:"message"`
	User    RegisteredUser `json:"user"`
}

type RegisteredUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Sekolah string `json:"sekolah"`
}

// LoginUser is the provider user merged with the stored profile.
type LoginUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Name         string         `json:"name"`
	Sekolah      string         `json:"sekolah"`
	Picture      *string        `json:"picture"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	CreatedAt    *time.Time     `json:"created_at,omitempty"`
}

type LoginResult struct {
	Session *Session  `json:"session"`
	User    LoginUser `json:"user"`
}

type UpdateProfileInput struct {
	Name    string
	Sekolah string
	Picture *string
}

func NewService(gw Gateway, db *sql.DB, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{gw: gw, db: db, log: log}
}

func (s *Service) CheckEmail(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, ErrInvalidInput
	}
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM profiles WHERE lower(email) = lower($1))
	`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

// Register creates the identity and then the profile row. A failed profile
// insert is logged and does not undo the registration.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Sekolah = strings.TrimSpace(in.Sekolah)
	if in.Name == "" || in.Email == "" || in.Sekolah == "" || in.Password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.gw.SignUp(ctx, SignUpInput{Email: in.Email, Password: in.Password, Name: in.Name})
	if err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, name, sekolah, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (id) DO NOTHING
	`, user.ID, in.Email, in.Name, in.Sekolah); err != nil {
		s.log.Error("profile creation failed", "user_id", user.ID, "error", err)
	}

	email := user.Email
	if email == "" {
		email = in.Email
	}
	return &RegisterResult{
		Message: "Registration successful! Please check your email for verification.",
		User:    RegisteredUser{ID: user.ID, Email: email, Sekolah: in.Sekolah},
	}, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	sess, err := s.gw.SignInWithPassword(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, err
	}

	merged := LoginUser{
		ID:           sess.User.ID,
		Email:        sess.User.Email,
		Name:         sess.User.Name(),
		Sekolah:      defaultSekolah,
		UserMetadata: sess.User.UserMetadata,
		CreatedAt:    sess.User.CreatedAt,
	}
	profile, err := s.GetProfile(ctx, sess.User.ID)
	switch {
	case err == nil:
		if profile.Sekolah != nil && *profile.Sekolah != "" {
			merged.Sekolah = *profile.Sekolah
		}
		if profile.Name != "" {
			merged.Name = profile.Name
		}
		merged.Picture = profile.Picture
	case errors.Is(err, ErrProfileNotFound):
	default:
		s.log.Warn("profile lookup failed during login", "user_id", sess.User.ID, "error", err)
	}

	return &LoginResult{Session: sess, User: merged}, nil
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*User, error) {
	return s.gw.GetUser(ctx, accessToken)
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var (
		p       Profile
		sekolah sql.NullString
		picture sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, sekolah, picture, created_at
		FROM profiles
		WHERE id = $1
	`, userID).Scan(&p.ID, &p.Email, &p.Name, &sekolah, &picture, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	p.Sekolah = nullString(sekolah)
	p.Picture = nullString(picture)
	return &p, nil
}

// UpdateProfile upserts so a user whose profile insert failed at
// registration can still save one.
func (s *Service) UpdateProfile(ctx context.Context, user *User, in UpdateProfileInput) (*Profile, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Sekolah = strings.TrimSpace(in.Sekolah)
	if user == nil || user.ID == "" {
		return nil, ErrUnauthorized
	}
	if in.Name == "" && in.Sekolah == "" && in.Picture == nil {
		return nil, ErrInvalidInput
	}

	var (
		p       Profile
		sekolah sql.NullString
		picture sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO profiles (id, email, name, sekolah, picture, created_at)
		VALUES ($1, $2, COALESCE(NULLIF($3, ''), $6), NULLIF($4, ''), $5, now())
		ON CONFLICT (id) DO UPDATE SET
			name = COALESCE(NULLIF($3, ''), profiles.name),
			sekolah = COALESCE(NULLIF($4, ''), profiles.sekolah),
			picture = COALESCE($5, profiles.picture)
		RETURNING id, email, name, sekolah, picture, created_at
	`, user.ID, user.Email, in.Name, in.Sekolah, in.Picture, user.Name()).
		Scan(&p.ID, &p.Email, &p.Name, &sekolah, &picture, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	p.Sekolah = nullString(sekolah)
	p.Picture = nullString(picture)
	return &p, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
