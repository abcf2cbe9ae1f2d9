package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	internaldb "ruangbelajar/internal/db"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// LocalGateway keeps identities in Postgres. Passwords are bcrypt hashes;
// bearer tokens are random and only their sha256 is stored.
type LocalGateway struct {
	db         *sql.DB
	sessionTTL time.Duration
	bcryptCost int
}

func NewLocalGateway(db *sql.DB, sessionTTL time.Duration) *LocalGateway {
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &LocalGateway{db: db, sessionTTL: sessionTTL, bcryptCost: bcrypt.DefaultCost}
}

func (g *LocalGateway) SignUp(ctx context.Context, in SignUpInput) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil || in.Password == "" {
		return nil, ErrInvalidInput
	}
	if len(in.Password) < 6 {
		return nil, &UpstreamError{Status: http.StatusUnprocessableEntity, Message: "Password should be at least 6 characters."}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), g.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := User{ID: uuid.NewString(), Email: email, UserMetadata: map[string]any{"name": in.Name, "full_name": in.Name}}
	var createdAt time.Time
	err = g.db.QueryRowContext(ctx, `
		INSERT INTO auth_users (id, email, name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING created_at
	`, u.ID, email, strings.TrimSpace(in.Name), string(hash)).Scan(&createdAt)
	if err != nil {
		if internaldb.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert auth user: %w", err)
	}
	u.CreatedAt = &createdAt
	return &u, nil
}

func (g *LocalGateway) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var (
		u            User
		name         string
		passwordHash string
		createdAt    time.Time
	)
	err := g.db.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, created_at
		FROM auth_users
		WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &name, &passwordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("query auth user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	u.UserMetadata = map[string]any{"name": name}
	u.CreatedAt = &createdAt

	token, err := generateToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	expiresAt := time.Now().Add(g.sessionTTL)
	if _, err := g.db.ExecContext(ctx, `
		INSERT INTO auth_sessions (token_hash, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, now())
	`, hashToken(token), u.ID, expiresAt); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	return &Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(g.sessionTTL / time.Second),
		ExpiresAt:   expiresAt.Unix(),
		User:        &u,
	}, nil
}

func (g *LocalGateway) GetUser(ctx context.Context, accessToken string) (*User, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, ErrUnauthorized
	}
	var (
		u         User
		name      string
		createdAt time.Time
	)
	err := g.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.name, u.created_at
		FROM auth_sessions s
		JOIN auth_users u ON u.id = s.user_id
		WHERE s.token_hash = $1
		  AND s.expires_at > now()
	`, hashToken(accessToken)).Scan(&u.ID, &u.Email, &name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("query session user: %w", err)
	}
	u.UserMetadata = map[string]any{"name": name}
	u.CreatedAt = &createdAt
	return &u, nil
}
