package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SupabaseGateway talks to a GoTrue-compatible auth server.
type SupabaseGateway struct {
	baseURL    string
	serviceKey string
	jwtSecret  []byte
	client     *http.Client
}

type SupabaseConfig struct {
	URL        string
	ServiceKey string
	// JWTSecret enables local HS256 verification in GetUser.
	JWTSecret string
	Client    *http.Client
}

func NewSupabaseGateway(cfg SupabaseConfig) (*SupabaseGateway, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" || strings.TrimSpace(cfg.ServiceKey) == "" {
		return nil, errors.New("supabase url and service key are required")
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	g := &SupabaseGateway{baseURL: base, serviceKey: cfg.ServiceKey, client: client}
	if cfg.JWTSecret != "" {
		g.jwtSecret = []byte(cfg.JWTSecret)
	}
	return g, nil
}

func (g *SupabaseGateway) SignUp(ctx context.Context, in SignUpInput) (*User, error) {
	body := map[string]any{
		"email":    in.Email,
		"password": in.Password,
		"data": map[string]string{
			"name":      in.Name,
			"full_name": in.Name,
		},
	}
	raw, err := g.do(ctx, http.MethodPost, "/auth/v1/signup", g.serviceKey, body)
	if err != nil {
		return nil, err
	}

	// With email confirmation on GoTrue returns the bare user; with
	// autoconfirm it returns a session wrapping the user.
	var wrapped struct {
		User *User `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.User != nil && wrapped.User.ID != "" {
		return wrapped.User, nil
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode signup response: %w", err)
	}
	if u.ID == "" {
		return nil, errors.New("decode signup response: missing user id")
	}
	return &u, nil
}

func (g *SupabaseGateway) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	raw, err := g.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", g.serviceKey, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		var ue *UpstreamError
		if errors.As(err, &ue) && (ue.Status == http.StatusBadRequest || ue.Status == http.StatusUnauthorized) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, ue.Message)
		}
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if s.AccessToken == "" || s.User == nil {
		return nil, errors.New("decode token response: missing session")
	}
	return &s, nil
}

func (g *SupabaseGateway) GetUser(ctx context.Context, accessToken string) (*User, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, ErrUnauthorized
	}
	if g.jwtSecret != nil {
		return g.verifyLocal(accessToken)
	}

	raw, err := g.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil)
	if err != nil {
		var ue *UpstreamError
		if errors.As(err, &ue) && (ue.Status == http.StatusUnauthorized || ue.Status == http.StatusForbidden) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode user response: %w", err)
	}
	if u.ID == "" {
		return nil, ErrUnauthorized
	}
	return &u, nil
}

type supabaseClaims struct {
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	jwt.RegisteredClaims
}

func (g *SupabaseGateway) verifyLocal(token string) (*User, error) {
	parsed, err := jwt.ParseWithClaims(token, &supabaseClaims{}, func(t *jwt.Token) (interface{}, error) {
		return g.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*supabaseClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrUnauthorized
	}
	return &User{ID: claims.Subject, Email: claims.Email, UserMetadata: claims.UserMetadata}, nil
}

func (g *SupabaseGateway) do(ctx context.Context, method, path, bearer string, body any) ([]byte, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", g.serviceKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read identity provider response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, &UpstreamError{Status: resp.StatusCode, Message: upstreamMessage(raw, resp.Status)}
	}
	return raw, nil
}

// upstreamMessage picks the first populated message field GoTrue uses.
func upstreamMessage(raw []byte, fallback string) string {
	var e struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	if json.Unmarshal(raw, &e) == nil {
		for _, m := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
			if strings.TrimSpace(m) != "" {
				return m
			}
		}
	}
	return fallback
}
