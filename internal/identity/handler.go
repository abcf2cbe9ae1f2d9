package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"ruangbelajar/internal/app/apiresp"
	"ruangbelajar/internal/app/schema"
)

type contextKey string

const userContextKey contextKey = "identity_user"

type Handler struct {
	svc        identityService
	production bool
}

type identityService interface {
	CheckEmail(ctx context.Context, email string) (bool, error)
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Authenticate(ctx context.Context, accessToken string) (*User, error)
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpdateProfile(ctx context.Context, user *User, in UpdateProfileInput) (*Profile, error)
}

type checkEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Sekolah  string `json:"sekolah" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	Name    string  `json:"name"`
	Sekolah string  `json:"sekolah"`
	Picture *string `json:"picture" validate:"omitempty,url"`
}

var (
	checkEmailSchema = schema.MustCompile(schema.Schema{
		Name: "identity_check_email",
		Source: `{
			"type": "object",
			"required": ["email"],
			"properties": {"email": {"type": "string"}}
		}`,
	})
	registerSchema = schema.MustCompile(schema.Schema{
		Name: "identity_register",
		Source: `{
			"type": "object",
			"required": ["name", "email", "sekolah", "password"],
			"properties": {
				"name": {"type": "string"},
				"email": {"type": "string"},
				"sekolah": {"type": "string"},
				"password": {"type": "string"}
			}
		}`,
	})
	loginSchema = schema.MustCompile(schema.Schema{
		Name: "identity_login",
		Source: `{
			"type": "object",
			"required": ["email", "password"],
			"properties": {
				"email": {"type": "string"},
				"password": {"type": "string"}
			}
		}`,
	})
	updateProfileSchema = schema.MustCompile(schema.Schema{
		Name: "identity_update_profile",
		Source: `{
			"type": "object",
			"properties": {
				"name": {"type": "string", "maxLength": 120},
				"sekolah": {"type": "string", "maxLength": 160},
				"picture": {"type": ["string", "null"]},
				"user_id": {"type": "string"},
				"email": {"type": "string"}
			},
			"additionalProperties": false
		}`,
	})
)

func NewHandler(svc identityService, production bool) *Handler {
	return &Handler{svc: svc, production: production}
}

func (h *Handler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req checkEmailRequest
	if !h.decode(w, r, checkEmailSchema, &req) {
		return
	}
	exists, err := h.svc.CheckEmail(r.Context(), req.Email)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, registerSchema, &req) {
		return
	}
	res, err := h.svc.Register(r.Context(), RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Sekolah:  req.Sekolah,
		Password: req.Password,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, loginSchema, &req) {
		return
	}
	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteJSON(w, http.StatusOK, map[string]any{"data": res})
}

// Profile serves GET /profile (and GET /profile-page) for the bearer
// token's user. A user_id query parameter is ignored.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		apiresp.WriteError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}
	p, err := h.svc.GetProfile(r.Context(), user.ID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteJSON(w, http.StatusOK, p)
}

// UpdateProfile serves PUT /profile and PUT /profile-update. Older app
// builds send user_id and email in the body; both are ignored and the user
// always comes from the bearer token.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		apiresp.WriteError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req updateProfileRequest
	if !h.decode(w, r, updateProfileSchema, &req) {
		return
	}
	p, err := h.svc.UpdateProfile(r.Context(), user, UpdateProfileInput{
		Name:    req.Name,
		Sekolah: req.Sekolah,
		Picture: req.Picture,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteJSON(w, http.StatusOK, p)
}

// RequireAuth resolves the bearer token through the gateway and stores the
// user in the request context.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			apiresp.WriteError(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}
		user, err := h.svc.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				apiresp.WriteError(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}
			apiresp.WriteUpstream(w, r, err, h.production)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}

func CurrentUser(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userContextKey).(*User)
	return u, ok && u != nil
}

// ContextWithUser injects an authenticated user into context.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func bearerToken(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < 7 || !strings.EqualFold(v[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(v[7:])
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, s schema.Schema, dst any) bool {
	if err := schema.Decode(r.Body, s, dst); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
		return false
	}
	if err := schema.Struct(dst); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ue *UpstreamError
	switch {
	case errors.Is(err, ErrInvalidInput):
		apiresp.WriteError(w, r, http.StatusBadRequest, "All fields are required")
	case errors.Is(err, ErrInvalidCredentials):
		apiresp.WriteError(w, r, http.StatusUnauthorized, "Invalid login credentials")
	case errors.Is(err, ErrUnauthorized):
		apiresp.WriteError(w, r, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, ErrEmailTaken):
		apiresp.WriteError(w, r, http.StatusBadRequest, "User already registered")
	case errors.Is(err, ErrProfileNotFound):
		apiresp.WriteError(w, r, http.StatusNotFound, "Profile not found")
	case errors.As(err, &ue) && ue.Status >= 400 && ue.Status < 500:
		apiresp.WriteError(w, r, http.StatusBadRequest, ue.Message)
	default:
		apiresp.WriteUpstream(w, r, err, h.production)
	}
}
