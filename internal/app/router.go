package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"ruangbelajar/internal/app/apiresp"
	"ruangbelajar/internal/app/observability"
	"ruangbelajar/internal/curriculum"
	"ruangbelajar/internal/db"
	"ruangbelajar/internal/identity"
	"ruangbelajar/internal/library"
	"ruangbelajar/internal/platform/cache"
	"ruangbelajar/internal/platform/logger"
	"ruangbelajar/internal/quiz"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Deps are the process-wide resources shared by every handler. Cache may be
// nil, in which case curriculum reads go straight to the database.
type Deps struct {
	DB      *sql.DB
	Cache   *cache.Cache
	Gateway identity.Gateway
	Log     *logger.Logger
}

func NewRouter(cfg Config, deps Deps) http.Handler {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	production := IsProduction(cfg.AppEnv)

	collector := observability.NewCollector(deps.DB, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(collector.Middleware)

	curriculumSvc := curriculum.NewService(deps.DB, log.With("component", "curriculum"))
	if deps.Cache != nil {
		curriculumSvc = curriculumSvc.WithCache(deps.Cache, cfg.CacheTTL)
	}
	curriculumHandler := curriculum.NewHandler(curriculumSvc, production)

	quizSvc := quiz.NewService(deps.DB, log.With("component", "quiz"), quiz.Options{
		HideAnswerKey: cfg.QuizHideAnswerKey,
	})
	quizHandler := quiz.NewHandler(quizSvc, production)

	libraryHandler := library.NewHandler(library.NewService(deps.DB), production)

	identitySvc := identity.NewService(deps.Gateway, deps.DB, log.With("component", "identity"))
	identityHandler := identity.NewHandler(identitySvc, production)

	authLimiter := NewIPRateLimiter(cfg.AuthRateLimitPerMin, time.Minute)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		apiresp.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Get("/readyz", readyHandler(deps))
	r.Get("/metrics", collector.MetricsHandler)

	r.Get("/tingkat-pendidikan", curriculumHandler.EducationLevels)
	r.Get("/mata-pelajaran", curriculumHandler.Subjects)
	r.Get("/event", curriculumHandler.Events)
	r.Get("/materi", curriculumHandler.Topics)
	r.Get("/sub-materi", curriculumHandler.SubTopics)
	r.Get("/sub-materi/detail", curriculumHandler.ContentDocument)

	r.Get("/quiz", quizHandler.GetQuiz)
	r.Post("/quiz/submit", quizHandler.Submit)

	r.Post("/library", libraryHandler.Save)
	r.Get("/library", libraryHandler.List)

	r.Group(func(auth chi.Router) {
		auth.Use(RateLimitMiddleware(authLimiter))
		auth.Post("/check-email", identityHandler.CheckEmail)
		auth.Post("/register", identityHandler.Register)
		auth.Post("/login", identityHandler.Login)
	})

	r.Group(func(secure chi.Router) {
		secure.Use(identityHandler.RequireAuth)
		secure.Get("/profile", identityHandler.Profile)
		secure.Put("/profile", identityHandler.UpdateProfile)
		secure.Get("/profile-page", identityHandler.Profile)
		secure.Put("/profile-update", identityHandler.UpdateProfile)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apiresp.WriteError(w, r, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apiresp.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// readyHandler reports 503 when the database is unreachable. A failing
// cache only degrades the response since reads fall back to the database.
func readyHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"db": "ok"}
		if deps.DB == nil {
			status["db"] = "missing"
			apiresp.WriteJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		if err := db.Ping(r.Context(), deps.DB); err != nil {
			status["db"] = "unreachable"
			apiresp.WriteJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		if deps.Cache != nil {
			ctx, cancel := context.WithTimeout(r.Context(), time.Second)
			defer cancel()
			status["cache"] = "ok"
			if err := deps.Cache.HealthCheck(ctx); err != nil {
				status["cache"] = "degraded"
			}
		}
		apiresp.WriteJSON(w, http.StatusOK, status)
	}
}
