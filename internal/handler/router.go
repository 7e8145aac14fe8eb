package handler

import (
	"net/http"

	"github.com/Stewz00/login-guard/internal/middleware"
	"github.com/Stewz00/login-guard/internal/session"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the auth routes. loginRateLimit is the per-username
// request budget per minute for the form endpoints, 0 to disable.
func NewRouter(authHandler *AuthHandler, sessions *session.Manager, loginRateLimit int) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/", authHandler.Home)

	r.Group(func(r chi.Router) {
		r.Use(middleware.UsernameRateLimiter(loginRateLimit))
		r.Post("/login", authHandler.Login)
		r.Post("/register", authHandler.Register)
	})

	r.Post("/logout", authHandler.Logout)
	r.With(sessions.Require).Get("/me", authHandler.Me)

	return r
}
