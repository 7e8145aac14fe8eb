package handler

import (
	"embed"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/Stewz00/login-guard/internal/service"
	"github.com/Stewz00/login-guard/internal/session"
)

//go:embed templates/login.html
var templateFS embed.FS

var loginPage = template.Must(template.ParseFS(templateFS, "templates/login.html"))

type AuthHandler struct {
	authService *service.AuthService
	sessions    *session.Manager
	log         *slog.Logger
	now         func() time.Time
}

func NewAuthHandler(authService *service.AuthService, sessions *session.Manager, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		log:         log,
		now:         time.Now,
	}
}

// Home renders the login form
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := loginPage.Execute(w, struct{ Title string }{Title: "Sign in"}); err != nil {
		h.log.ErrorContext(r.Context(), "rendering login form", "error", err)
	}
}

// Login handles a login form submission and sets the session cookie on success
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	attempt := service.LoginAttempt{
		Username:       r.PostFormValue("username"),
		Password:       r.PostFormValue("password"),
		Honeypot:       r.PostFormValue("hidden_field"),
		ElapsedSeconds: parseLoadTime(r.PostFormValue("load_time")),
	}

	now := h.now()
	outcome, err := h.authService.Authenticate(r.Context(), attempt, now)
	if err != nil {
		h.log.ErrorContext(r.Context(), "login failed", "username", attempt.Username, "error", err)
	}

	switch outcome {
	case service.OutcomeSuccess:
		if err := h.sessions.SetCookie(w, attempt.Username, now); err != nil {
			h.log.ErrorContext(r.Context(), "issuing session", "username", attempt.Username, "error", err)
			sendText(w, service.OutcomeTemporaryFailure)
			return
		}
	case service.OutcomeBotDetected, service.OutcomeSuspiciousTiming, service.OutcomeAccountLocked:
		h.log.InfoContext(r.Context(), "login rejected", "username", attempt.Username, "outcome", outcome.String())
	}

	sendText(w, outcome)
}

// Register handles the registration form
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")

	outcome, err := h.authService.Register(r.Context(), username, r.PostFormValue("password"))
	if err != nil {
		h.log.ErrorContext(r.Context(), "registration failed", "username", username, "error", err)
	}
	if outcome == service.OutcomeRegistered {
		h.log.InfoContext(r.Context(), "user registered", "username", username)
	}

	sendText(w, outcome)
}

// Logout clears the session cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Logged out"))
}

// Me reports the username carried by the session cookie
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	username, ok := session.UsernameFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(username))
}

// parseLoadTime reads the client-reported form-fill time. Anything that is
// not a finite number counts as zero seconds.
func parseLoadTime(value string) float64 {
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0
	}
	return seconds
}

func statusFor(outcome service.Outcome) int {
	switch outcome {
	case service.OutcomeSuccess:
		return http.StatusOK
	case service.OutcomeRegistered:
		return http.StatusCreated
	case service.OutcomeInvalidCredentials:
		return http.StatusUnauthorized
	case service.OutcomeBotDetected, service.OutcomeSuspiciousTiming, service.OutcomeAccountLocked:
		return http.StatusForbidden
	case service.OutcomeDuplicateUsername:
		return http.StatusConflict
	case service.OutcomeInvalidRegistration:
		return http.StatusBadRequest
	default:
		return http.StatusServiceUnavailable
	}
}

// Helper function to send the fixed plain-text message for an outcome
func sendText(w http.ResponseWriter, outcome service.Outcome) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusFor(outcome))
	w.Write([]byte(outcome.Message()))
}
