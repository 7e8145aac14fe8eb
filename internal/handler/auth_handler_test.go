package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Stewz00/login-guard/internal/config"
	"github.com/Stewz00/login-guard/internal/logging"
	"github.com/Stewz00/login-guard/internal/service"
	"github.com/Stewz00/login-guard/internal/session"
	"github.com/Stewz00/login-guard/internal/test"
	"golang.org/x/crypto/bcrypt"
)

var errDatabaseDown = errors.New("dial tcp 10.0.0.5:5432: connection refused")

func newTestHandler(t *testing.T) (*AuthHandler, *test.MockCredentialStore) {
	t.Helper()
	store := test.NewMockCredentialStore()
	authService, err := service.NewAuthService(store, &config.Config{BcryptCost: bcrypt.MinCost}, logging.Discard())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return NewAuthHandler(authService, session.NewManager("test-secret", time.Hour), logging.Discard()), store
}

func formRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestAuthHandler_Register(t *testing.T) {
	handler, _ := newTestHandler(t)

	tests := []struct {
		name           string
		form           url.Values
		wantStatusCode int
		wantBody       string
	}{
		{
			name:           "valid registration",
			form:           url.Values{"username": {"alice"}, "password": {"Secret123!"}},
			wantStatusCode: http.StatusCreated,
			wantBody:       "User Registered Successfully",
		},
		{
			name:           "duplicate username",
			form:           url.Values{"username": {"alice"}, "password": {"different"}},
			wantStatusCode: http.StatusConflict,
			wantBody:       "Username already exists",
		},
		{
			name:           "missing password",
			form:           url.Values{"username": {"bob"}},
			wantStatusCode: http.StatusBadRequest,
			wantBody:       "Username and password are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Register(w, formRequest("/register", tt.form))

			if w.Code != tt.wantStatusCode {
				t.Errorf("got status %v, want %v", w.Code, tt.wantStatusCode)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("got body %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		form           url.Values
		wantStatusCode int
		wantBody       string
		wantCookie     bool
	}{
		{
			name:           "valid login",
			form:           url.Values{"username": {"alice"}, "password": {"Secret123!"}, "hidden_field": {""}, "load_time": {"4.2"}},
			wantStatusCode: http.StatusOK,
			wantBody:       "Login Successful",
			wantCookie:     true,
		},
		{
			name:           "honeypot filled",
			form:           url.Values{"username": {"alice"}, "password": {"Secret123!"}, "hidden_field": {"gotcha"}, "load_time": {"4.2"}},
			wantStatusCode: http.StatusForbidden,
			wantBody:       "Bot detected",
		},
		{
			name:           "too fast",
			form:           url.Values{"username": {"alice"}, "password": {"Secret123!"}, "load_time": {"1.999"}},
			wantStatusCode: http.StatusForbidden,
			wantBody:       "Suspicious activity detected",
		},
		{
			name:           "missing load time",
			form:           url.Values{"username": {"alice"}, "password": {"Secret123!"}},
			wantStatusCode: http.StatusForbidden,
			wantBody:       "Suspicious activity detected",
		},
		{
			name:           "non-numeric load time",
			form:           url.Values{"username": {"alice"}, "password": {"Secret123!"}, "load_time": {"NaN"}},
			wantStatusCode: http.StatusForbidden,
			wantBody:       "Suspicious activity detected",
		},
		{
			name:           "wrong password",
			form:           url.Values{"username": {"alice"}, "password": {"nope"}, "load_time": {"3"}},
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       "Invalid username or password",
		},
		{
			name:           "unknown user",
			form:           url.Values{"username": {"mallory"}, "password": {"Secret123!"}, "load_time": {"3"}},
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       "Invalid username or password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestHandler(t)
			reg := httptest.NewRecorder()
			handler.Register(reg, formRequest("/register", url.Values{"username": {"alice"}, "password": {"Secret123!"}}))
			if reg.Code != http.StatusCreated {
				t.Fatalf("failed to register test user: got status %d", reg.Code)
			}

			w := httptest.NewRecorder()
			handler.Login(w, formRequest("/login", tt.form))

			if w.Code != tt.wantStatusCode {
				t.Errorf("got status %v, want %v", w.Code, tt.wantStatusCode)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("got body %q, want %q", w.Body.String(), tt.wantBody)
			}

			gotCookie := false
			for _, c := range w.Result().Cookies() {
				if c.Name == session.CookieName && c.Value != "" {
					gotCookie = true
				}
			}
			if gotCookie != tt.wantCookie {
				t.Errorf("got session cookie %v, want %v", gotCookie, tt.wantCookie)
			}
		})
	}
}

func TestAuthHandler_LoginStoreFailureIsGeneric(t *testing.T) {
	handler, store := newTestHandler(t)
	store.Err = errDatabaseDown

	w := httptest.NewRecorder()
	handler.Login(w, formRequest("/login", url.Values{"username": {"alice"}, "password": {"x"}, "load_time": {"3"}}))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("got status %v, want %v", w.Code, http.StatusServiceUnavailable)
	}
	if strings.Contains(w.Body.String(), errDatabaseDown.Error()) {
		t.Errorf("internal error leaked to client: %q", w.Body.String())
	}
	if w.Body.String() != "Something went wrong. Please try again" {
		t.Errorf("got body %q", w.Body.String())
	}
}

func TestAuthHandler_Home(t *testing.T) {
	handler, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	handler.Home(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %v, want %v", w.Code, http.StatusOK)
	}
	for _, field := range []string{`name="username"`, `name="password"`, `name="hidden_field"`, `name="load_time"`} {
		if !strings.Contains(w.Body.String(), field) {
			t.Errorf("login form is missing %s", field)
		}
	}
}

func TestParseLoadTime(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"2.0", 2},
		{"0", 0},
		{"", 0},
		{"abc", 0},
		{"Inf", 0},
		{"-3", -3},
	}
	for _, tt := range tests {
		if got := parseLoadTime(tt.in); got != tt.want {
			t.Errorf("parseLoadTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
