package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func postForm(username string) *http.Request {
	form := url.Values{"username": {username}, "password": {"pw"}}
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "127.0.0.1:12345"
	return req
}

func TestUsernameRateLimiter(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The limiter must leave the form readable for the handler.
		if r.PostFormValue("password") != "pw" {
			t.Error("form body was not preserved")
		}
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		username       string
		requests       int
		wantStatusCode int
	}{
		{
			name:           "within limit",
			username:       "alice",
			requests:       3,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "exceed limit",
			username:       "bob",
			requests:       5,
			wantStatusCode: http.StatusTooManyRequests,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := UsernameRateLimiter(3)(handler)

			var lastStatus int
			for i := 0; i < tt.requests; i++ {
				w := httptest.NewRecorder()
				limiter.ServeHTTP(w, postForm(tt.username))
				lastStatus = w.Code
			}

			if lastStatus != tt.wantStatusCode {
				t.Errorf("got status %v, want %v", lastStatus, tt.wantStatusCode)
			}
		})
	}
}

func TestUsernameRateLimiter_KeysAreIndependent(t *testing.T) {
	limiter := UsernameRateLimiter(1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, username := range []string{"alice", "bob"} {
		w := httptest.NewRecorder()
		limiter.ServeHTTP(w, postForm(username))
		if w.Code != http.StatusOK {
			t.Errorf("%s: got status %v, want %v", username, w.Code, http.StatusOK)
		}
	}

	w := httptest.NewRecorder()
	limiter.ServeHTTP(w, postForm(" ALICE "))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("normalized username should share a bucket, got status %v", w.Code)
	}
}

func TestUsernameRateLimiter_Disabled(t *testing.T) {
	limiter := UsernameRateLimiter(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		limiter.ServeHTTP(w, postForm("alice"))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: got status %v, want %v", i, w.Code, http.StatusOK)
		}
	}
}
