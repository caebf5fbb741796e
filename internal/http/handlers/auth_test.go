package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/estol/auth-service/internal/domain"
	"github.com/estol/auth-service/internal/http/response"
	errs "github.com/estol/auth-service/internal/pkg/errors"
	"github.com/estol/auth-service/internal/pkg/logger"
	"github.com/estol/auth-service/internal/services"
)

type stubStrategy struct {
	name string
	user *types.User
	err  error

	lastInput services.LoginInput
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) AttemptLogin(ctx context.Context, in services.LoginInput) (*types.User, error) {
	s.lastInput = in
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

type stubSessions struct {
	token     string
	resolved  *types.User
	err       error
	destroyed []string
}

func (s *stubSessions) Establish(ctx context.Context, u *types.User) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.token, nil
}

func (s *stubSessions) Resolve(ctx context.Context, token string) (*types.User, error) {
	if s.resolved == nil {
		return nil, errs.ErrNotFound
	}
	return s.resolved, nil
}

func (s *stubSessions) Destroy(ctx context.Context, token string) error {
	s.destroyed = append(s.destroyed, token)
	return nil
}

func (s *stubSessions) ToReference(u *types.User) uuid.UUID { return u.ID }

func (s *stubSessions) FromReference(ctx context.Context, id uuid.UUID) (*types.User, error) {
	if s.resolved == nil {
		return nil, errs.ErrNotFound
	}
	return s.resolved, nil
}

func (s *stubSessions) TTL() time.Duration { return time.Hour }

type stubRegistration struct {
	user *types.User
	err  error
}

func (s *stubRegistration) Register(ctx context.Context, username, email, password string) (*types.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func newLoginEngine(t *testing.T, strat services.LoginStrategy, sessions services.SessionService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(testLogger(t), &stubRegistration{}, sessions, []services.LoginStrategy{strat}, nil)
	r := gin.New()
	r.POST("/api/login", h.Login)
	r.POST("/api/logout", h.Logout)
	return r
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return env
}

func TestLoginSuccess(t *testing.T) {
	t.Parallel()

	u := &types.User{ID: uuid.New(), Username: "jane", Email: "jane@example.com"}
	strat := &stubStrategy{name: "local", user: u}
	r := newLoginEngine(t, strat, &stubSessions{token: "tok-1"})

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"identifier":"jane","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if !env.Success || env.Message != "User logged in" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.User == nil {
		t.Fatalf("success envelope must carry the user")
	}
	if strat.lastInput.Identifier != "jane" || strat.lastInput.Password != "pw" {
		t.Fatalf("strategy received wrong input: %+v", strat.lastInput)
	}

	cookie := rec.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, "sid=tok-1") {
		t.Fatalf("expected a session cookie, got %q", cookie)
	}
	if !strings.Contains(cookie, "HttpOnly") {
		t.Fatalf("session cookie must be HttpOnly, got %q", cookie)
	}
}

func TestLoginFailureStatuses(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"not registered", errs.ErrNotRegistered, http.StatusUnauthorized, "User not registered"},
		{"bad password", errs.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := newLoginEngine(t, &stubStrategy{name: "local", err: tc.err}, &stubSessions{})

			req := httptest.NewRequest(http.MethodPost, "/api/login",
				strings.NewReader(`{"identifier":"jane","password":"pw"}`))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("unexpected status: got=%d want=%d", rec.Code, tc.wantStatus)
			}
			env := decodeEnvelope(t, rec)
			if env.Success {
				t.Fatalf("failure envelope must have success=false")
			}
			if env.Message != tc.wantMessage {
				t.Fatalf("unexpected message: got=%q want=%q", env.Message, tc.wantMessage)
			}
			if env.User != nil {
				t.Fatalf("failure envelope must not carry a user")
			}
		})
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	t.Parallel()

	sessions := &stubSessions{}
	r := newLoginEngine(t, &stubStrategy{name: "local"}, sessions)

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "tok-1"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d", rec.Code)
	}
	if len(sessions.destroyed) != 1 || sessions.destroyed[0] != "tok-1" {
		t.Fatalf("expected the session to be destroyed, got %v", sessions.destroyed)
	}
	if cookie := rec.Header().Get("Set-Cookie"); !strings.Contains(cookie, "sid=") || !strings.Contains(cookie, "Max-Age=0") {
		t.Fatalf("expected the cookie to be cleared, got %q", cookie)
	}
}

func TestRegisterStatuses(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	u := &types.User{ID: uuid.New(), Username: "jane", Email: "jane@example.com"}

	cases := []struct {
		name       string
		reg        *stubRegistration
		wantStatus int
	}{
		{"created", &stubRegistration{user: u}, http.StatusCreated},
		{"duplicate", &stubRegistration{err: &errs.DuplicateError{Field: "username"}}, http.StatusConflict},
		{"invalid", &stubRegistration{err: &errs.ValidationError{Field: "email", Reason: "must be a valid email address"}}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			h := NewAuthHandler(testLogger(t), tc.reg, &stubSessions{}, nil, nil)
			r := gin.New()
			r.POST("/api/register", h.Register)

			req := httptest.NewRequest(http.MethodPost, "/api/register",
				strings.NewReader(`{"username":"jane","email":"jane@example.com","password":"pw"}`))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("unexpected status: got=%d want=%d body=%s", rec.Code, tc.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestOAuthCallbackRejectsStateMismatch(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	strat := &stubStrategy{name: "google"}
	h := NewAuthHandler(testLogger(t), &stubRegistration{}, &stubSessions{},
		[]services.LoginStrategy{strat}, []services.OAuthClient{fakeOAuthClient{}})
	r := gin.New()
	r.GET("/auth/:provider/callback", h.OAuthCallback)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc&state=forged", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "expected"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got=%d", rec.Code)
	}
	if strat.lastInput.Profile != nil {
		t.Fatalf("strategy must not run on a state mismatch")
	}
}

type fakeOAuthClient struct{}

func (fakeOAuthClient) Provider() string { return types.ProviderGoogle }

func (fakeOAuthClient) AuthCodeURL(state string) string {
	return "https://example.com/authorize?state=" + state
}

func (fakeOAuthClient) FetchProfile(ctx context.Context, code string) (*services.ExternalProfile, error) {
	return &services.ExternalProfile{Provider: types.ProviderGoogle, Sub: "sub-1"}, nil
}

func TestOAuthRedirectSetsStateCookie(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	h := NewAuthHandler(testLogger(t), &stubRegistration{}, &stubSessions{},
		nil, []services.OAuthClient{fakeOAuthClient{}})
	r := gin.New()
	r.GET("/auth/:provider", h.OAuthRedirect)

	req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("unexpected status: got=%d", rec.Code)
	}
	cookie := rec.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, "oauth_state=") {
		t.Fatalf("expected a state cookie, got %q", cookie)
	}
	location := rec.Header().Get("Location")
	if !strings.Contains(location, "state=") {
		t.Fatalf("redirect must carry the state: %q", location)
	}

	req = httptest.NewRequest(http.MethodGet, "/auth/unknown", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown provider: got=%d want=%d", rec.Code, http.StatusNotFound)
	}
}
