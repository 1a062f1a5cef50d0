package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/respira/wellness-api/internal/api/session"
	"github.com/respira/wellness-api/internal/core/domain"
	"github.com/respira/wellness-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn       func(ctx context.Context, in ports.RegisterInput) (*domain.User, *domain.TokenPair, error)
	loginFn          func(ctx context.Context, login, password string) (*domain.User, *domain.TokenPair, error)
	refreshFn        func(ctx context.Context, token string) (*domain.User, string, error)
	currentUserFn    func(ctx context.Context, id string) (*domain.User, error)
	updateUsernameFn func(ctx context.Context, id, username string) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput, _ domain.ClientInfo) (*domain.User, *domain.TokenPair, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, login, password string, _ domain.ClientInfo) (*domain.User, *domain.TokenPair, error) {
	return s.loginFn(ctx, login, password)
}

func (s *stubAuthService) Refresh(ctx context.Context, token string, _ domain.ClientInfo) (*domain.User, string, error) {
	return s.refreshFn(ctx, token)
}

func (s *stubAuthService) CurrentUser(ctx context.Context, id string) (*domain.User, error) {
	return s.currentUserFn(ctx, id)
}

func (s *stubAuthService) UpdateUsername(ctx context.Context, id, username string, _ domain.ClientInfo) (*domain.User, error) {
	return s.updateUsernameFn(ctx, id, username)
}

var testCookies = session.Cookies{AccessTTL: 15 * time.Minute, RefreshTTL: 7 * 24 * time.Hour}

var adminRole = domain.Role{ID: "r-admin", Name: "admin"}

func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func responseCookies(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, ck := range (&http.Response{Header: rec.Header()}).Cookies() {
		out[ck.Name] = ck
	}
	return out
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected echo.HTTPError, got %v", err)
	}
	return he.Code
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, *domain.TokenPair, error) {
			if in.Username != "alice" || in.RoleName != "user" || in.Email != "a@x.com" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.Firstname != "Alice" {
				t.Fatalf("firstname not sanitized: %q", in.Firstname)
			}
			return &domain.User{
				ID:           "u1",
				Username:     in.Username,
				Email:        in.Email,
				PasswordHash: "$2a$12$hash",
				Role:         domain.Role{ID: "r-user", Name: "user"},
			}, &domain.TokenPair{AccessToken: "acc", RefreshToken: "ref"}, nil
		},
	}
	h := NewAuthHandler(stub, testCookies)

	c, rec := newJSONContext(http.MethodPost, "/auth/register",
		`{"username":"alice","firstname":"<b>Alice</b>","email":"a@x.com","password":"secret123","roleName":"user"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") || strings.Contains(rec.Body.String(), "$2a$") {
		t.Fatalf("password leaked: %s", rec.Body.String())
	}

	var resp struct {
		Result map[string]any `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Result["username"] != "alice" || resp.Result["_id"] != "u1" {
		t.Fatalf("unexpected result: %+v", resp.Result)
	}
	role, _ := resp.Result["role"].(map[string]any)
	if role["name"] != "user" {
		t.Fatalf("expected expanded role, got %+v", resp.Result["role"])
	}

	cookies := responseCookies(rec)
	if cookies[session.AccessTokenCookie].Value != "acc" || cookies[session.RefreshTokenCookie].Value != "ref" {
		t.Fatalf("session cookies not set: %v", rec.Header().Values("Set-Cookie"))
	}
	if !cookies[session.RefreshTokenCookie].HttpOnly {
		t.Fatalf("refresh cookie must be HttpOnly")
	}
}

func TestAuthHandler_Register_Errors(t *testing.T) {
	cases := []struct {
		name string
		body string
		err  error
	}{
		{"exists", `{"username":"bob","email":"b@x.com","password":"pw","roleName":"user"}`, domain.ErrUserExists},
		{"unknown role", `{"username":"bob","email":"b@x.com","password":"pw","roleName":"wizard"}`, domain.ErrInvalidRole},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubAuthService{
				registerFn: func(context.Context, ports.RegisterInput) (*domain.User, *domain.TokenPair, error) {
					return nil, nil, tc.err
				},
			}
			c, rec := newJSONContext(http.MethodPost, "/auth/register", tc.body)
			err := NewAuthHandler(stub, testCookies).Register(c)
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
			if len(rec.Header().Values("Set-Cookie")) != 0 {
				t.Fatalf("no cookies expected on failure")
			}
		})
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, *domain.TokenPair, error) {
			t.Fatalf("should not be called")
			return nil, nil, nil
		},
	}
	h := NewAuthHandler(stub, testCookies)

	for name, body := range map[string]string{
		"not json":      "not-json",
		"missing email": `{"username":"bob","password":"pw","roleName":"user"}`,
		"bad email":     `{"username":"bob","email":"nope","password":"pw","roleName":"user"}`,
	} {
		t.Run(name, func(t *testing.T) {
			c, _ := newJSONContext(http.MethodPost, "/auth/register", body)
			if code := statusOf(t, h.Register(c)); code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", code)
			}
		})
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, login, password string) (*domain.User, *domain.TokenPair, error) {
			if login != "alice" || password != "secret123" {
				t.Fatalf("unexpected args: %s %s", login, password)
			}
			return &domain.User{ID: "u1", Username: "alice", Role: adminRole},
				&domain.TokenPair{AccessToken: "acc", RefreshToken: "ref"}, nil
		},
	}
	c, rec := newJSONContext(http.MethodPost, "/auth/login", `{"login":"alice","password":"secret123"}`)

	if err := NewAuthHandler(stub, testCookies).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Result map[string]any `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Result["_id"] != "u1" {
		t.Fatalf("unexpected result: %+v", resp.Result)
	}
	if len(responseCookies(rec)) != 2 {
		t.Fatalf("expected both cookies, got %v", rec.Header().Values("Set-Cookie"))
	}
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	for _, want := range []error{domain.ErrInvalidCredentials, domain.ErrUserNotFound} {
		stub := &stubAuthService{
			loginFn: func(context.Context, string, string) (*domain.User, *domain.TokenPair, error) {
				return nil, nil, want
			},
		}
		c, rec := newJSONContext(http.MethodPost, "/auth/login", `{"login":"alice","password":"bad"}`)
		if err := NewAuthHandler(stub, testCookies).Login(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
		if len(rec.Header().Values("Set-Cookie")) != 0 {
			t.Fatalf("no cookies expected on failure")
		}
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	stub := &stubAuthService{
		refreshFn: func(_ context.Context, token string) (*domain.User, string, error) {
			if token != "ref" {
				return nil, "", domain.ErrInvalidRefreshToken
			}
			return &domain.User{ID: "u1", Role: adminRole}, "new-acc", nil
		},
	}
	h := NewAuthHandler(stub, testCookies)

	c, rec := newJSONContext(http.MethodPost, "/auth/refresh", "")
	c.Request().AddCookie(&http.Cookie{Name: session.RefreshTokenCookie, Value: "ref"})
	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cookies := responseCookies(rec)
	if cookies[session.AccessTokenCookie].Value != "new-acc" {
		t.Fatalf("access cookie not renewed")
	}
	if _, ok := cookies[session.RefreshTokenCookie]; ok {
		t.Fatalf("refresh cookie must not be reissued")
	}

	c, _ = newJSONContext(http.MethodPost, "/auth/refresh", "")
	c.Request().AddCookie(&http.Cookie{Name: session.RefreshTokenCookie, Value: "forged"})
	if err := h.Refresh(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestAuthHandler_Logout_ClearsCookies(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, testCookies)

	for i := 0; i < 2; i++ {
		c, rec := newJSONContext(http.MethodPost, "/auth/logout", "")
		if err := h.Logout(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		for _, name := range []string{session.AccessTokenCookie, session.RefreshTokenCookie} {
			ck, ok := responseCookies(rec)[name]
			if !ok || ck.Value != "" || ck.MaxAge >= 0 {
				t.Fatalf("cookie %s not cleared: %+v", name, ck)
			}
		}
	}
}

func TestAuthHandler_Me(t *testing.T) {
	stub := &stubAuthService{
		currentUserFn: func(_ context.Context, id string) (*domain.User, error) {
			if id != "u1" {
				return nil, domain.ErrUserNotFound
			}
			return &domain.User{ID: "u1", Username: "alice", PasswordHash: "h", Role: adminRole}, nil
		},
	}
	h := NewAuthHandler(stub, testCookies)

	c, rec := newJSONContext(http.MethodGet, "/auth/mon-compte", "")
	session.SetUser(c, &domain.User{ID: "u1"})
	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["username"] != "alice" {
		t.Fatalf("expected bare user, got %+v", body)
	}
	if _, ok := body["password"]; ok {
		t.Fatalf("password leaked")
	}

	c, _ = newJSONContext(http.MethodGet, "/auth/mon-compte", "")
	if err := h.Me(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated without session user, got %v", err)
	}
}

func TestAuthHandler_UpdateUsername(t *testing.T) {
	stub := &stubAuthService{
		updateUsernameFn: func(_ context.Context, id, username string) (*domain.User, error) {
			if username == "taken" {
				return nil, domain.ErrUsernameTaken
			}
			return &domain.User{ID: id, Username: username, Role: adminRole}, nil
		},
	}
	h := NewAuthHandler(stub, testCookies)

	c, rec := newJSONContext(http.MethodPut, "/auth/update-username", `{"username":"alicia"}`)
	session.SetUser(c, &domain.User{ID: "u1"})
	if err := h.UpdateUsername(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Message string         `json:"message"`
		User    map[string]any `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message == "" || resp.User["username"] != "alicia" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	c, _ = newJSONContext(http.MethodPut, "/auth/update-username", `{"username":"taken"}`)
	session.SetUser(c, &domain.User{ID: "u1"})
	if err := h.UpdateUsername(c); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	c, _ = newJSONContext(http.MethodPut, "/auth/update-username", `{}`)
	session.SetUser(c, &domain.User{ID: "u1"})
	if code := statusOf(t, h.UpdateUsername(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing username, got %d", code)
	}
}
