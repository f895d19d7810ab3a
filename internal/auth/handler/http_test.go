package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"rentcar-backoffice/internal/auth/service"
	ltdomain "rentcar-backoffice/internal/logintoken/domain"
	"rentcar-backoffice/internal/security"
	userdomain "rentcar-backoffice/internal/user/domain"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*userdomain.User
}

func (f *memUserRepo) GetByID(_ context.Context, id string) (*userdomain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *memUserRepo) GetByUsernameOrEmail(_ context.Context, identifier string) (*userdomain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == identifier || u.Email == identifier {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *memUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	u, _ := f.GetByUsernameOrEmail(context.Background(), username)
	return u != nil, nil
}

func (f *memUserRepo) Create(_ context.Context, u *userdomain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *memUserRepo) Update(_ context.Context, u *userdomain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return errors.New("user not found")
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

type memTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*ltdomain.LoginToken
}

func (f *memTokenRepo) Create(_ context.Context, t *ltdomain.LoginToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	f.tokens[t.JTI] = &cp
	return nil
}

func (f *memTokenRepo) GetActiveByJTI(_ context.Context, jti string, now time.Time) (*ltdomain.LoginToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[jti]
	if !ok || !t.IsActive || !t.ExpiresAt.After(now) {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *memTokenRepo) DeactivateByJTI(_ context.Context, jti string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tokens[jti]; ok {
		t.IsActive = false
	}
	return nil
}

func (f *memTokenRepo) DeactivateAllByUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.UserID == userID {
			t.IsActive = false
		}
	}
	return nil
}

func (f *memTokenRepo) DeactivateExpired(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type memSender struct {
	mu   sync.Mutex
	last string
}

func (f *memSender) Send(_ context.Context, _, _, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = body
	return nil
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, string, string, string, string, map[string]string) {}

func newTestHandler(t *testing.T, tfa bool) (*Handler, *memSender) {
	t.Helper()
	hasher := security.NewHasher(bcrypt.MinCost)
	hash, err := hasher.Hash([]byte("1"))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	users := &memUserRepo{users: map[string]*userdomain.User{
		"u-admin": {
			ID: "u-admin", FirstName: "Ada", LastName: "Admin",
			Email: "admin@rentcar.example", Username: "admin",
			PasswordHash: hash, Role: userdomain.RoleAdmin,
			TFAEnabled: tfa, IsActive: true,
			CreatedAt: time.Now().UTC(), CreatedBy: "system",
		},
	}}
	provider, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("test token provider: %v", err)
	}
	sender := &memSender{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewAuthService(
		users, &memTokenRepo{tokens: make(map[string]*ltdomain.LoginToken)},
		sender, hasher, provider, nopRecorder{}, logger,
		5*time.Minute, 15*time.Minute,
	)
	return NewHandler(svc, logger), sender
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestLoginEndpointSuccess(t *testing.T) {
	h, _ := newTestHandler(t, false)

	rec := postJSON(t, h.Login, `{"identifier":"admin","password":"1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["token"] == "" || resp["token"] == nil {
		t.Fatal("expected token in response")
	}
	if _, ok := resp["confirmCode"]; ok {
		t.Fatal("confirm code must not appear without TFA")
	}
}

func TestLoginEndpointTFAFlow(t *testing.T) {
	h, sender := newTestHandler(t, true)

	rec := postJSON(t, h.Login, `{"identifier":"admin","password":"1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		TFARequired bool   `json:"tfaRequired"`
		ConfirmCode string `json:"confirmCode"`
		Token       string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.TFARequired || resp.ConfirmCode == "" {
		t.Fatalf("expected challenge response, got %+v", resp)
	}
	if resp.Token != "" {
		t.Fatal("no token before challenge completion")
	}

	// Pull the mailed code and complete.
	sender.mu.Lock()
	body := sender.last
	sender.mu.Unlock()
	code := ""
	for _, word := range strings.Fields(body) {
		word = strings.TrimRight(word, ".")
		if len(word) == 6 {
			code = word
			break
		}
	}
	if code == "" {
		t.Fatalf("no code found in mail body %q", body)
	}

	rec = postJSON(t, h.CompleteTFA,
		`{"identifier":"admin","code":"`+code+`","confirmCode":"`+resp.ConfirmCode+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var done struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &done); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if done.Token == "" {
		t.Fatal("expected token after completion")
	}
}

func TestLoginEndpointUniformFailures(t *testing.T) {
	h, _ := newTestHandler(t, false)

	bodies := []string{
		`{"identifier":"ghost","password":"1"}`,
		`{"identifier":"admin","password":"wrong"}`,
	}
	var messages []string
	for _, b := range bodies {
		rec := postJSON(t, h.Login, b)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s, got %d", b, rec.Code)
		}
		var resp map[string]string
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		messages = append(messages, resp["error"])
	}
	if messages[0] != messages[1] {
		t.Fatalf("failure messages must be identical, got %q and %q", messages[0], messages[1])
	}
}

func TestLoginEndpointBadRequest(t *testing.T) {
	h, _ := newTestHandler(t, false)

	for _, body := range []string{``, `{`, `{"identifier":"admin"}`, `{"unknown":"x"}`} {
		rec := postJSON(t, h.Login, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestTFAEndpointRejectsBadChallenge(t *testing.T) {
	h, _ := newTestHandler(t, true)

	rec := postJSON(t, h.CompleteTFA, `{"identifier":"admin","code":"000000","confirmCode":"nope"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestForgotPasswordEndpointIsUniform(t *testing.T) {
	h, _ := newTestHandler(t, false)

	recKnown := postJSON(t, h.ForgotPassword, `{"identifier":"admin"}`)
	recUnknown := postJSON(t, h.ForgotPassword, `{"identifier":"ghost"}`)
	if recKnown.Code != http.StatusAccepted || recUnknown.Code != http.StatusAccepted {
		t.Fatalf("expected 202 for both, got %d and %d", recKnown.Code, recUnknown.Code)
	}
	if recKnown.Body.String() != recUnknown.Body.String() {
		t.Fatal("responses must not reveal whether the account exists")
	}
}
