package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskflow/internal/domain"
	"taskflow/internal/service"
)

type mockUserRepo struct {
	usersByID    map[string]domain.User
	usersByEmail map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	user.PasswordHash = ""
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	id, ok := m.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.usersByID[id], nil
}

func (m *mockUserRepo) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	if _, ok := m.usersByEmail[email]; ok {
		return true, nil
	}
	for _, u := range m.usersByID {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func newAuthRouter(t *testing.T, repo *mockUserRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtSvc := newTestJWTService(t)
	userSvc := service.NewUserService(zap.NewNop(), repo, nil)
	authH := NewAuthHandler(zap.NewNop(), userSvc, jwtSvc)
	taskH := NewTaskHandler(zap.NewNop(), service.NewTaskService(zap.NewNop(), newMockTaskRepo()))
	return NewRouter(zap.NewNop(), jwtSvc, authH, taskH)
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthHandler_RegisterSuccess(t *testing.T) {
	repo := newMockUserRepo()
	r := newAuthRouter(t, repo)

	rec := postJSON(t, r, "/api/auth/register", gin.H{
		"username": "alice",
		"email":    "alice@x.com",
		"password": "secret1",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Message string                 `json:"message"`
		Token   string                 `json:"token"`
		User    map[string]interface{} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Token == "" {
		t.Fatalf("expected token in response")
	}
	if body.User["username"] != "alice" {
		t.Fatalf("unexpected user: %+v", body.User)
	}
	for _, key := range []string{"password", "password_hash"} {
		if _, ok := body.User[key]; ok {
			t.Fatalf("response user must not carry %q", key)
		}
	}
}

func TestAuthHandler_RegisterDuplicateConflict(t *testing.T) {
	repo := newMockUserRepo()
	r := newAuthRouter(t, repo)

	rec := postJSON(t, r, "/api/auth/register", gin.H{
		"username": "alice", "email": "alice@x.com", "password": "secret1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("first register: expected 201, got %d", rec.Code)
	}

	// Mismo email, username distinto: falla sin decir qué campo chocó.
	rec = postJSON(t, r, "/api/auth/register", gin.H{
		"username": "alice2", "email": "alice@x.com", "password": "secret2",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "Registration failed" {
		t.Fatalf("unexpected message: %q", body["error"])
	}

	if len(repo.usersByID) != 1 {
		t.Fatalf("expected exactly one stored user, got %d", len(repo.usersByID))
	}
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	r := newAuthRouter(t, newMockUserRepo())

	cases := []gin.H{
		{"email": "alice@x.com", "password": "secret1"},
		{"username": "alice", "email": "not-an-email", "password": "secret1"},
		{"username": "alice", "email": "alice@x.com", "password": "short"},
	}
	for i, payload := range cases {
		rec := postJSON(t, r, "/api/auth/register", payload)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("case %d: expected 400, got %d", i, rec.Code)
		}
	}
}

func TestAuthHandler_LoginUniformFailure(t *testing.T) {
	repo := newMockUserRepo()
	r := newAuthRouter(t, repo)

	rec := postJSON(t, r, "/api/auth/register", gin.H{
		"username": "alice", "email": "alice@x.com", "password": "secret1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", rec.Code)
	}

	wrongPass := postJSON(t, r, "/api/auth/login", gin.H{
		"email": "alice@x.com", "password": "wrong1",
	})
	noUser := postJSON(t, r, "/api/auth/login", gin.H{
		"email": "ghost@x.com", "password": "secret1",
	})

	if wrongPass.Code != http.StatusUnauthorized || noUser.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongPass.Code, noUser.Code)
	}
	if wrongPass.Body.String() != noUser.Body.String() {
		t.Fatalf("failure responses must be indistinguishable: %q vs %q",
			wrongPass.Body.String(), noUser.Body.String())
	}
}

func TestAuthHandler_LoginThenMe(t *testing.T) {
	repo := newMockUserRepo()
	r := newAuthRouter(t, repo)

	rec := postJSON(t, r, "/api/auth/register", gin.H{
		"username": "alice", "email": "alice@x.com", "password": "secret1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", rec.Code)
	}

	rec = postJSON(t, r, "/api/auth/login", gin.H{
		"email": "alice@x.com", "password": "secret1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var login struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	meRec := httptest.NewRecorder()
	r.ServeHTTP(meRec, req)

	if meRec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", meRec.Code)
	}
	var me struct {
		User struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	if err := json.Unmarshal(meRec.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.User.ID != login.User.ID || me.User.Username != "alice" {
		t.Fatalf("unexpected me response: %+v", me.User)
	}
}
