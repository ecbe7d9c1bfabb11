package authn_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/exodologio/exodologio/internal/app/features/authn"
	resetstore "github.com/exodologio/exodologio/internal/app/store/resets"
	userstore "github.com/exodologio/exodologio/internal/app/store/users"
	"github.com/exodologio/exodologio/internal/app/system/auth"
	"github.com/exodologio/exodologio/internal/app/system/indexes"
	"github.com/exodologio/exodologio/internal/app/system/mailer"
	"github.com/exodologio/exodologio/internal/app/system/ratelimit"
	"github.com/exodologio/exodologio/internal/testutil"
)

type authnEnv struct {
	router  http.Handler
	users   *userstore.Store
	resets  *resetstore.Store
	limiter *ratelimit.Limiter
}

func newAuthnEnv(t *testing.T, db *mongo.Database) *authnEnv {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	if err := auth.InitSessionStore("0123456789abcdef0123456789abcdef", "", false, zap.NewNop()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { auth.Store = nil })

	users := userstore.New(db)
	resets := resetstore.New(db)
	limiter := ratelimit.New(100, time.Minute)
	h := authn.NewHandler(users, resets, nil,
		mailer.New(mailer.Config{}, zap.NewNop()),
		limiter, "http://localhost:3000", zap.NewNop())
	return &authnEnv{router: authn.Routes(h), users: users, resets: resets, limiter: limiter}
}

func (e *authnEnv) postJSON(path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterThenLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	env := newAuthnEnv(t, db)

	rec := env.postJSON("/register", map[string]string{
		"email":        "Maria@Test.GR",
		"password":     "secret9",
		"display_name": "Μαρία",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("register did not set a session cookie")
	}
	var created struct {
		User struct {
			Email       string `json:"email"`
			DisplayName string `json:"display_name"`
			AuthMethod  string `json:"auth_method"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.User.Email != "maria@test.gr" {
		t.Errorf("email not normalized: %q", created.User.Email)
	}
	if created.User.AuthMethod != "password" {
		t.Errorf("auth_method = %q", created.User.AuthMethod)
	}

	// Login works with the original (un-normalized) spelling.
	rec = env.postJSON("/login", map[string]string{
		"email":    "  MARIA@test.gr ",
		"password": "secret9",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body)
	}
}

func TestRegisterValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	env := newAuthnEnv(t, db)

	cases := []struct {
		name     string
		body     map[string]string
		wantCode int
		wantErr  string
	}{
		{"bad email", map[string]string{"email": "nope", "password": "secret9"},
			http.StatusBadRequest, "invalid-email"},
		{"short password", map[string]string{"email": "a@b.gr", "password": "abc"},
			http.StatusBadRequest, "weak-password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.postJSON("/register", tc.body, nil)
			if rec.Code != tc.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantCode)
			}
			var body map[string]string
			json.Unmarshal(rec.Body.Bytes(), &body)
			if body["error"] != tc.wantErr {
				t.Errorf("error = %q, want %q", body["error"], tc.wantErr)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	env := newAuthnEnv(t, db)

	body := map[string]string{"email": "dup@test.gr", "password": "secret9"}
	if rec := env.postJSON("/register", body, nil); rec.Code != http.StatusCreated {
		t.Fatalf("first register: %d", rec.Code)
	}
	rec := env.postJSON("/register", body, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", rec.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	env := newAuthnEnv(t, db)

	env.postJSON("/register", map[string]string{"email": "x@test.gr", "password": "secret9"}, nil)

	rec := env.postJSON("/login", map[string]string{"email": "x@test.gr", "password": "wrong99"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", rec.Code)
	}
	// Unknown accounts answer identically so emails cannot be probed.
	rec = env.postJSON("/login", map[string]string{"email": "ghost@test.gr", "password": "whatever"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown account status = %d, want 401", rec.Code)
	}
}

func TestLoginRateLimited(t *testing.T) {
	db := testutil.SetupTestDB(t)
	env := newAuthnEnv(t, db)

	// A tight limiter just for this test.
	h := authn.NewHandler(env.users, env.resets, nil,
		mailer.New(mailer.Config{}, zap.NewNop()),
		ratelimit.New(2, time.Minute), "http://localhost:3000", zap.NewNop())
	router := authn.Routes(h)

	for i := 0; i < 3; i++ {
		raw, _ := json.Marshal(map[string]string{"email": "x@test.gr", "password": "bad"})
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(raw))
		req.Header.Set("X-Forwarded-For", "198.51.100.9")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if i < 2 && rec.Code == http.StatusTooManyRequests {
			t.Fatalf("attempt %d limited too early", i+1)
		}
		if i == 2 && rec.Code != http.StatusTooManyRequests {
			t.Errorf("attempt 3 status = %d, want 429", rec.Code)
		}
	}
}

func TestSessionAndLogout(t *testing.T) {
	db := testutil.SetupTestDB(t)
	env := newAuthnEnv(t, db)

	rec := env.postJSON("/register", map[string]string{"email": "s@test.gr", "password": "secret9"}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d", rec.Code)
	}
	cookies := rec.Result().Cookies()

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec2 := httptest.NewRecorder()
	withSession(env.router).ServeHTTP(rec2, req)
	if rec2.Code != http.StatusOK {
		t.Fatalf("session status = %d, body %s", rec2.Code, rec2.Body)
	}
	var got struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	json.Unmarshal(rec2.Body.Bytes(), &got)
	if got.User.Email != "s@test.gr" {
		t.Errorf("session user = %q", got.User.Email)
	}

	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec3 := httptest.NewRecorder()
	withSession(env.router).ServeHTTP(rec3, req)
	if rec3.Code != http.StatusNoContent {
		t.Errorf("logout status = %d, want 204", rec3.Code)
	}

	// Without a cookie the session endpoint refuses.
	rec4 := httptest.NewRecorder()
	withSession(env.router).ServeHTTP(rec4, httptest.NewRequest(http.MethodGet, "/session", nil))
	if rec4.Code != http.StatusUnauthorized {
		t.Errorf("anonymous session status = %d, want 401", rec4.Code)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	env := newAuthnEnv(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	env.postJSON("/register", map[string]string{"email": "r@test.gr", "password": "oldpass9"}, nil)

	// The request endpoint answers 204 for known and unknown emails alike.
	for _, email := range []string{"r@test.gr", "ghost@test.gr"} {
		rec := env.postJSON("/password-reset", map[string]string{"email": email}, nil)
		if rec.Code != http.StatusNoContent {
			t.Errorf("password-reset(%s) status = %d, want 204", email, rec.Code)
		}
	}

	u, err := env.users.GetByEmail(ctx, "r@test.gr")
	if err != nil {
		t.Fatal(err)
	}
	token, err := env.resets.Issue(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}

	rec := env.postJSON("/password-reset/complete", map[string]string{
		"token":    token,
		"password": "newpass9",
	}, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("complete status = %d, body %s", rec.Code, rec.Body)
	}

	// Old password out, new password in.
	if rec := env.postJSON("/login", map[string]string{"email": "r@test.gr", "password": "oldpass9"}, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("old password still accepted: %d", rec.Code)
	}
	if rec := env.postJSON("/login", map[string]string{"email": "r@test.gr", "password": "newpass9"}, nil); rec.Code != http.StatusOK {
		t.Errorf("new password rejected: %d", rec.Code)
	}

	// Tokens are single use.
	rec = env.postJSON("/password-reset/complete", map[string]string{
		"token":    token,
		"password": "another9",
	}, nil)
	if rec.Code == http.StatusNoContent {
		t.Error("consumed token accepted a second time")
	}
}

// withSession wraps the router with the cookie-loading middleware the app
// installs globally, so /session and /logout see the signed-in user.
func withSession(next http.Handler) http.Handler {
	return auth.LoadSessionUser(next)
}
