package middlewares_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmunozv/crudhub/internal/domain/user"
	"github.com/dmunozv/crudhub/internal/http/middlewares"
	"github.com/dmunozv/crudhub/internal/security"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeChecker struct {
	users map[string]user.User
}

func (f *fakeChecker) GetByEmail(ctx context.Context, email string) (user.User, error) {
	u, ok := f.users[email]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func newChecker(t *testing.T) *fakeChecker {
	t.Helper()

	hash, err := security.HashPassword("secret123")

	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	return &fakeChecker{users: map[string]user.User{
		"alice@example.com": {ID: 7, Name: "Alice", Email: "alice@example.com", PasswordHash: hash, Role: user.RoleUser},
		"admin@example.com": {ID: 1, Name: "Admin", Email: "admin@example.com", PasswordHash: hash, Role: user.RoleAdmin},
	}}
}

func authRouter(t *testing.T, extra ...gin.HandlerFunc) *gin.Engine {
	t.Helper()

	auth := middlewares.NewAuthMiddleware(newChecker(t))

	r := gin.New()

	chain := append([]gin.HandlerFunc{auth.RequireAuth()}, extra...)
	chain = append(chain, func(c *gin.Context) {
		email, _ := middlewares.EmailFromContext(c)
		id, _ := middlewares.UserIDFromContext(c)
		role, _ := middlewares.RoleFromContext(c)

		c.JSON(http.StatusOK, gin.H{"email": email, "id": id, "role": role})
	})

	r.GET("/whoami", chain...)

	return r
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		password   string
		noHeader   bool
		wantStatus int
	}{
		{name: "valid credentials", email: "alice@example.com", password: "secret123", wantStatus: http.StatusOK},
		{name: "missing header", noHeader: true, wantStatus: http.StatusUnauthorized},
		{name: "unknown email", email: "ghost@example.com", password: "secret123", wantStatus: http.StatusUnauthorized},
		{name: "wrong password", email: "alice@example.com", password: "nope", wantStatus: http.StatusUnauthorized},
	}

	r := authRouter(t)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)

			if !tc.noHeader {
				req.SetBasicAuth(tc.email, tc.password)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}

			if tc.wantStatus == http.StatusUnauthorized {
				if got := w.Header().Get("WWW-Authenticate"); got == "" {
					t.Fatal("missing WWW-Authenticate challenge")
				}
			}
		})
	}
}

func TestRequireAuthStashesPrincipal(t *testing.T) {
	r := authRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.SetBasicAuth("alice@example.com", "secret123")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}

	body := w.Body.String()

	for _, want := range []string{`"email":"alice@example.com"`, `"id":7`, `"role":"USER"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("body %s missing %s", body, want)
		}
	}
}

func TestRequireRole(t *testing.T) {
	auth := middlewares.NewAuthMiddleware(newChecker(t))

	r := gin.New()
	r.GET("/admin-only", auth.RequireAuth(), auth.RequireRole(user.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name       string
		email      string
		wantStatus int
	}{
		{name: "admin passes", email: "admin@example.com", wantStatus: http.StatusOK},
		{name: "plain user forbidden", email: "alice@example.com", wantStatus: http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
			req.SetBasicAuth(tc.email, "secret123")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
		})
	}
}
