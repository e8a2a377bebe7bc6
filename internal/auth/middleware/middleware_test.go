package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/228Abobus228/SPTOVZ/internal/rbac"
)

func newTestAuth(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService("test-secret",
		Account{Username: "admin", PassHash: string(hash), Role: rbac.RoleAdmin},
		Account{Username: "psy", PassHash: string(hash), Role: rbac.RolePsychologist},
		Account{Username: "", PassHash: string(hash), Role: rbac.RoleAdmin},
		Account{Username: "nohash", Role: rbac.RoleAdmin},
	)
}

func TestIssueAndParse(t *testing.T) {
	a := newTestAuth(t)
	tok, err := a.IssueJWT("psy", rbac.RolePsychologist)
	require.NoError(t, err)

	c, err := a.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "psy", c.Sub)
	assert.Equal(t, rbac.RolePsychologist, c.Role)

	other := NewAuthService("another-secret")
	_, err = other.Parse(tok)
	assert.Error(t, err)

	a.now = func() time.Time { return time.Now().Add(-24 * time.Hour) }
	expired, err := a.IssueJWT("psy", rbac.RolePsychologist)
	require.NoError(t, err)
	_, err = a.Parse(expired)
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	a := newTestAuth(t)

	acc, err := a.Authenticate("admin", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAdmin, acc.Role)

	_, err = a.Authenticate("admin", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = a.Authenticate("nohash", "")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = a.Authenticate("", "s3cret")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestLoginHandler(t *testing.T) {
	a := newTestAuth(t)
	h := LoginHandler(a)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":" psy ","password":"s3cret"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"psychologist"`)
	assert.Contains(t, rec.Body.String(), `"access_token":"`)

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"psy","password":"nope"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJWTMiddleware(t *testing.T) {
	a := newTestAuth(t)
	var gotSub, gotRole string
	h := JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub = SubjectFromContext(r.Context())
		gotRole = rbac.RoleFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := a.IssueJWT("admin", rbac.RoleAdmin)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", gotSub)
	assert.Equal(t, rbac.RoleAdmin, gotRole)
}
