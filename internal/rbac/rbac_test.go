package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckerDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)

	assert.True(t, c.Has(RoleAdmin, PermConfigView))
	assert.True(t, c.Has(RoleAdmin, "anything:else"))

	assert.True(t, c.Has(RolePsychologist, PermScoreCompute))
	assert.True(t, c.Has(RolePsychologist, PermSessionView))
	assert.True(t, c.Has(RolePsychologist, "session:export"))
	assert.False(t, c.Has(RolePsychologist, "user:manage"))

	assert.False(t, c.Has("participant", PermSessionView))
	assert.False(t, c.Has("", PermSessionView))
	assert.True(t, c.Any(RolePsychologist, "user:manage", PermConfigView))
}

func TestMatchPerm(t *testing.T) {
	assert.True(t, matchPerm("*", "a:b"))
	assert.True(t, matchPerm("a:b", "a:b"))
	assert.True(t, matchPerm("a:*", "a:c"))
	assert.False(t, matchPerm("a:*", "b:c"))
	assert.False(t, matchPerm("a:b", "a:bc"))
}

func TestRequire(t *testing.T) {
	h := Require(PermScoreCompute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		role string
		want int
	}{
		{"", http.StatusForbidden},
		{"participant", http.StatusForbidden},
		{RolePsychologist, http.StatusNoContent},
		{RoleAdmin, http.StatusNoContent},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/score", nil)
		if tt.role != "" {
			req = req.WithContext(WithRole(context.Background(), tt.role))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tt.want, rec.Code, "role %q", tt.role)
	}
}
