package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventreward/pkg/errutil"
	"eventreward/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	zap.ReplaceGlobals(zap.NewNop())
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestError_RendersBaseError(t *testing.T) {
	r := gin.New()
	r.Use(Error())
	r.GET("/x", func(c *gin.Context) {
		_ = c.Error(errutil.NotFound("event not found", errors.New("sql: no rows"),
			errutil.WithDetails(errutil.Detail{Field: "eventId", Message: "unknown"})))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decode(t, rec)
	require.Equal(t, http.StatusNotFound, env.StatusCode)
	require.Equal(t, "event not found", env.Message)
	require.Equal(t, errutil.StatusNotFound, env.Error.Code)
	require.Len(t, env.Error.Details, 1)
	require.NotContains(t, rec.Body.String(), "sql: no rows")
}

func TestError_HidesUnknownErrors(t *testing.T) {
	r := gin.New()
	r.Use(Error())
	r.GET("/x", func(c *gin.Context) {
		_ = c.Error(errors.New("dial tcp 10.0.0.1: refused"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "10.0.0.1")
	require.Equal(t, errutil.StatusInternal, decode(t, rec).Error.Code)
}

func TestError_LeavesWrittenResponses(t *testing.T) {
	r := gin.New()
	r.Use(Error())
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusTeapot, "short and stout")
		_ = c.Error(errutil.Internal("late", nil))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Equal(t, "short and stout", rec.Body.String())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/x", func(c *gin.Context) { seen = GetRequestID(c.Request.Context()) })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	r.ServeHTTP(rec, req)
	require.Equal(t, "req-1", seen)
	require.Equal(t, "req-1", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.NotEmpty(t, seen)
	require.NotEqual(t, "req-1", seen)
}

func newGuardedRouter(t *testing.T) (*gin.Engine, *token.Issuer) {
	t.Helper()

	issuer, err := token.New("0123456789abcdef0123456789abcdef", "eventreward", time.Minute, time.Hour)
	require.NoError(t, err)
	enforcer, err := NewDefaultEnforcer()
	require.NoError(t, err)

	r := gin.New()
	r.Use(Error())
	api := r.Group("/api/v1", Authenticate(issuer), Authorize(enforcer))
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	api.POST("/events", ok)
	api.GET("/events/:id/rewards", ok)
	api.POST("/reward-requests", ok)
	api.GET("/reward-requests", ok)
	api.PUT("/users/:userId/roles", ok)
	return r, issuer
}

func bearer(t *testing.T, issuer *token.Issuer, roles ...string) string {
	t.Helper()
	pair, err := issuer.Issue(token.Subject{UserID: "u1", Roles: roles})
	require.NoError(t, err)
	return "Bearer " + pair.AccessToken
}

func TestAuthenticateAndAuthorize(t *testing.T) {
	r, issuer := newGuardedRouter(t)

	refresh, err := issuer.Issue(token.Subject{UserID: "u1", Roles: []string{"ADMIN"}})
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		want   int
	}{
		{name: "no token", method: http.MethodPost, path: "/api/v1/events", want: http.StatusUnauthorized},
		{name: "wrong scheme", method: http.MethodPost, path: "/api/v1/events", auth: "Basic abc", want: http.StatusUnauthorized},
		{name: "refresh token rejected", method: http.MethodPost, path: "/api/v1/events", auth: "Bearer " + refresh.RefreshToken, want: http.StatusUnauthorized},
		{name: "user cannot create events", method: http.MethodPost, path: "/api/v1/events", auth: bearer(t, issuer, "USER"), want: http.StatusForbidden},
		{name: "operator creates events", method: http.MethodPost, path: "/api/v1/events", auth: bearer(t, issuer, "OPERATOR"), want: http.StatusNoContent},
		{name: "user lists rewards", method: http.MethodGet, path: "/api/v1/events/42/rewards", auth: bearer(t, issuer, "USER"), want: http.StatusNoContent},
		{name: "user submits", method: http.MethodPost, path: "/api/v1/reward-requests", auth: bearer(t, issuer, "USER"), want: http.StatusNoContent},
		{name: "operator cannot submit", method: http.MethodPost, path: "/api/v1/reward-requests", auth: bearer(t, issuer, "OPERATOR"), want: http.StatusForbidden},
		{name: "auditor lists all", method: http.MethodGet, path: "/api/v1/reward-requests", auth: bearer(t, issuer, "AUDITOR"), want: http.StatusNoContent},
		{name: "any role matches", method: http.MethodGet, path: "/api/v1/reward-requests", auth: bearer(t, issuer, "USER", "AUDITOR"), want: http.StatusNoContent},
		{name: "admin passes", method: http.MethodPost, path: "/api/v1/reward-requests", auth: bearer(t, issuer, "ADMIN"), want: http.StatusNoContent},
		{name: "only admin updates roles", method: http.MethodPut, path: "/api/v1/users/7/roles", auth: bearer(t, issuer, "OPERATOR"), want: http.StatusForbidden},
		{name: "admin updates roles", method: http.MethodPut, path: "/api/v1/users/7/roles", auth: bearer(t, issuer, "ADMIN"), want: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			r.ServeHTTP(rec, req)
			require.Equal(t, tt.want, rec.Code)
		})
	}
}
