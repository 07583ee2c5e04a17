package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventreward/services/testutil"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, h HealthService, path string) (*httptest.ResponseRecorder, Health) {
	t.Helper()
	r := gin.New()
	Register(r, h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestLiveness(t *testing.T) {
	rec, body := serve(t, ProvideHealth(HealthParams{}), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, statusHealthy, body.Status)
}

func TestReadiness(t *testing.T) {
	db := testutil.NewTestDB(t)

	rec, body := serve(t, ProvideHealth(HealthParams{DB: db}), "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []Dependency{{Name: "database", Status: statusHealthy, Message: "OK"}}, body.Deps)
}

func TestReadinessReportsFailures(t *testing.T) {
	db := testutil.NewTestDB(t)
	// nothing listens on port 1
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	rec, body := serve(t, ProvideHealth(HealthParams{DB: db, Redis: rdb}), "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, statusUnhealthy, body.Status)
	require.Len(t, body.Deps, 2)
	require.Equal(t, statusHealthy, body.Deps[0].Status)
	require.Equal(t, "redis", body.Deps[1].Name)
	require.Equal(t, statusUnhealthy, body.Deps[1].Status)
}
