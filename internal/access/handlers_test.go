package access

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbd888/pressgate/internal/catalog"
	"github.com/mbd888/pressgate/internal/subscription"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(f *fixture) *gin.Engine {
	r := gin.New()
	NewHandler(f.mgr).RegisterRoutes(r.Group("/v1"))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVerifyAccess_HTTP_Granted(t *testing.T) {
	f := newFixture()
	r := setupRouter(f)

	w := doJSON(t, r, http.MethodPost, "/v1/access/verify", gin.H{
		"userId":    "user1",
		"contentId": "article-1",
		"level":     "public",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var d Decision
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.True(t, d.Granted)
	assert.Equal(t, catalog.TierFree, d.Tier)
	assert.NotEmpty(t, d.AccessToken)
}

func TestVerifyAccess_HTTP_Denied(t *testing.T) {
	f := newFixture()
	r := setupRouter(f)

	w := doJSON(t, r, http.MethodPost, "/v1/access/verify", gin.H{
		"userId":    "user1",
		"contentId": "article-1",
		"level":     "premium",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var d Decision
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.False(t, d.Granted)
	assert.Equal(t, ReasonTierInsufficient, d.DenialReason)
	assert.Equal(t, 1.99, d.PayPerViewPrice)
}

func TestVerifyAccess_HTTP_MissingBody(t *testing.T) {
	f := newFixture()
	r := setupRouter(f)

	w := doJSON(t, r, http.MethodPost, "/v1/access/verify", gin.H{"userId": "user1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_request")
}

func TestVerifyAccess_HTTP_BadLevel(t *testing.T) {
	f := newFixture()
	r := setupRouter(f)

	w := doJSON(t, r, http.MethodPost, "/v1/access/verify", gin.H{
		"userId":    "user1",
		"contentId": "article-1",
		"level":     "vip",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_level")
}

func TestUserStats_HTTP(t *testing.T) {
	f := newFixture()
	r := setupRouter(f)

	_, err := f.subs.Create(context.Background(), "user1", catalog.PlanPremium, "card", subscription.BillingMonthly)
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, "/v1/users/user1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats UserStatistics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, catalog.TierPremium, stats.Tier)
}

func TestGlobalStats_HTTP(t *testing.T) {
	f := newFixture()
	r := setupRouter(f)

	w := doJSON(t, r, http.MethodGet, "/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats GlobalStatistics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 0, stats.TotalUsers)
	assert.NotNil(t, stats.TierDistribution)
}
