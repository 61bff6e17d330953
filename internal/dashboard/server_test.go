package dashboard

import (
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-credit-lab/internal/observability"
)

func newTestServer(t *testing.T) (*Server, *observability.Metrics) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics("test", reg)
	return NewServer(NewTable(sampleTable()), m, reg, nil), m
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestServer_GetWallet(t *testing.T) {
	s, m := newTestServer(t)

	rec := get(t, s, "/api/wallets/user_1")
	require.Equal(t, http.StatusOK, rec.Code)

	var hit LookupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hit))
	assert.True(t, hit.Found)
	assert.Equal(t, "User_1", hit.Name)
	assert.Equal(t, "0xaaa", hit.Wallet)
	require.NotNil(t, hit.Score)
	assert.Equal(t, 812.5, *hit.Score)
	assert.Equal(t, "Low", hit.RiskCategory)

	rec = get(t, s, "/api/wallets/User_42")
	require.Equal(t, http.StatusOK, rec.Code, "a miss is not an error")

	var miss LookupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &miss))
	assert.False(t, miss.Found)
	assert.Equal(t, NotFoundNotice, miss.Notice)
	assert.Nil(t, miss.Score)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LookupsTotal.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LookupsTotal.WithLabelValues("miss")))
}

func TestServer_GetDistribution(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/api/distribution?bins=4")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DistributionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "predicted_score", resp.ScoreColumn)
	assert.Equal(t, 4, resp.Total)
	assert.Len(t, resp.Bins, 4)

	rec = get(t, s, "/api/distribution")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Bins, DefaultHistogramBins)

	rec = get(t, s.WithBins(10), "/api/distribution")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Bins, 10)

	for _, bad := range []string{"0", "-1", "abc", "501"} {
		rec = get(t, s, "/api/distribution?bins="+bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestServer_GetDistributionImage(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/distribution.png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	_, err := png.Decode(rec.Body)
	assert.NoError(t, err)
}

func TestServer_GetRiskBreakdown(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/api/risk-breakdown")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RiskBreakdownResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []RiskTier{
		{Category: "High", Count: 2},
		{Category: "Low", Count: 1},
		{Category: "Medium", Count: 1},
	}, resp.Tiers)
}

func TestServer_GetIndex(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Wallet Credit Scores</h1>")
	assert.Contains(t, body, "4 wallets")
	assert.Contains(t, body, "<td>High</td><td>2</td>")

	rec = get(t, s, "/?name=user_3")
	assert.Contains(t, rec.Body.String(), "<td>0xccc</td>")
	assert.Contains(t, rec.Body.String(), "<td>450.00</td>")

	rec = get(t, s, "/?name=nobody")
	assert.Contains(t, rec.Body.String(), NotFoundNotice)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, HealthResponse{Status: "ok", Wallets: 4}, health)

	get(t, s, "/api/wallets/User_1")
	rec = get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "test_dashboard_lookups_total"), rec.Body.String())
}
