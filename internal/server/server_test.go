package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverscan/coverscan/internal/config"
	"github.com/coverscan/coverscan/internal/ingest"
	"github.com/coverscan/coverscan/internal/model"
	"github.com/coverscan/coverscan/internal/recommend"
	"github.com/coverscan/coverscan/internal/store"
)

type fakeIngestor struct {
	ran chan struct{}
}

func (f *fakeIngestor) Run(ctx context.Context) (*ingest.RunReport, error) {
	f.ran <- struct{}{}
	return &ingest.RunReport{}, nil
}

func testPlan(name, provider string, csr, premium float64) model.Plan {
	return model.Plan{
		PlanName: name, Provider: provider, Source: "seed",
		SumAssuredMin: 25, SumAssuredMax: 2000, PremiumAnnual: premium,
		PolicyTermMin: 10, PolicyTermMax: 40, AgeMin: 18, AgeMax: 65,
		ClaimSettlementRatio: csr,
		KeyFeatures:          []string{"Feature one", "Feature two"},
	}
}

func newTestServer(t *testing.T, plans ...model.Plan) (*httptest.Server, *fakeIngestor) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	if len(plans) > 0 {
		_, err = st.UpsertPlans(context.Background(), plans)
		require.NoError(t, err)
	}

	ingestor := &fakeIngestor{ran: make(chan struct{}, 1)}
	srv := New(
		config.ServerConfig{Port: 0, AllowedOrigins: []string{"http://localhost:5173"}},
		st,
		recommend.NewEngine(st),
		ingestor,
	)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, ingestor
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url string, body any, out any) int {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func validProfile() map[string]any {
	return map[string]any{
		"age":            30,
		"sum_assured":    100,
		"premium_budget": 10000,
		"policy_term":    30,
	}
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	var body map[string]string
	status := getJSON(t, ts.URL+"/api/health", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestPlans(t *testing.T) {
	t.Run("empty store returns empty list", func(t *testing.T) {
		ts, _ := newTestServer(t)
		var plans []model.Plan
		status := getJSON(t, ts.URL+"/api/plans", &plans)
		assert.Equal(t, http.StatusOK, status)
		assert.Empty(t, plans)
	})

	t.Run("ordered by CSR descending", func(t *testing.T) {
		ts, _ := newTestServer(t,
			testPlan("Low", "X", 95, 8000),
			testPlan("High", "Y", 99.5, 9000),
		)
		var plans []model.Plan
		status := getJSON(t, ts.URL+"/api/plans", &plans)
		assert.Equal(t, http.StatusOK, status)
		require.Len(t, plans, 2)
		assert.Equal(t, "High", plans[0].PlanName)
	})

	t.Run("min_csr filter", func(t *testing.T) {
		ts, _ := newTestServer(t,
			testPlan("Low", "X", 95, 8000),
			testPlan("High", "Y", 99.5, 9000),
		)
		var plans []model.Plan
		status := getJSON(t, ts.URL+"/api/plans?min_csr=99", &plans)
		assert.Equal(t, http.StatusOK, status)
		require.Len(t, plans, 1)
		assert.Equal(t, "High", plans[0].PlanName)
	})

	t.Run("source filter", func(t *testing.T) {
		other := testPlan("Other", "Z", 98, 7000)
		other.Source = "bankbazaar"
		ts, _ := newTestServer(t, testPlan("Seeded", "X", 95, 8000), other)

		var plans []model.Plan
		status := getJSON(t, ts.URL+"/api/plans?source=bankbazaar", &plans)
		assert.Equal(t, http.StatusOK, status)
		require.Len(t, plans, 1)
		assert.Equal(t, "Other", plans[0].PlanName)
	})

	t.Run("bad min_csr", func(t *testing.T) {
		ts, _ := newTestServer(t)
		status := getJSON(t, ts.URL+"/api/plans?min_csr=lots", nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestRecommend(t *testing.T) {
	t.Run("empty store is not found", func(t *testing.T) {
		ts, _ := newTestServer(t)
		var body map[string]string
		status := postJSON(t, ts.URL+"/api/recommend", validProfile(), &body)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, noPlansDetail, body["detail"])
	})

	t.Run("rule-based ranking", func(t *testing.T) {
		ts, _ := newTestServer(t,
			testPlan("A", "X", 99, 8000),
			testPlan("B", "Y", 97, 9000),
		)
		var rec model.Recommendation
		status := postJSON(t, ts.URL+"/api/recommend", validProfile(), &rec)
		assert.Equal(t, http.StatusOK, status)
		require.Len(t, rec.RankedPlans, 2)
		assert.Equal(t, "A by X", rec.TopPick)
		assert.Equal(t, 2, rec.TotalPlansAnalyzed)
	})

	t.Run("invalid profile", func(t *testing.T) {
		ts, _ := newTestServer(t, testPlan("A", "X", 99, 8000))
		req := validProfile()
		req["age"] = 10
		status := postJSON(t, ts.URL+"/api/recommend", req, nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("malformed body", func(t *testing.T) {
		ts, _ := newTestServer(t, testPlan("A", "X", 99, 8000))
		resp, err := http.Post(ts.URL+"/api/recommend", "application/json", bytes.NewReader([]byte("{")))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCompare(t *testing.T) {
	planA := testPlan("A", "X", 99, 8000)
	planB := testPlan("B", "Y", 97, 9000)

	t.Run("two plans compared", func(t *testing.T) {
		ts, _ := newTestServer(t, planA, planB)
		req := map[string]any{
			"profile": validProfile(),
			"plans": []map[string]string{
				{"plan_name": "A", "provider": "X"},
				{"plan_name": "B", "provider": "Y"},
			},
		}
		var cmp model.Comparison
		status := postJSON(t, ts.URL+"/api/compare", req, &cmp)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "A", cmp.Winner, "highest CSR wins the rule-based comparison")
		assert.Len(t, cmp.ComparisonTable, 2)
	})

	t.Run("one plan rejected", func(t *testing.T) {
		ts, _ := newTestServer(t, planA, planB)
		req := map[string]any{
			"profile": validProfile(),
			"plans":   []map[string]string{{"plan_name": "A", "provider": "X"}},
		}
		status := postJSON(t, ts.URL+"/api/compare", req, nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("unknown plan is not found", func(t *testing.T) {
		ts, _ := newTestServer(t, planA, planB)
		req := map[string]any{
			"profile": validProfile(),
			"plans": []map[string]string{
				{"plan_name": "A", "provider": "X"},
				{"plan_name": "Ghost", "provider": "Nobody"},
			},
		}
		status := postJSON(t, ts.URL+"/api/compare", req, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestChat(t *testing.T) {
	ts, _ := newTestServer(t, testPlan("A", "X", 99, 8000))

	var ans model.ChatAnswer
	status := postJSON(t, ts.URL+"/api/chat", map[string]string{"question": "which plan is best?"}, &ans)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "rule_based", ans.Method)
	assert.Contains(t, ans.Answer, "A by X")

	status = postJSON(t, ts.URL+"/api/chat", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, status, "question is required")
}

func TestEstimate(t *testing.T) {
	ts, _ := newTestServer(t, testPlan("A", "X", 99, 8000))

	var est model.Estimate
	status := postJSON(t, ts.URL+"/api/estimate", validProfile(), &est)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "rule_based", est.Method)
	assert.True(t, est.AnnualPremiumLow < est.AnnualPremiumHigh)
}

func TestScrape(t *testing.T) {
	ts, ingestor := newTestServer(t)

	var body map[string]string
	status := postJSON(t, ts.URL+"/api/scrape", nil, &body)
	assert.Equal(t, http.StatusAccepted, status)
	assert.Contains(t, body["message"], "background")

	select {
	case <-ingestor.ran:
	case <-time.After(time.Second):
		t.Fatal("scrape trigger never reached the ingestor")
	}
}

func TestStats(t *testing.T) {
	ts, _ := newTestServer(t,
		testPlan("A", "X", 99, 8000),
		testPlan("B", "Y", 97, 9000),
	)

	var stats struct {
		TotalPlans int      `json:"total_plans"`
		Sources    []string `json:"sources"`
	}
	status := getJSON(t, ts.URL+"/api/stats", &stats)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, stats.TotalPlans)
	assert.Equal(t, []string{"seed"}, stats.Sources)
}
