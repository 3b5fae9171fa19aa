package simulation

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cavusmuhammed68/ICC-IEEE/app"
	"github.com/cavusmuhammed68/ICC-IEEE/config"
	"github.com/cavusmuhammed68/ICC-IEEE/core/factory"
	"github.com/cavusmuhammed68/ICC-IEEE/core/metrics/eco"
	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
	"github.com/cavusmuhammed68/ICC-IEEE/core/trace"
	"github.com/cavusmuhammed68/ICC-IEEE/infra/metrics"
)

func init() { gin.SetMode(gin.TestMode) }

func newTestServer(t *testing.T, token string) (*Server, eco.Store) {
	t.Helper()
	cfg := config.Default()
	cfg.API.Token = token
	store, err := trace.NewJSONLStore(filepath.Join(t.TempDir(), "runs.jsonl"))
	require.NoError(t, err)
	ecoStore := eco.NewMemoryStore()
	sink, err := metrics.NewEcoSink(ecoStore, 56, prometheus.NewRegistry())
	require.NoError(t, err)
	svc, err := app.New(cfg, app.WithStore(store), app.WithSink(sink))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return NewServer(svc, WithEcoStore(ecoStore, 56)), ecoStore
}

func do(t *testing.T, h http.Handler, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sampleRequest() DispatchRequest {
	t0 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	t1, t2 := t0.Add(time.Hour), t0.Add(2*time.Hour)
	return DispatchRequest{Steps: []StepRequest{
		{Time: &t0, Demand: 1, Price: 10},
		{Time: &t1, Demand: 3, Price: 100},
		{Time: &t2, Demand: 1, Price: 20},
	}}
}

type dispatchBody struct {
	ID      string `json:"id"`
	Variant string `json:"variant"`
	Result  struct {
		Records []json.RawMessage `json:"records"`
	} `json:"result"`
	Energy struct {
		BatteryDischarged float64 `json:"battery_discharged"`
		FuelCell          float64 `json:"fuel_cell"`
		GridImport        float64 `json:"grid_import"`
	} `json:"energy"`
	Market *json.RawMessage `json:"market"`
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, "")
	rec := do(t, srv.Router(), http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestDispatchStandalone(t *testing.T) {
	srv, _ := newTestServer(t, "")
	rec := do(t, srv.Router(), http.MethodPost, "/api/v1/dispatch", sampleRequest(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body dispatchBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.ID)
	assert.Equal(t, "standalone", body.Variant)
	assert.Len(t, body.Result.Records, 3)
	assert.InDelta(t, 2.5, body.Energy.BatteryDischarged, 1e-9)
	assert.InDelta(t, 2.5, body.Energy.FuelCell, 1e-9)
	assert.InDelta(t, 0, body.Energy.GridImport, 1e-9)
	assert.Nil(t, body.Market)
}

func TestDispatchOverrides(t *testing.T) {
	srv, _ := newTestServer(t, "")
	req := sampleRequest()
	req.Variant = "market"
	soc := 0.0
	req.InitialSoCKWh = &soc
	req.FuelCell = &model.FuelCellParams{PowerLimitKW: 2}
	rec := do(t, srv.Router(), http.MethodPost, "/api/v1/dispatch", req, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body dispatchBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "market", body.Variant)
	assert.InDelta(t, 0, body.Energy.BatteryDischarged, 1e-9)
	assert.InDelta(t, 5, body.Energy.GridImport, 1e-9)
	assert.NotNil(t, body.Market)
}

func TestDispatchRejects(t *testing.T) {
	srv, _ := newTestServer(t, "")
	router := srv.Router()

	tests := []struct {
		name string
		body any
		code string
	}{
		{"no steps", DispatchRequest{}, "INVALID_REQUEST"},
		{"negative demand", DispatchRequest{Steps: []StepRequest{{Demand: -1}}}, "INVALID_REQUEST"},
		{"unknown variant", DispatchRequest{Variant: "recovery", Steps: []StepRequest{{Demand: 1}}}, "INVALID_REQUEST"},
		{"soc above capacity", func() DispatchRequest {
			r := sampleRequest()
			soc := 50.0
			r.InitialSoCKWh = &soc
			return r
		}(), "INVALID_CONFIG"},
		{"unknown rates", func() DispatchRequest {
			r := sampleRequest()
			r.Rates = &factory.ModuleConfig{Type: "nope"}
			return r
		}(), "INVALID_RATES"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/v1/dispatch", tt.body, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			var er ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &er))
			assert.Equal(t, tt.code, er.Error.Code)
		})
	}
}

func TestRecoveryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, "")
	router := srv.Router()

	rec := do(t, router, http.MethodPost, "/api/v1/recovery", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out app.RecoveryOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.Adaptive.Curve, 16)
	assert.Len(t, out.RuleBased.Rows, 16)
	assert.InDelta(t, 0.5, out.StepCapKW, 1e-9)

	rec = do(t, router, http.MethodPost, "/api/v1/recovery", map[string]any{"minutes": 5}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.Adaptive.Curve, 5)

	rec = do(t, router, http.MethodPost, "/api/v1/recovery", map[string]any{"minutes": -3}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunsRequiresToken(t *testing.T) {
	srv, _ := newTestServer(t, "secret")
	router := srv.Router()

	rec := do(t, router, http.MethodPost, "/api/v1/dispatch", sampleRequest(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/runs", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	auth := map[string]string{"Authorization": "Bearer secret"}
	rec = do(t, router, http.MethodGet, "/api/v1/runs?variant=standalone", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []trace.RunRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Empty(t, runs[0].Records)

	rec = do(t, router, http.MethodGet, "/api/v1/runs?records=true", nil, auth)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Len(t, runs[0].Records, 3)

	rec = do(t, router, http.MethodGet, "/api/v1/runs?variant=market", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/v1/runs?start=yesterday", nil, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rotated := NewServer(srv.svc, WithToken("rotated")).Router()
	rec = do(t, rotated, http.MethodGet, "/api/v1/runs", nil, auth)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEcoKPI(t *testing.T) {
	srv, _ := newTestServer(t, "")
	router := srv.Router()

	rec := do(t, router, http.MethodPost, "/api/v1/dispatch", sampleRequest(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/kpi/eco?variant=standalone&start=2023-01-01T00:00:00Z&end=2023-01-02T00:00:00Z", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var kpis []KPI
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kpis))
	require.Len(t, kpis, 1)
	assert.Equal(t, "2023-01-01", kpis[0].Date)
	assert.InDelta(t, 5, kpis[0].LocalKWh, 1e-9)
	assert.InDelta(t, 280, kpis[0].CO2Avoided, 1e-9)
	assert.InDelta(t, 1, kpis[0].SelfSufficiency, 1e-9)

	rec = do(t, router, http.MethodGet, "/api/v1/kpi/eco?start=2023-01-03T00:00:00Z&end=2023-01-01T00:00:00Z", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_QUERY")
}

func TestNotFoundEnvelope(t *testing.T) {
	srv, _ := newTestServer(t, "")
	rec := do(t, srv.Router(), http.MethodGet, "/api/v1/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var er ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &er))
	assert.Equal(t, "NOT_FOUND", er.Error.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/dispatch", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPanicRecovered(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/boom", func(*gin.Context) { panic("boom") })
	rec := do(t, router, http.MethodGet, "/boom", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}
