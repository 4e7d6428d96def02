package ui

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairlens/app"
	"fairlens/domain/schema"
	"fairlens/internal/config"
	"fairlens/internal/errors"
	"fairlens/internal/testkit"
)

func newTestServer() *Server {
	kit := testkit.NewKit()
	svc := app.NewAuditService(kit.TableSource(80), kit.RunRepository(), schema.Adult(),
		config.PipelineConfig{Seed: 42, TestFraction: 0.25, MinRows: 10, TrimOutliers: true},
		config.ModelConfig{EnsembleTreeCount: 25, EnsembleMaxDepth: 6, LinearRegularizationStrength: 1.0})
	return NewServer(svc, gin.TestMode)
}

func get(srv *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.router.ServeHTTP(w, req)
	return w
}

func post(srv *Server, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(http.MethodPost, path, nil)
	} else {
		req = httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	srv.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestHealthz(t *testing.T) {
	srv := newTestServer()

	w := get(srv, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRunEndpointReturnsSummary(t *testing.T) {
	srv := newTestServer()

	w := post(srv, "/api/v1/audit/run", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var summary struct {
		ID         string                     `json:"id"`
		Seed       int64                      `json:"seed"`
		Families   []string                   `json:"families"`
		RecallGaps map[string]json.RawMessage `json:"recall_gaps"`
		TrainSize  int                        `json:"train_size"`
		TestSize   int                        `json:"test_size"`
	}
	decode(t, w, &summary)

	assert.NotEmpty(t, summary.ID)
	assert.Equal(t, int64(42), summary.Seed)
	assert.Equal(t, []string{"logistic_regression", "random_forest"}, summary.Families)
	assert.Len(t, summary.RecallGaps, 2)
	assert.Equal(t, 80, summary.TrainSize+summary.TestSize)

	latest := get(srv, "/api/v1/audit/latest")
	require.Equal(t, http.StatusOK, latest.Code)
	var latestSummary struct {
		ID string `json:"id"`
	}
	decode(t, latest, &latestSummary)
	assert.Equal(t, summary.ID, latestSummary.ID)
}

func TestRunEndpointHonorsOverrides(t *testing.T) {
	srv := newTestServer()

	w := post(srv, "/api/v1/audit/run", `{"seed": 7}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var summary struct {
		Seed int64 `json:"seed"`
	}
	decode(t, w, &summary)
	assert.Equal(t, int64(7), summary.Seed)
}

func TestRunEndpointRejectsMalformedBody(t *testing.T) {
	srv := newTestServer()

	w := post(srv, "/api/v1/audit/run", `{"seed": "not a number"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Code string `json:"code"`
	}
	decode(t, w, &resp)
	assert.Equal(t, errors.CodeInvalidParameter, resp.Code)
}

func TestRunEndpointRejectsBadFraction(t *testing.T) {
	srv := newTestServer()

	w := post(srv, "/api/v1/audit/run", `{"test_fraction": 2.0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Code string `json:"code"`
	}
	decode(t, w, &resp)
	assert.Equal(t, errors.CodeInvalidParameter, resp.Code)
}

func TestLatestBeforeAnyRun(t *testing.T) {
	srv := newTestServer()

	w := get(srv, "/api/v1/audit/latest")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunDetailAndSubresources(t *testing.T) {
	srv := newTestServer()

	w := post(srv, "/api/v1/audit/run", "")
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		ID string `json:"id"`
	}
	decode(t, w, &summary)
	base := "/api/v1/audit/runs/" + summary.ID

	detail := get(srv, base)
	require.Equal(t, http.StatusOK, detail.Code)
	var run struct {
		Reports      []json.RawMessage `json:"reports"`
		FeatureNames []string          `json:"feature_names"`
	}
	decode(t, detail, &run)
	assert.Len(t, run.Reports, 2)
	assert.NotEmpty(t, run.FeatureNames)

	reports := get(srv, base+"/reports")
	require.Equal(t, http.StatusOK, reports.Code)
	var reportsBody struct {
		Reports []struct {
			Family string `json:"family"`
		} `json:"reports"`
	}
	decode(t, reports, &reportsBody)
	require.Len(t, reportsBody.Reports, 2)
	assert.Equal(t, "logistic_regression", reportsBody.Reports[0].Family)

	features := get(srv, base+"/features")
	require.Equal(t, http.StatusOK, features.Code)
	var featureBody struct {
		FeatureNames []string  `json:"feature_names"`
		Coefficients []float64 `json:"coefficients"`
	}
	decode(t, features, &featureBody)
	assert.Equal(t, len(featureBody.FeatureNames), len(featureBody.Coefficients))

	page := get(srv, base+"/dataset?offset=0&limit=5")
	require.Equal(t, http.StatusOK, page.Code)
	var pageBody struct {
		Total   int               `json:"total"`
		Records []json.RawMessage `json:"records"`
	}
	decode(t, page, &pageBody)
	assert.Equal(t, 80, pageBody.Total)
	assert.Len(t, pageBody.Records, 5)

	badPage := get(srv, base+"/dataset?limit=abc")
	assert.Equal(t, http.StatusBadRequest, badPage.Code)

	expl := get(srv, base+"/explanation")
	require.Equal(t, http.StatusOK, expl.Code)
	var explBody struct {
		Narrative string `json:"narrative"`
	}
	decode(t, expl, &explBody)
	assert.Contains(t, explBody.Narrative, "# Fairness Audit")

	htmlResp := get(srv, base+"/explanation.html")
	require.Equal(t, http.StatusOK, htmlResp.Code)
	assert.Contains(t, htmlResp.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, htmlResp.Body.String(), "<h1")
}

func TestUnknownRunIs404(t *testing.T) {
	srv := newTestServer()

	w := get(srv, "/api/v1/audit/runs/no-such-run")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp struct {
		Code string `json:"code"`
	}
	decode(t, w, &resp)
	assert.Equal(t, errors.CodeNotFound, resp.Code)
}

func TestStatusForMapping(t *testing.T) {
	cases := map[string]int{
		errors.CodeInvalidParameter: http.StatusBadRequest,
		errors.CodeConfigInvalid:    http.StatusBadRequest,
		errors.CodeNotFound:         http.StatusNotFound,
		errors.CodeDataUnavailable:  http.StatusBadGateway,
		errors.CodeInsufficientData: http.StatusUnprocessableEntity,
		errors.CodeTrainingFailed:   http.StatusUnprocessableEntity,
		errors.CodeStorageError:     http.StatusInternalServerError,
		errors.CodeInternalError:    http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, statusFor(code), "code %s", code)
	}
}
