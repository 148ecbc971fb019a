package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpadapter "github.com/gustmaps/windshear-service/internal/adapter/http"
	"github.com/gustmaps/windshear-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func newTestServer(readyErr error) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, domain.Projector{}, slog.Default())
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(fmt.Errorf("not ready yet"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Contains(t, body["error"], "not ready yet")
}

func TestMetricsEndpointExists(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

const projectionBody = `{
	"measured_height": 50,
	"target_height": 120,
	"roughness": [0.75],
	"series": [{
		"location": {"lon": 6.03, "lat": 50.81},
		"points": [{"time": "2015-01-01T00:00:00Z", "value": 5.457981}]
	}]
}`

func TestProjectionsReturnsProjectedSeries(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/projections", strings.NewReader(projectionBody))

	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		MeasuredHeight float64         `json:"measured_height"`
		TargetHeight   float64         `json:"target_height"`
		Series         []domain.Series `json:"series"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 50.0, body.MeasuredHeight)
	assert.Equal(t, 120.0, body.TargetHeight)
	require.Len(t, body.Series, 1)
	require.Len(t, body.Series[0].Points, 1)
	assert.InEpsilon(t, 6.595749, body.Series[0].Points[0].Value, 1e-5)
}

func TestProjectionsRejectsMalformedJSON(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/projections", strings.NewReader("{oops"))

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjectionsRejectsInvalidParameters(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{
			"roughness equals measured height",
			`{"measured_height":50,"target_height":120,"roughness":[50],
			 "series":[{"location":{"lon":6,"lat":50},"points":[{"time":"2015-01-01T00:00:00Z","value":5}]}]}`,
		},
		{
			"negative target height",
			`{"measured_height":50,"target_height":-120,"roughness":[0.75],
			 "series":[{"location":{"lon":6,"lat":50},"points":[{"time":"2015-01-01T00:00:00Z","value":5}]}]}`,
		},
		{
			"roughness count mismatch",
			`{"measured_height":50,"target_height":120,"roughness":[0.75,0.5,0.3],
			 "series":[{"location":{"lon":6,"lat":50},"points":[{"time":"2015-01-01T00:00:00Z","value":5}]}]}`,
		},
		{
			"misaligned series",
			`{"measured_height":50,"target_height":120,"roughness":[0.75],
			 "series":[
				{"location":{"lon":6,"lat":50},"points":[{"time":"2015-01-01T00:00:00Z","value":5}]},
				{"location":{"lon":7,"lat":50},"points":[]}
			 ]}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(nil)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/projections", strings.NewReader(tc.body))

			srv.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}
