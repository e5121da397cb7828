package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/report-atlas/pkg/metrics"
	"github.com/de-tools/report-atlas/pkg/models/api"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/services/pipeline"
	"github.com/de-tools/report-atlas/pkg/services/reports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, name string) (*pipeline.Outcome, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipeline.Outcome), args.Error(1)
}

type mockHistory struct {
	mock.Mock
}

func (m *mockHistory) List(ctx context.Context, report string, limit int) ([]domain.RunSummary, error) {
	args := m.Called(ctx, report, limit)
	return args.Get(0).([]domain.RunSummary), args.Error(1)
}

func TestWebAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))

	runner := new(mockRunner)
	history := new(mockHistory)
	registry := prometheus.NewRegistry()
	require.NoError(t, metrics.Register(registry))

	started := time.Date(2025, 6, 13, 8, 0, 0, 0, time.UTC)
	runner.On("Run", mock.Anything, "behavior").Return(&pipeline.Outcome{
		RunID:      "run-7",
		Report:     "behavior",
		Title:      "User Behavior Analysis Report",
		State:      pipeline.StateDone,
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
	}, nil)
	history.On("List", mock.Anything, "behavior", 5).Return([]domain.RunSummary{
		{RunID: "run-7", Report: "behavior", State: "done"},
	}, nil)

	webAPI := NewWebAPI(logger, Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		Dependencies: Dependencies{
			Registry: reports.Default(),
			Runner:   runner,
			History:  history,
			Gatherer: registry,
		},
	})
	testServer := httptest.NewServer(webAPI.Handler())
	defer testServer.Close()

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
		expected       interface{}
		parseResponse  func([]byte) (interface{}, error)
	}{
		{
			name:           "ListReports",
			method:         http.MethodGet,
			path:           "/api/v1/reports",
			expectedStatus: http.StatusOK,
			expected:       []api.Report{{Name: "analytics"}, {Name: "behavior"}, {Name: "feedback"}},
			parseResponse:  unmarshalResponse[[]api.Report](),
		},
		{
			name:           "RunReport",
			method:         http.MethodPost,
			path:           "/api/v1/reports/behavior/runs",
			expectedStatus: http.StatusOK,
			expected:       "run-7",
			parseResponse: func(data []byte) (interface{}, error) {
				var run api.Run
				err := json.Unmarshal(data, &run)
				return run.RunID, err
			},
		},
		{
			name:           "RunUnknownReport",
			method:         http.MethodPost,
			path:           "/api/v1/reports/revenue/runs",
			expectedStatus: http.StatusNotFound,
			expected:       api.Error{Message: "unknown report: revenue"},
			parseResponse:  unmarshalResponse[api.Error](),
		},
		{
			name:           "ListRuns",
			method:         http.MethodGet,
			path:           "/api/v1/runs?report=behavior&limit=5",
			expectedStatus: http.StatusOK,
			expected:       1,
			parseResponse: func(data []byte) (interface{}, error) {
				var runs []api.Run
				err := json.Unmarshal(data, &runs)
				return len(runs), err
			},
		},
		{
			name:           "RunsIsReadOnly",
			method:         http.MethodPost,
			path:           "/api/v1/runs",
			expectedStatus: http.StatusMethodNotAllowed,
			expected:       nil,
			parseResponse:  func([]byte) (interface{}, error) { return nil, nil },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, testServer.URL+tc.path, nil)
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "Failed to read response body")

			actual, err := tc.parseResponse(body)
			require.NoError(t, err, "Failed to parse response")

			assert.Equal(t, tc.expected, actual)
		})
	}

	t.Run("Metrics", func(t *testing.T) {
		metrics.RunsTotal.WithLabelValues("behavior", "done").Inc()

		resp, err := http.Get(testServer.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, strings.Contains(string(body), "report_atlas_runs_total"))
	})

	runner.AssertExpectations(t)
	history.AssertExpectations(t)
}

func unmarshalResponse[T any]() func([]byte) (interface{}, error) {
	return func(data []byte) (interface{}, error) {
		var response T
		err := json.Unmarshal(data, &response)
		return response, err
	}
}
