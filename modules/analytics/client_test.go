package analytics_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/guarzo/gazettefeed/common"
	"github.com/guarzo/gazettefeed/common/model"
	"github.com/guarzo/gazettefeed/modules/analytics"
)

func TestGA4Client_RunReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/properties/123:runReport", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var req model.ReportRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sessions", req.Metrics[0].Name)
		assert.Equal(t, "2024-01-01", req.DateRanges[0].StartDate)

		_, _ = w.Write([]byte(`{"rows":[{"dimensionValues":[{"value":"202401"}],"metricValues":[{"value":"42"}]}],"rowCount":1}`))
	}))
	defer srv.Close()

	auth := common.NewStaticTokenAuth(&oauth2.Token{AccessToken: "tok", TokenType: "Bearer"}, nil)
	client, err := analytics.NewGA4Client(context.Background(), srv.URL, "123", "test", auth, nil)
	require.NoError(t, err)

	resp, err := client.RunReport(context.Background(), model.ReportRequest{
		DateRanges: []model.ReportDateRange{{StartDate: "2024-01-01", EndDate: "today"}},
		Metrics:    []model.Metric{{Name: "sessions"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "42", resp.Rows[0].MetricValues[0].Value)
}

func TestGA4Client_Forbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"status":"PERMISSION_DENIED"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	auth := common.NewStaticTokenAuth(&oauth2.Token{AccessToken: "tok"}, nil)
	client, err := analytics.NewGA4Client(context.Background(), srv.URL, "123", "test", auth, nil)
	require.NoError(t, err)

	_, err = client.RunReport(context.Background(), model.ReportRequest{})
	require.Error(t, err)
	assert.True(t, common.IsStatus(err, http.StatusForbidden))
}
