package analytics_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guarzo/gazettefeed/common"
	"github.com/guarzo/gazettefeed/common/model"
	"github.com/guarzo/gazettefeed/modules/analytics"
)

func row(dims []string, metrics ...string) model.ReportRow {
	var r model.ReportRow
	for _, d := range dims {
		r.DimensionValues = append(r.DimensionValues, model.ReportValue{Value: d})
	}
	for _, m := range metrics {
		r.MetricValues = append(r.MetricValues, model.ReportValue{Value: m})
	}
	return r
}

type fakeGA4 struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeGA4) RunReport(_ context.Context, req model.ReportRequest) (*model.ReportResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	dims := ""
	for _, d := range req.Dimensions {
		dims += d.Name + ","
	}
	switch dims {
	case "yearMonth,eventName,":
		return &model.ReportResponse{Rows: []model.ReportRow{
			row([]string{"202402", "Monthly subscription"}, "3", "30"),
			row([]string{"202401", "Annual subscription"}, "1", "100"),
			row([]string{"202401", "purchase"}, "2", "20.5"),
		}}, nil
	case "sessionDefaultChannelGroup,eventName,":
		return &model.ReportResponse{Rows: []model.ReportRow{
			row([]string{"Direct", "Purchase"}, "1", "10"),
			row([]string{"Organic Search", "Monthly subscription"}, "2", "20"),
			row([]string{"Organic Search", "Annual subscription"}, "1", "100"),
		}}, nil
	case "yearMonth,":
		return &model.ReportResponse{Rows: []model.ReportRow{
			row([]string{"202401"}, "100"),
			row([]string{"202402"}, "150"),
		}}, nil
	case "sessionDefaultChannelGroup,":
		return &model.ReportResponse{Rows: []model.ReportRow{
			row([]string{"Organic Search"}, "200", "150", "120"),
			row([]string{"Direct"}, "100", "80", "60"),
		}}, nil
	}
	return &model.ReportResponse{}, nil
}

func TestDashboard(t *testing.T) {
	client := &fakeGA4{}
	cache := common.NewCache[model.Dashboard]("analytics", 50)
	svc := analytics.NewAnalyticsService(client, cache, true, nil)

	d, err := svc.Dashboard(context.Background(), "", "")
	require.NoError(t, err)

	assert.Equal(t, model.KPIs{Monthly: 3, Annual: 1, Purchases: 2, Revenue: 150.5}, d.KPIs)

	wantTrend := []model.TrendPoint{
		{YearMonth: "202401", Label: "Jan 24", Annual: 1, Purchase: 2},
		{YearMonth: "202402", Label: "Feb 24", Monthly: 3},
	}
	if diff := cmp.Diff(wantTrend, d.Trend); diff != "" {
		t.Errorf("trend mismatch (-want +got):\n%s", diff)
	}

	wantSources := []model.SourceStats{
		{Channel: "Organic Search", Total: 3, Monthly: 2, Annual: 1, Revenue: 120},
		{Channel: "Direct", Total: 1, Purchases: 1, Revenue: 10},
	}
	if diff := cmp.Diff(wantSources, d.Sources); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, d.Traffic, 2)
	assert.Equal(t, "Feb 24", d.Traffic[1].Label)
	assert.Equal(t, 150, d.Traffic[1].Sessions)

	require.Len(t, d.Channels, 2)
	assert.Equal(t, 66.7, d.Channels[0].Pct)
	assert.Equal(t, 33.3, d.Channels[1].Pct)
	assert.Equal(t, 60, d.Channels[1].NewUsers)

	assert.True(t, d.ShowRevenue)
	assert.Equal(t, model.DateRange{Start: "2020-01-01", End: "today"}, d.DateRange)
	assert.Equal(t, 4, client.calls)

	_, err = svc.Dashboard(context.Background(), "2020-01-01", "today")
	require.NoError(t, err)
	assert.Equal(t, 4, client.calls, "second call should be served from cache")
}

func TestDashboard_Error(t *testing.T) {
	client := &fakeGA4{err: errors.New("quota exceeded")}
	svc := analytics.NewAnalyticsService(client, common.NewCache[model.Dashboard]("analytics", 50), false, nil)

	_, err := svc.Dashboard(context.Background(), "2024-01-01", "2024-02-01")
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestFormatYearMonth(t *testing.T) {
	assert.Equal(t, "Jan 24", analytics.FormatYearMonth("202401"))
	assert.Equal(t, "Dec 09", analytics.FormatYearMonth("200912"))
	assert.Equal(t, "202413", analytics.FormatYearMonth("202413"))
	assert.Equal(t, "bad", analytics.FormatYearMonth("bad"))
}
