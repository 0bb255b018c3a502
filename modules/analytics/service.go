package analytics

import (
	"context"
	"math"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/guarzo/gazettefeed/common"
	"github.com/guarzo/gazettefeed/common/model"
)

const (
	// DashboardTTL is how long an assembled dashboard is reused.
	DashboardTTL = 5 * time.Minute

	DefaultStartDate = "2020-01-01"
	DefaultEndDate   = "today"

	eventMonthly  = "Monthly subscription"
	eventAnnual   = "Annual subscription"
	eventPurchase = "Purchase"
)

var conversionEvents = []string{eventMonthly, eventAnnual, eventPurchase, "purchase"}

// AnalyticsService assembles the subscription and traffic dashboard.
type AnalyticsService interface {
	Dashboard(ctx context.Context, startDate, endDate string) (*model.Dashboard, error)
}

type analyticsService struct {
	client      GA4Client
	cache       common.CacheRepository[model.Dashboard]
	showRevenue bool
	logger      *zap.Logger
}

func NewAnalyticsService(client GA4Client, cache common.CacheRepository[model.Dashboard], showRevenue bool, logger *zap.Logger) AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &analyticsService{client: client, cache: cache, showRevenue: showRevenue, logger: logger}
}

// Dashboard runs the four reports concurrently and aggregates them. Empty
// dates default to the whole history up to today.
func (s *analyticsService) Dashboard(ctx context.Context, startDate, endDate string) (*model.Dashboard, error) {
	if startDate == "" {
		startDate = DefaultStartDate
	}
	if endDate == "" {
		endDate = DefaultEndDate
	}

	key := common.GenerateKey("analytics", startDate, endDate)
	if cached, ok := s.cache.Get(key); ok {
		return &cached, nil
	}

	dates := []model.ReportDateRange{{StartDate: startDate, EndDate: endDate}}
	requests := [4]model.ReportRequest{
		conversionsReport(dates),
		sourcesReport(dates),
		trafficReport(dates),
		channelsReport(dates),
	}
	var responses [4]*model.ReportResponse

	g, gctx := errgroup.WithContext(ctx)
	for i := range requests {
		g.Go(func() error {
			resp, err := s.client.RunReport(gctx, requests[i])
			responses[i] = resp
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	kpis, trend := aggregateConversions(responses[0].Rows)
	dashboard := model.Dashboard{
		KPIs:        kpis,
		Trend:       trend,
		Sources:     aggregateSources(responses[1].Rows),
		Traffic:     aggregateTraffic(responses[2].Rows),
		Channels:    aggregateChannels(responses[3].Rows),
		ShowRevenue: s.showRevenue,
		DateRange:   model.DateRange{Start: startDate, End: endDate},
	}

	s.cache.Set(key, dashboard, DashboardTTL)
	s.logger.Debug("analytics dashboard assembled",
		zap.String("start", startDate),
		zap.String("end", endDate),
		zap.Int("trend", len(trend)))
	return &dashboard, nil
}

func conversionFilter() *model.FilterExpression {
	return &model.FilterExpression{Filter: &model.Filter{
		FieldName:    "eventName",
		InListFilter: &model.InListFilter{Values: conversionEvents},
	}}
}

func byYearMonth() []model.OrderBy {
	return []model.OrderBy{{Dimension: &model.DimensionOrderBy{DimensionName: "yearMonth"}}}
}

func conversionsReport(dates []model.ReportDateRange) model.ReportRequest {
	return model.ReportRequest{
		DateRanges:      dates,
		Dimensions:      []model.Dimension{{Name: "yearMonth"}, {Name: "eventName"}},
		Metrics:         []model.Metric{{Name: "eventCount"}, {Name: "eventValue"}},
		DimensionFilter: conversionFilter(),
		OrderBys:        byYearMonth(),
		Limit:           1000,
	}
}

func sourcesReport(dates []model.ReportDateRange) model.ReportRequest {
	return model.ReportRequest{
		DateRanges:      dates,
		Dimensions:      []model.Dimension{{Name: "sessionDefaultChannelGroup"}, {Name: "eventName"}},
		Metrics:         []model.Metric{{Name: "eventCount"}, {Name: "eventValue"}},
		DimensionFilter: conversionFilter(),
		Limit:           1000,
	}
}

func trafficReport(dates []model.ReportDateRange) model.ReportRequest {
	return model.ReportRequest{
		DateRanges: dates,
		Dimensions: []model.Dimension{{Name: "yearMonth"}},
		Metrics:    []model.Metric{{Name: "sessions"}},
		OrderBys:   byYearMonth(),
		Limit:      1000,
	}
}

func channelsReport(dates []model.ReportDateRange) model.ReportRequest {
	return model.ReportRequest{
		DateRanges: dates,
		Dimensions: []model.Dimension{{Name: "sessionDefaultChannelGroup"}},
		Metrics:    []model.Metric{{Name: "sessions"}, {Name: "totalUsers"}, {Name: "newUsers"}},
		OrderBys:   []model.OrderBy{{Metric: &model.MetricOrderBy{MetricName: "sessions"}, Desc: true}},
		Limit:      50,
	}
}

func aggregateConversions(rows []model.ReportRow) (model.KPIs, []model.TrendPoint) {
	var kpis model.KPIs
	trend := map[string]*model.TrendPoint{}

	for _, row := range rows {
		ym, event := dim(row, 0), dim(row, 1)
		count, value := metricInt(row, 0), metricFloat(row, 1)

		point, ok := trend[ym]
		if !ok {
			point = &model.TrendPoint{YearMonth: ym, Label: FormatYearMonth(ym)}
			trend[ym] = point
		}
		switch event {
		case eventMonthly:
			kpis.Monthly += count
			point.Monthly += count
		case eventAnnual:
			kpis.Annual += count
			point.Annual += count
		case eventPurchase, "purchase":
			kpis.Purchases += count
			point.Purchase += count
		}
		kpis.Revenue += value
	}

	out := make([]model.TrendPoint, 0, len(trend))
	for _, p := range trend {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].YearMonth < out[j].YearMonth })
	return kpis, out
}

func aggregateSources(rows []model.ReportRow) []model.SourceStats {
	sources := map[string]*model.SourceStats{}
	var order []string

	for _, row := range rows {
		channel, event := dim(row, 0), dim(row, 1)
		count, value := metricInt(row, 0), metricFloat(row, 1)

		src, ok := sources[channel]
		if !ok {
			src = &model.SourceStats{Channel: channel}
			sources[channel] = src
			order = append(order, channel)
		}
		switch event {
		case eventMonthly:
			src.Monthly += count
		case eventAnnual:
			src.Annual += count
		case eventPurchase, "purchase":
			src.Purchases += count
		}
		src.Revenue += value
	}

	out := make([]model.SourceStats, 0, len(order))
	for _, ch := range order {
		src := sources[ch]
		src.Total = src.Monthly + src.Annual + src.Purchases
		out = append(out, *src)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

func aggregateTraffic(rows []model.ReportRow) []model.TrafficPoint {
	out := make([]model.TrafficPoint, 0, len(rows))
	for _, row := range rows {
		ym := dim(row, 0)
		out = append(out, model.TrafficPoint{
			YearMonth: ym,
			Label:     FormatYearMonth(ym),
			Sessions:  metricInt(row, 0),
		})
	}
	return out
}

func aggregateChannels(rows []model.ReportRow) []model.ChannelStats {
	total := 0
	for _, row := range rows {
		total += metricInt(row, 0)
	}

	out := make([]model.ChannelStats, 0, len(rows))
	for _, row := range rows {
		sessions := metricInt(row, 0)
		var pct float64
		if total > 0 {
			pct = math.Round(float64(sessions)/float64(total)*1000) / 10
		}
		out = append(out, model.ChannelStats{
			Channel:  dim(row, 0),
			Sessions: sessions,
			Users:    metricInt(row, 1),
			NewUsers: metricInt(row, 2),
			Pct:      pct,
		})
	}
	return out
}

var monthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// FormatYearMonth turns "202401" into "Jan 24". Anything else is returned
// unchanged.
func FormatYearMonth(ym string) string {
	if len(ym) != 6 {
		return ym
	}
	m, err := strconv.Atoi(ym[4:6])
	if err != nil || m < 1 || m > 12 {
		return ym
	}
	return monthNames[m-1] + " " + ym[2:4]
}

func dim(row model.ReportRow, i int) string {
	if i < len(row.DimensionValues) {
		return row.DimensionValues[i].Value
	}
	return ""
}

func metricInt(row model.ReportRow, i int) int {
	if i >= len(row.MetricValues) {
		return 0
	}
	n, err := strconv.Atoi(row.MetricValues[i].Value)
	if err != nil {
		return 0
	}
	return n
}

func metricFloat(row model.ReportRow, i int) float64 {
	if i >= len(row.MetricValues) {
		return 0
	}
	f, err := strconv.ParseFloat(row.MetricValues[i].Value, 64)
	if err != nil {
		return 0
	}
	return f
}
