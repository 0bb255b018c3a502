package model

// ---------------------------------------------------
// GA4 Data API (runReport)
// ---------------------------------------------------

type ReportRequest struct {
	DateRanges      []ReportDateRange `json:"dateRanges"`
	Dimensions      []Dimension       `json:"dimensions,omitempty"`
	Metrics         []Metric          `json:"metrics"`
	DimensionFilter *FilterExpression `json:"dimensionFilter,omitempty"`
	OrderBys        []OrderBy         `json:"orderBys,omitempty"`
	Limit           int               `json:"limit,omitempty"`
}

type ReportDateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type Dimension struct {
	Name string `json:"name"`
}

type Metric struct {
	Name string `json:"name"`
}

type FilterExpression struct {
	Filter *Filter `json:"filter,omitempty"`
}

type Filter struct {
	FieldName    string        `json:"fieldName"`
	InListFilter *InListFilter `json:"inListFilter,omitempty"`
}

type InListFilter struct {
	Values []string `json:"values"`
}

type OrderBy struct {
	Dimension *DimensionOrderBy `json:"dimension,omitempty"`
	Metric    *MetricOrderBy    `json:"metric,omitempty"`
	Desc      bool              `json:"desc,omitempty"`
}

type DimensionOrderBy struct {
	DimensionName string `json:"dimensionName"`
}

type MetricOrderBy struct {
	MetricName string `json:"metricName"`
}

type ReportResponse struct {
	Rows     []ReportRow `json:"rows"`
	RowCount int         `json:"rowCount"`
}

type ReportRow struct {
	DimensionValues []ReportValue `json:"dimensionValues"`
	MetricValues    []ReportValue `json:"metricValues"`
}

type ReportValue struct {
	Value string `json:"value"`
}

// ---------------------------------------------------
// Analytics dashboard
// ---------------------------------------------------

type KPIs struct {
	Monthly   int     `json:"monthly"`
	Annual    int     `json:"annual"`
	Purchases int     `json:"purchases"`
	Revenue   float64 `json:"revenue"`
}

type TrendPoint struct {
	YearMonth string `json:"yearMonth"`
	Label     string `json:"label"`
	Monthly   int    `json:"monthly"`
	Annual    int    `json:"annual"`
	Purchase  int    `json:"purchase"`
}

type SourceStats struct {
	Channel   string  `json:"channel"`
	Total     int     `json:"total"`
	Monthly   int     `json:"monthly"`
	Annual    int     `json:"annual"`
	Purchases int     `json:"purchases"`
	Revenue   float64 `json:"revenue"`
}

type TrafficPoint struct {
	YearMonth string `json:"yearMonth"`
	Label     string `json:"label"`
	Sessions  int    `json:"sessions"`
}

type ChannelStats struct {
	Channel  string  `json:"channel"`
	Sessions int     `json:"sessions"`
	Users    int     `json:"users"`
	NewUsers int     `json:"newUsers"`
	Pct      float64 `json:"pct"`
}

// Dashboard is the analytics endpoint payload.
type Dashboard struct {
	KPIs        KPIs           `json:"kpis"`
	Trend       []TrendPoint   `json:"trend"`
	Sources     []SourceStats  `json:"sources"`
	Traffic     []TrafficPoint `json:"traffic"`
	Channels    []ChannelStats `json:"channels"`
	ShowRevenue bool           `json:"show_revenue"`
	DateRange   DateRange      `json:"date_range"`
}
