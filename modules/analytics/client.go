package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/guarzo/gazettefeed/common"
	"github.com/guarzo/gazettefeed/common/model"
)

// Scope is the OAuth scope needed for runReport.
const Scope = "https://www.googleapis.com/auth/analytics.readonly"

// GA4Client runs reports against one GA4 property.
type GA4Client interface {
	RunReport(ctx context.Context, req model.ReportRequest) (*model.ReportResponse, error)
}

type ga4Client struct {
	baseURL    string
	propertyID string
	httpClient common.HttpClient
}

// NewGA4Client builds a client whose requests carry tokens from auth.
func NewGA4Client(ctx context.Context, baseURL, propertyID, userAgent string, auth common.AuthClient, logger *zap.Logger) (GA4Client, error) {
	authed, err := auth.Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics auth: %w", err)
	}
	return &ga4Client{
		baseURL:    baseURL,
		propertyID: propertyID,
		httpClient: common.NewHttpClient(userAgent, authed, logger),
	}, nil
}

func (c *ga4Client) RunReport(ctx context.Context, report model.ReportRequest) (*model.ReportResponse, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("encode report request: %w", err)
	}
	endpoint, err := url.JoinPath(c.baseURL, "v1beta", "properties", c.propertyID+":runReport")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	operation := func() (any, error) {
		return c.post(ctx, endpoint, body)
	}
	result, err := c.httpClient.RetryWithExponentialBackoff(ctx, operation)
	if err != nil {
		return nil, fmt.Errorf("runReport: %w", err)
	}

	var resp model.ReportResponse
	if err := model.JSONUnmarshal(result.([]byte), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *ga4Client) post(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &common.HTTPError{StatusCode: resp.StatusCode, Body: data}
	}
	return data, nil
}
