package gazette

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/guarzo/gazettefeed/common"
	"github.com/guarzo/gazettefeed/common/model"
)

// PageSize is the number of notices requested per feed page.
const PageSize = 100

// GazetteClient fetches raw pages of the insolvency notice feed.
type GazetteClient interface {
	FetchPage(ctx context.Context, startDate, endDate string, page int) (*model.GazetteFeed, error)
	BaseURL() string
}

type gazetteClient struct {
	baseURL    string
	httpClient common.HttpClient
}

// NewGazetteClient constructs a GazetteClient. The baseURL is typically
// "https://www.thegazette.co.uk".
func NewGazetteClient(baseURL string, httpClient common.HttpClient) GazetteClient {
	return &gazetteClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *gazetteClient) BaseURL() string {
	return c.baseURL
}

// FetchPage returns one page of notices published between startDate and
// endDate (YYYY-MM-DD, inclusive).
func (c *gazetteClient) FetchPage(ctx context.Context, startDate, endDate string, page int) (*model.GazetteFeed, error) {
	requestURL, err := c.pageURL(startDate, endDate, page)
	if err != nil {
		return nil, err
	}

	operation := func() (any, error) {
		return c.get(ctx, requestURL)
	}
	result, err := c.httpClient.RetryWithExponentialBackoff(ctx, operation)
	if err != nil {
		return nil, fmt.Errorf("gazette page %d: %w", page, err)
	}

	var feed model.GazetteFeed
	if err := model.JSONUnmarshal(result.([]byte), &feed); err != nil {
		return nil, fmt.Errorf("gazette page %d: %w", page, err)
	}
	return &feed, nil
}

func (c *gazetteClient) pageURL(startDate, endDate string, page int) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	u = u.JoinPath("insolvency", "notice", "data.json")

	q := u.Query()
	q.Set("results-page-size", strconv.Itoa(PageSize))
	q.Set("results-page", strconv.Itoa(page))
	q.Set("start-publish-date", startDate)
	q.Set("end-publish-date", endDate)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *gazetteClient) get(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
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
