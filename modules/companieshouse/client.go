package companieshouse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/guarzo/gazettefeed/common"
	"github.com/guarzo/gazettefeed/common/model"
)

var (
	// ErrNotFound is returned for a 404 from the registry.
	ErrNotFound = errors.New("companies house: not found")
	// ErrNoAPIKey is returned when the client was built without a key.
	ErrNoAPIKey = errors.New("companies house: API key not configured")
)

// responseExpiration is how long raw registry responses are reused.
const responseExpiration = time.Hour

// CompaniesHouseClient defines the HTTP operations against the public
// registry API and the accounts document service.
type CompaniesHouseClient interface {
	GetJSON(ctx context.Context, endpoint string, entity any, params map[string]string) error
	GetBytes(ctx context.Context, endpoint string, params map[string]string) ([]byte, error)
	GetDocument(ctx context.Context, companyNumber, transactionID string) ([]byte, error)
	Configured() bool
}

type companiesHouseClient struct {
	baseURL     string
	documentURL string
	apiKey      string
	httpClient  common.HttpClient
	cache       common.CacheRepository[[]byte]
}

// NewCompaniesHouseClient creates a client for the registry at baseURL.
// Accounts documents are fetched from documentURL. cache may be nil.
func NewCompaniesHouseClient(baseURL, documentURL, apiKey string, httpClient common.HttpClient, cache common.CacheRepository[[]byte]) CompaniesHouseClient {
	return &companiesHouseClient{
		baseURL:     baseURL,
		documentURL: documentURL,
		apiKey:      apiKey,
		httpClient:  httpClient,
		cache:       cache,
	}
}

func (c *companiesHouseClient) Configured() bool {
	return c.apiKey != ""
}

// GetJSON retrieves JSON from a registry endpoint and unmarshals into entity.
func (c *companiesHouseClient) GetJSON(ctx context.Context, endpoint string, entity any, params map[string]string) error {
	data, err := c.GetBytes(ctx, endpoint, params)
	if err != nil {
		return err
	}
	return model.JSONUnmarshal(data, entity)
}

// GetBytes retrieves raw bytes from a registry endpoint, serving repeated
// requests from the cache.
func (c *companiesHouseClient) GetBytes(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrNoAPIKey
	}

	cacheKey := c.buildCacheKey(endpoint, params)
	if c.cache != nil {
		if cached, found := c.cache.Get(cacheKey); found {
			return cached, nil
		}
	}

	urlStr, err := buildURL(c.baseURL, endpoint, params)
	if err != nil {
		return nil, err
	}

	operation := func() (any, error) {
		return c.doRequest(ctx, urlStr, true)
	}
	result, err := c.httpClient.RetryWithExponentialBackoff(ctx, operation)
	if err != nil {
		if common.IsStatus(err, http.StatusNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	data := result.([]byte)
	if c.cache != nil {
		c.cache.Set(cacheKey, data, responseExpiration)
	}
	return data, nil
}

// GetDocument downloads the XHTML rendition of a filed accounts document.
func (c *companiesHouseClient) GetDocument(ctx context.Context, companyNumber, transactionID string) ([]byte, error) {
	endpoint := fmt.Sprintf("/company/%s/filing-history/%s/document", url.PathEscape(companyNumber), url.PathEscape(transactionID))
	urlStr, err := buildURL(c.documentURL, endpoint, map[string]string{"format": "xhtml"})
	if err != nil {
		return nil, err
	}

	operation := func() (any, error) {
		return c.doRequest(ctx, urlStr, false)
	}
	result, err := c.httpClient.RetryWithExponentialBackoff(ctx, operation)
	if err != nil {
		return nil, fmt.Errorf("accounts document %s: %w", transactionID, err)
	}
	return result.([]byte), nil
}

func (c *companiesHouseClient) doRequest(ctx context.Context, urlStr string, authenticated bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if authenticated {
		req.SetBasicAuth(c.apiKey, "")
		req.Header.Set("Accept", "application/json")
	} else {
		req.Header.Set("Accept", "application/xhtml+xml, text/html")
	}

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

// buildURL merges base + endpoint + params
func buildURL(baseURL, endpoint string, params map[string]string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	path, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}

	fullURL := base.ResolveReference(path)
	q := fullURL.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	fullURL.RawQuery = q.Encode()
	return fullURL.String(), nil
}

func (c *companiesHouseClient) buildCacheKey(endpoint string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "&%s=%s", k, params[k])
	}
	return common.GenerateKey("ch", endpoint, b.String())
}
