package bronze

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/dmoraes/brewlake/internal/contracts"
	"github.com/dmoraes/brewlake/pkg/config"
	"github.com/dmoraes/brewlake/pkg/httputil"
	"github.com/dmoraes/brewlake/pkg/logger"
)

// Client handles communication with the Open Brewery DB API.
// All brewery list fetches go through this client.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	perPage    int
	limiter    *rate.Limiter
}

// NewClient creates a new Open Brewery DB client. Pagination requests
// are paced by a local token bucket so a full crawl stays polite.
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	perPage := cfg.BreweryAPI.PerPage
	if perPage <= 0 || perPage > 200 {
		perPage = 200
	}
	rps := cfg.BreweryAPI.RatePerSecond
	if rps <= 0 {
		rps = 2.0
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("module", "bronze"),
		baseURL:    cfg.BreweryAPI.BaseURL,
		perPage:    perPage,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// FetchPage fetches one page of raw brewery records. Pages are
// 1-indexed; an empty slice means the crawl walked past the last page.
func (c *Client) FetchPage(ctx context.Context, page int) ([]contracts.RawBrewery, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(c.perPage))
	fullURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	var records []contracts.RawBrewery
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"page":  page,
		"count": len(records),
	}).Debug("Fetched page")
	return records, nil
}

// FetchAll walks the paginated listing until an empty page
func (c *Client) FetchAll(ctx context.Context) ([]contracts.RawBrewery, error) {
	all := make([]contracts.RawBrewery, 0)
	for page := 1; ; page++ {
		records, err := c.FetchPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d failed: %w", page, err)
		}
		if len(records) == 0 {
			break
		}
		all = append(all, records...)

		// A short page is the last one; skip the extra round trip
		if len(records) < c.perPage {
			break
		}
	}

	c.logger.WithField("total", len(all)).Info("Fetch completed")
	return all, nil
}
