package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/storepulse/backend/internal/contracts"
	"github.com/wonny/storepulse/backend/pkg/config"
	"github.com/wonny/storepulse/backend/pkg/httputil"
	"github.com/wonny/storepulse/backend/pkg/logger"
)

const fetchPageSize = 200

// Client fetches raw checklist records from the external submission feed.
// ⭐ SSOT: 제출 피드 API 호출은 이 클라이언트에서만 — 엔진은 I/O를 모른다.
type Client struct {
	cfg        *config.Config
	logger     *logger.Logger
	httpClient *httputil.Client
	limiter    *rate.Limiter
}

// NewClient creates a feed client. Retries are bounded with linear backoff
// per the feed contract; requests are rate limited toward the feed API.
func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	httpClient := httputil.New(log, cfg.Feed.Timeout).
		WithRetry(cfg.Feed.MaxRetries, cfg.Feed.RetryDelay, httputil.BackoffLinear)

	rps := cfg.Feed.RatePerSec
	if rps <= 0 {
		rps = 1
	}

	return &Client{
		cfg:        cfg,
		logger:     log,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// fetchResponse is one page of the feed API.
type fetchResponse struct {
	Records []contracts.RawRecord `json:"records"`
	HasMore bool                  `json:"has_more"`
}

// FetchSubmissions retrieves every raw record submitted in [since, until),
// following pagination until the feed reports no more pages.
func (c *Client) FetchSubmissions(ctx context.Context, since, until time.Time) ([]contracts.RawRecord, error) {
	var all []contracts.RawRecord

	for page := 1; ; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait failed: %w", err)
		}

		records, hasMore, err := c.fetchPage(ctx, since, until, page)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}
		all = append(all, records...)

		if !hasMore {
			break
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"since": since,
		"until": until,
		"count": len(all),
	}).Info("Fetched submissions from feed")

	return all, nil
}

// fetchPage requests a single page from the feed API.
func (c *Client) fetchPage(ctx context.Context, since, until time.Time, page int) ([]contracts.RawRecord, bool, error) {
	q := url.Values{}
	q.Set("since", since.UTC().Format(time.RFC3339))
	q.Set("until", until.UTC().Format(time.RFC3339))
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("page_size", fmt.Sprintf("%d", fetchPageSize))

	fullURL := fmt.Sprintf("%s/submissions?%s", c.cfg.Feed.BaseURL, q.Encode())

	headers := map[string]string{"Accept": "application/json"}
	if c.cfg.Feed.APIKey != "" {
		headers["Authorization"] = "Bearer " + c.cfg.Feed.APIKey
	}

	resp, err := c.httpClient.GetWithHeaders(ctx, fullURL, headers)
	if err != nil {
		return nil, false, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, false, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var parsed fetchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, false, fmt.Errorf("decode response failed: %w", err)
	}

	return parsed.Records, parsed.HasMore, nil
}
