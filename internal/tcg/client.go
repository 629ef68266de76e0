package tcg

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	apperrors "github.com/Oustad/kortly-pokemon-api-sub001/internal/errors"
	"github.com/Oustad/kortly-pokemon-api-sub001/internal/logger"
	"github.com/Oustad/kortly-pokemon-api-sub001/pkg/models"
)

const maxPageSize = 250

// ClientConfig carries the knobs for a Client. Zero values fall back
// to production defaults.
type ClientConfig struct {
	BaseURL    string
	APIKey     string
	RateLimit  int           // requests per hour
	CacheTTL   time.Duration // cached response lifetime
	CacheSize  int           // bounded LRU capacity
	Timeout    time.Duration
	MaxRetries int

	// Now overrides the clock, for tests.
	Now func() time.Time
	// HTTPClient overrides the transport, for tests.
	HTTPClient *http.Client
}

// Client talks to the Pokemon TCG API with a sliding-window rate
// limiter, a bounded TTL cache and exponential-backoff retry on
// transport errors. One instance is shared across requests; cache and
// rate state are internally synchronized.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	window     *rateWindow
	cache      *expirable.LRU[string, []byte]
	cacheTTL   time.Duration
	cacheSize  int
	maxRetries int
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.pokemontcg.io/v2"
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 1000
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 512
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	if cfg.APIKey != "" {
		logger.Info("Pokemon TCG client initialized with API key")
	} else {
		logger.Warn("Pokemon TCG client initialized without API key, daily quota is reduced")
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		window:     newRateWindow(cfg.RateLimit, time.Hour, cfg.Now),
		cache:      expirable.NewLRU[string, []byte](cfg.CacheSize, nil, cfg.CacheTTL),
		cacheTTL:   cfg.CacheTTL,
		cacheSize:  cfg.CacheSize,
		maxRetries: cfg.MaxRetries,
	}
}

// SearchFilters are the supported card search criteria. Name, set and
// number go through normalization before hitting the API.
type SearchFilters struct {
	Name      string
	SetName   string
	Number    string
	Supertype string
	Types     []string
	HP        string
	Page      int
	PageSize  int
	OrderBy   string
	Fuzzy     bool
}

// SearchCards runs a filtered card search. Results are cached by the
// normalized query; cache hits count toward neither the rate budget
// nor network traffic.
func (c *Client) SearchCards(ctx context.Context, filters SearchFilters) (*models.CardList, error) {
	params := url.Values{}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))

	if q := buildQuery(filters); q != "" {
		params.Set("q", q)
		logger.WithField("query", q).Debug("card search query")
	}
	if filters.OrderBy != "" {
		params.Set("orderBy", filters.OrderBy)
	}

	var list models.CardList
	if err := c.getJSON(ctx, "/cards", params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetCardByID fetches one card by its unique ID (e.g. "base1-25").
func (c *Client) GetCardByID(ctx context.Context, cardID string) (*models.Card, error) {
	var envelope struct {
		Data models.Card `json:"data"`
	}
	if err := c.getJSON(ctx, "/cards/"+url.PathEscape(cardID), nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// buildQuery assembles the API's field:"value" query dialect from the
// normalized filters. A wildcard suffix tolerates trailing text
// variation in fuzzy name searches.
func buildQuery(filters SearchFilters) string {
	var parts []string
	if filters.Name != "" {
		name := NormalizePokemonName(filters.Name)
		if filters.Fuzzy {
			parts = append(parts, fmt.Sprintf("name:%q", name+"*"))
		} else {
			parts = append(parts, fmt.Sprintf("name:%q", name))
		}
	}
	if filters.SetName != "" {
		parts = append(parts, fmt.Sprintf("set.name:%q", MapSetName(filters.SetName)))
	}
	if filters.Number != "" {
		parts = append(parts, "number:"+NormalizeCardNumber(filters.Number))
	}
	if filters.Supertype != "" {
		parts = append(parts, "supertype:"+filters.Supertype)
	}
	for _, t := range filters.Types {
		parts = append(parts, "types:"+t)
	}
	if filters.HP != "" {
		parts = append(parts, "hp:"+filters.HP)
	}

	return strings.Join(parts, " ")
}

// getJSON serves the request from cache when possible, otherwise goes
// through the rate limiter and retrying HTTP path, caching the raw
// body on success.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	key := cacheKey(endpoint, params)
	if body, ok := c.cache.Get(key); ok {
		logger.WithField("endpoint", endpoint).Debug("cache hit")
		return json.Unmarshal(body, out)
	}

	body, err := c.doGet(ctx, endpoint, params)
	if err != nil {
		return err
	}
	c.cache.Add(key, body)
	return json.Unmarshal(body, out)
}

// doGet performs the HTTP GET with fail-fast rate limiting and
// exponential backoff. Only transport-level failures are retried;
// 429 and other non-2xx responses surface immediately as typed
// errors.
func (c *Client) doGet(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var body []byte
	operation := func() error {
		if err := c.window.Allow(); err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(apperrors.NewInternalError("failed to build request", err))
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("X-Api-Key", c.apiKey)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			logger.WithError(err).Warn("card API transport error, retrying")
			return apperrors.NewNetworkError("card API request failed", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return apperrors.NewNetworkError("failed to read card API response", err)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return backoff.Permanent(apperrors.NewRateLimitError("card API rate limit exceeded", nil))
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return backoff.Permanent(apperrors.NewTCGAPIError("card API returned an error", resp.StatusCode, string(data)))
		}

		logger.WithFields(logrus.Fields{
			"endpoint":    endpoint,
			"status":      resp.StatusCode,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("card API request complete")

		body = data
		return nil
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.maxRetries-1))
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

// cacheKey hashes the endpoint plus the sorted parameter set.
// url.Values.Encode sorts by key, so equal queries always collide.
func cacheKey(endpoint string, params url.Values) string {
	sum := md5.Sum([]byte(endpoint + "?" + params.Encode()))
	return hex.EncodeToString(sum[:])
}

// CacheStats describes the current cache state.
type CacheStats struct {
	Entries    int   `json:"entries"`
	Capacity   int   `json:"capacity"`
	TTLSeconds int64 `json:"ttl_seconds"`
}

func (c *Client) CacheStats() CacheStats {
	return CacheStats{
		Entries:    c.cache.Len(),
		Capacity:   c.cacheSize,
		TTLSeconds: int64(c.cacheTTL / time.Second),
	}
}

// RateLimitStats describes the trailing-hour request budget.
type RateLimitStats struct {
	RequestsLastHour int `json:"requests_last_hour"`
	Limit            int `json:"rate_limit"`
	Remaining        int `json:"remaining_requests"`
}

func (c *Client) RateLimitStats() RateLimitStats {
	used := c.window.Count()
	remaining := c.window.limit - used
	if remaining < 0 {
		remaining = 0
	}
	return RateLimitStats{
		RequestsLastHour: used,
		Limit:            c.window.limit,
		Remaining:        remaining,
	}
}

// ClearCache drops all cached responses.
func (c *Client) ClearCache() {
	c.cache.Purge()
	logger.Info("card API cache cleared")
}
