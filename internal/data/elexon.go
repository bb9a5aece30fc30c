package data

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"settlement-compare/internal/model"
	"settlement-compare/internal/observability/metrics"

	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://data.elexon.co.uk/bmrs/api/v1"

// Endpoint names used for logging, metrics and snapshots.
const (
	EndpointImbalance = "imbalance"
	EndpointForecast  = "forecast"
	EndpointActual    = "actual"
)

// EndpointPaths are the BMRS paths relative to the base URL.
type EndpointPaths struct {
	Imbalance string
	Forecast  string
	Actual    string
}

func DefaultPaths() EndpointPaths {
	return EndpointPaths{
		Imbalance: "/forecast/indicated/day-ahead/evolution",
		Forecast:  "/forecast/generation/wind-and-solar/day-ahead",
		Actual:    "/generation/actual/per-type/wind-and-solar",
	}
}

// ClientOptions tunes the HTTP behaviour of ElexonClient.
type ClientOptions struct {
	Timeout        time.Duration // default 30s
	RateLimitRPS   float64       // 0 disables limiting
	RateLimitBurst int
	Cache          *ResponseCache // nil disables caching
}

// ElexonClient fetches raw records from the BMRS API.
type ElexonClient struct {
	BaseURL string
	Paths   EndpointPaths
	Client  *http.Client

	limiter *rate.Limiter
	cache   *ResponseCache
	now     func() time.Time
}

// NewElexonClient creates a BMRS client.
// If baseURL is empty, defaults to DefaultBaseURL; empty paths fall back to DefaultPaths.
func NewElexonClient(baseURL string, paths EndpointPaths, opts ClientOptions) *ElexonClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	def := DefaultPaths()
	if paths.Imbalance == "" {
		paths.Imbalance = def.Imbalance
	}
	if paths.Forecast == "" {
		paths.Forecast = def.Forecast
	}
	if paths.Actual == "" {
		paths.Actual = def.Actual
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &ElexonClient{
		BaseURL: baseURL,
		Paths:   paths,
		Client:  &http.Client{Timeout: timeout},
		cache:   opts.Cache,
		now:     time.Now,
	}
	if opts.RateLimitRPS > 0 {
		burst := opts.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), burst)
	}
	return c
}

// ElexonError represents a non-success response from the BMRS API.
type ElexonError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter string // For rate limit errors
}

func (e *ElexonError) Error() string {
	return e.Message
}

// IndicatedImbalance fetches day-ahead indicated imbalance records for the given
// settlement date and periods.
func (c *ElexonClient) IndicatedImbalance(ctx context.Context, date string, periods []model.SettlementPeriod) ([]model.RawRecord, error) {
	if _, err := model.ParseDate(date); err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, fmt.Errorf("at least one settlement period is required")
	}
	q := url.Values{}
	q.Set("settlementDate", date)
	for _, p := range periods {
		q.Add("settlementPeriod", strconv.Itoa(int(p)))
	}
	q.Set("format", "json")
	return c.query(ctx, EndpointImbalance, c.Paths.Imbalance, q, "indicatedImbalance", date)
}

// GenerationForecast fetches day-ahead wind and solar generation forecasts.
func (c *ElexonClient) GenerationForecast(ctx context.Context, date string, from, to model.SettlementPeriod) ([]model.RawRecord, error) {
	q, err := generationQuery(date, from, to)
	if err != nil {
		return nil, err
	}
	q.Set("processType", "all")
	return c.query(ctx, EndpointForecast, c.Paths.Forecast, q, "quantity", date)
}

// GenerationActual fetches actual wind and solar generation per type.
func (c *ElexonClient) GenerationActual(ctx context.Context, date string, from, to model.SettlementPeriod) ([]model.RawRecord, error) {
	q, err := generationQuery(date, from, to)
	if err != nil {
		return nil, err
	}
	return c.query(ctx, EndpointActual, c.Paths.Actual, q, "quantity", date)
}

func generationQuery(date string, from, to model.SettlementPeriod) (url.Values, error) {
	if _, err := model.ParseDate(date); err != nil {
		return nil, err
	}
	if !from.Valid() || !to.Valid() || from > to {
		return nil, fmt.Errorf("invalid settlement period range %d..%d", from, to)
	}
	q := url.Values{}
	q.Set("from", date)
	q.Set("to", date)
	q.Set("settlementPeriodFrom", strconv.Itoa(int(from)))
	q.Set("settlementPeriodTo", strconv.Itoa(int(to)))
	q.Set("format", "json")
	return q, nil
}

func (c *ElexonClient) query(ctx context.Context, endpoint, path string, q url.Values, valueField, date string) ([]model.RawRecord, error) {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	u.RawQuery = q.Encode()

	cacheable := c.cache != nil && c.isHistorical(date)
	if cacheable {
		if cached, found := c.cache.Get(GenerateCacheKey(u.String())); found {
			log.Printf("[BMRS] Cache hit: %d records (endpoint=%s, date=%s)", len(cached), endpoint, date)
			metrics.ObserveCacheHit()
			return cached, nil
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	log.Printf("[BMRS] Request: GET %s?%s", u.Path, u.RawQuery)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.Client.Do(req)
	duration := time.Since(start)
	if err != nil {
		log.Printf("[BMRS] Request failed: %v (duration: %v)", err, duration)
		metrics.ObserveUpstream(endpoint, metrics.ResultError, duration, 0)
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	log.Printf("[BMRS] Response: %s (duration: %v, endpoint=%s, date=%s)", resp.Status, duration, endpoint, date)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ObserveUpstream(endpoint, metrics.ResultError, duration, 0)
		return nil, newElexonError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveUpstream(endpoint, metrics.ResultError, duration, 0)
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	records, err := DecodeRecords(body, valueField)
	if err != nil {
		log.Printf("[BMRS] Error decoding response: %v (endpoint=%s, date=%s)", err, endpoint, date)
		metrics.ObserveUpstream(endpoint, metrics.ResultError, duration, 0)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	metrics.ObserveUpstream(endpoint, metrics.ResultSuccess, duration, len(records))

	log.Printf("[BMRS] Success: Received %d records (endpoint=%s, date=%s)", len(records), endpoint, date)

	if cacheable {
		c.cache.Set(GenerateCacheKey(u.String()), records)
	}
	return records, nil
}

func newElexonError(resp *http.Response) *ElexonError {
	e := &ElexonError{StatusCode: resp.StatusCode}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		e.RetryAfter = resp.Header.Get("Retry-After")
		e.Code = "RATE_LIMIT_EXCEEDED"
		e.Message = fmt.Sprintf("Rate limit exceeded. Retry after: %s", e.RetryAfter)
	case resp.StatusCode == http.StatusNotFound:
		e.Code = "NOT_FOUND"
		e.Message = fmt.Sprintf("BMRS endpoint not found: %s", resp.Request.URL.Path)
	case resp.StatusCode == http.StatusBadRequest:
		e.Code = "BAD_REQUEST"
		e.Message = "BMRS rejected the request parameters"
	case resp.StatusCode >= 500:
		e.Code = "UPSTREAM_UNAVAILABLE"
		e.Message = fmt.Sprintf("BMRS returned status %d: %s", resp.StatusCode, resp.Status)
	default:
		e.Code = "API_ERROR"
		e.Message = fmt.Sprintf("API returned status %d: %s", resp.StatusCode, resp.Status)
	}
	log.Printf("[BMRS] Error: %s (%s)", e.Code, e.Message)
	return e
}

// isHistorical reports whether date lies strictly before the current UTC day.
// Only such responses are cached; today's data keeps changing.
func (c *ElexonClient) isHistorical(date string) bool {
	d, err := model.ParseDate(date)
	if err != nil {
		return false
	}
	today := c.now().UTC().Format(model.DateLayout)
	return d.Format(model.DateLayout) < today
}
