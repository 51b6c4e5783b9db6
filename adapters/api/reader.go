// Package api fetches daily weather readings from an HTTP service.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"gobrix/domain/core"
	"gobrix/internal/gdd"
)

// WeatherClient implements ports.WeatherSource over HTTP.
type WeatherClient struct {
	config      *WeatherSourceConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter

	mu   sync.Mutex
	last FetchStats
}

// NewWeatherClient validates the config and creates a client.
func NewWeatherClient(config *WeatherSourceConfig) (*WeatherClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &WeatherClient{
		config:      config,
		httpClient:  &http.Client{Timeout: config.Timeout},
		rateLimiter: NewRateLimiter(config.RateLimit),
	}, nil
}

// Close stops the rate limiter refill timer.
func (c *WeatherClient) Close() {
	c.rateLimiter.Stop()
}

// LastFetch returns stats of the most recent successful fetch.
func (c *WeatherClient) LastFetch() FetchStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// DailyReadings fetches readings for a region between from and to inclusive.
func (c *WeatherClient) DailyReadings(ctx context.Context, region core.RegionID, from, to time.Time) ([]gdd.DailyReading, error) {
	startTime := time.Now()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u, err := c.buildURL(region, from, to)
	if err != nil {
		return nil, err
	}
	req, err := c.buildRequest(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ResponseError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	readings, skipped, err := c.parseResponse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	c.mu.Lock()
	c.last = FetchStats{
		URL:          u,
		Readings:     len(readings),
		Skipped:      skipped,
		ResponseTime: time.Since(startTime),
		FetchedAt:    startTime,
	}
	c.mu.Unlock()
	return readings, nil
}

func (c *WeatherClient) buildURL(region core.RegionID, from, to time.Time) (string, error) {
	u, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("region", region.String())
	q.Set("from", from.Format(time.DateOnly))
	q.Set("to", to.Format(time.DateOnly))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// buildRequest creates an HTTP request with authentication
func (c *WeatherClient) buildRequest(ctx context.Context, u string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}
	switch c.config.AuthMethod {
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+c.config.AuthToken)
	case "api_key":
		req.Header.Set("X-API-Key", c.config.AuthToken)
	}
	return req, nil
}

// parseResponse extracts readings with gjson. Elements missing a date or a
// temperature are skipped and counted.
func (c *WeatherClient) parseResponse(body []byte) ([]gdd.DailyReading, int, error) {
	if !gjson.ValidBytes(body) {
		return nil, 0, fmt.Errorf("response is not valid JSON")
	}
	data := gjson.GetBytes(body, c.config.DataPath)
	if !data.Exists() {
		return nil, 0, fmt.Errorf("data path '%s' not found in response", c.config.DataPath)
	}
	if !data.IsArray() {
		return nil, 0, fmt.Errorf("data path '%s' is not an array", c.config.DataPath)
	}

	fields := c.config.Fields
	layout := fields.DateLayout
	if layout == "" {
		layout = time.DateOnly
	}

	var readings []gdd.DailyReading
	skipped := 0
	for _, item := range data.Array() {
		date := item.Get(fields.Date)
		tMax := item.Get(fields.TMax)
		tMin := item.Get(fields.TMin)
		if !date.Exists() || tMax.Type != gjson.Number || tMin.Type != gjson.Number {
			skipped++
			continue
		}
		day, err := time.Parse(layout, date.String())
		if err != nil {
			skipped++
			continue
		}
		r := gdd.DailyReading{
			Date:  day.UTC(),
			TMaxF: c.toFahrenheit(tMax.Float()),
			TMinF: c.toFahrenheit(tMin.Float()),
		}
		if fields.WaterStress != "" {
			r.WaterStress = item.Get(fields.WaterStress).Float()
		}
		readings = append(readings, r)
	}
	return readings, skipped, nil
}

func (c *WeatherClient) toFahrenheit(v float64) float64 {
	if c.config.Units == Celsius {
		return v*9/5 + 32
	}
	return v
}

// RateLimiter implements token bucket rate limiting
type RateLimiter struct {
	rate       int // requests per minute
	tokens     chan struct{}
	resetTimer *time.Timer
}

func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	rl := &RateLimiter{
		rate:   requestsPerMinute,
		tokens: make(chan struct{}, requestsPerMinute),
	}
	rl.fill()
	rl.resetTimer = time.AfterFunc(time.Minute, rl.resetTokens)
	return rl
}

func (rl *RateLimiter) Wait(ctx context.Context) error {
	select {
	case <-rl.tokens:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop halts the refill timer.
func (rl *RateLimiter) Stop() {
	rl.resetTimer.Stop()
}

func (rl *RateLimiter) fill() {
	for i := 0; i < rl.rate; i++ {
		select {
		case rl.tokens <- struct{}{}:
		default:
			return
		}
	}
}

func (rl *RateLimiter) resetTokens() {
	rl.fill()
	rl.resetTimer.Reset(time.Minute)
}
