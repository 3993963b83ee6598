package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/globalassets/tracker-backend/internal/httputil"
	"github.com/globalassets/tracker-backend/internal/models"
)

const defaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

// Market is one entry of the ranked-markets query: a coin the tracker will
// fetch history for, in market-cap order.
type Market struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

type CoinGeckoClient struct {
	baseURL    string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewCoinGeckoClient(timeout time.Duration) *CoinGeckoClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CoinGeckoClient{
		baseURL:    defaultCoinGeckoURL,
		httpClient: &http.Client{Timeout: timeout},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			MaxDelay:    10 * time.Second,
		},
	}
}

// TopMarkets returns the top-N coins by market capitalization, descending,
// quoted in vsCurrency. The ranked set is queried fresh each call and never
// cached.
func (c *CoinGeckoClient) TopMarkets(ctx context.Context, vsCurrency string, perPage int) ([]Market, error) {
	q := url.Values{}
	q.Set("vs_currency", vsCurrency)
	q.Set("order", "market_cap_desc")
	q.Set("per_page", fmt.Sprintf("%d", perPage))
	q.Set("page", "1")
	endpoint := fmt.Sprintf("%s/coins/markets?%s", c.baseURL, q.Encode())

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("coingecko markets: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko markets: status %d", resp.StatusCode)
	}

	var markets []Market
	if err := json.NewDecoder(resp.Body).Decode(&markets); err != nil {
		return nil, fmt.Errorf("decode markets: %w", err)
	}
	return markets, nil
}

// DailyPrices fetches the raw price samples for a coin over the inclusive
// UTC day range and resamples them to one point per calendar day (mean of
// same-day samples). Days with no samples are dropped, not zero-filled.
func (c *CoinGeckoClient) DailyPrices(ctx context.Context, coinID, vsCurrency string, start, end time.Time) ([]models.SeriesPoint, error) {
	from := models.Day(start).Unix()
	to := models.Day(end).Add(24*time.Hour - time.Second).Unix()

	endpoint := fmt.Sprintf("%s/coins/%s/market_chart/range?vs_currency=%s&from=%d&to=%d",
		c.baseURL, url.PathEscape(coinID), url.QueryEscape(vsCurrency), from, to)

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("coingecko chart %s: %w", coinID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko chart %s: status %d", coinID, resp.StatusCode)
	}

	// Samples arrive as [epoch_milliseconds, price] pairs.
	var data struct {
		Prices [][2]float64 `json:"prices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode chart %s: %w", coinID, err)
	}

	return dailyMean(data.Prices), nil
}

// dailyMean buckets [ms, value] samples by UTC calendar day and averages
// each bucket, ordered ascending by day.
func dailyMean(samples [][2]float64) []models.SeriesPoint {
	type bucket struct {
		sum float64
		n   int
	}
	byDay := map[time.Time]*bucket{}
	for _, s := range samples {
		ts := time.UnixMilli(int64(s[0])).UTC()
		day := models.Day(ts)
		b := byDay[day]
		if b == nil {
			b = &bucket{}
			byDay[day] = b
		}
		b.sum += s[1]
		b.n++
	}

	out := make([]models.SeriesPoint, 0, len(byDay))
	for day, b := range byDay {
		v := b.sum / float64(b.n)
		out = append(out, models.SeriesPoint{Date: day, Value: &v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
