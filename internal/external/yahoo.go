package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/globalassets/tracker-backend/internal/httputil"
	"github.com/globalassets/tracker-backend/internal/models"
)

const defaultYahooURL = "https://query1.finance.yahoo.com"

// YahooFXClient fetches daily closing rates for fiat currency pairs from the
// Yahoo Finance chart API. Pairs are quoted as <FROM><TO>=X.
type YahooFXClient struct {
	baseURL    string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewYahooFXClient(timeout time.Duration) *YahooFXClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &YahooFXClient{
		baseURL:    defaultYahooURL,
		httpClient: &http.Client{Timeout: timeout},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxDelay:    5 * time.Second,
		},
	}
}

// DailyRates returns the daily closing-rate series for code quoted in base
// over the inclusive day range.
//
// When code equals the base currency no network call is made: the rate is a
// constant 1.0 for every day in range. Otherwise the direct pair is tried
// first; if it carries no data the inverted pair is fetched and its values
// transformed via reciprocal. When neither pair has data the result is an
// empty series with a nil error: "no data" is a valid terminal state here,
// not a failure.
func (y *YahooFXClient) DailyRates(ctx context.Context, code, base string, start, end time.Time) ([]models.SeriesPoint, error) {
	code = strings.ToUpper(code)
	base = strings.ToUpper(base)

	if code == base {
		return constantSeries(start, end, 1.0), nil
	}

	series, err := y.fetchPair(ctx, code+base+"=X", start, end)
	if err != nil {
		return nil, err
	}
	if len(series) > 0 {
		return series, nil
	}

	inverted, err := y.fetchPair(ctx, base+code+"=X", start, end)
	if err != nil {
		return nil, err
	}
	return reciprocal(inverted), nil
}

func (y *YahooFXClient) fetchPair(ctx context.Context, symbol string, start, end time.Time) ([]models.SeriesPoint, error) {
	period1 := models.Day(start).Unix()
	period2 := models.Day(end).Add(24*time.Hour - time.Second).Unix()

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		y.baseURL, url.PathEscape(symbol), period1, period2)

	resp, err := httputil.Do(ctx, y.httpClient, y.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	// Yahoo answers 404 for unknown symbols. That is "no data for this
	// pair", which the caller resolves via the inverted pair.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo chart %s: status %d", symbol, resp.StatusCode)
	}

	var data struct {
		Chart struct {
			Result []struct {
				Timestamp  []int64 `json:"timestamp"`
				Indicators struct {
					Quote []struct {
						Close []*float64 `json:"close"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
			Error *struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"error"`
		} `json:"chart"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode chart %s: %w", symbol, err)
	}

	if data.Chart.Error != nil || len(data.Chart.Result) == 0 {
		return nil, nil
	}
	result := data.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}
	closes := result.Indicators.Quote[0].Close

	out := make([]models.SeriesPoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		p := models.SeriesPoint{Date: models.Day(time.Unix(ts, 0))}
		if i < len(closes) && closes[i] != nil {
			v := *closes[i]
			p.Value = &v
		}
		out = append(out, p)
	}
	return out, nil
}

// constantSeries yields one point of the given value per day in the
// inclusive range.
func constantSeries(start, end time.Time, value float64) []models.SeriesPoint {
	first := models.Day(start)
	last := models.Day(end)

	var out []models.SeriesPoint
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		v := value
		out = append(out, models.SeriesPoint{Date: d, Value: &v})
	}
	return out
}

// reciprocal maps each value to 1/value, preserving missing days. Zero
// values become missing rather than infinite.
func reciprocal(series []models.SeriesPoint) []models.SeriesPoint {
	out := make([]models.SeriesPoint, 0, len(series))
	for _, p := range series {
		inv := models.SeriesPoint{Date: p.Date}
		if p.Value != nil && *p.Value != 0 {
			v := 1.0 / *p.Value
			inv.Value = &v
		}
		out = append(out, inv)
	}
	return out
}
