package acquisition

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/globalassets/tracker-backend/internal/external"
	"github.com/globalassets/tracker-backend/internal/models"
)

// CryptoSource resolves the ranked crypto universe and per-coin daily series.
type CryptoSource interface {
	TopMarkets(ctx context.Context, vsCurrency string, perPage int) ([]external.Market, error)
	DailyPrices(ctx context.Context, coinID, vsCurrency string, start, end time.Time) ([]models.SeriesPoint, error)
}

// FiatSource resolves daily closing-rate series for fiat pairs.
type FiatSource interface {
	DailyRates(ctx context.Context, code, base string, start, end time.Time) ([]models.SeriesPoint, error)
}

// CacheWriter is the slice of the cache store the pipeline writes through to.
type CacheWriter interface {
	UpsertPrices(ctx context.Context, coinID string, points []models.SeriesPoint) error
	UpsertRates(ctx context.Context, code string, points []models.SeriesPoint) error
}

// Progress is one step counter update: Current of Total entities processed.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Outcome is the single terminal signal of a run. Err is non-nil only for
// run-level failures; per-entity failures degrade to empty data instead.
type Outcome struct {
	Result *models.AcquisitionResult
	Err    error
}

// Params describes one acquisition run.
type Params struct {
	Start        time.Time
	End          time.Time
	BaseCurrency string
	TopCoins     int
}

// Worker executes one acquisition run in the background and reports back
// over three ordered channels: progress counters, log lines, and exactly one
// terminal outcome. All three channels are closed once the outcome has been
// emitted; no events follow it.
type Worker struct {
	crypto CryptoSource
	fiat   FiatSource
	cache  CacheWriter
	params Params

	stopped    atomic.Bool
	progressCh chan Progress
	logCh      chan string
	outcomeCh  chan Outcome
	done       chan struct{}
}

func NewWorker(crypto CryptoSource, fiat FiatSource, cache CacheWriter, params Params) *Worker {
	if params.TopCoins <= 0 {
		params.TopCoins = 20
	}
	params.BaseCurrency = strings.ToUpper(params.BaseCurrency)
	return &Worker{
		crypto: crypto,
		fiat:   fiat,
		cache:  cache,
		params: params,

		// Buffers sized so a run never blocks on a temporarily slow
		// consumer: at most one progress event and a handful of log
		// lines per entity.
		progressCh: make(chan Progress, 64),
		logCh:      make(chan string, 256),
		outcomeCh:  make(chan Outcome, 1),
		done:       make(chan struct{}),
	}
}

func (w *Worker) Progress() <-chan Progress { return w.progressCh }
func (w *Worker) Logs() <-chan string       { return w.logCh }
func (w *Worker) Outcome() <-chan Outcome   { return w.outcomeCh }

// Done is closed once the terminal outcome has been emitted.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Stop requests cooperative cancellation. The flag is checked before each
// entity's work; an in-flight provider call is not interrupted, and results
// collected so far are still assembled into the final outcome.
func (w *Worker) Stop() {
	w.stopped.Store(true)
}

// Run executes the pipeline and emits the terminal outcome. It must be
// called exactly once, normally on its own goroutine.
func (w *Worker) Run(ctx context.Context) {
	result, err := w.run(ctx)
	if err != nil {
		w.outcomeCh <- Outcome{Err: err}
	} else {
		w.outcomeCh <- Outcome{Result: result}
	}
	close(w.progressCh)
	close(w.logCh)
	close(w.outcomeCh)
	close(w.done)
}

func (w *Worker) run(ctx context.Context) (*models.AcquisitionResult, error) {
	vs := strings.ToLower(w.params.BaseCurrency)

	// The ranking call is the one step with no per-entity isolation:
	// without a universe there is nothing to degrade to.
	top, err := w.crypto.TopMarkets(ctx, vs, w.params.TopCoins)
	if err != nil {
		return nil, fmt.Errorf("resolve crypto universe: %w", err)
	}

	fiats := FiatUniverse()
	totalSteps := len(top) + len(fiats)
	result := &models.AcquisitionResult{
		Cryptos: make([]models.AssetSummary, 0, len(top)),
		Fiats:   make([]models.AssetSummary, 0, len(fiats)),
	}

	for i, coin := range top {
		if w.stopped.Load() {
			w.logf("Stop requested, skipping remaining entities")
			break
		}

		w.logf("Loading data for %s (%s) [%d/%d]", coin.Name, coin.ID, i+1, len(top))
		series, err := w.crypto.DailyPrices(ctx, coin.ID, vs, w.params.Start, w.params.End)
		if err != nil {
			w.logf("Failed loading %s: %v", coin.Name, err)
			series = nil
		}

		if err := w.cache.UpsertPrices(ctx, coin.ID, series); err != nil {
			w.logf("Failed saving cache for %s: %v", coin.Name, err)
		} else {
			w.logf("Saved cache for %s", coin.Name)
		}

		result.Cryptos = append(result.Cryptos, models.AssetSummary{
			ID:      coin.ID,
			Name:    coin.Name,
			Average: models.Mean(series),
			History: series,
		})
		w.progressCh <- Progress{Current: i + 1, Total: totalSteps}
	}

	for i, f := range fiats {
		if w.stopped.Load() {
			break
		}

		w.logf("Loading fiat data for %s (%s) [%d/%d]", f.Name, f.Code, i+1, len(fiats))
		series, err := w.fiat.DailyRates(ctx, f.Code, w.params.BaseCurrency, w.params.Start, w.params.End)
		if err != nil {
			w.logf("Failed loading fiat %s: %v", f.Name, err)
			series = nil
		}

		if err := w.cache.UpsertRates(ctx, f.Code, series); err != nil {
			w.logf("Failed saving cache for fiat %s: %v", f.Name, err)
		} else {
			w.logf("Saved cache for fiat %s", f.Name)
		}

		result.Fiats = append(result.Fiats, models.AssetSummary{
			ID:      f.Code,
			Name:    f.Name,
			Average: models.Mean(series),
			History: series,
		})
		w.progressCh <- Progress{Current: len(top) + i + 1, Total: totalSteps}
	}

	return result, nil
}

func (w *Worker) logf(format string, args ...any) {
	w.logCh <- fmt.Sprintf(format, args...)
}
