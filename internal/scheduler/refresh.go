package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/globalassets/tracker-backend/internal/acquisition"
	"github.com/globalassets/tracker-backend/internal/models"
)

// Runner is the slice of the acquisition service the scheduler drives.
type Runner interface {
	Start(ctx context.Context, params acquisition.Params) (*acquisition.Worker, error)
	Active() bool
}

type RefreshConfig struct {
	Interval     time.Duration // e.g. 12*time.Hour
	LookbackDays int           // window re-fetched each tick
	BaseCurrency string
	TopCoins     int
	OnResult     func(*models.AcquisitionResult)
}

// RefreshScheduler periodically re-runs the acquisition over a trailing
// window so the cache stays warm without user interaction. A tick is skipped
// when a run is already active; the scheduler never queues runs.
type RefreshScheduler struct {
	runner Runner
	cfg    RefreshConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

func NewRefreshScheduler(runner Runner, cfg RefreshConfig) *RefreshScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 12 * time.Hour
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 365
	}
	return &RefreshScheduler{runner: runner, cfg: cfg}
}

func (s *RefreshScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		fmt.Println("[REFRESH] Already running")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.refresh()
			}
		}
	}()

	fmt.Printf("[REFRESH] Started (every %s, lookback %d days)\n", s.cfg.Interval, s.cfg.LookbackDays)
}

func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stopCh)
	s.running = false
	fmt.Println("[REFRESH] Stopped")
}

func (s *RefreshScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RefreshNow triggers a refresh outside the normal schedule.
func (s *RefreshScheduler) RefreshNow() {
	fmt.Println("[REFRESH] Manual refresh triggered")
	s.refresh()
}

func (s *RefreshScheduler) refresh() {
	if s.runner.Active() {
		fmt.Println("[REFRESH] Skipping tick - a run is already active")
		return
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -s.cfg.LookbackDays)

	w, err := s.runner.Start(context.Background(), acquisition.Params{
		Start:        start,
		End:          end,
		BaseCurrency: s.cfg.BaseCurrency,
		TopCoins:     s.cfg.TopCoins,
	})
	if err != nil {
		fmt.Printf("[REFRESH] Could not start run: %v\n", err)
		return
	}

	// Drain the worker so it never blocks on an unread channel; log lines
	// are forwarded with the scheduler's own tag.
	go func() {
		for range w.Progress() {
		}
	}()
	go func() {
		for line := range w.Logs() {
			fmt.Printf("[REFRESH] %s\n", line)
		}
	}()
	go func() {
		outcome := <-w.Outcome()
		if outcome.Err != nil {
			fmt.Printf("[REFRESH] Run failed: %v\n", outcome.Err)
			return
		}
		fmt.Printf("[REFRESH] Run finished: %d cryptos, %d fiats\n",
			len(outcome.Result.Cryptos), len(outcome.Result.Fiats))
		if s.cfg.OnResult != nil {
			s.cfg.OnResult(outcome.Result)
		}
	}()
}
