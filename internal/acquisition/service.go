package acquisition

import (
	"context"
	"fmt"
	"sync"
)

// Service guards the single-active-run invariant: one worker at a time,
// started on its own goroutine, stopped cooperatively.
type Service struct {
	crypto CryptoSource
	fiat   FiatSource
	cache  CacheWriter

	mu     sync.Mutex
	worker *Worker
}

func NewService(crypto CryptoSource, fiat FiatSource, cache CacheWriter) *Service {
	return &Service{crypto: crypto, fiat: fiat, cache: cache}
}

// Start launches a new acquisition run and returns its worker, whose
// channels the caller must drain. Starting while a run is active is refused.
func (s *Service) Start(ctx context.Context, params Params) (*Worker, error) {
	if params.Start.IsZero() || params.End.IsZero() {
		return nil, fmt.Errorf("start and end dates are required")
	}
	if params.End.Before(params.Start) {
		return nil, fmt.Errorf("start date %s is after end date %s",
			params.Start.Format("2006-01-02"), params.End.Format("2006-01-02"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.worker != nil {
		select {
		case <-s.worker.Done():
		default:
			return nil, fmt.Errorf("an acquisition run is already active")
		}
	}

	w := NewWorker(s.crypto, s.fiat, s.cache, params)
	s.worker = w
	go w.Run(ctx)

	fmt.Printf("[ACQ] Run started: %s to %s, base %s\n",
		params.Start.Format("2006-01-02"), params.End.Format("2006-01-02"), params.BaseCurrency)
	return w, nil
}

// Stop requests cancellation of the active run, if any.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.worker != nil {
		s.worker.Stop()
		fmt.Println("[ACQ] Stop requested")
	}
}

// Active reports whether a run is currently in flight.
func (s *Service) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.worker == nil {
		return false
	}
	select {
	case <-s.worker.Done():
		return false
	default:
		return true
	}
}
