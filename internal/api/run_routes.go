package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/globalassets/tracker-backend/internal/acquisition"
)

type startRunRequest struct {
	Start        string `json:"start"`
	End          string `json:"end"`
	BaseCurrency string `json:"baseCurrency"`
	TopCoins     int    `json:"topCoins"`
}

func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	var req startRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	start, ok := parseDate(req.Start)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid start date, expected YYYY-MM-DD")
		return
	}
	end, ok := parseDate(req.End)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid end date, expected YYYY-MM-DD")
		return
	}
	if req.BaseCurrency == "" {
		writeError(w, http.StatusBadRequest, "baseCurrency is required")
		return
	}

	// Run off the request's lifecycle: the worker outlives this handler.
	worker, err := s.svc.Start(context.WithoutCancel(r.Context()), acquisition.Params{
		Start:        start,
		End:          end,
		BaseCurrency: req.BaseCurrency,
		TopCoins:     req.TopCoins,
	})
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	go s.drainRun(worker, req.BaseCurrency)

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// drainRun consumes a worker's event channels, echoing logs to the process
// log and retaining the terminal outcome for GET /v1/runs/last.
func (s *Server) drainRun(w *acquisition.Worker, base string) {
	go func() {
		for range w.Progress() {
		}
	}()
	go func() {
		for line := range w.Logs() {
			fmt.Printf("[RUN] %s\n", line)
		}
	}()

	outcome := <-w.Outcome()

	s.mu.Lock()
	s.lastResult = outcome.Result
	s.lastErr = outcome.Err
	s.mu.Unlock()

	if s.notify == nil {
		return
	}
	if outcome.Err != nil {
		s.notify.RunFailed(outcome.Err)
	} else {
		s.notify.RunFinished(outcome.Result, base)
	}
}

func (s *Server) handleStopRun(w http.ResponseWriter, r *http.Request) {
	s.svc.Stop()
	writeJSON(w, http.StatusOK, map[string]string{"status": "stop requested"})
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"active": s.svc.Active()})
}

func (s *Server) handleLastResult(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	result, lastErr := s.lastResult, s.lastErr
	s.mu.Unlock()

	if lastErr != nil {
		writeJSON(w, http.StatusOK, map[string]string{"error": lastErr.Error()})
		return
	}
	if result == nil {
		writeError(w, http.StatusNotFound, "no completed run yet")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
