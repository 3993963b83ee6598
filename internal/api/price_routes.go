package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/globalassets/tracker-backend/internal/acquisition"
)

type pointJSON struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	coinID := r.PathValue("id")
	start, end, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := s.store.LoadPrices(r.Context(), coinID, start, end)
	if err != nil {
		fmt.Printf("Error loading cached prices for %s: %v\n", coinID, err)
		writeError(w, http.StatusInternalServerError, "failed to load cached prices")
		return
	}

	out := make([]pointJSON, len(rows))
	for i, p := range rows {
		out[i] = pointJSON{Date: p.Date.Format("2006-01-02"), Value: p.Price}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(r.PathValue("code"))
	start, end, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := s.store.LoadRates(r.Context(), code, start, end)
	if err != nil {
		fmt.Printf("Error loading cached rates for %s: %v\n", code, err)
		writeError(w, http.StatusInternalServerError, "failed to load cached rates")
		return
	}

	out := make([]pointJSON, len(rows))
	for i, p := range rows {
		out[i] = pointJSON{Date: p.Date.Format("2006-01-02"), Value: p.Close}
	}
	writeJSON(w, http.StatusOK, out)
}

type fiatJSON struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (s *Server) handleFiats(w http.ResponseWriter, r *http.Request) {
	universe := acquisition.FiatUniverse()
	out := make([]fiatJSON, len(universe))
	for i, f := range universe {
		out[i] = fiatJSON{Code: f.Code, Name: f.Name}
	}
	writeJSON(w, http.StatusOK, out)
}
