package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/globalassets/tracker-backend/internal/models"
)

// UpsertRates writes one row per series point for a fiat code, replacing any
// existing row with the same (code, date) key. Same partial-success policy
// as UpsertPrices.
func (s *Store) UpsertRates(ctx context.Context, code string, points []models.SeriesPoint) error {
	if code == "" || len(points) == 0 {
		return nil
	}

	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO fiat_rates (code, date, close) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if p.Date.IsZero() {
			continue
		}
		if _, err := stmt.ExecContext(ctx, code, p.Date.UTC().Format(dayFormat), nullable(p.Value)); err != nil {
			fmt.Printf("[CACHE] Skipping rate row for %s @ %s: %v\n", code, p.Date.Format(dayFormat), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadRates returns the cached rows for a fiat code within the inclusive
// range, ordered ascending by date; empty slice when nothing matches.
func (s *Store) LoadRates(ctx context.Context, code string, start, end time.Time) ([]models.RatePoint, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT date, close FROM fiat_rates
		 WHERE code = ? AND date BETWEEN ? AND ?
		 ORDER BY date ASC`,
		code, start.UTC().Format(dayFormat), end.UTC().Format(dayFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("query rates: %w", err)
	}
	defer rows.Close()

	out := []models.RatePoint{}
	for rows.Next() {
		var day string
		var closePx sql.NullFloat64
		if err := rows.Scan(&day, &closePx); err != nil {
			return nil, fmt.Errorf("scan rate row: %w", err)
		}
		d, err := time.ParseInLocation(dayFormat, day, time.UTC)
		if err != nil {
			continue
		}
		r := models.RatePoint{Code: code, Date: d}
		if closePx.Valid {
			v := closePx.Float64
			r.Close = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
