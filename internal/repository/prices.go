package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/globalassets/tracker-backend/internal/models"
)

// UpsertPrices writes one row per series point for a coin, replacing any
// existing row with the same (coin_id, date) key. Points with a zero date
// are skipped; a skipped point never fails the batch. Empty input is a no-op.
func (s *Store) UpsertPrices(ctx context.Context, coinID string, points []models.SeriesPoint) error {
	if coinID == "" || len(points) == 0 {
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
		`INSERT OR REPLACE INTO crypto_prices (coin_id, date, price) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if p.Date.IsZero() {
			continue
		}
		if _, err := stmt.ExecContext(ctx, coinID, p.Date.UTC().Format(dayFormat), nullable(p.Value)); err != nil {
			// Partial success is the policy: one bad row must not
			// discard the rest of the batch.
			fmt.Printf("[CACHE] Skipping price row for %s @ %s: %v\n", coinID, p.Date.Format(dayFormat), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadPrices returns the cached rows for a coin whose date falls within the
// inclusive range, ordered ascending by date. A range with no rows yields an
// empty slice, not an error.
func (s *Store) LoadPrices(ctx context.Context, coinID string, start, end time.Time) ([]models.PricePoint, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT date, price FROM crypto_prices
		 WHERE coin_id = ? AND date BETWEEN ? AND ?
		 ORDER BY date ASC`,
		coinID, start.UTC().Format(dayFormat), end.UTC().Format(dayFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close()

	out := []models.PricePoint{}
	for rows.Next() {
		var day string
		var price sql.NullFloat64
		if err := rows.Scan(&day, &price); err != nil {
			return nil, fmt.Errorf("scan price row: %w", err)
		}
		d, err := time.ParseInLocation(dayFormat, day, time.UTC)
		if err != nil {
			continue
		}
		p := models.PricePoint{CoinID: coinID, Date: d}
		if price.Valid {
			v := price.Float64
			p.Price = &v
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
