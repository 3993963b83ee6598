package models

import "time"

// PricePoint is one cached crypto price row, keyed by (CoinID, Date).
type PricePoint struct {
	CoinID string    `json:"coinId"`
	Date   time.Time `json:"date"`
	Price  *float64  `json:"price"`
}

// RatePoint is one cached fiat closing-rate row, keyed by (Code, Date).
type RatePoint struct {
	Code  string    `json:"code"`
	Date  time.Time `json:"date"`
	Close *float64  `json:"close"`
}
