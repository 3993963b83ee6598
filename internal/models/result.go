package models

// AssetSummary is one tracked entity's outcome for a run: its average over
// the requested range plus the daily history backing it. Average is nil when
// the history holds no numeric values.
type AssetSummary struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Average *float64      `json:"average"`
	History []SeriesPoint `json:"history"`
}

// AcquisitionResult is the immutable aggregate handed to the presentation
// layer once per run. Cryptos keep ranking order, Fiats keep list order.
type AcquisitionResult struct {
	Cryptos []AssetSummary `json:"cryptos"`
	Fiats   []AssetSummary `json:"fiats"`
}
