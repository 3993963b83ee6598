package acquisition

// Fiat is one entry of the fixed fiat universe.
type Fiat struct {
	Code string
	Name string
}

// FiatUniverse returns the tracked fiat currencies in display order. The
// set is a fixed snapshot; unlike the crypto universe it is not ranked per
// run.
func FiatUniverse() []Fiat {
	return []Fiat{
		{"EUR", "Euro"},
		{"JPY", "Japanese Yen"},
		{"GBP", "British Pound"},
		{"AUD", "Australian Dollar"},
		{"CAD", "Canadian Dollar"},
		{"CHF", "Swiss Franc"},
		{"CNY", "Chinese Yuan"},
		{"HKD", "Hong Kong Dollar"},
		{"NZD", "New Zealand Dollar"},
		{"BRL", "Brazilian Real"},
	}
}
