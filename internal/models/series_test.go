package models

import (
	"testing"
	"time"
)

func fp(v float64) *float64 { return &v }

func TestMean(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	series := []SeriesPoint{
		{Date: d, Value: fp(10.0)},
		{Date: d.AddDate(0, 0, 1), Value: nil},
		{Date: d.AddDate(0, 0, 2), Value: fp(20.0)},
	}
	avg := Mean(series)
	if avg == nil {
		t.Fatal("expected non-nil mean")
	}
	if *avg != 15.0 {
		t.Fatalf("expected 15.0, got %f", *avg)
	}
}

func TestMean_AllMissing(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := []SeriesPoint{
		{Date: d, Value: nil},
		{Date: d.AddDate(0, 0, 1), Value: nil},
	}
	if avg := Mean(series); avg != nil {
		t.Fatalf("expected nil mean for all-missing series, got %f", *avg)
	}
}

func TestMean_Empty(t *testing.T) {
	if avg := Mean(nil); avg != nil {
		t.Fatalf("expected nil mean for empty series, got %f", *avg)
	}
}

func TestDay(t *testing.T) {
	ts := time.Date(2024, 3, 15, 22, 45, 12, 0, time.FixedZone("UTC+3", 3*3600))
	day := Day(ts)
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if !day.Equal(want) {
		t.Fatalf("expected %s, got %s", want, day)
	}
	if day.Location() != time.UTC {
		t.Fatal("expected UTC location")
	}
}
