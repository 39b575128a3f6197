package services

import (
	"testing"
	"time"
)

func TestMonthStart(t *testing.T) {
	loc, err := time.LoadLocation("Africa/Johannesburg")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	in := time.Date(2026, time.March, 17, 14, 32, 9, 0, loc)
	got := MonthStart(in)
	want := time.Date(2026, time.March, 1, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMonthStartFirstOfMonth(t *testing.T) {
	in := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	if got := MonthStart(in); !got.Equal(in) {
		t.Errorf("midnight on the 1st should map to itself, got %v", got)
	}
}

func TestMonthStartPreservesLocation(t *testing.T) {
	loc := time.FixedZone("SAST", 2*60*60)
	in := time.Date(2026, time.January, 31, 23, 59, 59, 0, loc)
	got := MonthStart(in)
	if got.Location() != loc {
		t.Errorf("location changed: got %v", got.Location())
	}
	if got.Month() != time.January {
		t.Errorf("month boundary crossed: got %v", got.Month())
	}
}
