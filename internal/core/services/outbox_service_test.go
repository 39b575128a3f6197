package services

import (
	"testing"
	"time"
)

func TestNextBackoffDoubles(t *testing.T) {
	cases := []struct {
		attempts int
		want     time.Duration
	}{
		{0, time.Minute},
		{1, 2 * time.Minute},
		{2, 4 * time.Minute},
		{3, 8 * time.Minute},
		{4, 16 * time.Minute},
	}
	for _, c := range cases {
		if got := NextBackoff(c.attempts); got != c.want {
			t.Errorf("attempts=%d: got %v, want %v", c.attempts, got, c.want)
		}
	}
}
