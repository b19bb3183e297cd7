package batch_test

import (
	"testing"
	"time"

	"arena/internal/domain/batch"
)

// TestForHour tests that classification is total over the day.
func TestForHour(t *testing.T) {
	for h := 0; h < 24; h++ {
		want := batch.Evening
		switch {
		case h >= 4 && h <= 11:
			want = batch.Morning
		case h >= 17:
			want = batch.Ladies
		}
		if got := batch.ForHour(h); got != want {
			t.Errorf("ForHour(%d) = %s, want %s", h, got, want)
		}
	}
}

// TestForBoundaries tests the edges of each slot.
func TestForBoundaries(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	tests := []struct {
		hour, min int
		want      string
	}{
		{3, 59, batch.Evening},
		{4, 0, batch.Morning},
		{11, 59, batch.Morning},
		{12, 0, batch.Evening},
		{16, 59, batch.Evening},
		{17, 0, batch.Ladies},
		{23, 59, batch.Ladies},
		{0, 0, batch.Evening},
	}
	for _, tt := range tests {
		ts := time.Date(2025, 5, 5, tt.hour, tt.min, 0, 0, loc)
		if got := batch.For(ts); got != tt.want {
			t.Errorf("For(%02d:%02d) = %s, want %s", tt.hour, tt.min, got, tt.want)
		}
	}
}

// TestIsValid tests batch name validation.
func TestIsValid(t *testing.T) {
	for _, b := range batch.All {
		if !batch.IsValid(b) {
			t.Errorf("IsValid(%q) = false", b)
		}
	}
	if batch.IsValid("Night") {
		t.Error("IsValid(Night) = true")
	}
}
