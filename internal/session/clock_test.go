package session

import (
	"testing"
	"time"
)

func TestClockRemaining(t *testing.T) {
	start := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	max := 6000000 * time.Millisecond // 1h 40m
	c := Clock{Start: start, Max: max}

	if got := c.Remaining(start); got != max {
		t.Fatalf("remaining at start = %v, want %v", got, max)
	}

	halfway := start.Add(max / 2)
	if got := c.Remaining(halfway); got != max/2 {
		t.Fatalf("remaining at halfway = %v, want %v", got, max/2)
	}

	// exactly zero at the deadline, not merely near it
	if got := c.Remaining(start.Add(max)); got != 0 {
		t.Fatalf("remaining at deadline = %v, want 0", got)
	}

	// clamped at zero afterwards
	if got := c.Remaining(start.Add(max + time.Hour)); got != 0 {
		t.Fatalf("remaining past deadline = %v, want 0", got)
	}
}

func TestClockDeadline(t *testing.T) {
	start := time.Now()
	c := Clock{Start: start, Max: time.Minute}
	if got := c.Deadline(); !got.Equal(start.Add(time.Minute)) {
		t.Fatalf("deadline = %v, want %v", got, start.Add(time.Minute))
	}
}
