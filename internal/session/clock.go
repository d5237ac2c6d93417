package session

import "time"

// Clock derives countdown values for one tracking session from its start
// instant and the fixed maximum duration. Pure; the countdown ticker and the
// status endpoint both read it.
type Clock struct {
	Start time.Time
	Max   time.Duration
}

// Remaining is max(0, Max - (now - Start)).
func (c Clock) Remaining(now time.Time) time.Duration {
	elapsed := now.Sub(c.Start)
	if elapsed >= c.Max {
		return 0
	}
	return c.Max - elapsed
}

// Deadline is the instant at which the session must auto-terminate.
func (c Clock) Deadline() time.Time {
	return c.Start.Add(c.Max)
}
