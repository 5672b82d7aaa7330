package collide

import "time"

// Time is the elapsed-frame-time source for velocity integration.
type Time struct {
	Time time.Time
	Dt   time.Duration
}

func NewTime(now time.Time) *Time {
	return &Time{Time: now}
}

// Tick measures the frame that ended at now.
func (t *Time) Tick(now time.Time) {
	t.Dt = now.Sub(t.Time)
	t.Time = now
}

// Advance steps by a fixed dt, for deterministic simulation.
func (t *Time) Advance(dt time.Duration) {
	t.Dt = dt
	t.Time = t.Time.Add(dt)
}

func (t *Time) Seconds() float32 {
	return float32(t.Dt.Seconds())
}
