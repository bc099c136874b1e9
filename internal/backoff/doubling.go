// Package backoff holds the arithmetic of the 429 backoff scalar. The scalar
// is kept in abstract units; callers decide how long a unit lasts.
package backoff

import (
	"math"
	"time"
)

// Doubling grows a wait geometrically from Floor until it reaches Ceiling.
// Once the current value has reached Ceiling, the next escalation fails.
type Doubling struct {
	Floor   float64
	Ceiling float64
	Factor  float64
}

// Default is the 1 → 2 → 4 → 8 → 16 progression.
func Default() Doubling {
	return Doubling{Floor: 1, Ceiling: 16, Factor: 2}
}

// Next returns the escalated value and true, or current and false when
// current is already at or beyond the ceiling.
func (d Doubling) Next(current float64) (float64, bool) {
	if current >= d.Ceiling {
		return current, false
	}
	if current < d.Floor {
		current = d.Floor
	}
	return current * d.Factor, true
}

// Reset returns the floor value.
func (d Doubling) Reset() float64 {
	return d.Floor
}

// MaxRetries is the number of escalations available from the floor before
// Next refuses.
func (d Doubling) MaxRetries() int {
	if d.Floor <= 0 || d.Factor <= 1 || d.Ceiling < d.Floor {
		return 0
	}
	n := 0
	for v := d.Floor; v < d.Ceiling; v *= d.Factor {
		n++
	}
	return n
}

// CumulativeUnits is the total wait spent across MaxRetries escalations.
func (d Doubling) CumulativeUnits() float64 {
	total := 0.0
	v := d.Floor
	for i := 0; i < d.MaxRetries(); i++ {
		v *= d.Factor
		total += v
	}
	return total
}

// Duration converts a unit count into wall-clock time.
func Duration(units float64, unit time.Duration) time.Duration {
	d := units * float64(unit)
	if d > math.MaxInt64 || d < 0 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// Validate reports whether the progression terminates.
func (d Doubling) Validate() bool {
	return d.Floor > 0 && d.Factor > 1 && d.Ceiling >= d.Floor
}
