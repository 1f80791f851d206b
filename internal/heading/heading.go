// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package heading holds compass angle helpers and the heading smoother.
package heading

import "math"

// SmoothingFactor is the weight given to each new compass sample.
const SmoothingFactor = 0.2

// Normalize reduces an angle to [0, 360).
func Normalize(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	// math.Mod of a tiny negative can round back up to 360.
	if d >= 360 {
		d -= 360
	}
	return d
}

// Signed folds an angle difference in (-540, 540) into (-180, 180] with a
// single correction.
func Signed(delta float64) float64 {
	if delta > 180 {
		return delta - 360
	}
	if delta <= -180 {
		return delta + 360
	}
	return delta
}

// Smoother keeps an exponentially smoothed heading. The zero value starts
// at north and is ready to use.
type Smoother struct {
	current float64
}

// Update folds a raw compass sample in [0, 360) into the smoothed value,
// always turning through the short arc.
func (s *Smoother) Update(raw float64) {
	delta := Signed(raw - s.current)
	s.current = Normalize(s.current + delta*SmoothingFactor)
}

// UpdateSample is Update for an optional sample; a missing sample leaves
// the state untouched.
func (s *Smoother) UpdateSample(raw *float64) bool {
	if raw == nil || math.IsNaN(*raw) || math.IsInf(*raw, 0) {
		return false
	}
	s.Update(Normalize(*raw))
	return true
}

// Current returns the smoothed heading in [0, 360).
func (s *Smoother) Current() float64 {
	return s.current
}
