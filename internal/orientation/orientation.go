// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"time"

	"github.com/relabs-tech/survey_navigator/internal/heading"
)

// Pose is the orientation published by a compass/IMU producer. Yaw is the
// compass heading in degrees clockwise from north.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Source is anything that can provide poses over time.
type Source interface {
	Next() (Pose, error)
}

// Sample is one device-orientation event. Alpha is the rotation about the
// vertical axis (counter-clockwise); CompassHeading is the platform's
// magnetic heading when the device exposes one. Either may be missing.
type Sample struct {
	Alpha          *float64 `json:"alpha,omitempty"`
	CompassHeading *float64 `json:"compass_heading,omitempty"`
	TimestampMs    int64    `json:"timestamp_ms,omitempty"`
}

// SampleFromPose converts a producer pose into a compass sample.
func SampleFromPose(p Pose, at time.Time) Sample {
	yaw := heading.Normalize(p.Yaw)
	return Sample{CompassHeading: &yaw, TimestampMs: at.UnixMilli()}
}

// RawHeading returns the heading carried by the sample. The platform
// compass heading is preferred; alpha grows counter-clockwise so it is
// mirrored. ok is false when the event carries no usable orientation.
func (s Sample) RawHeading() (float64, bool) {
	if s.CompassHeading != nil && finite(*s.CompassHeading) {
		return heading.Normalize(*s.CompassHeading), true
	}
	if s.Alpha != nil && finite(*s.Alpha) {
		return heading.Normalize(360 - *s.Alpha), true
	}
	return 0, false
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
