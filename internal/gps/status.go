package gps

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// ErrSensorUnavailable means there is no position sensor at all; it is
// reported once and ends the session.
var ErrSensorUnavailable = errors.New("gps: position sensor unavailable")

// ErrorKind is a recoverable sensor condition.
type ErrorKind string

const (
	PermissionDenied    ErrorKind = "permission_denied"
	PositionUnavailable ErrorKind = "position_unavailable"
	Timeout             ErrorKind = "timeout"
)

// SensorError is a failed attempt; the stream keeps delivering afterwards.
type SensorError struct {
	Kind ErrorKind
	Err  error
}

func (e *SensorError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("gps: %s", e.Kind)
	}
	return fmt.Sprintf("gps: %s: %v", e.Kind, e.Err)
}

func (e *SensorError) Unwrap() error { return e.Err }

// Status states published next to the fixes.
const (
	StateOK          = "ok"
	StateUnavailable = "unavailable"
)

// Status is the sensor health message consumed by the presentation layer.
type Status struct {
	State       string `json:"state"`
	Message     string `json:"message,omitempty"`
	TimestampMs int64  `json:"timestamp_ms"`
}

// OK reports whether the sensor is delivering fixes.
func (s Status) OK() bool { return s.State == StateOK }

// StatusOK is the status after a good fix.
func StatusOK(now time.Time) Status {
	return Status{State: StateOK, TimestampMs: now.UnixMilli()}
}

// StatusFromError maps a sensor error to a status message.
func StatusFromError(err error, now time.Time) Status {
	st := Status{Message: err.Error(), TimestampMs: now.UnixMilli()}

	var se *SensorError
	switch {
	case errors.As(err, &se):
		st.State = string(se.Kind)
	case errors.Is(err, ErrSensorUnavailable):
		st.State = StateUnavailable
	default:
		st.State = string(PositionUnavailable)
	}
	return st
}

// ClassifyOpenError turns a failure to open the receiver port into the
// sensor taxonomy: a missing device means no sensor, a refused one is a
// permission problem.
func ClassifyOpenError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %v", ErrSensorUnavailable, err)
	case errors.Is(err, fs.ErrPermission):
		return &SensorError{Kind: PermissionDenied, Err: err}
	default:
		return &SensorError{Kind: PositionUnavailable, Err: err}
	}
}
