// Package metrics builds the wire Metrics value attached to every
// inference response (spec.md §4.5.3, §6), grounded on
// original_source/server/types/metrics.py's Metrics builder.
package metrics

import (
	"time"

	"github.com/google/uuid"
)

// Metrics reports timing and, when requested, a trace identifier for one
// predict call.
type Metrics struct {
	TimeToExecuteUS int64
	TraceURL        string
}

// New builds a Metrics from the engine's measured execution time. When
// trace is true, a fresh trace id is minted and rendered into TraceURL;
// tracing is opt-in per request (spec.md §6).
func New(execTime time.Duration, trace bool) Metrics {
	m := Metrics{TimeToExecuteUS: execTime.Microseconds()}
	if trace {
		m.TraceURL = "trace:" + uuid.NewString()
	}
	return m
}
