package domain

import "time"

// ReasonTimeout is the outcome reason when a probe exceeds its check timeout.
const ReasonTimeout = "timeout"

// Outcome is the result of a single probe attempt.
type Outcome struct {
	Error        bool          `json:"error"`
	Reason       string        `json:"reason,omitempty"`
	ResponseCode int           `json:"responseCode,omitempty"` // 0 when Error is set
	Latency      time.Duration `json:"latency"`
}

// StateFor applies the state law: up only when the probe completed with an
// accepted status code.
func (o Outcome) StateFor(c Check) State {
	if !o.Error && c.Accepts(o.ResponseCode) {
		return StateUp
	}
	return StateDown
}
