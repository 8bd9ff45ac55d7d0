package domain

import (
	"strings"
	"time"
)

// ChecksCollection is the record store collection holding check documents.
const ChecksCollection = "checks"

const (
	IDLength      = 20
	OwnerIDLength = 10
)

type Protocol string

const (
	ProtocolHTTP  Protocol = "http"
	ProtocolHTTPS Protocol = "https"
)

type Method string

const (
	MethodGet    Method = "get"
	MethodPost   Method = "post"
	MethodPut    Method = "put"
	MethodDelete Method = "delete"
)

type State string

const (
	StateUnknown State = ""
	StateUp      State = "up"
	StateDown    State = "down"
)

// OrDown maps an unknown state to down, which is how a missing prior state
// is compared against a fresh outcome.
func (s State) OrDown() State {
	if s == StateUp {
		return StateUp
	}
	return StateDown
}

// Record is a raw check document as held by the record store.
type Record map[string]any

// Clone returns a shallow copy; values in a Record are JSON scalars or slices
// of scalars, which are never mutated in place.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Check is a validated monitor definition ready for probing.
type Check struct {
	ID             string   `json:"id"`
	OwnerID        string   `json:"ownerId"`
	Protocol       Protocol `json:"protocol"`
	URL            string   `json:"url"`
	Method         Method   `json:"method"`
	SuccessCodes   []int    `json:"successCodes"`
	TimeoutSeconds int      `json:"timeoutSeconds"`
	State          State    `json:"state,omitempty"`
	LastChecked    int64    `json:"lastChecked,omitempty"` // epoch ms, 0 before the first cycle
}

func (c Check) Target() string {
	return string(c.Protocol) + "://" + c.URL
}

func (c Check) HTTPMethod() string {
	return strings.ToUpper(string(c.Method))
}

func (c Check) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Check) HasPriorCycle() bool {
	return c.LastChecked > 0
}

func (c Check) Accepts(code int) bool {
	for _, sc := range c.SuccessCodes {
		if sc == code {
			return true
		}
	}
	return false
}

// Record renders the check in the persisted document layout.
func (c Check) Record() Record {
	codes := make([]any, 0, len(c.SuccessCodes))
	for _, sc := range c.SuccessCodes {
		codes = append(codes, sc)
	}
	r := Record{
		"id":             c.ID,
		"ownerId":        c.OwnerID,
		"protocol":       string(c.Protocol),
		"url":            c.URL,
		"method":         string(c.Method),
		"successCodes":   codes,
		"timeoutSeconds": c.TimeoutSeconds,
	}
	if c.State != StateUnknown {
		r["state"] = string(c.State)
	}
	if c.LastChecked > 0 {
		r["lastChecked"] = c.LastChecked
	}
	return r
}

func NowMillis(t time.Time) int64 {
	return t.UnixMilli()
}
