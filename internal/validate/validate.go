// Package validate turns raw check documents into typed checks.
//
// Every field is checked on its own. A failure in any identity or probe
// field rejects the record; state and lastChecked are lenient and never
// block processing.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/multierr"

	"github.com/hamed0406/uptimeengine/internal/domain"
)

// ErrInvalid is wrapped by every field error returned from Check.
var ErrInvalid = errors.New("invalid check")

// FieldError names the offending field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrInvalid }

// legacy keys written by older versions of the CRUD layer
var aliases = map[string]string{
	"ownerId":        "userPhone",
	"timeoutSeconds": "timeoutSec",
}

const (
	MinTimeoutSeconds = 1
	MaxTimeoutSeconds = 5

	MinStatusCode = 100
	MaxStatusCode = 599
)

// Check validates rec. On rejection the returned error combines one
// *FieldError per failing field; use multierr.Errors to list them.
func Check(rec domain.Record) (domain.Check, error) {
	if rec == nil {
		return domain.Check{}, &FieldError{Field: "record", Reason: "not an object"}
	}

	var (
		c    domain.Check
		errs error
		err  error
	)

	if c.ID, err = exactLen(rec, "id", domain.IDLength); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.OwnerID, err = exactLen(rec, "ownerId", domain.OwnerIDLength); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.Protocol, err = protocol(rec); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.URL, err = nonEmpty(rec, "url"); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.Method, err = method(rec); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.SuccessCodes, err = successCodes(rec); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.TimeoutSeconds, err = timeoutSeconds(rec); err != nil {
		errs = multierr.Append(errs, err)
	}
	if errs != nil {
		return domain.Check{}, errs
	}

	c.State = State(rec)
	c.LastChecked = LastChecked(rec)
	return c, nil
}

// State returns the stored state. Absent means unknown; anything other than
// "up" or "down" is coerced to down.
func State(rec domain.Record) domain.State {
	v, ok := rec["state"]
	if !ok || v == nil {
		return domain.StateUnknown
	}
	s, _ := v.(string)
	switch domain.State(s) {
	case domain.StateUp:
		return domain.StateUp
	default:
		return domain.StateDown
	}
}

// LastChecked returns the stored epoch-ms timestamp, or 0 when it is absent
// or not a positive integer.
func LastChecked(rec domain.Record) int64 {
	n, ok := integer(rec["lastChecked"])
	if !ok || n < 1 {
		return 0
	}
	return n
}

func lookup(rec domain.Record, key string) (any, bool) {
	if v, ok := rec[key]; ok {
		return v, true
	}
	if alt, ok := aliases[key]; ok {
		v, ok := rec[alt]
		return v, ok
	}
	return nil, false
}

func str(rec domain.Record, key string) (string, error) {
	v, ok := lookup(rec, key)
	if !ok || v == nil {
		return "", &FieldError{Field: key, Reason: "missing"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &FieldError{Field: key, Reason: "not a string"}
	}
	return strings.TrimSpace(s), nil
}

func exactLen(rec domain.Record, key string, n int) (string, error) {
	s, err := str(rec, key)
	if err != nil {
		return "", err
	}
	if len(s) != n {
		return "", &FieldError{Field: key, Reason: fmt.Sprintf("length %d, want %d", len(s), n)}
	}
	return s, nil
}

func nonEmpty(rec domain.Record, key string) (string, error) {
	s, err := str(rec, key)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", &FieldError{Field: key, Reason: "empty"}
	}
	return s, nil
}

func protocol(rec domain.Record) (domain.Protocol, error) {
	s, err := str(rec, "protocol")
	if err != nil {
		return "", err
	}
	switch p := domain.Protocol(s); p {
	case domain.ProtocolHTTP, domain.ProtocolHTTPS:
		return p, nil
	}
	return "", &FieldError{Field: "protocol", Reason: fmt.Sprintf("unsupported %q", s)}
}

func method(rec domain.Record) (domain.Method, error) {
	s, err := str(rec, "method")
	if err != nil {
		return "", err
	}
	switch m := domain.Method(s); m {
	case domain.MethodGet, domain.MethodPost, domain.MethodPut, domain.MethodDelete:
		return m, nil
	}
	return "", &FieldError{Field: "method", Reason: fmt.Sprintf("unsupported %q", s)}
}

func successCodes(rec domain.Record) ([]int, error) {
	v, ok := lookup(rec, "successCodes")
	if !ok || v == nil {
		return nil, &FieldError{Field: "successCodes", Reason: "missing"}
	}
	var items []any
	switch vv := v.(type) {
	case []any:
		items = vv
	case []int:
		for _, n := range vv {
			items = append(items, n)
		}
	default:
		return nil, &FieldError{Field: "successCodes", Reason: "not an array"}
	}
	if len(items) == 0 {
		return nil, &FieldError{Field: "successCodes", Reason: "empty"}
	}

	seen := make(map[int]struct{}, len(items))
	out := make([]int, 0, len(items))
	for _, it := range items {
		n, ok := integer(it)
		if !ok {
			return nil, &FieldError{Field: "successCodes", Reason: fmt.Sprintf("non-integer code %v", it)}
		}
		if n < MinStatusCode || n > MaxStatusCode {
			return nil, &FieldError{Field: "successCodes", Reason: fmt.Sprintf("code %d outside [%d,%d]", n, MinStatusCode, MaxStatusCode)}
		}
		if _, dup := seen[int(n)]; dup {
			continue
		}
		seen[int(n)] = struct{}{}
		out = append(out, int(n))
	}
	return out, nil
}

func timeoutSeconds(rec domain.Record) (int, error) {
	v, ok := lookup(rec, "timeoutSeconds")
	if !ok || v == nil {
		return 0, &FieldError{Field: "timeoutSeconds", Reason: "missing"}
	}
	n, ok := integer(v)
	if !ok {
		return 0, &FieldError{Field: "timeoutSeconds", Reason: "not an integer"}
	}
	if n < MinTimeoutSeconds || n > MaxTimeoutSeconds {
		return 0, &FieldError{Field: "timeoutSeconds", Reason: fmt.Sprintf("%d outside [%d,%d]", n, MinTimeoutSeconds, MaxTimeoutSeconds)}
	}
	return int(n), nil
}

// integer accepts the numeric shapes a decoded JSON document or a Go
// literal can carry, rejecting fractional values.
func integer(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return 0, false
		}
		if n < math.MinInt64 || n >= 1<<63 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}
