package models

import "time"

// Dimension is the identity a submission is counted against.
type Dimension string

const (
	DimensionIP    Dimension = "ip"
	DimensionEmail Dimension = "email"
)

// IsValid checks if the dimension is one of the supported values.
func (d Dimension) IsValid() bool {
	return d == DimensionIP || d == DimensionEmail
}

// WindowName labels one of the two nested windows of a dimension.
type WindowName string

const (
	WindowMinute WindowName = "minute"
	WindowHour   WindowName = "hour"
	WindowDay    WindowName = "day"
)

// Verdict is the outcome of a dimension check. It is derived per request
// and never persisted.
type Verdict struct {
	Allowed   bool      `json:"allowed"`
	Dimension Dimension `json:"dimension"`
	Limit     int       `json:"limit"`
	// Remaining is the smaller leftover budget of the two windows.
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
	// ViolatedWindow names the window that rejected the request.
	ViolatedWindow WindowName `json:"violated_window,omitempty"`
	// FailedOpen marks a verdict produced while the store was unavailable.
	FailedOpen bool `json:"failed_open,omitempty"`
}

// Message is the caller-facing explanation for a rejected verdict.
func (v *Verdict) Message() string {
	switch {
	case v.Dimension == DimensionIP && v.ViolatedWindow == WindowDay:
		return "Daily submission limit reached for your network. Please try again tomorrow."
	case v.Dimension == DimensionIP:
		return "Too many requests. Please wait a minute and try again."
	case v.Dimension == DimensionEmail && v.ViolatedWindow == WindowDay:
		return "Daily submission limit reached for this email address. Please try again tomorrow."
	case v.Dimension == DimensionEmail:
		return "Too many messages from this email address. Please try again later."
	}
	return "Too many requests. Please try again later."
}
