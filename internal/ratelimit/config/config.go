package config

import (
	"time"

	"contactd/internal/ratelimit/models"
)

// Window is one admission rule: at most Limit requests in any trailing
// Length.
type Window struct {
	Name   models.WindowName
	Limit  int
	Length time.Duration
}

// DimensionLimit is the pair of nested windows enforced for a dimension.
// Both must admit a request before either records it.
type DimensionLimit struct {
	Short Window
	Long  Window
}

// Tightest returns the smaller of the two limits, the budget reported when
// no window has been consumed yet.
func (d DimensionLimit) Tightest() int {
	return min(d.Short.Limit, d.Long.Limit)
}

// Config holds the limits for every dimension.
type Config struct {
	IP    DimensionLimit
	Email DimensionLimit
}

// DefaultConfig returns the production limits:
//
//	ip:    3 per minute, 10 per day
//	email: 3 per hour,   10 per day
func DefaultConfig() *Config {
	return &Config{
		IP: DimensionLimit{
			Short: Window{Name: models.WindowMinute, Limit: 3, Length: time.Minute},
			Long:  Window{Name: models.WindowDay, Limit: 10, Length: 24 * time.Hour},
		},
		Email: DimensionLimit{
			Short: Window{Name: models.WindowHour, Limit: 3, Length: time.Hour},
			Long:  Window{Name: models.WindowDay, Limit: 10, Length: 24 * time.Hour},
		},
	}
}

// For returns the limits of a dimension.
func (c *Config) For(d models.Dimension) (DimensionLimit, bool) {
	switch d {
	case models.DimensionIP:
		return c.IP, true
	case models.DimensionEmail:
		return c.Email, true
	}
	return DimensionLimit{}, false
}
