package models

import "strings"

// SanitizeKeySegment escapes delimiter characters in rate limit key segments
// so user-controlled identifiers containing ':' cannot collide with adjacent
// keys. IPv6 addresses are affected too; "::1" becomes "__1".
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// NormalizeEmail is the identity used for the email dimension.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Key identifies one window log in the store:
// rl:<dimension>:<window>:<identifier>.
type Key struct {
	Dimension  Dimension
	Window     WindowName
	Identifier string
}

// NewKey builds a key, sanitizing the identifier.
func NewKey(dimension Dimension, window WindowName, identifier string) Key {
	return Key{
		Dimension:  dimension,
		Window:     window,
		Identifier: SanitizeKeySegment(identifier),
	}
}

func (k Key) String() string {
	return "rl:" + string(k.Dimension) + ":" + string(k.Window) + ":" + k.Identifier
}
