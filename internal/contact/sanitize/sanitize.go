// Package sanitize neutralizes control characters in user text before it is
// persisted or mailed.
package sanitize

import "strings"

// Maximum stored lengths, in characters.
const (
	NameMax    = 60
	SubjectMax = 180
	MessageMax = 1000
	PreviewMax = 200
)

// Text replaces every character below U+0020 and U+007F with a space, then
// truncates to max characters. Newlines and tabs are replaced too.
func Text(s string, max int) string {
	if max <= 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(min(len(s), max*4))
	n := 0
	for _, r := range s {
		if n == max {
			break
		}
		if r < 0x20 || r == 0x7f {
			r = ' '
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}
