package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"plain text untouched", "Hello there", 60, "Hello there"},
		{"control characters become spaces", "Hi\x00there\x7f", 60, "Hi there "},
		{"newlines and tabs become spaces", "line1\nline2\tend\r", 60, "line1 line2 end "},
		{"truncated to max", strings.Repeat("a", 70), NameMax, strings.Repeat("a", NameMax)},
		{"accented text untouched", "Crème brûlée", 60, "Crème brûlée"},
		{"cjk counted per character", "こんにちは世界", 5, "こんにちは"},
		{"empty input", "", 60, ""},
		{"zero max", "abc", 0, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Text(tc.in, tc.max))
		})
	}
}

func TestTextIsIdempotent(t *testing.T) {
	in := "a\x01b\x02" + strings.Repeat("z", 2000)
	once := Text(in, MessageMax)
	assert.Equal(t, once, Text(once, MessageMax))
	assert.Len(t, []rune(once), MessageMax)
}
