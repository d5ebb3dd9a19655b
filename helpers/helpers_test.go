package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWildcardToRegexp(t *testing.T) {
	tests := []struct {
		mask  string
		input string
		want  bool
	}{
		{"*!*@spam.example", "bot!x@spam.example", true},
		{"*!*@spam.example", "bot!x@spam.example.org", false},
		{"troll?!*@*", "troll1!t@host", true},
		{"troll?!*@*", "troll12!t@host", false},
		{"Nick!*@*", "nick!a@b", true},
		{"a.b!*@*", "axb!c@d", false},
	}
	for _, tt := range tests {
		t.Run(tt.mask+" "+tt.input, func(t *testing.T) {
			re, err := WildcardToRegexp(tt.mask)
			require.NoError(t, err)
			assert.Equal(t, tt.want, re.MatchString(tt.input))
		})
	}
}

func TestParseBool(t *testing.T) {
	v, ok := ParseBool("Yes")
	assert.True(t, ok)
	assert.True(t, v)

	v, ok = ParseBool("off")
	assert.True(t, ok)
	assert.False(t, v)

	_, ok = ParseBool("maybe")
	assert.False(t, ok)
}

func TestSince(t *testing.T) {
	assert.Equal(t, "just now", Since(time.Now()))
	assert.Contains(t, Since(time.Now().Add(-3*time.Hour)), "3 hours")
	assert.Equal(t, "never", UnixTimeToHumanReadable(0))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab…", Truncate("abcdef", 2))
}

func TestStatusIndicator(t *testing.T) {
	assert.Equal(t, "[YES]", BoolToStatusIndicator(true))
	assert.Equal(t, "[NO]", BoolToStatusIndicator(false))
	assert.Equal(t, "[N/A]", StringToStatusIndicator(""))
}
