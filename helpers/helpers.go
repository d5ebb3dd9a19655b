package helpers

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/hako/durafmt"
)

// UnixTimeToHumanReadable renders how long ago timestamp was, e.g. "3 hours 2 minutes".
func UnixTimeToHumanReadable(timestamp int64) string {
	if timestamp == 0 {
		return "never"
	}
	return Since(time.Unix(timestamp, 0))
}

// Since renders the time elapsed since t with at most two units.
func Since(t time.Time) string {
	elapsed := time.Since(t).Truncate(time.Second)
	if elapsed < time.Second {
		return "just now"
	}
	return durafmt.Parse(elapsed).LimitFirstN(2).String()
}

// StringToStatusIndicator converts a string to a status indicator string.
func StringToStatusIndicator(s string) string {
	switch s {
	case "":
		return "[N/A]"
	case "true":
		return "[YES]"
	case "false":
		return "[NO]"
	}
	return "[?]"
}

// BoolToStatusIndicator is StringToStatusIndicator for a bool.
func BoolToStatusIndicator(b bool) string {
	return StringToStatusIndicator(strconv.FormatBool(b))
}

// ParseBool accepts the usual spellings of yes and no.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on", "y":
		return true, true
	case "0", "false", "no", "off", "n":
		return false, true
	}
	return false, false
}

// WildcardToRegexp compiles a glob with * and ? into an anchored, case-insensitive pattern.
func WildcardToRegexp(mask string) (*regexp.Regexp, error) {
	quoted := regexp.QuoteMeta(strings.TrimSpace(mask))
	quoted = strings.ReplaceAll(quoted, `\*`, ".*")
	quoted = strings.ReplaceAll(quoted, `\?`, ".")
	return regexp.Compile("(?i)^" + quoted + "$")
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}

func CapitaliseFirst(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	return string(unicode.ToUpper(r[0])) + string(r[1:])
}
