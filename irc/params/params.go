// Package params reads flag-style parameters from the front of a chat command.
//
// A command line may start with a run of flags such as
//
//	-to:#channel -structure:"^[0-9]+$" -list rest of the message
//
// Scanning stops at the first token that is not a flag. A flag value is either a
// single token or a double-quoted string. Writing \- keeps a dash from being read
// as a flag marker; the backslash is dropped once a flag has been consumed.
package params

import "strings"

// Flag is one parsed flag token.
type Flag struct {
	Name   string
	Value  string
	Quoted bool

	// Byte offsets of the whole token in the scanned message.
	Start int
	End   int
}

// Scan returns the leading run of flags in message.
func Scan(message string) []Flag {
	var flags []Flag
	i := 0
	for {
		for i < len(message) && message[i] == ' ' {
			i++
		}
		if i >= len(message) || message[i] != '-' {
			return flags
		}
		flag, ok := parseFlag(message, i)
		if !ok {
			return flags
		}
		flags = append(flags, flag)
		i = flag.End
	}
}

// Has reports whether the leading flag run of message contains name, ignoring case.
func Has(message, name string) bool {
	for _, flag := range Scan(message) {
		if strings.EqualFold(flag.Name, name) {
			return true
		}
	}
	return false
}

// Value returns the value of the first flag called name without removing it.
func Value(message, name string) (string, bool) {
	for _, flag := range Scan(message) {
		if strings.EqualFold(flag.Name, name) {
			return flag.Value, true
		}
	}
	return "", false
}

// Consume removes the first flag called name and returns its value along with what is
// left of the message. Other flags are left in place. When the flag is absent the value
// is empty and message is returned untouched.
func Consume(message, name string) (value string, rest string) {
	for _, flag := range Scan(message) {
		if !strings.EqualFold(flag.Name, name) {
			continue
		}
		before := strings.TrimSpace(message[:flag.Start])
		after := strings.TrimSpace(message[flag.End:])
		rest = before
		if before != "" && after != "" {
			rest += " "
		}
		rest += after
		return strings.TrimSpace(flag.Value), Unescape(rest)
	}
	return "", message
}

// Unescape turns every escaped flag marker back into a literal dash.
func Unescape(s string) string {
	return strings.ReplaceAll(s, `\-`, "-")
}

func parseFlag(s string, start int) (Flag, bool) {
	i := start + 1
	nameStart := i
	for i < len(s) && s[i] != ':' && s[i] != '=' && s[i] != ' ' {
		i++
	}
	if i == nameStart {
		return Flag{}, false
	}
	flag := Flag{Name: s[nameStart:i], Start: start}

	if i < len(s) && (s[i] == ':' || s[i] == '=') {
		i++
		if i < len(s) && s[i] == '"' {
			if end := closingQuote(s, i+1); end >= 0 {
				flag.Value = strings.TrimSpace(strings.ReplaceAll(s[i+1:end], `\"`, `"`))
				flag.Quoted = true
				i = end + 1
			} else {
				i = tokenEnd(s, i, &flag)
			}
		} else {
			i = tokenEnd(s, i, &flag)
		}
	}

	// a quoted value glued to more text is not a flag
	if i < len(s) && s[i] != ' ' {
		return Flag{}, false
	}
	flag.End = i
	return flag, true
}

func tokenEnd(s string, i int, flag *Flag) int {
	valueStart := i
	for i < len(s) && s[i] != ' ' {
		i++
	}
	flag.Value = s[valueStart:i]
	return i
}

// closingQuote finds the next double quote at or after i that is not preceded by a backslash.
func closingQuote(s string, i int) int {
	for ; i < len(s); i++ {
		if s[i] == '"' && (i == 0 || s[i-1] != '\\') {
			return i
		}
	}
	return -1
}
