package access

import (
	"fmt"
	"strings"
)

// Level is the trust tier a user holds for a single command invocation.
type Level int

const (
	Normal Level = iota
	Voice
	Operator
	Admin
	Root
)

var levelNames = [...]string{
	Normal:   "NORMAL",
	Voice:    "VOICE",
	Operator: "OPERATOR",
	Admin:    "ADMIN",
	Root:     "ROOT",
}

func (l Level) String() string {
	if l < Normal || l > Root {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// Satisfies reports whether a user holding given may run something that requires required.
func Satisfies(required, given Level) bool {
	return given >= required
}

// Max returns the higher of two levels.
func Max(a, b Level) Level {
	if a > b {
		return a
	}
	return b
}

// Levels returns every level from lowest to highest.
func Levels() []Level {
	return []Level{Normal, Voice, Operator, Admin, Root}
}

// Parse reads a level name, ignoring case.
func Parse(name string) (Level, error) {
	name = strings.TrimSpace(name)
	for i, n := range levelNames {
		if strings.EqualFold(n, name) {
			return Level(i), nil
		}
	}
	return Normal, fmt.Errorf("unknown access level %q", name)
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
