package commands

import (
	"reflect"
	"strings"
	"time"

	"perchbot/irc/access"
	"perchbot/irc/state"
)

type (
	// Command is a chat command. Run is only called once the caller's level satisfies
	// Info().Level.
	Command interface {
		Info() Info
		Run(s *state.State) error
	}

	Info struct {
		Name      string
		Aliases   []string
		Help      string
		Level     access.Level
		Arguments []Argument
		Example   string

		// Serious commands may run in serious channels.
		Serious bool

		// Timeout above zero makes the command long-running. It then runs on the job
		// runner, one at a time per module, and is cancelled after Timeout.
		Timeout time.Duration
	}

	Argument struct {
		Name   string
		Help   string
		Values string
	}

	// Moduler lets a command or plugin name the module it belongs to.
	Moduler interface {
		Module() string
	}
)

// Names returns the primary name followed by the aliases.
func (i Info) Names() []string {
	return append([]string{i.Name}, i.Aliases...)
}

// LongRunning reports whether the command runs on the job runner.
func (i Info) LongRunning() bool {
	return i.Timeout > 0
}

// ModuleOf is the module identity of v: its Module() when it has one, otherwise its
// lower-cased type name.
func ModuleOf(v any) string {
	if m, ok := v.(Moduler); ok {
		return strings.ToLower(m.Module())
	}
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return strings.ToLower(t.Name())
}
