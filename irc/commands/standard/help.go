package standard

import (
	"sort"
	"strings"

	"perchbot/irc/commands"
	"perchbot/irc/commands/help"
	"perchbot/irc/state"
)

type Help struct {
	registry *commands.Registry
}

func NewHelp(r *commands.Registry) *Help {
	return &Help{registry: r}
}

func (h *Help) Info() commands.Info {
	return commands.Info{
		Name:    "help",
		Help:    "Provides a list of all available commands plus short descriptions for them.",
		Serious: true,
		Example: "help <command>",
	}
}

func (h *Help) Run(s *state.State) error {
	name := strings.TrimPrefix(strings.TrimSpace(s.Message()), s.Prefix)
	if name == "" {
		h.list(s)
		return nil
	}

	cmd := h.registry.FindByName(name)
	if cmd == nil {
		s.Send("I don't know a command called [b]" + name + "[/b].")
		return nil
	}
	s.SendNoName(help.Format(s.Prefix, cmd.Info()))
	return nil
}

func (h *Help) list(s *state.State) {
	cmds := h.registry.ListAll()

	var names []string
	for _, cmd := range cmds {
		names = append(names, cmd.Info().Names()...)
	}
	sort.Strings(names)

	s.SendPrivate("Commands I recognize: " + strings.Join(names, ", "))
	s.SendPrivate(help.List(cmds, s.Level()))
	s.SendPrivate("For additional help type \"" + s.Prefix + "help <command>\" where <command> is the name of the command you want help for.")
	if s.IsChannel() {
		s.Send("I sent you a private message with information about all my commands!")
	}
}
