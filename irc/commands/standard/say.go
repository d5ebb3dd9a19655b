package standard

import (
	"errors"

	"perchbot/irc/commands"
	"perchbot/irc/state"
)

var errNothingToSay = errors.New("tell me what to say")

type Say struct{}

func (Say) Info() commands.Info {
	return commands.Info{
		Name:    "say",
		Help:    "Outputs the given text to the given channel.",
		Serious: true,
		Arguments: []commands.Argument{
			{Name: "-to", Help: "The channel where the bot should send the message to."},
		},
		Example: "say -to:#botwar Hi, I'm the new one.",
	}
}

func (Say) Run(s *state.State) error {
	to := s.ConsumeFlag("to")
	if s.IsEmptyMessage() {
		return errNothingToSay
	}
	if to != "" {
		s.SendTo(to, s.Message())
		return nil
	}
	s.SendNoName(s.Message())
	return nil
}

type Action struct{}

func (Action) Info() commands.Info {
	return commands.Info{
		Name:    "action",
		Aliases: []string{"me"},
		Help:    "Outputs the given text to the given channel as an action.",
		Serious: true,
		Arguments: []commands.Argument{
			{Name: "-to", Help: "The channel where the bot should send the action to."},
		},
		Example: "action runs away.",
	}
}

func (Action) Run(s *state.State) error {
	to := s.ConsumeFlag("to")
	if s.IsEmptyMessage() {
		return errNothingToSay
	}
	if to != "" {
		s.Gateway.SendAction(s.Message(), to)
		return nil
	}
	s.SendAction(s.Message())
	return nil
}
