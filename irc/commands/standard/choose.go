package standard

import (
	"errors"
	"math/rand/v2"
	"strings"

	"perchbot/irc/commands"
	"perchbot/irc/state"
)

type Choose struct{}

func (Choose) Info() commands.Info {
	return commands.Info{
		Name:    "choose",
		Help:    "Picks one option from 2 or more different things.",
		Serious: true,
		Example: "choose coffee|tea",
	}
}

func (Choose) Run(s *state.State) error {
	options := splitOptions(s.Message())
	if len(options) < 2 {
		return errors.New("you have to submit at least two options")
	}
	s.Send("Your options are: " + strings.Join(options, ", ") + ". My choice: " + options[rand.IntN(len(options))])
	return nil
}

func splitOptions(text string) []string {
	var options []string
	for _, o := range strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(`|/\;,`, r)
	}) {
		if o = strings.TrimSpace(o); o != "" {
			options = append(options, o)
		}
	}
	return options
}
