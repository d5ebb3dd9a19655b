package admin

import (
	"errors"
	"strings"

	"perchbot/helpers"
	"perchbot/irc/access"
	"perchbot/irc/commands"
	"perchbot/irc/message"
	"perchbot/irc/state"
	"perchbot/irc/users"
)

// Ignore manages the hostmasks whose commands are dropped, and drops them.
type Ignore struct {
	list *users.IgnoreList
}

func NewIgnore(list *users.IgnoreList) *Ignore {
	return &Ignore{list: list}
}

func (i *Ignore) Name() string {
	return "ignore"
}

func (i *Ignore) Info() commands.Info {
	return commands.Info{
		Name:    "ignore",
		Help:    "Ignores every command from users matching a hostmask.",
		Level:   access.Admin,
		Serious: true,
		Arguments: []commands.Argument{
			{Name: "-remove", Help: "Stops ignoring the hostmask."},
			{Name: "-list", Help: "Lists the ignored hostmasks."},
		},
		Example: "ignore Spambot!*@*",
	}
}

func (i *Ignore) Run(s *state.State) error {
	if _, ok := s.ConsumeFlagOK("list"); ok {
		masks := i.list.Masks()
		if len(masks) == 0 {
			s.SendPrivate("Nobody is ignored.")
			return nil
		}
		s.SendPrivate(strings.Join(masks, "; "))
		return nil
	}

	mask, remove := s.ConsumeFlagOK("remove")
	if mask == "" {
		mask = strings.TrimSpace(s.Message())
	}
	if mask == "" {
		s.Send("Invalid hostmask!")
		return nil
	}

	if remove {
		if err := i.list.Remove(mask); err != nil {
			return i.reply(s, err)
		}
		s.Send("Unignored \"" + mask + "\"")
		return nil
	}
	if err := i.list.Add(mask); err != nil {
		return i.reply(s, err)
	}
	s.Logger().Info("Hostmask ignored", "mask", mask)
	s.Send("Ignored \"" + mask + "\"")
	return nil
}

func (i *Ignore) reply(s *state.State, err error) error {
	if errors.Is(err, users.ErrAlreadyIgnored) || errors.Is(err, users.ErrNotIgnored) {
		s.Send(helpers.CapitaliseFirst(err.Error()) + "!")
		return nil
	}
	return err
}

// AllowCommand drops commands from ignored hostmasks.
func (i *Ignore) AllowCommand(msg *message.Message) bool {
	return !i.list.Matches(msg.Hostmask)
}
