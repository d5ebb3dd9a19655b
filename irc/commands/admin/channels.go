package admin

import (
	"errors"
	"fmt"
	"strings"

	"perchbot/helpers"
	"perchbot/irc/access"
	"perchbot/irc/channels"
	"perchbot/irc/commands"
	"perchbot/irc/message"
	"perchbot/irc/state"
)

var errInvalidChannel = errors.New("invalid channel name")

// Join makes the bot join a channel and remembers it for the next connect.
type Join struct {
	channels *channels.Set
}

func NewJoin(set *channels.Set) *Join {
	return &Join{channels: set}
}

func (j *Join) Info() commands.Info {
	return commands.Info{
		Name:    "join",
		Help:    "Makes the bot join a channel.",
		Level:   access.Admin,
		Serious: true,
		Arguments: []commands.Argument{
			{Name: "-password", Help: "The password for the channel. Channels with a password are secret."},
		},
		Example: "join #botwar",
	}
}

func (j *Join) Run(s *state.State) error {
	password := s.ConsumeFlag("password")
	name := strings.TrimSpace(s.Message())
	if name == "" {
		s.SendAction("tries to unlock the tremendous energy of the vacuum")
		return nil
	}
	if !message.IsChannel(name) {
		return errInvalidChannel
	}
	if _, ok := j.channels.Get(name); ok {
		s.Send("I am already active in " + name + ".")
		return nil
	}

	if err := j.channels.Put(channels.Channel{
		Name:     name,
		Password: password,
		Serious:  true,
		Secret:   password != "",
	}); err != nil {
		return err
	}
	s.Conn.Join(name, password)
	s.Logger().Info("Joined channel", "channel", name)
	s.Send("I have joined " + name + "!")
	return nil
}

// Leave parts a channel and forgets it.
type Leave struct {
	channels *channels.Set
}

func NewLeave(set *channels.Set) *Leave {
	return &Leave{channels: set}
}

func (l *Leave) Info() commands.Info {
	return commands.Info{
		Name:    "leave",
		Aliases: []string{"part"},
		Help:    "Makes the bot leave a channel, the current one when none is given.",
		Level:   access.Admin,
		Serious: true,
		Example: "leave #botwar",
	}
}

func (l *Leave) Run(s *state.State) error {
	name := strings.TrimSpace(s.Message())
	switch {
	case name == "" && !s.IsChannel():
		s.Send("You have to submit a channel name in a private message!")
		return nil
	case name == "":
		name = s.Incoming.Source
		s.Send("I will leave this channel now.")
	case !message.IsChannel(name):
		return errInvalidChannel
	default:
		s.Send("I will leave the channel " + name + " now.")
	}

	s.Conn.Part(name)
	if err := l.channels.Remove(name); err != nil && !errors.Is(err, channels.ErrUnknownChannel) {
		return err
	}
	s.Logger().Info("Left channel", "channel", name)
	return nil
}

// Channel shows and changes the policy of the current channel.
type Channel struct {
	channels *channels.Set
}

func NewChannel(set *channels.Set) *Channel {
	return &Channel{channels: set}
}

func (c *Channel) Info() commands.Info {
	return commands.Info{
		Name:    "channel",
		Help:    "Changes the settings of the current channel.",
		Level:   access.Admin,
		Serious: true,
		Arguments: []commands.Argument{
			{Name: "-serious", Help: "If the channel should be serious or not.", Values: "true, false"},
			{Name: "-secret", Help: "If the channel should be hidden.", Values: "true, false"},
			{Name: "-state", Help: "Displays the settings for this channel."},
		},
		Example: "channel -secret:true",
	}
}

func (c *Channel) Run(s *state.State) error {
	if !s.IsChannel() {
		s.SendPrivate("This command doesn't work in PM")
		return nil
	}
	name := s.Incoming.Source

	serious, setSerious, err := boolFlag(s, "serious")
	if err != nil {
		return err
	}
	secret, setSecret, err := boolFlag(s, "secret")
	if err != nil {
		return err
	}
	_, showState := s.ConsumeFlagOK("state")

	if _, ok := c.channels.Get(name); !ok {
		if err := c.channels.Put(channels.Channel{Name: name}); err != nil {
			return err
		}
	}
	updated, err := c.channels.Update(name, func(ch *channels.Channel) {
		if setSerious {
			ch.Serious = serious
		}
		if setSecret {
			ch.Secret = secret
		}
	})
	if err != nil {
		return err
	}

	if showState || (!setSerious && !setSecret) {
		s.Send(fmt.Sprintf("Serious: %s, Secret: %s",
			helpers.BoolToStatusIndicator(updated.Serious), helpers.BoolToStatusIndicator(updated.Secret)))
		return nil
	}
	s.SendSuccess("Updated the settings for " + name + ".")
	return nil
}

func boolFlag(s *state.State, name string) (value, present bool, err error) {
	text, ok := s.ConsumeFlagOK(name)
	if !ok {
		return false, false, nil
	}
	value, ok = helpers.ParseBool(text)
	if !ok {
		return false, false, fmt.Errorf("-%s expects true or false, not %q", name, text)
	}
	return value, true, nil
}
