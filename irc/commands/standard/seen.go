package standard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"perchbot/helpers"
	"perchbot/irc/channels"
	"perchbot/irc/commands"
	"perchbot/irc/message"
	"perchbot/irc/state"
	"perchbot/irc/users"
	"perchbot/perchbase"
)

// Seen answers when a nick last spoke and records channel messages to answer with.
type Seen struct {
	db       *perchbase.DB
	channels *channels.Set
}

func NewSeen(db *perchbase.DB, set *channels.Set) *Seen {
	return &Seen{db: db, channels: set}
}

func (c *Seen) Name() string {
	return "seen"
}

func (c *Seen) Info() commands.Info {
	return commands.Info{
		Name:    "seen",
		Help:    "Outputs the latest message of a user and the time when they wrote it.",
		Serious: true,
		Arguments: []commands.Argument{
			{Name: "-channel", Help: "The channel where the user was seen the last time."},
		},
		Example: "seen Thomas",
	}
}

func (c *Seen) Run(s *state.State) error {
	channel := s.ConsumeFlag("channel")
	nick := strings.TrimSpace(s.Message())
	if nick == "" {
		return errors.New("who should I look for?")
	}
	if strings.EqualFold(nick, s.User()) {
		s.Send("[b]Hey pal you are seen![/b]")
		return nil
	}

	var sighting users.Sighting
	var err error
	if channel != "" {
		sighting, err = users.LastSeenIn(c.db, nick, channel)
	} else {
		sighting, err = users.LastSeen(c.db, nick)
	}
	if errors.Is(err, perchbase.ErrNotFound) {
		where := ""
		if channel != "" {
			where = " in the channel [b]" + channel + "[/b]"
		}
		s.Send("I haven't seen the user [b]" + nick + "[/b]" + where + " yet.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("looking up %s: %w", nick, err)
	}

	when := ago(sighting.Time)

	// Secret channels are only revealed to people asking from inside them.
	if c.channels.IsSecret(sighting.Channel) && !strings.EqualFold(s.Incoming.Source, sighting.Channel) {
		s.Send(fmt.Sprintf("I last saw [b]%s[/b] %s.", sighting.Nick, when))
		return nil
	}
	s.Send(fmt.Sprintf("I last saw [b]%s[/b] %s in [b]%s[/b] saying: \"%s\"",
		sighting.Nick, when, sighting.Channel, helpers.Truncate(sighting.Text, 200)))
	return nil
}

func (c *Seen) OnChannelMessage(ctx context.Context, msg *message.Message) error {
	return users.Touch(c.db, msg.User, msg.Source, msg.Text)
}

// OnSent records the bot's own channel messages too.
func (c *Seen) OnSent(ctx context.Context, msg *message.Message) error {
	if !msg.IsChannel {
		return nil
	}
	return users.Touch(c.db, msg.User, msg.Source, msg.Text)
}
