package message

import (
	"time"

	"perchbot/irc/access"

	"github.com/google/uuid"
	"github.com/lrstanley/girc"
)

// Message is a chat line in either direction.
type Message struct {
	ID        string
	Text      string
	User      string
	Hostmask  string
	Source    string
	IsChannel bool
	IsAction  bool
	Time      time.Time

	// Level is Normal until the sender's permissions have been resolved.
	Level access.Level
}

// FromEvent normalizes a PRIVMSG or NOTICE event.
func FromEvent(e girc.Event) *Message {
	m := &Message{
		ID:    uuid.NewString(),
		Text:  e.Last(),
		Time:  e.Timestamp,
		Level: access.Normal,
	}
	if m.Time.IsZero() {
		m.Time = time.Now()
	}

	if e.Source != nil {
		m.User = e.Source.Name
		m.Hostmask = e.Source.Name + "!" + e.Source.Ident + "@" + e.Source.Host
	}

	if e.IsFromChannel() {
		m.Source = e.Params[0]
		m.IsChannel = true
	} else {
		m.Source = m.User
	}

	return m
}

// ReplyTarget is where an answer to this message should go.
func (m *Message) ReplyTarget() string {
	if m.IsChannel {
		return m.Source
	}
	return m.User
}

// WithText returns a copy carrying different text.
func (m Message) WithText(text string) *Message {
	m.Text = text
	return &m
}

// WithLevel returns a copy carrying a resolved level.
func (m Message) WithLevel(level access.Level) *Message {
	m.Level = level
	return &m
}
