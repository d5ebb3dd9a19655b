package standard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"perchbot/helpers"
	"perchbot/irc/channels"
	"perchbot/irc/commands"
	"perchbot/irc/message"
	"perchbot/irc/state"
	"perchbot/logger"
	"perchbot/perchbase"

	"github.com/google/uuid"
)

const tellsKey = "tells"

// note is a message waiting for its recipient.
type note struct {
	ID      string `json:"id"`
	From    string `json:"from"`
	To      string `json:"to"`
	Source  string `json:"source"`
	Channel string `json:"channel,omitempty"`
	Text    string `json:"text"`
	Private bool   `json:"private"`
	Time    int64  `json:"time"`
}

// Tell stores messages for nicks and delivers them when the nick next speaks.
type Tell struct {
	db       *perchbase.DB
	channels *channels.Set
	gateway  *message.Gateway

	mu    sync.Mutex
	notes []note
}

func NewTell(db *perchbase.DB, set *channels.Set, gw *message.Gateway) (*Tell, error) {
	t := &Tell{db: db, channels: set, gateway: gw}
	if db == nil {
		return t, nil
	}
	if err := db.GetJSON(tellsKey, &t.notes); err != nil && !errors.Is(err, perchbase.ErrNotFound) {
		return nil, fmt.Errorf("loading tells: %w", err)
	}
	return t, nil
}

func (c *Tell) Name() string {
	return "tell"
}

func (c *Tell) Info() commands.Info {
	return commands.Info{
		Name:    "tell",
		Aliases: []string{"msg"},
		Help:    "Leaves a message for one or more users, delivered when they next speak.",
		Serious: true,
		Arguments: []commands.Argument{
			{Name: "-private", Help: "Deliver the message in a private message."},
			{Name: "-channel", Help: "Only deliver the message in this channel."},
			{Name: "nick[,nick]", Help: "Who to tell, wildcards allowed."},
		},
		Example: "tell Thomas,Anna Dinner is ready!",
	}
}

func (c *Tell) Run(s *state.State) error {
	channel := s.ConsumeFlag("channel")
	_, private := s.ConsumeFlagOK("private")

	targets, text, _ := strings.Cut(strings.TrimSpace(s.Message()), " ")
	text = strings.TrimSpace(text)
	if targets == "" || text == "" {
		return errors.New("usage: tell <nick[,nick]> <message>")
	}

	source := "Private"
	if s.IsChannel() && !c.channels.IsSecret(s.Incoming.Source) {
		source = s.Incoming.Source
	}

	var added []note
	for _, name := range strings.Split(targets, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, err := helpers.WildcardToRegexp(name); err != nil {
			return fmt.Errorf("invalid nick %q: %w", name, err)
		}
		added = append(added, note{
			ID:      uuid.NewString(),
			From:    s.User(),
			To:      name,
			Source:  source,
			Channel: channel,
			Text:    text,
			Private: private,
			Time:    time.Now().Unix(),
		})
	}

	c.mu.Lock()
	c.notes = append(c.notes, added...)
	err := c.saveLocked()
	c.mu.Unlock()
	if err != nil {
		return err
	}

	s.Send("I'll redirect this as soon as they are around.")
	return nil
}

// OnMessage delivers any notes waiting for the sender.
func (c *Tell) OnMessage(ctx context.Context, msg *message.Message) error {
	c.mu.Lock()
	var due, kept []note
	for _, n := range c.notes {
		if c.matches(n, msg) {
			due = append(due, n)
		} else {
			kept = append(kept, n)
		}
	}
	if len(due) == 0 {
		c.mu.Unlock()
		return nil
	}
	c.notes = kept
	err := c.saveLocked()
	c.mu.Unlock()

	for _, n := range due {
		text := fmt.Sprintf("[b]%s[/b] left a message for you in [b]%s[/b] [b][%s][/b]: \"%s\"",
			n.From, n.Source, ago(n.Time), n.Text)
		if n.Private {
			c.gateway.Send(text, msg.User, msg.User, true)
		} else {
			c.gateway.Send(text, msg.User, msg.Source, false)
		}
	}
	return err
}

func (c *Tell) matches(n note, msg *message.Message) bool {
	if n.Channel != "" && !strings.EqualFold(n.Channel, msg.Source) {
		return false
	}
	re, err := helpers.WildcardToRegexp(n.To)
	return err == nil && re.MatchString(msg.User)
}

// Pending returns how many notes are waiting.
func (c *Tell) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.notes)
}

func (c *Tell) saveLocked() error {
	if c.db == nil {
		return nil
	}
	if err := c.db.PutJSON(tellsKey, c.notes); err != nil {
		logger.Error("Error saving tells", "error", err)
		return fmt.Errorf("saving tells: %w", err)
	}
	return nil
}
