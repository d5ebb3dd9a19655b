package connection

import (
	"errors"

	"github.com/lrstanley/girc"
)

var ErrNotConnected = errors.New("not connected to the server")

// Conn is everything the bot needs from a live IRC connection.
type Conn interface {
	Message(target, text string)
	Action(target, text string)
	Whois(nick string) error
	Join(channel, key string)
	Part(channel string)
	Nick() string

	// Roles reports the nick's current operator and voice status in channel.
	Roles(channel, nick string) (op bool, voice bool)
}

// Client adapts a girc client to Conn.
type Client struct {
	irc *girc.Client
}

func New(c *girc.Client) *Client {
	return &Client{irc: c}
}

// IRC exposes the underlying girc client.
func (c *Client) IRC() *girc.Client {
	return c.irc
}

func (c *Client) Message(target, text string) {
	c.irc.Cmd.Message(target, text)
}

func (c *Client) Action(target, text string) {
	c.irc.Cmd.Action(target, text)
}

func (c *Client) Whois(nick string) error {
	if !c.irc.IsConnected() {
		return ErrNotConnected
	}
	c.irc.Cmd.Whois(nick)
	return nil
}

func (c *Client) Join(channel, key string) {
	if key != "" {
		c.irc.Cmd.JoinKey(channel, key)
		return
	}
	c.irc.Cmd.Join(channel)
}

func (c *Client) Part(channel string) {
	c.irc.Cmd.Part(channel)
}

func (c *Client) Nick() string {
	return c.irc.GetNick()
}

func (c *Client) Roles(channel, nick string) (bool, bool) {
	if channel == "" {
		return false, false
	}
	user := c.irc.LookupUser(nick)
	if user == nil || user.Perms == nil {
		return false, false
	}
	perms, ok := user.Perms.Lookup(channel)
	if !ok {
		return false, false
	}
	return perms.IsAdmin(), perms.Voice || perms.HalfOp
}

// Connect blocks until the connection ends.
func (c *Client) Connect() error {
	return c.irc.Connect()
}

// Close tears the connection down.
func (c *Client) Close() {
	c.irc.Close()
}
