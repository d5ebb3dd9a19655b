// Package conntest provides an in-memory connection.Conn for tests.
package conntest

import (
	"strings"
	"sync"
)

type Line struct {
	Target string
	Text   string
	Action bool
}

// Conn records everything sent through it. Whois calls OnWhois when set.
type Conn struct {
	BotNick string
	OnWhois func(nick string) error

	mu     sync.Mutex
	lines  []Line
	whois  []string
	joined map[string]string
	roles  map[string][2]bool
}

func New(nick string) *Conn {
	return &Conn{
		BotNick: nick,
		joined:  make(map[string]string),
		roles:   make(map[string][2]bool),
	}
}

func (c *Conn) Message(target, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, Line{Target: target, Text: text})
}

func (c *Conn) Action(target, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, Line{Target: target, Text: text, Action: true})
}

func (c *Conn) Whois(nick string) error {
	c.mu.Lock()
	c.whois = append(c.whois, nick)
	hook := c.OnWhois
	c.mu.Unlock()
	if hook != nil {
		return hook(nick)
	}
	return nil
}

func (c *Conn) Join(channel, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.joined[strings.ToLower(channel)] = key
}

func (c *Conn) Part(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.joined, strings.ToLower(channel))
}

func (c *Conn) Nick() string {
	return c.BotNick
}

func (c *Conn) Roles(channel, nick string) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.roles[strings.ToLower(channel+" "+nick)]
	return r[0], r[1]
}

// SetRoles sets the op and voice status reported for nick in channel.
func (c *Conn) SetRoles(channel, nick string, op, voice bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roles[strings.ToLower(channel+" "+nick)] = [2]bool{op, voice}
}

func (c *Conn) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Line(nil), c.lines...)
}

// Texts returns the text of every line sent so far.
func (c *Conn) Texts() []string {
	var out []string
	for _, l := range c.Lines() {
		out = append(out, l.Text)
	}
	return out
}

func (c *Conn) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

func (c *Conn) WhoisCalls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.whois...)
}

// Joined reports whether channel was joined and not parted, and the key used.
func (c *Conn) Joined(channel string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, ok := c.joined[strings.ToLower(channel)]
	return key, ok
}
