package message

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lrstanley/girc"
)

// Sender is the outbound half of a connection.
type Sender interface {
	Message(target, text string)
	Action(target, text string)
	Nick() string
}

// IsChannel reports whether target names a channel rather than a user.
func IsChannel(target string) bool {
	return target != "" && girc.IsValidChannel(target)
}

// Send formats text and delivers it to to, addressed to from. Replies aimed at something
// that is not a channel go privately to from. Unless noName is set the first line starts
// with "from: ". The returned message records what the bot said.
func Send(conn Sender, text, from, to string, noName bool) *Message {
	return SendLimit(conn, text, from, to, noName, DefaultLineBudget)
}

// SendLimit is Send with an explicit per-line byte budget.
func SendLimit(conn Sender, text, from, to string, noName bool, budget int) *Message {
	if !IsChannel(to) {
		to = from
	}
	if !noName && from != "" {
		text = from + ": " + text
	}

	for _, line := range Split(Format(text), budget) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		conn.Message(to, line)
	}

	return outbound(conn, text, to)
}

// SendAction emits text as a third-person action to to.
func SendAction(conn Sender, text, to string) *Message {
	for _, line := range Split(Format(text), DefaultLineBudget) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		conn.Action(to, line)
	}
	return outbound(conn, text, to)
}

func outbound(conn Sender, text, to string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Text:      text,
		User:      conn.Nick(),
		Source:    to,
		IsChannel: IsChannel(to),
		Time:      time.Now(),
	}
}

// Gateway sends through a connection and tells observers about every message it sent.
type Gateway struct {
	conn Sender

	mu        sync.RWMutex
	observers []func(*Message)
}

func NewGateway(conn Sender) *Gateway {
	return &Gateway{conn: conn}
}

// Observe registers fn to be called after each send.
func (g *Gateway) Observe(fn func(*Message)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.observers = append(g.observers, fn)
}

func (g *Gateway) Send(text, from, to string, noName bool) *Message {
	return g.notify(Send(g.conn, text, from, to, noName))
}

func (g *Gateway) SendAction(text, to string) *Message {
	return g.notify(SendAction(g.conn, text, to))
}

func (g *Gateway) notify(m *Message) *Message {
	g.mu.RLock()
	observers := g.observers
	g.mu.RUnlock()
	for _, fn := range observers {
		fn(m)
	}
	return m
}
