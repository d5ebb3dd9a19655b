package standard

import (
	"context"
	"strings"
	"sync"
	"time"

	"perchbot/irc/message"
	"perchbot/logger"
)

// DefaultHistorySize is how many lines History keeps per channel when no size is configured.
const DefaultHistorySize = 100

// Line is one remembered channel line.
type Line struct {
	ID     string
	Nick   string
	Text   string
	Action bool
	Time   time.Time
}

func (l Line) String() string {
	if l.Action {
		return "/me " + l.Text
	}
	return l.Text
}

// History remembers the latest lines of every channel, the bot's own included.
type History struct {
	size int

	mu       sync.Mutex
	channels map[string][]Line
}

func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{size: size, channels: make(map[string][]Line)}
}

func (h *History) Name() string {
	return "history"
}

func (h *History) OnChannelMessage(ctx context.Context, msg *message.Message) error {
	logger.Channel(msg.Source).Debug("Message", "nick", msg.User, "text", msg.Text)
	h.add(msg)
	return nil
}

func (h *History) OnSent(ctx context.Context, msg *message.Message) error {
	if msg.IsChannel {
		h.add(msg)
	}
	return nil
}

func (h *History) add(msg *message.Message) {
	key := strings.ToLower(msg.Source)
	h.mu.Lock()
	defer h.mu.Unlock()

	lines := append(h.channels[key], Line{
		ID:     msg.ID,
		Nick:   msg.User,
		Text:   msg.Text,
		Action: msg.IsAction,
		Time:   msg.Time,
	})
	if len(lines) > h.size {
		lines = append([]Line(nil), lines[len(lines)-h.size:]...)
	}
	h.channels[key] = lines
}

// Recent returns the remembered lines of channel, oldest first.
func (h *History) Recent(channel string) []Line {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Line(nil), h.channels[strings.ToLower(channel)]...)
}

// Last returns the newest line nick said in channel that match accepts.
func (h *History) Last(channel, nick string, match func(Line) bool) (Line, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	lines := h.channels[strings.ToLower(channel)]
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.EqualFold(lines[i].Nick, nick) && match(lines[i]) {
			return lines[i], true
		}
	}
	return Line{}, false
}

// Replace rewrites the text of the line with id. It reports whether the line was still known.
func (h *History) Replace(channel, id, text string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	lines := h.channels[strings.ToLower(channel)]
	for i := range lines {
		if lines[i].ID == id {
			lines[i].Text = text
			return true
		}
	}
	return false
}
