// Package standard holds the commands every user can run.
package standard

import (
	"perchbot/helpers"
	"perchbot/irc/channels"
	"perchbot/irc/commands"
	"perchbot/irc/message"
	"perchbot/perchbase"
)

// Env is what the standard modules need from the running bot.
type Env struct {
	Registry *commands.Registry
	Channels *channels.Set
	DB       *perchbase.DB
	Gateway  *message.Gateway

	// HistorySize is how many lines are remembered per channel.
	HistorySize int
}

// Register adds every standard module to cat.
func Register(cat *commands.Catalog, env Env) {
	history := NewHistory(env.HistorySize)
	cat.Add("roll", func() (any, error) { return &Roll{}, nil })
	cat.Add("choose", func() (any, error) { return &Choose{}, nil })
	cat.Add("say", func() (any, error) { return &Say{}, nil })
	cat.Add("action", func() (any, error) { return &Action{}, nil })
	cat.Add("help", func() (any, error) { return NewHelp(env.Registry), nil })
	cat.Add("seen", func() (any, error) { return NewSeen(env.DB, env.Channels), nil })
	cat.Add("tell", func() (any, error) { return NewTell(env.DB, env.Channels, env.Gateway) })
	cat.Add("title", func() (any, error) { return &Title{}, nil })
	cat.Add("lua", func() (any, error) { return &Lua{}, nil })
	cat.Add("history", func() (any, error) { return history, nil })
	cat.Add("findreplace", func() (any, error) { return NewFindReplace(history, env.Gateway), nil })
}

// Modules lists the module names Register adds, in the order they are usually loaded.
func Modules() []string {
	return []string{"help", "roll", "choose", "say", "action", "seen", "tell", "title", "lua", "history", "findreplace"}
}

// ago renders a unix time as "3 hours 2 minutes ago".
func ago(ts int64) string {
	text := helpers.UnixTimeToHumanReadable(ts)
	if text == "just now" {
		return text
	}
	return text + " ago"
}
