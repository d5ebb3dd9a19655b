// Package admin holds the commands that manage the bot itself.
package admin

import (
	"context"

	"perchbot/irc/channels"
	"perchbot/irc/commands"
	"perchbot/irc/connection"
	"perchbot/irc/message"
	"perchbot/irc/users"
	"perchbot/perchbase"
	"perchbot/queue"
)

// Redispatcher feeds an expanded command line back into the command pipeline.
type Redispatcher interface {
	Redispatch(ctx context.Context, msg *message.Message, depth int) error
}

type NickServ struct {
	Name     string
	Password string
}

// Env is what the admin modules need from the running bot.
type Env struct {
	Registry   *commands.Registry
	Catalog    *commands.Catalog
	Channels   *channels.Set
	DB         *perchbase.DB
	Runner     *queue.Runner
	Ignores    *users.IgnoreList
	Conn       connection.Conn
	Dispatcher Redispatcher
	NickServ   NickServ
}

// Register adds every admin module to cat.
func Register(cat *commands.Catalog, env Env) {
	cat.Add("modules", func() (any, error) { return NewModules(env.Registry, env.Catalog), nil })
	cat.Add("alias", func() (any, error) { return NewAlias(env.Registry, env.DB, env.Dispatcher) })
	cat.Add("join", func() (any, error) { return NewJoin(env.Channels), nil })
	cat.Add("leave", func() (any, error) { return NewLeave(env.Channels), nil })
	cat.Add("channel", func() (any, error) { return NewChannel(env.Channels), nil })
	cat.Add("ignore", func() (any, error) { return NewIgnore(env.Ignores), nil })
	cat.Add("cancel", func() (any, error) { return NewCancel(env.Runner), nil })
	cat.Add("session", func() (any, error) { return NewSession(env.Conn, env.Channels, env.NickServ), nil })
}

// Modules lists the module names Register adds.
func Modules() []string {
	return []string{"modules", "alias", "join", "leave", "channel", "ignore", "cancel", "session"}
}
