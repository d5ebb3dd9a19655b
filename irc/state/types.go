package state

import (
	"context"

	"perchbot/irc/channels"
	"perchbot/irc/connection"
	"perchbot/irc/message"
)

type (
	Command struct {
		// Action is the command name as typed, without the prefix.
		Action string
		// Message is everything after the command name. Flags are consumed from it.
		Message string
	}

	State struct {
		Ctx      context.Context
		Conn     connection.Conn
		Gateway  *message.Gateway
		Incoming *message.Message
		Command  Command

		// Channel is the policy for the source channel, nil in private.
		Channel *channels.Channel
		Prefix  string

		// Depth counts alias expansions that led to this invocation.
		Depth int
	}
)
