// Package plugins defines the capabilities a plugin can implement. The dispatch engine checks
// each loaded plugin for every interface here and calls the ones it has.
package plugins

import (
	"context"

	"perchbot/irc/message"
)

type Plugin interface {
	Name() string
}

type (
	ConnectHandler interface {
		Plugin
		OnConnect(ctx context.Context) error
	}

	// MessageHandler sees every PRIVMSG that is not a CTCP request.
	MessageHandler interface {
		Plugin
		OnMessage(ctx context.Context, msg *message.Message) error
	}

	ChannelMessageHandler interface {
		Plugin
		OnChannelMessage(ctx context.Context, msg *message.Message) error
	}

	PrivateMessageHandler interface {
		Plugin
		OnPrivateMessage(ctx context.Context, msg *message.Message) error
	}

	NoticeHandler interface {
		Plugin
		OnNotice(ctx context.Context, msg *message.Message) error
	}

	JoinHandler interface {
		Plugin
		OnJoin(ctx context.Context, e Join) error
	}

	PartHandler interface {
		Plugin
		OnPart(ctx context.Context, e Part) error
	}

	KickHandler interface {
		Plugin
		OnKick(ctx context.Context, e Kick) error
	}

	NickHandler interface {
		Plugin
		OnNick(ctx context.Context, e Nick) error
	}

	QuitHandler interface {
		Plugin
		OnQuit(ctx context.Context, e Quit) error
	}

	ModeHandler interface {
		Plugin
		OnMode(ctx context.Context, e Mode) error
	}

	ErrorHandler interface {
		Plugin
		OnError(ctx context.Context, e NetworkError) error
	}

	// WhoisHandler is told when a WHOIS reply ends.
	WhoisHandler interface {
		Plugin
		OnWhois(ctx context.Context, e Whois) error
	}

	// SentHandler sees every message the bot sends.
	SentHandler interface {
		Plugin
		OnSent(ctx context.Context, msg *message.Message) error
	}

	// CommandFilter can veto a command before permissions are resolved.
	CommandFilter interface {
		Plugin
		AllowCommand(msg *message.Message) bool
	}
)
