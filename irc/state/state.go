package state

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"perchbot/irc/access"
	"perchbot/irc/channels"
	"perchbot/irc/connection"
	"perchbot/irc/message"
	"perchbot/irc/params"
	"perchbot/logger"
)

func New(ctx context.Context, conn connection.Conn, gw *message.Gateway, msg *message.Message, cmd Command, channel *channels.Channel) *State {
	return &State{
		Ctx:      ctx,
		Conn:     conn,
		Gateway:  gw,
		Incoming: msg,
		Command:  cmd,
		Channel:  channel,
	}
}

func (s *State) String() string {
	return fmt.Sprintf("%s in %s: %s %s", s.Incoming.User, s.Incoming.Source, s.Command.Action, s.Command.Message)
}

func (s *State) Logger() *slog.Logger {
	return logger.Command(s.Command.Action, s.Incoming.User, s.Incoming.Source)
}

func (s *State) User() string {
	return s.Incoming.User
}

func (s *State) Level() access.Level {
	return s.Incoming.Level
}

func (s *State) IsChannel() bool {
	return s.Incoming.IsChannel
}

func (s *State) IsSerious() bool {
	return s.Channel != nil && s.Channel.Serious
}

func (s *State) Action() string {
	return s.Command.Action
}

func (s *State) IsAction(action string) bool {
	return strings.EqualFold(s.Command.Action, action)
}

func (s *State) Message() string {
	return s.Command.Message
}

func (s *State) SetMessage(message string) {
	s.Command.Message = message
}

func (s *State) IsEmptyMessage() bool {
	return strings.TrimSpace(s.Command.Message) == ""
}

// Args splits the remaining message on whitespace.
func (s *State) Args() []string {
	return strings.Fields(s.Command.Message)
}

// HasFlag reports whether the leading flags include name.
func (s *State) HasFlag(name string) bool {
	return params.Has(s.Command.Message, name)
}

// ConsumeFlag removes the flag name from the message and returns its value.
func (s *State) ConsumeFlag(name string) string {
	value, rest := params.Consume(s.Command.Message, name)
	s.Command.Message = rest
	return value
}

// ConsumeFlagOK is ConsumeFlag that also reports whether the flag was present.
func (s *State) ConsumeFlagOK(name string) (string, bool) {
	if !s.HasFlag(name) {
		return "", false
	}
	return s.ConsumeFlag(name), true
}

// Send replies to the source, addressed to the user.
func (s *State) Send(text string) {
	s.Gateway.Send(text, s.Incoming.User, s.Incoming.Source, false)
}

// SendNoName replies to the source without addressing the user.
func (s *State) SendNoName(text string) {
	s.Gateway.Send(text, s.Incoming.User, s.Incoming.Source, true)
}

// SendPrivate replies to the user directly.
func (s *State) SendPrivate(text string) {
	s.Gateway.Send(text, s.Incoming.User, s.Incoming.User, true)
}

// SendTo sends text to target without addressing anyone.
func (s *State) SendTo(target, text string) {
	s.Gateway.Send(text, s.Incoming.User, target, true)
}

func (s *State) SendAction(text string) {
	s.Gateway.SendAction(text, s.Incoming.ReplyTarget())
}

func (s *State) SendError(response string) {
	s.Send("[b][color=Red][ERROR][/color][/b] " + response)
}

func (s *State) SendSuccess(response string) {
	s.Send("[b][color=Green][SUCCESS][/color][/b] " + response)
}

func (s *State) SendInfo(response string) {
	s.Send("[b][color=Blue][INFO][/color][/b] " + response)
}

func (s *State) SendWarning(response string) {
	s.Send("[b][color=Yellow][WARNING][/color][/b] " + response)
}
