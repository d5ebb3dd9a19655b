package admin

import (
	"context"
	"strings"

	"perchbot/irc/channels"
	"perchbot/irc/connection"
	"perchbot/logger"
)

// Session identifies with NickServ and joins every known channel once connected.
type Session struct {
	conn     connection.Conn
	channels *channels.Set
	nickserv NickServ
}

func NewSession(conn connection.Conn, set *channels.Set, ns NickServ) *Session {
	return &Session{conn: conn, channels: set, nickserv: ns}
}

func (s *Session) Name() string {
	return "session"
}

func (s *Session) OnConnect(ctx context.Context) error {
	log := logger.Plugin(s.Name())
	if s.nickserv.Password != "" {
		s.conn.Message("NickServ", strings.TrimSpace("IDENTIFY "+s.nickserv.Name+" "+s.nickserv.Password))
		log.Info("Identified with NickServ", "account", s.nickserv.Name)
	}
	for _, c := range s.channels.All() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.conn.Join(c.Name, c.Password)
		log.Debug("Joining channel", "channel", c.Name, "secret", c.Secret)
	}
	return nil
}
