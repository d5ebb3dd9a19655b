package standard

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"perchbot/helpers"
	"perchbot/irc/message"
	"perchbot/logger"
)

// substitution matches "s/find/replace/flags", optionally addressed as "nick: s/...".
var substitution = regexp.MustCompile(`(?i)^(?:(\S+)[:,]\s+)?s/((?:\\/|[^/])+)/((?:\\/|[^/])*)(?:/(\S+)?)?$`)

// FindReplace answers sed style corrections with the corrected line from History.
type FindReplace struct {
	history *History
	gateway *message.Gateway
}

func NewFindReplace(h *History, gw *message.Gateway) *FindReplace {
	return &FindReplace{history: h, gateway: gw}
}

func (f *FindReplace) Name() string {
	return "findreplace"
}

func (f *FindReplace) OnChannelMessage(ctx context.Context, msg *message.Message) error {
	m := substitution.FindStringSubmatch(strings.TrimSpace(msg.Text))
	if m == nil {
		return nil
	}
	nick := m[1]
	if nick == "" {
		nick = msg.User
	}
	find, err := regexp.Compile("(?i)" + strings.ReplaceAll(m[2], `\/`, "/"))
	if err != nil {
		logger.Channel(msg.Source).Debug("Invalid substitution pattern", "nick", msg.User, "pattern", m[2], "error", err)
		return nil
	}
	repl := strings.ReplaceAll(m[3], `\/`, "/")

	line, ok := f.history.Last(msg.Source, nick, func(l Line) bool {
		return l.ID != msg.ID && find.MatchString(l.Text) && !substitution.MatchString(l.Text)
	})
	if !ok {
		return nil
	}

	if strings.ContainsAny(m[4], "gG") {
		line.Text = find.ReplaceAllString(line.Text, repl)
	} else {
		line.Text = replaceFirst(find, line.Text, repl)
	}
	f.history.Replace(msg.Source, line.ID, line.Text)

	fixed := helpers.Truncate(line.String(), 400)
	if strings.EqualFold(line.Nick, msg.User) {
		f.gateway.Send(fmt.Sprintf("%s [b]meant[/b] to say: %s", line.Nick, fixed), msg.User, msg.Source, true)
	} else {
		f.gateway.Send(fmt.Sprintf("%s thinks %s [b]meant[/b] to say: %s", msg.User, line.Nick, fixed), msg.User, msg.Source, true)
	}
	return nil
}

func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil {
		return s
	}
	expanded := re.ExpandString(nil, repl, s, loc)
	return s[:loc[0]] + string(expanded) + s[loc[1]:]
}
