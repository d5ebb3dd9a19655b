package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"perchbot/irc/channels"
	"perchbot/irc/commands"
	"perchbot/irc/connection"
	"perchbot/irc/message"
	"perchbot/irc/permissions"
	"perchbot/irc/plugins"
	"perchbot/logger"
	"perchbot/metrics"
	"perchbot/perchbase"
	"perchbot/queue"

	"github.com/lrstanley/girc"
)

const (
	DefaultPrefix = "!"

	// MaxDepth bounds how many times aliases may expand into other commands.
	MaxDepth = 4
)

var ErrTooDeep = errors.New("too many nested aliases")

// Options wires an Engine to the rest of the bot. Conn, Registry and Resolver are required.
type Options struct {
	Context  context.Context
	Conn     connection.Conn
	Gateway  *message.Gateway
	Registry *commands.Registry
	Resolver *permissions.Resolver
	Channels *channels.Set
	Runner   *queue.Runner

	// DB backs the flood gate. Without it flooding is not checked.
	DB             *perchbase.DB
	FloodThreshold int
	FloodBan       time.Duration

	Prefix         string
	ReconnectDelay time.Duration
	Logger         *slog.Logger
}

// Engine routes IRC events to plugins and chat commands.
type Engine struct {
	ctx      context.Context
	conn     connection.Conn
	gateway  *message.Gateway
	registry *commands.Registry
	resolver *permissions.Resolver
	channels *channels.Set
	runner   *queue.Runner
	flood    *floodGate

	prefix         string
	reconnectDelay time.Duration
	log            *slog.Logger

	state atomic.Int32
	wg    sync.WaitGroup
}

func New(opts Options) (*Engine, error) {
	if opts.Conn == nil || opts.Registry == nil || opts.Resolver == nil {
		return nil, errors.New("dispatch: conn, registry and resolver are required")
	}

	e := &Engine{
		ctx:            opts.Context,
		conn:           opts.Conn,
		gateway:        opts.Gateway,
		registry:       opts.Registry,
		resolver:       opts.Resolver,
		channels:       opts.Channels,
		runner:         opts.Runner,
		prefix:         opts.Prefix,
		reconnectDelay: opts.ReconnectDelay,
		log:            opts.Logger,
	}
	if e.ctx == nil {
		e.ctx = context.Background()
	}
	if e.gateway == nil {
		e.gateway = message.NewGateway(opts.Conn)
	}
	if e.channels == nil {
		e.channels, _ = channels.NewSet(nil, nil)
	}
	if e.runner == nil {
		e.runner = queue.NewRunner(nil)
	}
	if e.prefix == "" {
		e.prefix = DefaultPrefix
	}
	if e.log == nil {
		e.log = logger.Service("dispatch")
	}
	if opts.DB != nil && opts.FloodThreshold > 0 {
		e.flood = &floodGate{db: opts.DB, threshold: opts.FloodThreshold, ban: opts.FloodBan, log: e.log, gateway: e.gateway}
	}

	e.gateway.Observe(e.onSent)
	return e, nil
}

func (e *Engine) Gateway() *message.Gateway {
	return e.gateway
}

func (e *Engine) Registry() *commands.Registry {
	return e.registry
}

// Wait blocks until every in-flight command has finished.
func (e *Engine) Wait() {
	e.wg.Wait()
	e.runner.Wait()
}

// Handle processes one event from the IRC client.
func (e *Engine) Handle(ev girc.Event) {
	metrics.EventsHandled.WithLabelValues(ev.Command).Inc()
	ctx := e.ctx

	switch ev.Command {
	case girc.CONNECTED:
		e.setState(Connected)
		e.log.Info("Connected", "server", ev.Source)
		fanout(e, func(p plugins.ConnectHandler) error { return p.OnConnect(ctx) })

	case girc.DISCONNECTED:
		e.setState(Disconnected)
		e.log.Warn("Disconnected")

	case girc.PRIVMSG:
		if len(ev.Params) < 2 || isCTCP(ev.Last()) && !ev.IsAction() {
			return
		}
		msg := message.FromEvent(ev)
		if ev.IsAction() {
			msg = msg.WithText(strings.TrimSuffix(strings.TrimPrefix(msg.Text, "\x01ACTION "), "\x01"))
			msg.IsAction = true
		}
		fanout(e, func(p plugins.MessageHandler) error { return p.OnMessage(ctx, msg) })
		if msg.IsChannel {
			fanout(e, func(p plugins.ChannelMessageHandler) error { return p.OnChannelMessage(ctx, msg) })
		} else {
			fanout(e, func(p plugins.PrivateMessageHandler) error { return p.OnPrivateMessage(ctx, msg) })
		}
		if !ev.IsAction() {
			e.dispatch(ctx, msg, 0, false)
		}

	case girc.NOTICE:
		if len(ev.Params) < 2 {
			return
		}
		msg := message.FromEvent(ev)
		fanout(e, func(p plugins.NoticeHandler) error { return p.OnNotice(ctx, msg) })

	case girc.JOIN:
		if ev.Source == nil || len(ev.Params) < 1 {
			return
		}
		j := plugins.Join{Nick: ev.Source.Name, Hostmask: hostmask(ev), Channel: ev.Params[0]}
		fanout(e, func(p plugins.JoinHandler) error { return p.OnJoin(ctx, j) })

	case girc.PART:
		if ev.Source == nil || len(ev.Params) < 1 {
			return
		}
		part := plugins.Part{Nick: ev.Source.Name, Hostmask: hostmask(ev), Channel: ev.Params[0]}
		if len(ev.Params) > 1 {
			part.Reason = ev.Last()
		}
		fanout(e, func(p plugins.PartHandler) error { return p.OnPart(ctx, part) })

	case girc.KICK:
		if ev.Source == nil || len(ev.Params) < 2 {
			return
		}
		k := plugins.Kick{By: ev.Source.Name, Channel: ev.Params[0], Nick: ev.Params[1]}
		if len(ev.Params) > 2 {
			k.Reason = ev.Last()
		}
		fanout(e, func(p plugins.KickHandler) error { return p.OnKick(ctx, k) })

	case girc.NICK:
		if ev.Source == nil || len(ev.Params) < 1 {
			return
		}
		n := plugins.Nick{Old: ev.Source.Name, New: ev.Last()}
		fanout(e, func(p plugins.NickHandler) error { return p.OnNick(ctx, n) })

	case girc.QUIT:
		if ev.Source == nil {
			return
		}
		q := plugins.Quit{Nick: ev.Source.Name, Hostmask: hostmask(ev)}
		if len(ev.Params) > 0 {
			q.Reason = ev.Last()
		}
		fanout(e, func(p plugins.QuitHandler) error { return p.OnQuit(ctx, q) })

	case girc.MODE:
		if len(ev.Params) < 2 {
			return
		}
		m := plugins.Mode{Target: ev.Params[0], Modes: ev.Params[1], Args: ev.Params[2:]}
		if ev.Source != nil {
			m.By = ev.Source.Name
		}
		fanout(e, func(p plugins.ModeHandler) error { return p.OnMode(ctx, m) })

	case girc.ERROR:
		ne := plugins.NetworkError{Text: ev.Last()}
		e.log.Error("Server error", "text", ne.Text)
		fanout(e, func(p plugins.ErrorHandler) error { return p.OnError(ctx, ne) })

	case rplWhoisAccount:
		if len(ev.Params) >= 3 {
			e.resolver.Account(ev.Params[1], ev.Params[2])
		}

	case girc.RPL_ENDOFWHOIS, girc.ERR_NOSUCHNICK:
		if len(ev.Params) < 2 {
			return
		}
		nick := ev.Params[1]
		e.resolver.Complete(nick)
		w := plugins.Whois{Nick: nick, Found: ev.Command == girc.RPL_ENDOFWHOIS}
		fanout(e, func(p plugins.WhoisHandler) error { return p.OnWhois(ctx, w) })
	}
}

// rplWhoisAccount is the services account line of a WHOIS reply.
const rplWhoisAccount = "330"

func isCTCP(text string) bool {
	return strings.HasPrefix(text, "\x01")
}

func hostmask(ev girc.Event) string {
	return ev.Source.Name + "!" + ev.Source.Ident + "@" + ev.Source.Host
}

// fanout calls fn for every loaded plugin implementing T. A failing or panicking plugin is
// logged and does not stop the others.
func fanout[T plugins.Plugin](e *Engine, fn func(T) error) {
	for _, p := range e.registry.Plugins() {
		h, ok := p.(T)
		if !ok {
			continue
		}
		e.safely(p.Name(), func() error { return fn(h) })
	}
}

func (e *Engine) safely(name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			metrics.PluginFailures.WithLabelValues(name).Inc()
			logger.Plugin(name).Error("Plugin panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	if err := fn(); err != nil {
		metrics.PluginFailures.WithLabelValues(name).Inc()
		logger.Plugin(name).Error("Plugin failed", "error", err)
	}
}

func (e *Engine) onSent(msg *message.Message) {
	metrics.MessagesSent.Inc()
	fanout(e, func(p plugins.SentHandler) error { return p.OnSent(e.ctx, msg) })
}

// allowed asks every command filter about msg. A panicking filter does not veto.
func (e *Engine) allowed(msg *message.Message) bool {
	for _, p := range e.registry.Plugins() {
		f, ok := p.(plugins.CommandFilter)
		if !ok {
			continue
		}
		allow := true
		e.safely(p.Name(), func() error {
			allow = f.AllowCommand(msg)
			return nil
		})
		if !allow {
			e.log.Debug("Command filtered", "plugin", p.Name(), "nick", msg.User, "hostmask", msg.Hostmask)
			return false
		}
	}
	return true
}
