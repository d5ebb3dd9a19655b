package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"perchbot/irc/access"
	"perchbot/irc/channels"
	"perchbot/irc/commands"
	"perchbot/irc/message"
	"perchbot/irc/permissions"
	"perchbot/irc/state"
	"perchbot/logger"
	"perchbot/metrics"
	"perchbot/queue"
)

// invocation is a command matched against an incoming message.
type invocation struct {
	cmd     commands.Command
	info    commands.Info
	action  string
	args    string
	prefix  string
	channel *channels.Channel
}

// match finds the command msg invokes, if any.
func (e *Engine) match(msg *message.Message) (*invocation, bool) {
	inv := &invocation{prefix: e.prefix}
	if msg.IsChannel {
		if c, ok := e.channels.Get(msg.Source); ok {
			inv.channel = &c
			if c.Prefix != "" {
				inv.prefix = c.Prefix
			}
		}
	}

	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, inv.prefix) {
		return nil, false
	}
	text = strings.TrimPrefix(text, inv.prefix)

	action, args, _ := strings.Cut(text, " ")
	if action == "" {
		return nil, false
	}

	inv.cmd = e.registry.FindByName(action)
	if inv.cmd == nil {
		return nil, false
	}
	inv.info = inv.cmd.Info()
	inv.action = action
	inv.args = strings.TrimSpace(args)
	return inv, true
}

// dispatch runs the command pipeline for msg. Resolution and the command itself run off
// the caller's goroutine.
func (e *Engine) dispatch(ctx context.Context, msg *message.Message, depth int, resolved bool) {
	inv, ok := e.match(msg)
	if !ok {
		return
	}
	if !e.allowed(msg) {
		return
	}
	if !resolved && e.flood != nil && e.flood.check(msg) {
		metrics.CommandsFlooded.Inc()
		return
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if !resolved {
			res := e.resolve(ctx, msg)
			msg = msg.WithLevel(res.Level)
		}
		e.execute(ctx, inv, msg, depth)
	}()
}

func (e *Engine) resolve(ctx context.Context, msg *message.Message) permissions.Result {
	req := permissions.Request{Nick: msg.User}
	if msg.IsChannel {
		req.Channel = msg.Source
		req.Roles.Operator, req.Roles.Voice = e.conn.Roles(msg.Source, msg.User)
	}
	return e.resolver.Resolve(ctx, req)
}

// Redispatch runs msg through the pipeline again keeping its resolved level. depth is the
// number of expansions so far.
func (e *Engine) Redispatch(ctx context.Context, msg *message.Message, depth int) error {
	if depth > MaxDepth {
		return fmt.Errorf("%w (limit %d)", ErrTooDeep, MaxDepth)
	}
	inv, ok := e.match(msg)
	if !ok {
		return fmt.Errorf("no command matches %q", msg.Text)
	}
	if !e.allowed(msg) {
		return nil
	}
	e.execute(ctx, inv, msg, depth)
	return nil
}

// execute applies the permission and channel policy checks and runs the command.
func (e *Engine) execute(ctx context.Context, inv *invocation, msg *message.Message, depth int) {
	info := inv.info
	log := logger.Command(info.Name, msg.User, msg.Source).With("id", msg.ID, "level", msg.Level)

	if !access.Satisfies(info.Level, msg.Level) {
		metrics.CommandsDenied.Inc()
		log.Info("Permission denied", "required", info.Level)
		e.gateway.Send(fmt.Sprintf("You don't have the permission to use this command! Only %s can use this command! You are %s.", info.Level, msg.Level),
			msg.User, msg.Source, false)
		return
	}

	if inv.channel != nil && inv.channel.Serious && !info.Serious {
		log.Debug("Skipping command in serious channel")
		return
	}

	s := state.New(ctx, e.conn, e.gateway, msg, state.Command{Action: inv.action, Message: inv.args}, inv.channel)
	s.Prefix = inv.prefix
	s.Depth = depth

	if info.LongRunning() {
		e.runLong(ctx, inv, s, log)
		return
	}

	if err := e.run(s, inv.cmd, log); err != nil {
		s.SendError(err.Error())
	}
}

func (e *Engine) runLong(ctx context.Context, inv *invocation, s *state.State, log *slog.Logger) {
	module := commands.ModuleOf(inv.cmd)
	done, err := e.runner.Run(ctx, module, s.User(), inv.info.Timeout, func(jobCtx context.Context) error {
		s.Ctx = jobCtx
		return e.run(s, inv.cmd, log)
	})
	if errors.Is(err, queue.ErrBusy) {
		s.SendWarning(fmt.Sprintf("A %s job is already running, try again when it is done.", module))
		return
	}
	if err != nil {
		s.SendError(err.Error())
		return
	}

	err = <-done
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		s.SendError(fmt.Sprintf("%s timed out after %s", inv.info.Name, inv.info.Timeout))
	case errors.Is(err, queue.ErrCancelled):
		s.SendInfo(fmt.Sprintf("%s was cancelled", inv.info.Name))
	default:
		s.SendError(err.Error())
	}
}

// run calls the command, turning a panic into an error.
func (e *Engine) run(s *state.State, cmd commands.Command, log *slog.Logger) (err error) {
	defer metrics.Measure(metrics.DurCommand)()
	name := cmd.Info().Name
	defer func() {
		if r := recover(); r != nil {
			log.Error("Command panicked", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("%s crashed: %v", name, r)
		}
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.CommandsRun.WithLabelValues(name, outcome).Inc()
	}()

	log.Debug("Running command", "args", s.Message())
	if err = cmd.Run(s); err != nil {
		log.Warn("Command failed", "error", err)
	}
	return err
}
