package permissions

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"perchbot/irc/access"
	"perchbot/irc/users"
	"perchbot/logger"
	"perchbot/metrics"

	"github.com/google/uuid"
)

const DefaultTimeout = 5 * time.Second

type (
	// Roles is a snapshot of a nick's channel status.
	Roles struct {
		Operator bool
		Voice    bool
	}

	Request struct {
		Nick    string
		Channel string
		Roles   Roles
	}

	Result struct {
		Level    access.Level
		Account  string
		TimedOut bool
	}

	Whoiser interface {
		Whois(nick string) error
	}

	AdminSource interface {
		Lookup(account string) (users.Admin, bool)
	}
)

// lookup is one outstanding WHOIS shared by everyone resolving the same nick.
type lookup struct {
	id      string
	account string
	failed  bool
	waiters int

	done chan struct{}
	once sync.Once
}

func (l *lookup) finish() {
	l.once.Do(func() { close(l.done) })
}

// Resolver turns a nick into an access level using channel roles and the services account
// reported by WHOIS.
type Resolver struct {
	whois   Whoiser
	admins  AdminSource
	timeout time.Duration
	log     *slog.Logger

	mu      sync.Mutex
	pending map[string]*lookup
}

func New(w Whoiser, admins AdminSource, timeout time.Duration, log *slog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Service("permissions")
	}
	return &Resolver{
		whois:   w,
		admins:  admins,
		timeout: timeout,
		log:     log,
		pending: make(map[string]*lookup),
	}
}

// Baseline is the level granted by channel roles alone.
func Baseline(r Roles) access.Level {
	switch {
	case r.Operator:
		return access.Operator
	case r.Voice:
		return access.Voice
	}
	return access.Normal
}

// Resolve blocks until the WHOIS for req.Nick completes, the timeout passes or ctx ends.
// Only a completed lookup can raise the level above the baseline.
func (r *Resolver) Resolve(ctx context.Context, req Request) Result {
	defer metrics.Measure(metrics.DurResolve)()

	base := Baseline(req.Roles)
	key := strings.ToLower(req.Nick)

	r.mu.Lock()
	l, joined := r.pending[key]
	if !joined {
		l = &lookup{id: uuid.NewString(), done: make(chan struct{})}
		r.pending[key] = l
	}
	l.waiters++
	r.mu.Unlock()

	if !joined {
		if err := r.whois.Whois(req.Nick); err != nil {
			r.log.Error("Error sending WHOIS", "nick", req.Nick, "lookup", l.id, "error", err)
			r.mu.Lock()
			l.failed = true
			r.removeLocked(key, l)
			r.mu.Unlock()
			l.finish()
		}
	}

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case <-l.done:
	case <-timer.C:
		r.mu.Lock()
		// later joiners keep the lookup alive until their own timeout
		if l.waiters--; l.waiters == 0 {
			r.removeLocked(key, l)
		}
		r.mu.Unlock()
		r.log.Warn("WHOIS timed out, using channel roles", "nick", req.Nick, "lookup", l.id, "level", base)
		metrics.Resolutions.WithLabelValues("timeout").Inc()
		return Result{Level: base, TimedOut: true}
	case <-ctx.Done():
		r.mu.Lock()
		l.waiters--
		r.mu.Unlock()
		metrics.Resolutions.WithLabelValues("cancelled").Inc()
		return Result{Level: base}
	}

	r.mu.Lock()
	account, failed := l.account, l.failed
	r.mu.Unlock()

	if failed {
		metrics.Resolutions.WithLabelValues("error").Inc()
		return Result{Level: base}
	}
	metrics.Resolutions.WithLabelValues("resolved").Inc()

	res := Result{Level: base, Account: account}
	if admin, ok := r.admins.Lookup(account); ok {
		if admin.Root {
			res.Level = access.Max(base, access.Root)
		} else {
			res.Level = access.Max(base, access.Admin)
		}
	}
	r.log.Debug("Resolved permission", "nick", req.Nick, "account", account, "level", res.Level)
	return res
}

// Account records the services account for a pending lookup (numeric 330).
func (r *Resolver) Account(nick, account string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.pending[strings.ToLower(nick)]; ok {
		l.account = account
	}
}

// Complete ends the pending lookup for nick (318 or 401). Unknown nicks are ignored.
func (r *Resolver) Complete(nick string) {
	key := strings.ToLower(nick)
	r.mu.Lock()
	l, ok := r.pending[key]
	if ok {
		delete(r.pending, key)
	}
	r.mu.Unlock()
	if ok {
		l.finish()
	}
}

// Pending returns the number of outstanding lookups.
func (r *Resolver) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

func (r *Resolver) removeLocked(key string, l *lookup) {
	if cur, ok := r.pending[key]; ok && cur == l {
		delete(r.pending, key)
	}
}
