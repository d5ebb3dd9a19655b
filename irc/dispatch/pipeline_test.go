package dispatch

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"perchbot/irc/access"
	"perchbot/irc/channels"
	"perchbot/irc/commands"
	"perchbot/irc/commands/admin"
	"perchbot/irc/commands/standard"
	"perchbot/irc/message"
	"perchbot/irc/permissions"
	"perchbot/irc/state"
	"perchbot/irc/users"
	"perchbot/perchbase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echo struct{}

func (echo) Info() commands.Info {
	return commands.Info{Name: "echo", Serious: true}
}

func (echo) Run(s *state.State) error {
	s.Send(s.Message())
	return nil
}

// chatter may not run in serious channels.
type chatter struct{}

func (chatter) Info() commands.Info {
	return commands.Info{Name: "chatter"}
}

func (chatter) Run(s *state.State) error {
	s.Send("chirp")
	return nil
}

type crash struct{}

func (crash) Info() commands.Info {
	return commands.Info{Name: "crash", Serious: true}
}

func (crash) Run(s *state.State) error {
	panic("boom")
}

// blocker is long-running and waits for release or its context.
type blocker struct {
	timeout time.Duration
	release chan struct{}
}

func (b *blocker) Info() commands.Info {
	return commands.Info{Name: "block", Serious: true, Timeout: b.timeout}
}

func (b *blocker) Run(s *state.State) error {
	select {
	case <-b.release:
		s.Send("released")
		return nil
	case <-s.Ctx.Done():
		return s.Ctx.Err()
	}
}

func TestRollWithSeedIsDeterministic(t *testing.T) {
	roll := func() string {
		f := newFixture(t, nil)
		require.NoError(t, f.registry.Register(standard.Roll{}))

		f.say("wren", "#birds", "!roll -seed:42 3d6")

		texts := f.conn.Texts()
		require.Len(t, texts, 1)
		return texts[0]
	}

	first := roll()
	assert.Equal(t, first, roll())

	require.True(t, strings.HasPrefix(first, "wren: "))
	nums := strings.Split(strings.TrimPrefix(first, "wren: "), ", ")
	require.Len(t, nums, 3)
	for _, n := range nums {
		v, err := strconv.Atoi(n)
		require.NoError(t, err)
		assert.True(t, v >= 1 && v <= 6, "roll %d out of range", v)
	}
}

func modulesFixture(t *testing.T, admins users.Admins) *fixture {
	f := newFixture(t, admins)
	cat := commands.NewCatalog()
	admin.Register(cat, admin.Env{Registry: f.registry, Catalog: cat})
	require.NoError(t, cat.LoadInto(f.registry, "modules"))
	return f
}

func TestModulesUnloadNeedsRoot(t *testing.T) {
	f := modulesFixture(t, users.Admins{{Name: "wren-account"}})
	f.accounts["wren"] = "wren-account"

	f.say("wren", "#birds", "!modules -unload:modules")

	assert.Equal(t, []string{
		"wren: You don't have the permission to use this command! Only ROOT can use this command! You are ADMIN.",
	}, f.conn.Texts())
	assert.True(t, f.registry.Loaded("modules"))

	f.conn.Reset()
	f.conn.SetRoles("#birds", "robin", true, false)
	f.say("robin", "#birds", "!modules -unload:modules")
	assert.Equal(t, []string{
		"robin: You don't have the permission to use this command! Only ROOT can use this command! You are OPERATOR.",
	}, f.conn.Texts())
	assert.True(t, f.registry.Loaded("modules"))
}

func TestModulesUnloadAsRoot(t *testing.T) {
	f := modulesFixture(t, users.Admins{{Name: "Wren", Root: true}})
	f.accounts["wren"] = "wren"

	f.say("wren", "#birds", "!modules -unload:modules")

	assert.Equal(t, []string{`wren: Unloaded the module "modules"`}, f.conn.Texts())
	assert.False(t, f.registry.Loaded("modules"))
	assert.Nil(t, f.registry.FindByName("modules"))
}

func TestWhoisTimeoutFallsBackToRoles(t *testing.T) {
	f := modulesFixture(t, users.Admins{{Name: "wren", Root: true}})
	f.resolver = permissions.New(f.conn, users.Admins{{Name: "wren", Root: true}}, 50*time.Millisecond, nil)
	f.engine.resolver = f.resolver
	f.conn.OnWhois = nil
	f.conn.SetRoles("#birds", "wren", false, true)

	f.say("wren", "#birds", "!modules -list")

	assert.Equal(t, []string{
		"wren: You don't have the permission to use this command! Only ROOT can use this command! You are VOICE.",
	}, f.conn.Texts())
	assert.Equal(t, 0, f.resolver.Pending())

	// The answer arriving late changes nothing.
	f.engine.Handle(event(":srv 330 perch wren wren :is logged in as"))
	f.engine.Handle(event(":srv 318 perch wren :End of /WHOIS list."))
	f.engine.Wait()
	assert.Len(t, f.conn.Texts(), 1)
	assert.True(t, f.registry.Loaded("modules"))
}

func TestAliasRedispatch(t *testing.T) {
	f := newFixture(t, users.Admins{{Name: "wren"}})
	f.accounts["wren"] = "wren"
	require.NoError(t, f.registry.Register(standard.Roll{}))
	require.NoError(t, f.registry.Register(echo{}))

	aliases, err := admin.NewAlias(f.registry, nil, f.engine)
	require.NoError(t, err)
	require.NoError(t, f.registry.Load(aliases))

	f.say("wren", "#birds", `!alias -create:d30 -structure:"^([0-9]+)$" !roll -seed:7 {0}d30`)
	f.say("wren", "#birds", `!alias -create:loop !loop`)
	f.conn.Reset()

	f.say("robin", "#birds", "!d30 2")
	texts := f.conn.Texts()
	require.Len(t, texts, 1)
	assert.Len(t, strings.Split(strings.TrimPrefix(texts[0], "robin: "), ", "), 2)

	f.conn.Reset()
	f.say("robin", "#birds", "!d30 two")
	assert.Empty(t, f.conn.Texts(), "input not matching the structure does nothing")

	f.say("robin", "#birds", "!loop")
	texts = f.conn.Texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], ErrTooDeep.Error())
}

func TestRedispatchKeepsLevel(t *testing.T) {
	f := modulesFixture(t, nil)
	msg := &message.Message{User: "wren", Hostmask: "wren!w@birds.example", Source: "#birds", IsChannel: true, Text: "!modules -list", Level: access.Root}

	require.NoError(t, f.engine.Redispatch(context.Background(), msg, 1))
	require.NotEmpty(t, f.conn.Texts())
	assert.Contains(t, f.conn.Texts()[0], "modules")
	assert.Empty(t, f.conn.WhoisCalls(), "redispatch does not resolve again")

	require.ErrorIs(t, f.engine.Redispatch(context.Background(), msg, MaxDepth+1), ErrTooDeep)
	require.Error(t, f.engine.Redispatch(context.Background(), msg.WithText("!nothing"), 1))
}

func TestSeriousChannelSkipsPlayfulCommands(t *testing.T) {
	set, err := channels.NewSet(nil, []channels.Channel{{Name: "#quiet", Serious: true}})
	require.NoError(t, err)
	f := newFixture(t, nil, func(o *Options) { o.Channels = set })
	require.NoError(t, f.registry.Register(chatter{}))
	require.NoError(t, f.registry.Register(echo{}))

	f.say("wren", "#quiet", "!chatter")
	assert.Empty(t, f.conn.Texts())

	f.say("wren", "#quiet", "!echo hi")
	f.say("wren", "#birds", "!chatter")
	f.say("wren", "perch", "!chatter")
	assert.Equal(t, []string{"wren: hi", "wren: chirp", "wren: chirp"}, f.conn.Texts())
}

func TestChannelPrefixOverride(t *testing.T) {
	set, err := channels.NewSet(nil, []channels.Channel{{Name: "#dots", Prefix: "."}})
	require.NoError(t, err)
	f := newFixture(t, nil, func(o *Options) { o.Channels = set })
	require.NoError(t, f.registry.Register(echo{}))

	f.say("wren", "#dots", "!echo no")
	f.say("wren", "#dots", ".echo yes")
	f.say("wren", "#birds", "!echo default")
	assert.Equal(t, []string{"wren: yes", "wren: default"}, f.conn.Texts())
}

func TestCommandPanicIsReported(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.registry.Register(crash{}))
	require.NoError(t, f.registry.Register(echo{}))

	f.say("wren", "#birds", "!crash")
	f.say("wren", "#birds", "!echo still here")

	texts := f.conn.Texts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "crash crashed: boom")
	assert.Equal(t, "wren: still here", texts[1])
}

func TestIgnoredUsersAreFiltered(t *testing.T) {
	f := newFixture(t, nil)
	list, err := users.LoadIgnoreList(nil)
	require.NoError(t, err)
	require.NoError(t, list.Add("*!*@birds.example"))
	require.NoError(t, f.registry.Load(admin.NewIgnore(list)))
	require.NoError(t, f.registry.Register(echo{}))

	f.say("wren", "#birds", "!echo hi")
	assert.Empty(t, f.conn.Texts())
	assert.Empty(t, f.conn.WhoisCalls())
}

func TestFloodGateBansNoisyHostmasks(t *testing.T) {
	db, err := perchbase.Open(filepath.Join(t.TempDir(), "flood.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := newFixture(t, nil, func(o *Options) {
		o.DB = db
		o.FloodThreshold = 2
		o.FloodBan = time.Minute
	})
	require.NoError(t, f.registry.Register(echo{}))

	for i := 0; i < 4; i++ {
		f.say("wren", "#birds", "!echo hi")
	}
	f.say("robin", "#birds", "!echo hello")

	assert.Equal(t, []string{
		"wren: hi",
		"wren: hi",
		"wren: Birds fly above floods! Ignoring your commands for 1m0s.",
		"robin: hello",
	}, f.conn.Texts())
}

func TestLongRunningIsSingleFlight(t *testing.T) {
	f := newFixture(t, nil)
	b := &blocker{timeout: time.Minute, release: make(chan struct{})}
	require.NoError(t, f.registry.Register(b))

	f.engine.Handle(event(":wren!w@birds.example PRIVMSG #birds :!block"))
	require.Eventually(t, func() bool { return f.engine.runner.Busy("blocker") }, time.Second, 5*time.Millisecond)

	// say would wait for the blocked job, so hand the second request over directly.
	f.engine.Handle(event(":robin!r@birds.example PRIVMSG #birds :!block"))
	require.Eventually(t, func() bool { return len(f.conn.Texts()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Contains(t, f.conn.Texts()[0], "A blocker job is already running")

	close(b.release)
	f.engine.Wait()
	assert.Equal(t, "wren: released", f.conn.Texts()[1])
}

func TestLongRunningTimesOut(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.registry.Register(&blocker{timeout: 30 * time.Millisecond, release: make(chan struct{})}))

	f.say("wren", "#birds", "!block")

	texts := f.conn.Texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "block timed out after 30ms")
	assert.False(t, f.engine.runner.Busy("blocker"))
}

func TestFindReplaceSeesActionsAndOwnLines(t *testing.T) {
	f := newFixture(t, nil)
	history := standard.NewHistory(10)
	require.NoError(t, f.registry.Load(history))
	require.NoError(t, f.registry.Load(standard.NewFindReplace(history, f.engine.Gateway())))

	f.say("wren", "#birds", "\x01ACTION eats a worn\x01")
	f.say("wren", "#birds", "s/worn/worm/")
	assert.Equal(t, []string{"wren \x02meant\x02 to say: /me eats a worm"}, f.conn.Texts())

	lines := history.Recent("#BIRDS")
	require.Len(t, lines, 3)
	assert.True(t, lines[0].Action)
	assert.Equal(t, "eats a worm", lines[0].Text)
	assert.Equal(t, "perch", lines[2].Nick)
}
