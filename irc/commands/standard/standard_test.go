package standard

import (
	"context"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"perchbot/irc/access"
	"perchbot/irc/channels"
	"perchbot/irc/commands"
	"perchbot/irc/connection/conntest"
	"perchbot/irc/message"
	"perchbot/irc/state"
	"perchbot/perchbase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	conn *conntest.Conn
	gw   *message.Gateway
}

func newHarness() *harness {
	conn := conntest.New("perch")
	return &harness{conn: conn, gw: message.NewGateway(conn)}
}

func (h *harness) state(user, source, action, args string) *state.State {
	msg := &message.Message{
		Text:      "!" + action + " " + args,
		User:      user,
		Hostmask:  user + "!u@host",
		Source:    source,
		IsChannel: message.IsChannel(source),
		Time:      time.Now(),
		Level:     access.Normal,
	}
	s := state.New(context.Background(), h.conn, h.gw, msg, state.Command{Action: action, Message: args}, nil)
	s.Prefix = "!"
	return s
}

func openDB(t *testing.T) *perchbase.DB {
	t.Helper()
	db, err := perchbase.Open(filepath.Join(t.TempDir(), "standard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestParseDice(t *testing.T) {
	tests := []struct {
		in           string
		count, sides int
		err          bool
	}{
		{"", 1, 6, false},
		{"3d6", 3, 6, false},
		{"3D20", 3, 20, false},
		{"4", 4, 6, false},
		{"0d0", 1, 1, false},
		{"999d999", 300, 300, false},
		{"d6", 0, 0, true},
		{"3dx", 0, 0, true},
		{"lots", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			count, sides, err := parseDice(tt.in)
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.count, count)
			assert.Equal(t, tt.sides, sides)
		})
	}
}

func TestRollSeedIsDeterministic(t *testing.T) {
	roll := func() string {
		h := newHarness()
		require.NoError(t, Roll{}.Run(h.state("alice", "#birds", "roll", "-seed:42 3d6")))
		texts := h.conn.Texts()
		require.Len(t, texts, 1)
		return texts[0]
	}

	first := roll()
	assert.Equal(t, first, roll())

	nums := strings.Split(strings.TrimPrefix(first, "alice: "), ", ")
	require.Len(t, nums, 3)
	for _, n := range nums {
		v, err := strconv.Atoi(n)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 6)
	}
}

func TestRollBadSeed(t *testing.T) {
	h := newHarness()
	require.Error(t, Roll{}.Run(h.state("alice", "#birds", "roll", "-seed:abc 3d6")))
}

func TestChoose(t *testing.T) {
	assert.Equal(t, []string{"coffee", "tea", "water", "juice"}, splitOptions("coffee | tea/water;juice,"))

	h := newHarness()
	require.Error(t, Choose{}.Run(h.state("alice", "#birds", "choose", "coffee")))

	require.NoError(t, Choose{}.Run(h.state("alice", "#birds", "choose", "coffee|tea")))
	texts := h.conn.Texts()
	require.Len(t, texts, 1)
	assert.Regexp(t, regexp.MustCompile(`My choice: (coffee|tea)$`), texts[0])
}

func TestSayAndAction(t *testing.T) {
	h := newHarness()

	require.NoError(t, Say{}.Run(h.state("alice", "#birds", "say", "-to:#other Hi, I'm new.")))
	require.NoError(t, Say{}.Run(h.state("alice", "#birds", "say", "plain")))
	require.NoError(t, Action{}.Run(h.state("alice", "#birds", "action", "runs away.")))
	require.NoError(t, Action{}.Run(h.state("alice", "#birds", "action", "-to:#other waves")))
	require.ErrorIs(t, Say{}.Run(h.state("alice", "#birds", "say", "-to:#other")), errNothingToSay)

	assert.Equal(t, []conntest.Line{
		{Target: "#other", Text: "Hi, I'm new."},
		{Target: "#birds", Text: "plain"},
		{Target: "#birds", Text: "runs away.", Action: true},
		{Target: "#other", Text: "waves", Action: true},
	}, h.conn.Lines())
}

func TestHelp(t *testing.T) {
	reg := commands.NewRegistry()
	require.NoError(t, reg.Register(Roll{}))
	cmd := NewHelp(reg)
	require.NoError(t, reg.Register(cmd))

	h := newHarness()
	require.NoError(t, cmd.Run(h.state("alice", "#birds", "help", "")))
	lines := h.conn.Lines()
	require.NotEmpty(t, lines)
	assert.Equal(t, "alice", lines[0].Target)
	assert.Contains(t, lines[0].Text, "dice, help, roll")
	assert.Equal(t, "#birds", lines[len(lines)-1].Target)

	h = newHarness()
	require.NoError(t, cmd.Run(h.state("alice", "#birds", "help", "!dice")))
	assert.Contains(t, strings.Join(h.conn.Texts(), "\n"), "-seed: The seed")

	h = newHarness()
	require.NoError(t, cmd.Run(h.state("alice", "#birds", "help", "nothing")))
	assert.Contains(t, h.conn.Texts()[0], "I don't know a command called")
}

func TestSeen(t *testing.T) {
	db := openDB(t)
	set, err := channels.NewSet(nil, []channels.Channel{{Name: "#hidden", Secret: true}})
	require.NoError(t, err)
	seen := NewSeen(db, set)
	ctx := context.Background()

	require.NoError(t, seen.OnChannelMessage(ctx, &message.Message{User: "wren", Source: "#birds", Text: "tweet", IsChannel: true}))

	h := newHarness()
	require.NoError(t, seen.Run(h.state("alice", "#birds", "seen", "Wren")))
	assert.Contains(t, h.conn.Texts()[0], "in \x02#birds\x02 saying: \"tweet\"")

	require.NoError(t, seen.OnChannelMessage(ctx, &message.Message{User: "wren", Source: "#hidden", Text: "psst", IsChannel: true}))
	h = newHarness()
	require.NoError(t, seen.Run(h.state("alice", "#birds", "seen", "wren")))
	assert.NotContains(t, h.conn.Texts()[0], "psst")

	h = newHarness()
	require.NoError(t, seen.Run(h.state("alice", "#birds", "seen", "-channel:#birds wren")))
	assert.Contains(t, h.conn.Texts()[0], "tweet")

	h = newHarness()
	require.NoError(t, seen.Run(h.state("alice", "#birds", "seen", "crow")))
	assert.Contains(t, h.conn.Texts()[0], "I haven't seen the user")

	h = newHarness()
	require.NoError(t, seen.Run(h.state("alice", "#birds", "seen", "ALICE")))
	assert.Contains(t, h.conn.Texts()[0], "you are seen")
}

func TestTellDelivers(t *testing.T) {
	db := openDB(t)
	set, err := channels.NewSet(nil, nil)
	require.NoError(t, err)
	h := newHarness()

	tell, err := NewTell(db, set, h.gw)
	require.NoError(t, err)

	require.NoError(t, tell.Run(h.state("alice", "#birds", "tell", "wren,rob* Dinner is ready!")))
	require.NoError(t, tell.Run(h.state("alice", "#birds", "tell", "-private crow psst")))
	require.Error(t, tell.Run(h.state("alice", "#birds", "tell", "nobody")))
	assert.Equal(t, 3, tell.Pending())

	reloaded, err := NewTell(db, set, h.gw)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Pending())

	h.conn.Reset()
	ctx := context.Background()
	require.NoError(t, reloaded.OnMessage(ctx, &message.Message{User: "robin", Source: "#birds", IsChannel: true}))
	require.NoError(t, reloaded.OnMessage(ctx, &message.Message{User: "crow", Source: "#birds", IsChannel: true}))
	require.NoError(t, reloaded.OnMessage(ctx, &message.Message{User: "robin", Source: "#birds", IsChannel: true}))

	lines := h.conn.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "#birds", lines[0].Target)
	assert.True(t, strings.HasPrefix(lines[0].Text, "robin: "))
	assert.Contains(t, lines[0].Text, "Dinner is ready!")
	assert.Equal(t, "crow", lines[1].Target)
	assert.Equal(t, 1, reloaded.Pending())
}
