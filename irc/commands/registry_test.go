package commands

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"perchbot/irc/access"
	"perchbot/irc/message"
	"perchbot/irc/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Echo struct{}

func (Echo) Info() Info {
	return Info{Name: "echo", Aliases: []string{"repeat"}, Level: access.Normal}
}

func (Echo) Run(s *state.State) error { return nil }

type Shout struct{ name string }

func (c *Shout) Info() Info { return Info{Name: c.name} }

func (c *Shout) Run(s *state.State) error { return nil }

func (c *Shout) Module() string { return "loud" }

// Seen is a command and a plugin in one module.
type Seen struct{}

func (Seen) Info() Info { return Info{Name: "seen"} }

func (Seen) Run(s *state.State) error { return nil }

func (Seen) Name() string { return "seen" }

func (Seen) OnMessage(ctx context.Context, msg *message.Message) error { return nil }

type Logger struct{}

func (Logger) Name() string { return "logger" }

func TestModuleOf(t *testing.T) {
	assert.Equal(t, "echo", ModuleOf(Echo{}))
	assert.Equal(t, "loud", ModuleOf(&Shout{}))
	assert.Equal(t, "seen", ModuleOf(&Seen{}))
	assert.Equal(t, "", ModuleOf(nil))
}

func TestRegisterAndFind(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Echo{}))

	for _, name := range []string{"echo", "ECHO", "Repeat"} {
		cmd := r.FindByName(name)
		require.NotNil(t, cmd, name)
		assert.Equal(t, "echo", cmd.Info().Name)
	}
	assert.Nil(t, r.FindByName("nope"))
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Echo{}))

	tests := []Command{
		&Shout{name: "ECHO"},
		&Shout{name: "repeat"},
		&Shout{name: ""},
	}
	for _, cmd := range tests {
		t.Run(cmd.Info().Name, func(t *testing.T) {
			require.Error(t, r.Register(cmd))
		})
	}
	require.ErrorIs(t, r.Register(&Shout{name: "Repeat"}), ErrDuplicate)
	assert.Len(t, r.ListAll(), 1)
}

func TestListAllSorted(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&Shout{name: "zeta"}))
	require.NoError(t, r.Register(&Shout{name: "Alpha"}))
	require.NoError(t, r.Register(Echo{}))

	var names []string
	for _, c := range r.ListAll() {
		names = append(names, c.Info().Name)
	}
	assert.Equal(t, []string{"Alpha", "echo", "zeta"}, names)
}

func TestLoadCommandAndPlugin(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Load(&Seen{}))
	require.NoError(t, r.Load(Logger{}))

	assert.NotNil(t, r.FindByName("seen"))
	assert.Len(t, r.Plugins(), 2)
	assert.True(t, r.Loaded("SEEN"))
	assert.Equal(t, []string{"logger", "seen"}, r.Modules())

	require.ErrorIs(t, r.Load(42), ErrNotLoadable)
}

func TestLoadIsAtomic(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddPlugin(Seen{}))

	// The command part is fine but the plugin name clashes, so nothing is added.
	require.ErrorIs(t, r.Load(&Seen{}), ErrDuplicate)
	assert.Nil(t, r.FindByName("seen"))
	assert.Len(t, r.Plugins(), 1)
}

func TestUnregister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Load(&Seen{}))
	require.NoError(t, r.Register(&Shout{name: "a"}))
	require.NoError(t, r.Register(&Shout{name: "b"}))

	n, err := r.Unregister("loud")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Nil(t, r.FindByName("a"))

	n, err = r.Unregister("seen")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, r.Plugins())

	_, err = r.Unregister("seen")
	require.ErrorIs(t, err, ErrUnknownModule)
}

func TestUnregisterCommand(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&Shout{name: "a"}))
	require.NoError(t, r.Register(&Shout{name: "b"}))

	assert.True(t, r.UnregisterCommand("A"))
	assert.False(t, r.UnregisterCommand("a"))
	assert.NotNil(t, r.FindByName("b"))
}

func TestSnapshotIsStable(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddPlugin(Logger{}))

	before := r.Plugins()
	require.NoError(t, r.AddPlugin(Seen{}))
	assert.Len(t, before, 1)
	assert.Len(t, r.Plugins(), 2)
}

func TestConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = r.Register(&Shout{name: fmt.Sprintf("cmd%d", i)})
		}(i)
		go func(i int) {
			defer wg.Done()
			_ = r.FindByName(fmt.Sprintf("cmd%d", i))
			_ = r.ListAll()
		}(i)
	}
	wg.Wait()
	assert.Len(t, r.ListAll(), 20)
}

func TestCatalog(t *testing.T) {
	c := NewCatalog()
	c.Add("Echo", func() (any, error) { return Echo{}, nil })
	c.Add("seen", func() (any, error) { return &Seen{}, nil })

	assert.Equal(t, []string{"echo", "seen"}, c.Names())

	_, err := c.New("missing")
	require.ErrorIs(t, err, ErrUnknownModule)

	r := NewRegistry()
	require.NoError(t, c.LoadInto(r, "echo", "SEEN"))
	assert.True(t, r.Loaded("echo"))
	assert.True(t, r.Loaded("seen"))

	require.ErrorIs(t, c.LoadInto(r, "echo"), ErrDuplicate)
}
