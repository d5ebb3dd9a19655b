package channels

import (
	"path/filepath"
	"testing"

	"perchbot/perchbase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetInMemory(t *testing.T) {
	s, err := NewSet(nil, []Channel{{Name: "#birds"}, {Name: "#Quiet", Serious: true}})
	require.NoError(t, err)

	assert.True(t, s.IsSerious("#quiet"))
	assert.False(t, s.IsSerious("#birds"))
	assert.False(t, s.IsSerious("#unknown"))

	c, ok := s.Get("#BIRDS")
	require.True(t, ok)
	assert.Equal(t, "#birds", c.Name)

	names := []string{}
	for _, c := range s.All() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"#Quiet", "#birds"}, names)
}

func TestSetPersists(t *testing.T) {
	db, err := perchbase.Open(filepath.Join(t.TempDir(), "channels.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := NewSet(db, []Channel{{Name: "#birds"}})
	require.NoError(t, err)

	require.NoError(t, s.Put(Channel{Name: "#hidden", Password: "pw", Secret: true, Serious: true}))
	_, err = s.Update("#birds", func(c *Channel) { c.Serious = true })
	require.NoError(t, err)

	reloaded, err := NewSet(db, []Channel{{Name: "#birds", Serious: false}})
	require.NoError(t, err)
	assert.True(t, reloaded.IsSerious("#birds"), "stored policy overrides config")
	assert.True(t, reloaded.IsSecret("#hidden"))

	require.NoError(t, reloaded.Remove("#hidden"))
	_, ok := reloaded.Get("#hidden")
	assert.False(t, ok)
}

func TestUpdateUnknown(t *testing.T) {
	s, err := NewSet(nil, nil)
	require.NoError(t, err)

	_, err = s.Update("#nowhere", func(c *Channel) {})
	require.ErrorIs(t, err, ErrUnknownChannel)
	require.ErrorIs(t, s.Remove("#nowhere"), ErrUnknownChannel)
}

func TestChannelString(t *testing.T) {
	out := Channel{Name: "#birds", Serious: true}.String()
	assert.Contains(t, out, "#birds")
	assert.Contains(t, out, "[YES]")
}
