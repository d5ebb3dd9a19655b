package channels

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"perchbot/helpers"
	"perchbot/logger"
	"perchbot/perchbase"

	"github.com/lrstanley/girc"
)

const channelsKey = "channels"

var ErrUnknownChannel = errors.New("unknown channel")

func (c Channel) String() string {
	return girc.Fmt(fmt.Sprintf("{b}Name{b}: %s {b}Serious{b}: %s {b}Secret{b}: %s {b}Password{b}: %s",
		c.Name,
		helpers.BoolToStatusIndicator(c.Serious),
		helpers.BoolToStatusIndicator(c.Secret),
		helpers.BoolToStatusIndicator(c.Password != "")))
}

// NewSet builds a Set from configured channels merged with any persisted ones. Persisted
// entries win, since they carry changes made at runtime. A nil db keeps the set in memory.
func NewSet(db *perchbase.DB, configured []Channel) (*Set, error) {
	s := &Set{db: db}
	for _, c := range configured {
		s.putLocked(c)
	}

	if db != nil {
		var stored []Channel
		err := db.GetJSON(channelsKey, &stored)
		if err != nil && !errors.Is(err, perchbase.ErrNotFound) {
			return nil, fmt.Errorf("loading channels: %w", err)
		}
		for _, c := range stored {
			s.putLocked(c)
		}
	}
	return s, nil
}

// Get returns the policy for a channel.
func (s *Set) Get(name string) (Channel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(name); i >= 0 {
		return s.channels[i], true
	}
	return Channel{}, false
}

// IsSerious reports whether name is a known serious channel.
func (s *Set) IsSerious(name string) bool {
	c, ok := s.Get(name)
	return ok && c.Serious
}

// IsSecret reports whether name is a known secret channel.
func (s *Set) IsSecret(name string) bool {
	c, ok := s.Get(name)
	return ok && c.Secret
}

// All returns every channel sorted by name.
func (s *Set) All() []Channel {
	s.mu.RLock()
	out := append([]Channel(nil), s.channels...)
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Put adds or replaces a channel policy and persists the set.
func (s *Set) Put(c Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(c)
	return s.saveLocked()
}

// Update applies fn to an existing channel and persists the result.
func (s *Set) Update(name string, fn func(*Channel)) (Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(name)
	if i < 0 {
		return Channel{}, fmt.Errorf("%s: %w", name, ErrUnknownChannel)
	}
	fn(&s.channels[i])
	return s.channels[i], s.saveLocked()
}

// Remove forgets a channel.
func (s *Set) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(name)
	if i < 0 {
		return fmt.Errorf("%s: %w", name, ErrUnknownChannel)
	}
	s.channels = append(s.channels[:i:i], s.channels[i+1:]...)
	return s.saveLocked()
}

func (s *Set) putLocked(c Channel) {
	if i := s.indexLocked(c.Name); i >= 0 {
		s.channels[i] = c
		return
	}
	s.channels = append(s.channels, c)
}

func (s *Set) indexLocked(name string) int {
	for i, c := range s.channels {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

func (s *Set) saveLocked() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.PutJSON(channelsKey, s.channels); err != nil {
		logger.Error("Error saving channels", "error", err)
		return fmt.Errorf("saving channels: %w", err)
	}
	return nil
}
