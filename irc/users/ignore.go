package users

import (
	"errors"
	"fmt"
	"strings"

	"perchbot/helpers"
	"perchbot/logger"
	"perchbot/perchbase"
)

const ignoreKey = "ignores"

var (
	ErrAlreadyIgnored = errors.New("this hostmask is already ignored")
	ErrNotIgnored     = errors.New("this hostmask isn't ignored")
)

// LoadIgnoreList reads the persisted ignore masks. A nil db keeps the list in memory.
func LoadIgnoreList(db *perchbase.DB) (*IgnoreList, error) {
	l := &IgnoreList{db: db}
	if db == nil {
		return l, nil
	}

	var masks []string
	if err := db.GetJSON(ignoreKey, &masks); err != nil && !errors.Is(err, perchbase.ErrNotFound) {
		return nil, fmt.Errorf("loading ignore list: %w", err)
	}
	for _, mask := range masks {
		re, err := helpers.WildcardToRegexp(mask)
		if err != nil {
			logger.Warn("Dropping invalid ignore mask", "mask", mask, "error", err)
			continue
		}
		l.masks = append(l.masks, mask)
		l.compiled = append(l.compiled, re)
	}
	return l, nil
}

// Add ignores every user matching mask, e.g. *!*@spam.example.
func (l *IgnoreList) Add(mask string) error {
	mask = strings.TrimSpace(mask)
	re, err := helpers.WildcardToRegexp(mask)
	if err != nil {
		return fmt.Errorf("invalid hostmask %q: %w", mask, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.indexLocked(mask) >= 0 {
		return ErrAlreadyIgnored
	}
	l.masks = append(l.masks, mask)
	l.compiled = append(l.compiled, re)
	return l.saveLocked()
}

func (l *IgnoreList) Remove(mask string) error {
	mask = strings.TrimSpace(mask)

	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexLocked(mask)
	if i < 0 {
		return ErrNotIgnored
	}
	l.masks = append(l.masks[:i:i], l.masks[i+1:]...)
	l.compiled = append(l.compiled[:i:i], l.compiled[i+1:]...)
	return l.saveLocked()
}

// Masks returns the ignored hostmasks in the order they were added.
func (l *IgnoreList) Masks() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.masks...)
}

// Matches reports whether a nick!ident@host is ignored.
func (l *IgnoreList) Matches(hostmask string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, re := range l.compiled {
		if re.MatchString(hostmask) {
			return true
		}
	}
	return false
}

func (l *IgnoreList) indexLocked(mask string) int {
	for i, m := range l.masks {
		if strings.EqualFold(m, mask) {
			return i
		}
	}
	return -1
}

func (l *IgnoreList) saveLocked() error {
	if l.db == nil {
		return nil
	}
	if err := l.db.PutJSON(ignoreKey, l.masks); err != nil {
		return fmt.Errorf("saving ignore list: %w", err)
	}
	return nil
}
