package users

import (
	"regexp"
	"sync"

	"perchbot/perchbase"
)

type (
	// Admin grants elevated access to a services account.
	Admin struct {
		Name string `toml:"name" yaml:"name" validate:"required"`
		Root bool   `toml:"root" yaml:"root"`
	}

	// Admins is the allow-list of accounts with admin or root access.
	Admins []Admin

	// Sighting is the last thing a user was seen saying.
	Sighting struct {
		Nick    string
		Channel string
		Text    string
		Time    int64
	}

	// IgnoreList holds hostmasks whose commands the bot drops.
	IgnoreList struct {
		db *perchbase.DB

		mu       sync.RWMutex
		masks    []string
		compiled []*regexp.Regexp
	}
)
