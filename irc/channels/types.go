package channels

import (
	"sync"

	"perchbot/perchbase"
)

type (
	// Channel is the bot's policy for one channel.
	Channel struct {
		Name     string `toml:"name" yaml:"name" validate:"required,startswith=#"`
		Password string `toml:"password" yaml:"password"`

		// Serious channels only run commands marked safe for them.
		Serious bool `toml:"serious" yaml:"serious"`

		// Secret channels are hidden from listings such as seen.
		Secret bool `toml:"secret" yaml:"secret"`

		// Prefix overrides the control prefix in this channel.
		Prefix string `toml:"prefix" yaml:"prefix"`
	}

	// Set is the live collection of channel policies.
	Set struct {
		db *perchbase.DB

		mu       sync.RWMutex
		channels []Channel
	}
)
