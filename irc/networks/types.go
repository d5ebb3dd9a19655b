package networks

import (
	"perchbot/irc/servers"
)

type (
	// Network is the connection profile for one IRC network.
	Network struct {
		NetworkName  string           `toml:"name" yaml:"name" validate:"required"`
		Nick         string           `toml:"nick" yaml:"nick" validate:"required"`
		User         string           `toml:"user" yaml:"user" validate:"required"`
		Name         string           `toml:"realName" yaml:"realName"`
		Pass         string           `toml:"pass" yaml:"pass"`
		NickServName string           `toml:"nickServName" yaml:"nickServName"`
		NickServPass string           `toml:"nickServPass" yaml:"nickServPass"`
		PingDelay    int              `toml:"pingDelay" yaml:"pingDelay" validate:"gte=0"`
		Version      string           `toml:"version" yaml:"version"`
		Servers      []servers.Server `toml:"servers" yaml:"servers" validate:"required,min=1,dive"`
	}
)
