package settings

import (
	"perchbot/irc/channels"
	"perchbot/irc/networks"
	"perchbot/irc/users"
	"perchbot/logger"
)

type (
	Config struct {
		Network  networks.Network   `toml:"network" yaml:"network" validate:"required"`
		Bot      Bot                `toml:"bot" yaml:"bot" validate:"required"`
		Channels []channels.Channel `toml:"channels" yaml:"channels" validate:"dive"`
		Admins   users.Admins       `toml:"admins" yaml:"admins" validate:"dive"`
		Logging  logger.Config      `toml:"logging" yaml:"logging" validate:"required"`
		Metrics  Metrics            `toml:"metrics" yaml:"metrics"`
	}

	Bot struct {
		Prefix             string   `toml:"prefix" yaml:"prefix" validate:"required,max=4"`
		WhoisTimeout       int      `toml:"whoisTimeout" yaml:"whoisTimeout" validate:"gte=0"`
		FloodThreshold     int      `toml:"floodThreshold" yaml:"floodThreshold" validate:"gte=0"`
		FloodIgnoreMinutes int      `toml:"floodIgnoreMinutes" yaml:"floodIgnoreMinutes" validate:"gte=0"`
		ReconnectDelay     int      `toml:"reconnectDelay" yaml:"reconnectDelay" validate:"gte=0"`
		History            int      `toml:"history" yaml:"history" validate:"gte=0"`
		Database           string   `toml:"database" yaml:"database" validate:"required"`
		Modules            []string `toml:"modules" yaml:"modules"`
	}

	Metrics struct {
		Listen string `toml:"listen" yaml:"listen" validate:"omitempty,hostname_port"`
	}
)
