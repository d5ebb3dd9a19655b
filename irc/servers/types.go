package servers

import (
	"net"
	"strconv"
)

type (
	Server struct {
		Host          string `toml:"host" yaml:"host" validate:"required,hostname|ip"`
		Port          int    `toml:"port" yaml:"port" validate:"required,gt=0,lte=65535"`
		SSL           bool   `toml:"ssl" yaml:"ssl"`
		SkipSslVerify bool   `toml:"skipSslVerify" yaml:"skipSslVerify"`
		IPv6          bool   `toml:"ipv6" yaml:"ipv6"`
	}
)

func (s Server) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
