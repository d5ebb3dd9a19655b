package networks

import (
	"crypto/rand"
	"crypto/tls"
	"fmt"
	"math/big"
	"time"

	"perchbot/helpers"
	"perchbot/irc/servers"

	"github.com/lrstanley/girc"
)

const defaultVersion = "perchbot"

func (n *Network) String() string {
	return girc.Fmt(fmt.Sprintf("{b}NetworkName{b}: %s, {b}Nick{b}: %s, {b}User{b}: %s, {b}Name{b}: %s, {b}PingDelay{b}: %d, {b}Version{b}: %s, {b}Servers{b}: %d, {b}NickServ{b}: %s",
		n.NetworkName,
		n.Nick,
		n.User,
		n.Name,
		n.PingDelay,
		n.GetVersion(),
		len(n.Servers),
		helpers.BoolToStatusIndicator(n.NickServPass != "")))
}

func (n *Network) GetRandomServer() *servers.Server {
	if len(n.Servers) == 0 {
		return nil
	}
	randomIndex, err := rand.Int(rand.Reader, big.NewInt(int64(len(n.Servers))))
	if err != nil {
		return &n.Servers[0]
	}
	return &n.Servers[randomIndex.Int64()]
}

func (n *Network) GetVersion() string {
	if n.Version == "" {
		return defaultVersion
	}
	return n.Version
}

// ClientConfig builds the girc configuration for connecting to server. Channel and user
// tracking stays on so channel roles can be read back.
func (n *Network) ClientConfig(server *servers.Server) girc.Config {
	name := n.Name
	if name == "" {
		name = n.Nick
	}
	cfg := girc.Config{
		Server:     server.Host,
		Port:       server.Port,
		ServerPass: n.Pass,
		Nick:       n.Nick,
		User:       n.User,
		Name:       name,
		Version:    n.GetVersion(),
		SSL:        server.SSL,
		PingDelay:  time.Duration(n.PingDelay) * time.Second,
	}
	if server.SSL {
		cfg.TLSConfig = &tls.Config{
			ServerName:         server.Host,
			InsecureSkipVerify: server.SkipSslVerify, // #nosec G402 opt-in per server
		}
	}
	return cfg
}
