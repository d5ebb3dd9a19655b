package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"perchbot/irc/channels"
	"perchbot/irc/commands"
	"perchbot/irc/commands/admin"
	"perchbot/irc/commands/standard"
	"perchbot/irc/connection"
	"perchbot/irc/dispatch"
	"perchbot/irc/message"
	"perchbot/irc/networks"
	"perchbot/irc/permissions"
	"perchbot/irc/users"
	"perchbot/logger"
	"perchbot/perchbase"
	"perchbot/queue"
	"perchbot/settings"

	"github.com/lrstanley/girc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const mergeInterval = time.Hour

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "connect to the network and serve commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := settings.LoadConfig(configPath)
		if err != nil {
			return err
		}
		logger.Init(cfg.Logging)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runBot(ctx, cfg)
	},
}

// rotatingClient picks a random configured server before every connect.
type rotatingClient struct {
	*connection.Client
	network *networks.Network
}

func (c *rotatingClient) Connect() error {
	server := c.network.GetRandomServer()
	c.IRC().Config.Server = server.Host
	c.IRC().Config.Port = server.Port
	c.IRC().Config.SSL = server.SSL
	c.IRC().Config.TLSConfig = c.network.ClientConfig(server).TLSConfig
	logger.Info("Connecting", "server", server.Address(), "ssl", server.SSL)
	return c.Client.Connect()
}

func runBot(ctx context.Context, cfg *settings.Config) error {
	log := logger.Service("main")

	db, err := perchbase.Open(cfg.Bot.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	go db.MergeEvery(ctx, mergeInterval)

	set, err := channels.NewSet(db, cfg.Channels)
	if err != nil {
		return err
	}
	ignores, err := users.LoadIgnoreList(db)
	if err != nil {
		return err
	}

	client := girc.New(cfg.Network.ClientConfig(cfg.Network.GetRandomServer()))
	conn := &rotatingClient{Client: connection.New(client), network: &cfg.Network}

	registry := commands.NewRegistry()
	runner := queue.NewRunner(nil)
	gateway := message.NewGateway(conn)
	resolver := permissions.New(conn, cfg.Admins, cfg.Bot.WhoisTimeoutDuration(), nil)

	engine, err := dispatch.New(dispatch.Options{
		Context:        ctx,
		Conn:           conn,
		Gateway:        gateway,
		Registry:       registry,
		Resolver:       resolver,
		Channels:       set,
		Runner:         runner,
		DB:             db,
		FloodThreshold: cfg.Bot.FloodThreshold,
		FloodBan:       cfg.Bot.FloodBan(),
		Prefix:         cfg.Bot.Prefix,
		ReconnectDelay: cfg.Bot.ReconnectDelayDuration(),
	})
	if err != nil {
		return err
	}

	cat := commands.NewCatalog()
	standard.Register(cat, standard.Env{
		Registry:    registry,
		Channels:    set,
		DB:          db,
		Gateway:     gateway,
		HistorySize: cfg.Bot.History,
	})
	admin.Register(cat, admin.Env{
		Registry:   registry,
		Catalog:    cat,
		Channels:   set,
		DB:         db,
		Runner:     runner,
		Ignores:    ignores,
		Conn:       conn,
		Dispatcher: engine,
		NickServ:   admin.NickServ{Name: cfg.Network.NickServName, Password: cfg.Network.NickServPass},
	})
	if err := cat.LoadInto(registry, modulesToLoad(cfg)...); err != nil {
		return err
	}
	log.Info("Modules loaded", "modules", registry.Modules())

	client.Handlers.Add(girc.ALL_EVENTS, func(_ *girc.Client, e girc.Event) {
		engine.Handle(e)
	})

	if cfg.Metrics.Listen != "" {
		go serveMetrics(ctx, cfg.Metrics.Listen)
	}

	log.Info("Starting", "network", cfg.Network.NetworkName, "nick", cfg.Network.Nick)
	err = engine.Run(ctx, conn)
	engine.Wait()
	log.Info("Stopped")
	return err
}

func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	logger.Info("Serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Metrics server failed", "error", err)
	}
}
