package cmd

import (
	"fmt"
	"strings"

	"perchbot/irc/commands/admin"
	"perchbot/irc/commands/standard"
	"perchbot/settings"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "validate the config file and print what would be loaded",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := settings.LoadConfig(configPath)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, cfg.Network.String())
		for _, c := range cfg.Channels {
			fmt.Fprintln(out, c.String())
		}
		fmt.Fprintf(out, "Admins: %d\n", len(cfg.Admins))
		fmt.Fprintf(out, "Modules: %s\n", strings.Join(modulesToLoad(cfg), ", "))
		return nil
	},
}

// modulesToLoad is the configured module list, or every known module when none is set.
func modulesToLoad(cfg *settings.Config) []string {
	if len(cfg.Bot.Modules) > 0 {
		return cfg.Bot.Modules
	}
	return append(standard.Modules(), admin.Modules()...)
}
