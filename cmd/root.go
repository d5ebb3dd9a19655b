package cmd

import (
	"github.com/spf13/cobra"
)

const defaultConfig = "config.toml"

var configPath string

var Root = &cobra.Command{
	Use:           "perchbot <command>",
	Short:         "An IRC bot with pluggable commands",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	Root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfig, "path to the TOML or YAML config file")
	Root.AddCommand(runCmd, checkCmd)
}
