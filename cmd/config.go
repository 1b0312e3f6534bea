package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iamkaf/dirty/pkg/bootstrap"
)

// configCmd groups configuration subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect dirty configuration",
	Long: `Inspect dirty configuration.

Settings are read from $HOME/.config/dirty/config.toml (or --config), then
overridden by DIRTY_* environment variables (for example DIRTY_SCAN_DEPTH=5),
then by command-line flags.`,
}

// configShowCmd prints the effective configuration.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as TOML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigShow(cmd)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command) error {
	cfg, err := bootstrap.InitConfig(cfgFile, verbose, nil)
	if err != nil {
		return err
	}

	data, err := cfg.MarshalTOML()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# Loaded from %s\n\n", used)
	} else {
		fmt.Fprintln(out, "# No config file found; showing defaults and environment overrides")
		fmt.Fprintln(out)
	}
	_, err = out.Write(data)
	return err
}
