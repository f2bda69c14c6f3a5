package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-storefront/internal/config"
)

// Set by the linker at build time.
var (
	version = "dev"
	commit  = "none"
)

var envFiles []string

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Backend-for-frontend for the gifting storefront.",
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version.",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "storefront %s (%s)\n", version, commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env", ".env.local"},
		"dotenv files to load before reading the environment")
	rootCmd.PersistentFlags().String("log-level", "", "log level (overrides LOG_LEVEL)")
	_ = viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(serveCmd, versionCmd)
}

// loadConfig resolves the configuration from env files, the environment and
// bound flags.
func loadConfig() (config.Config, error) {
	return config.Load(viper.GetViper(), envFiles...)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
