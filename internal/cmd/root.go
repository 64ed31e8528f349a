// Package cmd implements the naoko command tree.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/naoko-ai/naoko/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "naoko",
	Short: "Document-driven propose/review/refine orchestrator",
	Long: `Naoko coordinates two code-generation agents through a multi-round
propose, review, and refine workflow. A planning document is turned into a
requirements request, implemented as a unified-diff patch, then reviewed and
refined until the change passes review or the round budget runs out.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/naoko/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/naoko")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("NAOKO")
	// Replace dots with underscores for nested keys in env vars
	// e.g., NAOKO_RUN_MAX_ROUNDS for run.max_rounds
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
