package cmd

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/specsmith/specsmith/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "specsmith",
	Short: "Expert-panel specification generator",
	Long: `Specsmith turns a one-line product idea into a full technical
specification by running it through a panel of expert personas: clarifying
questions, parallel research, cross-examination, synthesis, review, and an
approval vote, looping up to three rounds before the final spec is written.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/specsmith/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// A local .env is convenient for the API key during development.
	_ = godotenv.Load()

	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/specsmith")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SPECSMITH")
	// Replace dots with underscores for nested keys in env vars
	// e.g., SPECSMITH_ENDPOINT_BASE_URL for endpoint.base_url
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
