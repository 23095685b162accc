package commands

import (
	"github.com/spf13/cobra"

	"github.com/gameops/remoteconfig/internal/cli"
	"github.com/gameops/remoteconfig/internal/client"
)

var (
	// Global flags
	baseURL string
	apiKey  string
	env     string
	format  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "rcadmin",
	Short: "CLI tool for managing remote game configurations",
	Long: `rcadmin is a command-line tool for managing configurations and override
rules in the remoteconfig service.

Examples:
  rcadmin list mygame --env production
  rcadmin set mygame daily_reward_coins --type number --value 100
  rcadmin rule add mygame daily_reward_coins --priority 1 --country DE --value 300
  rcadmin resolve mygame daily_reward_coins --country DE --platform iOS`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "http://localhost:8080", "Base URL of the remoteconfig API")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for authentication")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "Environment (production, staging, ...)")
	rootCmd.PersistentFlags().StringVar(&format, "format", "table", "Output format (table, json, yaml)")
}

func newClient() *client.Client {
	return client.NewClient(baseURL, apiKey)
}

func outputFormat() cli.OutputFormat {
	return cli.OutputFormat(format)
}
