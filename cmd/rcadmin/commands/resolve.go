package commands

import (
	"github.com/spf13/cobra"

	"github.com/gameops/remoteconfig/internal/cli"
)

var (
	resolvePlatform string
	resolveVersion  string
	resolveCountry  string
	resolveAt       string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <gameID> <key>",
	Short: "Resolve the value a client would receive",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newClient().Resolve(cmd.Context(), args[0], args[1], env, map[string]string{
			"platform": resolvePlatform,
			"version":  resolveVersion,
			"country":  resolveCountry,
			"at":       resolveAt,
		})
		if err != nil {
			return err
		}
		return cli.PrintResolution(res, outputFormat())
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolvePlatform, "platform", "", "Client platform")
	resolveCmd.Flags().StringVar(&resolveVersion, "version", "", "Client version (MAJOR.MINOR.PATCH)")
	resolveCmd.Flags().StringVar(&resolveCountry, "country", "", "Client country code")
	resolveCmd.Flags().StringVar(&resolveAt, "at", "", "Debug evaluation instant (RFC 3339, non-production only)")

	rootCmd.AddCommand(resolveCmd)
}
