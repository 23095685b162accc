package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gameops/remoteconfig/internal/cli"
)

var (
	setDataType string
	setValue    string
)

var setCmd = &cobra.Command{
	Use:   "set <gameID> <key>",
	Short: "Create or update a configuration",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := valueToJSON(setDataType, setValue)
		if err != nil {
			return err
		}

		cfg, err := newClient().UpsertConfig(cmd.Context(), args[0], args[1], env, setDataType, raw)
		if err != nil {
			return err
		}
		fmt.Printf("Config %s/%s set in %s\n", cfg.GameID, cfg.Key, cfg.Environment)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list <gameID>",
	Short: "List configurations for a game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configs, err := newClient().ListConfigs(cmd.Context(), args[0], env)
		if err != nil {
			return err
		}
		return cli.PrintConfigs(configs, outputFormat())
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <gameID> <key>",
	Short: "Delete a configuration and its rules",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().DeleteConfig(cmd.Context(), args[0], args[1], env); err != nil {
			return err
		}
		fmt.Printf("Config %s/%s deleted\n", args[0], args[1])
		return nil
	},
}

// valueToJSON turns a flag string into the JSON the API expects for the
// given data type. For json values the string must already be valid JSON;
// for the scalar types the API's lenient coercion accepts the string form.
func valueToJSON(dataType, value string) (json.RawMessage, error) {
	if dataType == "json" {
		if !json.Valid([]byte(value)) {
			return nil, fmt.Errorf("--value is not valid JSON")
		}
		return json.RawMessage(value), nil
	}
	return json.Marshal(value)
}

func init() {
	setCmd.Flags().StringVar(&setDataType, "type", "string", "Data type (number, string, boolean, json)")
	setCmd.Flags().StringVar(&setValue, "value", "", "Configuration value")
	_ = setCmd.MarkFlagRequired("value")

	rootCmd.AddCommand(setCmd, listCmd, deleteCmd)
}
