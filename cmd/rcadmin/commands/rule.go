package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gameops/remoteconfig/internal/cli"
)

var (
	rulePriority    int
	ruleValue       string
	ruleValueType   string
	ruleDisabled    bool
	rulePlatform    string
	ruleCountry     string
	ruleVersionOp   string
	ruleVersion     string
	ruleActiveAfter string
	ruleActiveFrom  string
	ruleActiveTo    string
)

var ruleCmd = &cobra.Command{
	Use:   "rule",
	Short: "Manage override rules",
}

var ruleAddCmd = &cobra.Command{
	Use:   "add <gameID> <key>",
	Short: "Add an override rule to a configuration",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := ruleBody()
		if err != nil {
			return err
		}
		rule, err := newClient().CreateRule(cmd.Context(), args[0], args[1], env, body)
		if err != nil {
			return err
		}
		fmt.Printf("Rule %s created at priority %d\n", rule.ID, rule.Priority)
		return nil
	},
}

var ruleListCmd = &cobra.Command{
	Use:   "ls <gameID> <key>",
	Short: "List rules for a configuration",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ruleSet, err := newClient().ListRules(cmd.Context(), args[0], args[1], env)
		if err != nil {
			return err
		}
		return cli.PrintRules(ruleSet, outputFormat())
	},
}

var ruleUpdateCmd = &cobra.Command{
	Use:   "update <gameID> <key> <ruleID>",
	Short: "Update an override rule",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := ruleBody()
		if err != nil {
			return err
		}
		rule, err := newClient().UpdateRule(cmd.Context(), args[0], args[1], env, args[2], body)
		if err != nil {
			return err
		}
		fmt.Printf("Rule %s updated\n", rule.ID)
		return nil
	},
}

var ruleDeleteCmd = &cobra.Command{
	Use:   "rm <gameID> <key> <ruleID>",
	Short: "Delete an override rule",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().DeleteRule(cmd.Context(), args[0], args[1], env, args[2]); err != nil {
			return err
		}
		fmt.Printf("Rule %s deleted\n", args[2])
		return nil
	},
}

// ruleBody assembles the JSON body for rule create/update from flags.
func ruleBody() (json.RawMessage, error) {
	value, err := valueToJSON(ruleValueType, ruleValue)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"priority":      rulePriority,
		"overrideValue": value,
		"enabled":       !ruleDisabled,
	}
	if rulePlatform != "" {
		body["platform"] = rulePlatform
	}
	if ruleCountry != "" {
		body["country"] = ruleCountry
	}
	if ruleVersion != "" {
		body["version"] = map[string]string{"operator": ruleVersionOp, "value": ruleVersion}
	}
	if ruleActiveAfter != "" {
		body["activeAfter"] = ruleActiveAfter
	}
	if ruleActiveFrom != "" || ruleActiveTo != "" {
		body["activeBetween"] = map[string]string{"start": ruleActiveFrom, "end": ruleActiveTo}
	}

	return json.Marshal(body)
}

func addRuleFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&rulePriority, "priority", 0, "Rule priority (lower wins)")
	cmd.Flags().StringVar(&ruleValue, "value", "", "Override value")
	cmd.Flags().StringVar(&ruleValueType, "type", "string", "Override value type (number, string, boolean, json)")
	cmd.Flags().BoolVar(&ruleDisabled, "disabled", false, "Create the rule disabled")
	cmd.Flags().StringVar(&rulePlatform, "platform", "", "Platform condition (exact match)")
	cmd.Flags().StringVar(&ruleCountry, "country", "", "Country condition (ISO 3166-1 alpha-2)")
	cmd.Flags().StringVar(&ruleVersionOp, "version-op", "equal", "Version operator (equal, not_equal, greater_than, greater_or_equal, less_than, less_or_equal)")
	cmd.Flags().StringVar(&ruleVersion, "version", "", "Version condition value (MAJOR.MINOR.PATCH)")
	cmd.Flags().StringVar(&ruleActiveAfter, "active-after", "", "Active-after instant (RFC 3339)")
	cmd.Flags().StringVar(&ruleActiveFrom, "active-from", "", "Active-window start (RFC 3339)")
	cmd.Flags().StringVar(&ruleActiveTo, "active-to", "", "Active-window end (RFC 3339)")
	_ = cmd.MarkFlagRequired("value")
}

func init() {
	addRuleFlags(ruleAddCmd)
	addRuleFlags(ruleUpdateCmd)

	ruleCmd.AddCommand(ruleAddCmd, ruleListCmd, ruleUpdateCmd, ruleDeleteCmd)
	rootCmd.AddCommand(ruleCmd)
}
