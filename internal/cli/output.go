package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/gameops/remoteconfig/internal/client"
)

// OutputFormat specifies the output format for CLI commands
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// PrintConfigs outputs configurations in the specified format
func PrintConfigs(configs []client.Config, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(map[string][]client.Config{"configs": configs})
	case FormatYAML:
		return printYAML(configs)
	case FormatTable:
		return printConfigTable(configs)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintRules outputs rules in the specified format
func PrintRules(ruleSet []client.Rule, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(map[string][]client.Rule{"rules": ruleSet})
	case FormatYAML:
		return printYAML(ruleSet)
	case FormatTable:
		return printRuleTable(ruleSet)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintResolution outputs a resolve result in the specified format
func PrintResolution(res *client.Resolution, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(res)
	case FormatYAML:
		return printYAML(res)
	case FormatTable:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Key", "Env", "Type", "Value", "Reason", "Matched Rule")
		table.Append(res.Key, res.Environment, res.DataType, string(res.Value), res.Reason, res.MatchedRule)
		return table.Render()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printJSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func printYAML(data interface{}) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(data)
}

func printConfigTable(configs []client.Config) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Game", "Key", "Env", "Type", "Value", "Updated At")

	for _, cfg := range configs {
		value := string(cfg.Value)
		if len(value) > 40 {
			value = value[:37] + "..."
		}
		table.Append(
			cfg.GameID,
			cfg.Key,
			cfg.Environment,
			cfg.DataType,
			value,
			cfg.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}

	return table.Render()
}

func printRuleTable(ruleSet []client.Rule) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Priority", "Enabled", "Platform", "Country", "Override")

	for _, r := range ruleSet {
		enabled := "false"
		if r.Enabled {
			enabled = "true"
		}
		table.Append(
			r.ID,
			fmt.Sprintf("%d", r.Priority),
			enabled,
			deref(r.Platform),
			deref(r.Country),
			string(r.OverrideValue),
		)
	}

	return table.Render()
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
