package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"apiforge/internal/differ"
	"apiforge/internal/report"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the difference rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return fmt.Errorf("failed to get format flag: %w", err)
		}
		infos := differ.DefaultRegistry(differ.RuleOptions{}).Describe()

		switch format {
		case "json":
			type ruleJSON struct {
				ID       string   `json:"id"`
				Optional bool     `json:"optional"`
				Kinds    []string `json:"kinds"`
			}
			payload := make([]ruleJSON, 0, len(infos))
			for _, info := range infos {
				payload = append(payload, ruleJSON{ID: info.ID, Optional: info.Optional, Kinds: kindNames(info)})
			}
			return report.JSON(cmd.OutOrStdout(), payload)
		case "pretty":
			out := cmd.OutOrStdout()
			for _, info := range infos {
				suffix := ""
				if info.Optional {
					suffix = " (optional)"
				}
				fmt.Fprintf(out, "%-28s %s%s\n", info.ID, strings.Join(kindNames(info), ","), suffix)
			}
			return nil
		}
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	},
}

func init() {
	rulesCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func kindNames(info differ.RuleInfo) []string {
	out := make([]string, 0, len(info.Kinds))
	for _, k := range info.Kinds {
		out = append(out, k.String())
	}
	return out
}
