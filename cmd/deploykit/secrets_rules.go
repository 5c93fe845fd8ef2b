package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zavastore/deploykit/internal/mapping"
)

// RuleStatus is the JSON shape for one mapping table row.
type RuleStatus struct {
	Source   string `json:"source"`
	Secret   string `json:"secret"`
	Required bool   `json:"required"`
	Desc     string `json:"description"`
}

var secretsRulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the environment-to-secret mapping table",
	Long: `Show which .env keys sync reads and which repository secrets they
become. The table is fixed in the binary; edit the .env file, not the
table, to change what gets published.`,
	Args: cobra.NoArgs,
	Run:  runSecretsRules,
}

func init() {
	secretsRulesCmd.Flags().Bool("json", false, "Output as JSON")
}

func runSecretsRules(cmd *cobra.Command, args []string) {
	rules := mapping.Rules()

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		out := make([]RuleStatus, 0, len(rules))
		for _, r := range rules {
			out = append(out, RuleStatus{
				Source:   r.SourceKey,
				Secret:   r.Destination,
				Required: r.Required,
				Desc:     r.Desc,
			})
		}
		printJSON(out)
		return
	}

	fmt.Printf("%s%-36s %-36s %-9s %s%s\n", colorBold, "SECRET", "SOURCE KEY", "REQUIRED", "DESCRIPTION", colorReset)
	for _, r := range rules {
		required := "no"
		if r.Required {
			required = "yes"
		}
		fmt.Printf("%-36s %-36s %-9s %s\n", r.Destination, r.SourceKey, required, r.Desc)
	}
	fmt.Println()
	fmt.Printf("%d rules, %d required. %s is assembled from the four AZURE_* service principal values.\n",
		len(rules), mapping.RequiredCount(), mapping.BundleName)
}
