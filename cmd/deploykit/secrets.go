package main

import (
	"github.com/spf13/cobra"
)

var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "Manage GitHub Actions secrets for the deployment",
	Long: `Manage the repository secrets the deploy workflow reads.

Secrets are derived from the application's .env file by a fixed rule
table. Run 'deploykit secrets rules' to see which keys map to which
secrets.`,
}

func init() {
	secretsCmd.AddCommand(secretsSyncCmd)
	secretsCmd.AddCommand(secretsRulesCmd)
}
