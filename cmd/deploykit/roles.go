package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zavastore/deploykit/internal/azcli"
	"github.com/zavastore/deploykit/internal/deployconf"
	"github.com/zavastore/deploykit/internal/log"
)

var (
	rolesAccount       string
	rolesResourceGroup string
	rolesPrincipal     string
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Manage Azure data-plane role assignments",
}

var rolesAssignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Grant the Cosmos DB Data Contributor role",
	Long: `Grant the Cosmos DB Built-in Data Contributor role on the application's
Cosmos account. The grant is idempotent: re-running against an existing
assignment succeeds without creating a duplicate.

The principal defaults to the signed-in az user, which is what local
development needs. Pass --principal to grant the deployment identity
instead.

Examples:
  deploykit roles assign
  deploykit roles assign --account zava-cosmos --resource-group rg-zava-dev
  deploykit roles assign --principal 11112222-3333-4444-5555-666677778888`,
	Args: cobra.NoArgs,
	Run:  runRolesAssign,
}

func init() {
	rolesAssignCmd.Flags().StringVar(&rolesAccount, "account", "", "Cosmos DB account name")
	rolesAssignCmd.Flags().StringVar(&rolesResourceGroup, "resource-group", "", "Resource group holding the Cosmos account")
	rolesAssignCmd.Flags().StringVar(&rolesPrincipal, "principal", "", "Principal object id to grant (default: signed-in user)")

	rolesCmd.AddCommand(rolesAssignCmd)
}

func runRolesAssign(cmd *cobra.Command, args []string) {
	cfg, err := deployconf.Load()
	if err != nil {
		printError(err, nil)
		exitWithCode(ExitGeneral)
	}

	account := rolesAccount
	if account == "" {
		account = cfg.Azure.CosmosAccount
	}
	resourceGroup := rolesResourceGroup
	if resourceGroup == "" {
		resourceGroup = cfg.Azure.ResourceGroup
	}
	if account == "" || resourceGroup == "" {
		fmt.Fprintln(os.Stderr, "Error: the Cosmos account and resource group must be known.")
		fmt.Fprintln(os.Stderr, "Pass --account and --resource-group, or set azure.cosmos_account and azure.resource_group in deploy.toml.")
		exitWithCode(ExitUsage)
	}

	client := azcli.NewClient(azcli.WithLogger(log.Default()))
	if err := client.CheckAvailable(globalCtx); err != nil {
		printError(err, nil)
		exitWithCode(ExitUnavailable)
	}

	principal := rolesPrincipal
	if principal == "" {
		principal, err = client.SignedInUserID(globalCtx)
		if err != nil {
			printError(err, nil)
			exitWithCode(ExitGeneral)
		}
	}

	created, err := client.AssignCosmosRole(globalCtx, azcli.RoleAssignment{
		Account:       account,
		ResourceGroup: resourceGroup,
		PrincipalID:   principal,
	})
	if err != nil {
		printError(err, nil)
		exitWithCode(ExitGeneral)
	}

	if created {
		printInfof("Granted Cosmos DB Data Contributor on %s to %s\n", account, principal)
	} else {
		printInfof("Cosmos DB Data Contributor on %s already granted to %s\n", account, principal)
	}
}
