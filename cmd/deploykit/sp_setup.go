package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zavastore/deploykit/internal/azcli"
	"github.com/zavastore/deploykit/internal/deployconf"
	"github.com/zavastore/deploykit/internal/envfile"
	"github.com/zavastore/deploykit/internal/log"
)

// defaultSPName is the display name used when the operator does not pick one.
const defaultSPName = "zava-chat-deploy"

var (
	spMode         string
	spName         string
	spSubscription string
	spRepo         string
	spBranch       string
	spEnvFile      string
	spYes          bool
)

var spCmd = &cobra.Command{
	Use:   "sp",
	Short: "Manage the deployment service principal",
}

var spSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Provision the identity the deploy workflow logs in with",
	Long: `Create the Azure identity GitHub Actions uses to deploy, and record it
in the environment file.

Two modes are supported (see docs/authentication.md):

  secret   Create a service principal with a client secret. The secret
           lands in the .env file and syncs to the repository as part of
           AZURE_CREDENTIALS.
  oidc     Register an app with a federated credential for the
           repository's main branch. No client secret exists; the
           workflow logs in by exchanging its OIDC token.

Examples:
  deploykit sp setup
  deploykit sp setup --mode oidc --repo zavastore/zava-chat
  deploykit sp setup --name zava-chat-ci --subscription 2222... --yes`,
	Args: cobra.NoArgs,
	Run:  runSpSetup,
}

func init() {
	spSetupCmd.Flags().StringVar(&spMode, "mode", "secret", "Credential mode: secret or oidc")
	spSetupCmd.Flags().StringVar(&spName, "name", "", "Service principal display name (default "+defaultSPName+")")
	spSetupCmd.Flags().StringVar(&spSubscription, "subscription", "", "Subscription id (default: active az subscription)")
	spSetupCmd.Flags().StringVar(&spRepo, "repo", "", "Repository for the oidc federation subject, as owner/name")
	spSetupCmd.Flags().StringVar(&spBranch, "branch", "main", "Branch for the oidc federation subject")
	spSetupCmd.Flags().StringVar(&spEnvFile, "env-file", "", "Environment file to update (default "+defaultEnvFile+")")
	spSetupCmd.Flags().BoolVarP(&spYes, "yes", "y", false, "Skip confirmation prompts")

	spCmd.AddCommand(spSetupCmd)
}

func runSpSetup(cmd *cobra.Command, args []string) {
	if spMode != "secret" && spMode != "oidc" {
		fmt.Fprintf(os.Stderr, "Error: unknown --mode %q (use secret or oidc)\n", spMode)
		exitWithCode(ExitUsage)
	}

	cfg, err := deployconf.Load()
	if err != nil {
		printError(err, nil)
		exitWithCode(ExitGeneral)
	}
	envPath := chooseEnvFile(spEnvFile, cfg)

	client := azcli.NewClient(azcli.WithLogger(log.Default()))
	if err := client.CheckAvailable(globalCtx); err != nil {
		printError(err, nil)
		exitWithCode(ExitUnavailable)
	}

	account, err := client.Account(globalCtx)
	if err != nil {
		printError(err, nil)
		exitWithCode(ExitGeneral)
	}

	subscription := spSubscription
	if subscription == "" {
		subscription = cfg.Azure.Subscription
	}
	if subscription == "" {
		subscription = account.ID
	}

	name := spName
	if name == "" {
		if interactive() {
			name, err = promptLine("Service principal name", defaultSPName)
			if err != nil {
				printError(err, nil)
				exitWithCode(ExitGeneral)
			}
		} else {
			name = defaultSPName
		}
	}

	repo := ""
	switch spMode {
	case "secret":
		runSecretMode(client, account, name, subscription, envPath)
	case "oidc":
		repo = runOIDCMode(client, account, name, subscription, envPath, cfg)
	}

	recordDefaults(cfg, subscription, repo)
}

// interactive reports whether the wizard may prompt.
func interactive() bool {
	return stdinIsTerminal() && !spYes
}

func runSecretMode(client *azcli.Client, account *azcli.Account, name, subscription, envPath string) {
	if interactive() {
		create, err := confirm("Create a new service principal?", true)
		if err != nil {
			printError(err, nil)
			exitWithCode(ExitGeneral)
		}
		if !create {
			enterExistingCredentials(account, subscription, envPath)
			return
		}

		printInfof("This creates service principal %q with Contributor rights on subscription %s.\n", name, subscription)
		proceed, err := confirm("Proceed?", true)
		if err != nil {
			printError(err, nil)
			exitWithCode(ExitGeneral)
		}
		if !proceed {
			printInfo("Aborted. Nothing was created.")
			exitWithCode(ExitDeclined)
		}
	}

	sp, err := client.CreateServicePrincipal(globalCtx, name, subscription)
	if err != nil {
		printError(err, nil)
		exitWithCode(ExitGeneral)
	}

	updates := map[string]string{
		"AZURE_CLIENT_ID":       sp.AppID,
		"AZURE_CLIENT_SECRET":   sp.Password,
		"AZURE_TENANT_ID":       sp.Tenant,
		"AZURE_SUBSCRIPTION_ID": subscription,
	}
	if err := envfile.Update(envPath, updates); err != nil {
		fmt.Fprintf(os.Stderr, "Error: the service principal was created but %s could not be updated: %v\n", envPath, err)
		fmt.Fprintf(os.Stderr, "Record client id %s now; the secret cannot be shown again (reset it with 'az ad sp credential reset').\n", sp.AppID)
		exitWithCode(ExitGeneral)
	}

	printInfof("Created service principal %s (client id %s).\n", name, sp.AppID)
	printInfof("Wrote the credentials to %s; the client secret is not shown.\n", envPath)
	printInfo("Run 'deploykit secrets sync' to publish them to the repository.")
}

// enterExistingCredentials records a principal the operator already has
// instead of creating a new one.
func enterExistingCredentials(account *azcli.Account, subscription, envPath string) {
	clientID, err := promptLine("Client id", "")
	if err != nil {
		printError(err, nil)
		exitWithCode(ExitGeneral)
	}
	if clientID == "" {
		fmt.Fprintln(os.Stderr, "Error: a client id is required.")
		exitWithCode(ExitGeneral)
	}

	tenant, err := promptLine("Tenant id", account.TenantID)
	if err != nil {
		printError(err, nil)
		exitWithCode(ExitGeneral)
	}

	secret, err := promptSecret("Client secret")
	if err != nil {
		printError(err, nil)
		exitWithCode(ExitGeneral)
	}
	if secret == "" {
		fmt.Fprintln(os.Stderr, "Error: a client secret is required.")
		exitWithCode(ExitGeneral)
	}

	updates := map[string]string{
		"AZURE_CLIENT_ID":       clientID,
		"AZURE_CLIENT_SECRET":   secret,
		"AZURE_TENANT_ID":       tenant,
		"AZURE_SUBSCRIPTION_ID": subscription,
	}
	if err := envfile.Update(envPath, updates); err != nil {
		printError(err, nil)
		exitWithCode(ExitGeneral)
	}

	printInfof("Wrote the credentials to %s.\n", envPath)
	printInfo("Run 'deploykit secrets sync' to publish them to the repository.")
}

func runOIDCMode(client *azcli.Client, account *azcli.Account, name, subscription, envPath string, cfg *deployconf.Config) string {
	repo := spRepo
	if repo == "" {
		repo = cfg.Repository
	}
	if repo == "" && interactive() {
		var err error
		repo, err = promptLine("GitHub repository (owner/name)", "")
		if err != nil {
			printError(err, nil)
			exitWithCode(ExitGeneral)
		}
	}
	if repo == "" {
		fmt.Fprintln(os.Stderr, "Error: the oidc federation subject needs a repository.")
		fmt.Fprintln(os.Stderr, "Pass --repo owner/name or set repository in deploy.toml.")
		exitWithCode(ExitUsage)
	}

	app, err := client.CreateApp(globalCtx, name)
	if err != nil {
		printError(err, nil)
		exitWithCode(ExitGeneral)
	}
	if err := client.EnsureServicePrincipal(globalCtx, app.AppID); err != nil {
		printError(err, nil)
		exitWithCode(ExitGeneral)
	}
	if err := client.AssignSubscriptionRole(globalCtx, app.AppID, "Contributor", subscription); err != nil {
		printError(err, nil)
		exitWithCode(ExitGeneral)
	}
	cred := azcli.GitHubOIDCCredential(repo, spBranch)
	if err := client.CreateFederatedCredential(globalCtx, app.AppID, cred); err != nil {
		printError(err, nil)
		exitWithCode(ExitGeneral)
	}

	updates := map[string]string{
		"AZURE_CLIENT_ID":       app.AppID,
		"AZURE_TENANT_ID":       account.TenantID,
		"AZURE_SUBSCRIPTION_ID": subscription,
	}
	if err := envfile.Update(envPath, updates); err != nil {
		printError(err, nil)
		exitWithCode(ExitGeneral)
	}

	printInfof("Registered %s with a federated credential for %s (%s).\n", name, repo, spBranch)
	printInfo("No client secret exists in this mode; the workflow logs in by exchanging its OIDC token.")
	return repo
}

// recordDefaults saves non-secret values the wizard confirmed so later
// commands do not ask again. A save failure only warns: the setup itself
// already succeeded.
func recordDefaults(cfg *deployconf.Config, subscription, repo string) {
	changed := false
	if cfg.Azure.Subscription == "" && subscription != "" {
		cfg.Azure.Subscription = subscription
		changed = true
	}
	if cfg.Repository == "" && repo != "" {
		cfg.Repository = repo
		changed = true
	}
	if !changed {
		return
	}

	if err := cfg.Save(); err != nil {
		log.Default().Warn("could not record defaults", "path", deployconf.Path(), "error", err)
		return
	}
	printInfof("Recorded defaults in %s.\n", deployconf.Path())
}
