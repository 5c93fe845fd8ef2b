package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zavastore/deploykit/internal/deployconf"
	"github.com/zavastore/deploykit/internal/envfile"
	"github.com/zavastore/deploykit/internal/errmsg"
	"github.com/zavastore/deploykit/internal/ghsecrets"
	"github.com/zavastore/deploykit/internal/log"
	"github.com/zavastore/deploykit/internal/mapping"
)

// defaultEnvFile is where the application keeps its environment file.
const defaultEnvFile = "src/.env"

var (
	syncEnvFile      string
	syncRepo         string
	syncDryRun       bool
	syncSkipExisting bool
	syncYes          bool
)

var secretsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Publish secrets from the environment file to the repository",
	Long: `Read the application's .env file and write the values the deploy
workflow needs as GitHub Actions repository secrets.

Values travel to gh over stdin, never on the command line, so they do
not appear in the process table or shell history. Secrets that already
exist in the repository are left untouched unless --skip-existing=false.

Examples:
  deploykit secrets sync
  deploykit secrets sync --dry-run
  deploykit secrets sync --repo zavastore/zava-chat --env-file .env.production
  deploykit secrets sync --skip-existing=false --yes`,
	Args: cobra.NoArgs,
	Run:  runSecretsSync,
}

func init() {
	secretsSyncCmd.Flags().StringVar(&syncEnvFile, "env-file", "", "Environment file to read (default "+defaultEnvFile+")")
	secretsSyncCmd.Flags().StringVar(&syncRepo, "repo", "", "Target repository as owner/name (default: detect from git remote)")
	secretsSyncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Show what would be written without calling gh")
	secretsSyncCmd.Flags().BoolVar(&syncSkipExisting, "skip-existing", true, "Leave secrets that already exist untouched")
	secretsSyncCmd.Flags().BoolVarP(&syncYes, "yes", "y", false, "Continue without prompting when required values are missing")
}

func runSecretsSync(cmd *cobra.Command, args []string) {
	cfg, err := deployconf.Load()
	if err != nil {
		printError(err, nil)
		exitWithCode(ExitGeneral)
	}

	envPath := chooseEnvFile(syncEnvFile, cfg)
	errCtx := &errmsg.ErrorContext{Repo: syncRepo, EnvFile: envPath}

	store, err := envfile.Load(envPath)
	if err != nil {
		printError(err, errCtx)
		var notFound *envfile.NotFoundError
		if errors.As(err, &notFound) {
			exitWithCode(ExitEnvMissing)
		}
		exitWithCode(ExitGeneral)
	}

	skipExisting := syncSkipExisting
	if !cmd.Flags().Changed("skip-existing") {
		skipExisting = cfg.SkipExisting()
	}

	if syncDryRun {
		res := mapping.Resolve(store, nil, false)
		renderDryRun(res, chooseRepo(syncRepo, cfg))
		return
	}

	client := ghsecrets.NewClient(ghsecrets.WithLogger(log.Default()))
	if err := client.CheckAvailable(globalCtx); err != nil {
		printError(err, errCtx)
		exitWithCode(ExitUnavailable)
	}

	repo := chooseRepo(syncRepo, cfg)
	if repo == "" {
		repo, err = client.CurrentRepository(globalCtx)
		if err != nil {
			printError(err, errCtx)
			exitWithCode(ExitGeneral)
		}
	}
	errCtx.Repo = repo

	var existing []string
	if skipExisting {
		existing, err = client.ListSecretNames(globalCtx, repo)
		if err != nil {
			printError(err, errCtx)
			exitWithCode(ExitGeneral)
		}
	}

	res := mapping.Resolve(store, existing, skipExisting)

	if len(res.MissingRequired) > 0 {
		reportMissingRequired(res.MissingRequired, envPath)
		if !confirmContinue() {
			printInfo("Aborted. No secrets were written.")
			exitWithCode(ExitDeclined)
		}
	}

	if len(res.Entries) == 0 {
		printInfo("Nothing to sync.")
		printSyncSummary(res, ghsecrets.Outcome{})
		return
	}

	printInfof("Syncing %d secrets to %s\n", len(res.Entries), repo)

	pub := &ghsecrets.Publisher{
		Writer: client,
		Repo:   repo,
		Logger: log.Default(),
		OnResult: func(s ghsecrets.Secret, err error) {
			if err != nil {
				fmt.Fprintf(os.Stderr, "  %-36s %sfailed%s: %v\n", s.Name, colorRed, colorReset, err)
				return
			}
			printInfof("  %-36s %sset%s\n", s.Name, colorGreen, colorReset)
		},
	}
	outcome := pub.Publish(globalCtx, toSecrets(res.Entries))

	printInfo()
	printSyncSummary(res, outcome)

	if outcome.Failed > 0 {
		exitWithCode(ExitPublishFailed)
	}
}

// chooseEnvFile picks the environment file path: flag, then config, then
// the built-in default.
func chooseEnvFile(flag string, cfg *deployconf.Config) string {
	if flag != "" {
		return flag
	}
	if cfg.EnvFile != "" {
		return cfg.EnvFile
	}
	return defaultEnvFile
}

// chooseRepo picks the target repository: flag, then config. Empty means
// detect from the git remote at sync time.
func chooseRepo(flag string, cfg *deployconf.Config) string {
	if flag != "" {
		return flag
	}
	return cfg.Repository
}

func toSecrets(entries []mapping.Entry) []ghsecrets.Secret {
	secrets := make([]ghsecrets.Secret, 0, len(entries))
	for _, e := range entries {
		secrets = append(secrets, ghsecrets.Secret{Name: e.Destination, Value: e.Value})
	}
	return secrets
}

// confirmContinue decides whether a run with missing required values
// proceeds. --yes skips the prompt; a non-interactive run continues with
// a notice so CI invocations never hang waiting for input.
func confirmContinue() bool {
	if syncYes {
		return true
	}
	if !stdinIsTerminal() {
		printInfo("Continuing without the missing values (non-interactive run).")
		return true
	}
	ok, err := confirm("Continue anyway?", false)
	if err != nil {
		return false
	}
	return ok
}

func renderDryRun(res mapping.Resolution, repo string) {
	target := repo
	if target == "" {
		target = "(repository detected at sync time)"
	}

	printInfo("Dry run: no secrets will be written.")
	printInfo()
	fmt.Printf("Would set %d secrets in %s:\n", len(res.Entries), target)
	for _, e := range res.Entries {
		fmt.Printf("  %-36s %-14s from %s\n", e.Destination, truncateValue(e.Value), e.SourceKey)
	}
	if len(res.MissingRequired) > 0 {
		fmt.Println()
		fmt.Printf("Missing required values (%d):\n", len(res.MissingRequired))
		for _, r := range res.MissingRequired {
			fmt.Printf("  %-36s %s\n", r.SourceKey, r.Desc)
		}
	}
	if len(res.MissingOptional) > 0 {
		fmt.Println()
		fmt.Printf("Optional values not set (%d):\n", len(res.MissingOptional))
		for _, r := range res.MissingOptional {
			fmt.Printf("  %-36s %s\n", r.SourceKey, r.Desc)
		}
	}
}

func reportMissingRequired(missing []mapping.Rule, envPath string) {
	fmt.Fprintf(os.Stderr, "%sMissing required values (%d)%s in %s:\n", colorYellow, len(missing), colorReset, envPath)
	for _, r := range missing {
		fmt.Fprintf(os.Stderr, "  %-36s %s\n", r.SourceKey, r.Desc)
	}
	fmt.Fprintln(os.Stderr, "The deploy workflow cannot run until these are set.")
}

// printSyncSummary prints the one-line outcome breakdown. Counts that are
// zero are left out to keep the line short.
func printSyncSummary(res mapping.Resolution, outcome ghsecrets.Outcome) {
	if quietFlag {
		return
	}

	var parts []string
	if outcome.Created > 0 {
		parts = append(parts, fmt.Sprintf("%s%d set%s", colorGreen, outcome.Created, colorReset))
	}
	if n := len(res.SkippedExisting); n > 0 {
		parts = append(parts, fmt.Sprintf("%d existing kept", n))
	}
	if n := len(res.MissingOptional); n > 0 {
		parts = append(parts, fmt.Sprintf("%d optional unset", n))
	}
	if n := len(res.MissingRequired); n > 0 {
		parts = append(parts, fmt.Sprintf("%s%d required missing%s", colorYellow, n, colorReset))
	}
	if outcome.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%s%d failed%s", colorRed, outcome.Failed, colorReset))
	}
	if len(parts) == 0 {
		parts = append(parts, "nothing to do")
	}

	fmt.Printf("Summary: %s\n", strings.Join(parts, ", "))
}
