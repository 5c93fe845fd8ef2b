package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zavastore/deploykit/internal/buildinfo"
	"github.com/zavastore/deploykit/internal/log"
)

var (
	quietFlag   bool
	verboseFlag bool
	debugFlag   bool
)

// globalCtx is the root context for subprocess calls. Interrupting the
// process kills children with it; there is no cleanup or rollback.
var globalCtx = context.Background()

var rootCmd = &cobra.Command{
	Use:   "deploykit",
	Short: "Deployment support tooling for the Zava chat application",
	Long: `deploykit keeps the chat application's GitHub Actions deployment wired
to its Azure resources.

It reads the same .env file the application runs from and publishes the
values the deploy workflow needs as repository secrets, grants Cosmos DB
data-plane roles, provisions the service principal workflows log in
with, and checks that a workstation is ready to deploy.

Typical flow for a fresh checkout:

  deploykit doctor
  deploykit sp setup --mode oidc
  deploykit secrets sync`,
	Version:       buildinfo.Version(),
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging()
	},
}

// configureLogging installs the default logger once flags are parsed.
func configureLogging() {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: determineLogLevel(),
	})
	log.SetDefault(log.New(handler))
}

// determineLogLevel maps flags and environment variables to a log level.
// Flags win over environment variables; debug wins over verbose, which
// wins over quiet.
func determineLogLevel() slog.Level {
	if debugFlag {
		return slog.LevelDebug
	}
	if verboseFlag {
		return slog.LevelInfo
	}
	if quietFlag {
		return slog.LevelError
	}
	if isTruthy(os.Getenv("DEPLOYKIT_DEBUG")) {
		return slog.LevelDebug
	}
	if isTruthy(os.Getenv("DEPLOYKIT_VERBOSE")) {
		return slog.LevelInfo
	}
	if isTruthy(os.Getenv("DEPLOYKIT_QUIET")) {
		return slog.LevelError
	}
	return slog.LevelWarn
}

// isTruthy interprets common affirmative environment variable values.
func isTruthy(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Only print errors")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Print informational logging")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Print debug logging")

	rootCmd.AddCommand(secretsCmd)
	rootCmd.AddCommand(rolesCmd)
	rootCmd.AddCommand(spCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exitWithCode(ExitUsage)
	}
}
