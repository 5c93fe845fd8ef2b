package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zavastore/deploykit/internal/buildinfo"
	"github.com/zavastore/deploykit/internal/release"
)

var versionCheckFlag bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the deploykit version",
	Long: `Print the deploykit version. With --check, also ask GitHub whether a
newer release exists. The check is advisory and never changes the
installed binary.`,
	Args: cobra.NoArgs,
	Run:  runVersion,
}

func init() {
	versionCmd.Flags().BoolVar(&versionCheckFlag, "check", false, "Check GitHub for a newer release")
}

func runVersion(cmd *cobra.Command, args []string) {
	current := buildinfo.Version()
	fmt.Printf("deploykit %s\n", current)

	if !versionCheckFlag {
		return
	}
	if !buildinfo.IsRelease() {
		printInfo("Update check skipped for development builds.")
		return
	}

	ctx, cancel := context.WithTimeout(globalCtx, 10*time.Second)
	defer cancel()

	info, err := release.New().Latest(ctx)
	if err != nil {
		printError(err, nil)
		exitWithCode(ExitGeneral)
	}

	if release.IsNewer(current, info.Version) {
		fmt.Printf("Update available: %s -> %s\n  %s\n", current, info.Version, info.URL)
	} else {
		printInfo("deploykit is up to date.")
	}
}
