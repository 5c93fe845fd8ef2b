package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"github.com/zavastore/deploykit/internal/azcli"
	"github.com/zavastore/deploykit/internal/deployconf"
	"github.com/zavastore/deploykit/internal/envfile"
	"github.com/zavastore/deploykit/internal/ghsecrets"
	"github.com/zavastore/deploykit/internal/mapping"
)

// minGhVersion is the oldest gh that supports 'gh secret list --json'.
const minGhVersion = "2.45.0"

// minAzVersion is the oldest az with 'az ad app federated-credential'.
const minAzVersion = "2.37.0"

// CheckStatus is one doctor check result, shaped for JSON output.
type CheckStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "ok" or "fail"
	Detail string `json:"detail,omitempty"`
}

// DoctorOutput is the JSON envelope for a doctor run.
type DoctorOutput struct {
	Checks  []CheckStatus `json:"checks"`
	Healthy bool          `json:"healthy"`
}

var doctorEnvFile string

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that this workstation is ready to deploy",
	Long: `Verify the tools and files a deploy needs: gh and az installed, both
logged in, the environment file present with every required value, and
the project config readable.

Exits with a non-zero status if any check fails, making it suitable
for use as a gate in scripts and CI:

  deploykit doctor || exit 1`,
	Args: cobra.NoArgs,
	Run:  runDoctor,
}

func init() {
	doctorCmd.Flags().StringVar(&doctorEnvFile, "env-file", "", "Environment file to check (default "+defaultEnvFile+")")
	doctorCmd.Flags().Bool("json", false, "Output as JSON")
}

func runDoctor(cmd *cobra.Command, args []string) {
	cfg, cfgErr := deployconf.Load()
	if cfgErr != nil {
		cfg = deployconf.DefaultConfig()
	}

	var checks []CheckStatus
	ok := func(name, detail string) {
		checks = append(checks, CheckStatus{Name: name, Status: "ok", Detail: detail})
	}
	fail := func(name, detail string) {
		checks = append(checks, CheckStatus{Name: name, Status: "fail", Detail: detail})
	}

	gh := ghsecrets.NewClient()
	if _, err := exec.LookPath("gh"); err != nil {
		fail("GitHub CLI installed", "gh not found on PATH; install from https://cli.github.com")
		fail("GitHub CLI authenticated", "skipped: gh is not installed")
	} else {
		ver, err := gh.Version(globalCtx)
		switch {
		case err != nil:
			fail("GitHub CLI installed", err.Error())
		case !versionAtLeast(ver, minGhVersion):
			fail("GitHub CLI installed", fmt.Sprintf("version %s found, need %s or newer", ver, minGhVersion))
		default:
			ok("GitHub CLI installed", "version "+ver)
		}

		if err := gh.CheckAvailable(globalCtx); err != nil {
			fail("GitHub CLI authenticated", err.Error())
		} else {
			ok("GitHub CLI authenticated", "")
		}
	}

	az := azcli.NewClient()
	if _, err := exec.LookPath("az"); err != nil {
		fail("Azure CLI installed", "az not found on PATH; install from https://aka.ms/azure-cli")
		fail("Azure CLI logged in", "skipped: az is not installed")
	} else {
		ver, err := az.Version(globalCtx)
		switch {
		case err != nil:
			fail("Azure CLI installed", err.Error())
		case !versionAtLeast(ver, minAzVersion):
			fail("Azure CLI installed", fmt.Sprintf("version %s found, need %s or newer", ver, minAzVersion))
		default:
			ok("Azure CLI installed", "version "+ver)
		}

		if acct, err := az.Account(globalCtx); err != nil {
			fail("Azure CLI logged in", "not logged in; run 'az login'")
		} else {
			ok("Azure CLI logged in", fmt.Sprintf("%s (%s)", acct.Name, acct.User.Name))
		}
	}

	envPath := chooseEnvFile(doctorEnvFile, cfg)
	store, err := envfile.Load(envPath)
	if err != nil {
		detail := err.Error()
		var notFound *envfile.NotFoundError
		if errors.As(err, &notFound) {
			detail = fmt.Sprintf("%s not found; copy .env.sample and fill it in, or pass --env-file", envPath)
		}
		fail("Environment file", detail)
		fail("Required values", "skipped: environment file is missing")
	} else {
		ok("Environment file", fmt.Sprintf("%s, %d values", envPath, store.Len()))

		res := mapping.Resolve(store, nil, false)
		if len(res.MissingRequired) == 0 {
			ok("Required values", fmt.Sprintf("all %d present", mapping.RequiredCount()))
		} else {
			keys := make([]string, 0, len(res.MissingRequired))
			for _, r := range res.MissingRequired {
				keys = append(keys, r.SourceKey)
			}
			fail("Required values", fmt.Sprintf("%d missing: %s", len(keys), strings.Join(keys, ", ")))
		}
	}

	if cfgErr != nil {
		fail("Project config", cfgErr.Error())
	} else if _, err := os.Stat(deployconf.Path()); os.IsNotExist(err) {
		ok("Project config", "not present, using defaults")
	} else {
		ok("Project config", deployconf.Path())
	}

	healthy := true
	for _, c := range checks {
		if c.Status != "ok" {
			healthy = false
			break
		}
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		printJSON(DoctorOutput{Checks: checks, Healthy: healthy})
		if !healthy {
			exitWithCode(ExitDoctor)
		}
		return
	}

	fmt.Println("Checking deployment setup...")
	for _, c := range checks {
		fmt.Fprintf(os.Stdout, "  %s", c.Name)
		if c.Status == "ok" {
			if c.Detail != "" {
				fmt.Printf(" ... ok (%s)\n", c.Detail)
			} else {
				fmt.Println(" ... ok")
			}
		} else {
			fmt.Println(" ... FAIL")
			if c.Detail != "" {
				fmt.Fprintf(os.Stderr, "    %s\n", c.Detail)
			}
		}
	}
	fmt.Println()

	if !healthy {
		fmt.Fprintln(os.Stderr, "Deployment setup check failed.")
		exitWithCode(ExitDoctor)
	}
	fmt.Println("Everything looks good!")
}

// versionAtLeast reports whether found satisfies the minimum version.
// Unparseable versions count as too old.
func versionAtLeast(found, minimum string) bool {
	f, err := semver.NewVersion(found)
	if err != nil {
		return false
	}
	m, err := semver.NewVersion(minimum)
	if err != nil {
		return false
	}
	return !f.LessThan(m)
}
