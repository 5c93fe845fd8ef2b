// Package ghsecrets talks to GitHub through the gh CLI.
//
// Every operation shells out to gh and interprets its exit status, the
// same contract the deployment scripts have always relied on. Secret
// values are piped through stdin so they never appear in process listings.
// The Client never retries: a failed write is reported and the caller
// decides what it means for the run.
package ghsecrets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"sort"
	"strings"

	"github.com/zavastore/deploykit/internal/log"
)

// lookPath locates the gh binary. It can be overridden for testing.
var lookPath = exec.LookPath

// runnerFunc executes gh with args, feeding stdin to the process, and
// returns captured stdout and stderr. A non-zero exit surfaces as err.
type runnerFunc func(ctx context.Context, stdin string, args ...string) (stdout, stderr string, err error)

// Client wraps the gh CLI for repository secret operations.
type Client struct {
	logger log.Logger
	run    runnerFunc
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for diagnostic output.
func WithLogger(l log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a Client that invokes the real gh binary.
func NewClient(opts ...Option) *Client {
	c := &Client{
		logger: log.Default(),
		run:    execRunner,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func execRunner(ctx context.Context, stdin string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, "gh", args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// CheckAvailable verifies gh is installed and authenticated. Returns
// *UnavailableError on failure. Callers gate every run on this before
// touching any secret.
func (c *Client) CheckAvailable(ctx context.Context) error {
	if _, err := lookPath("gh"); err != nil {
		return &UnavailableError{Type: ErrTypeNotInstalled, Err: err}
	}

	_, stderr, err := c.run(ctx, "", "auth", "status")
	if err != nil {
		return &UnavailableError{
			Type:   ErrTypeNotAuthenticated,
			Detail: firstLine(stderr),
			Err:    err,
		}
	}
	c.logger.Debug("gh availability check passed")
	return nil
}

var versionPattern = regexp.MustCompile(`gh version (\d+\.\d+\.\d+)`)

// Version runs `gh --version` and extracts the semantic version.
func (c *Client) Version(ctx context.Context) (string, error) {
	stdout, _, err := c.run(ctx, "", "--version")
	if err != nil {
		return "", fmt.Errorf("failed to run 'gh --version': %w", err)
	}
	matches := versionPattern.FindStringSubmatch(stdout)
	if len(matches) < 2 {
		return "", fmt.Errorf("could not parse gh version from %q", firstLine(stdout))
	}
	return matches[1], nil
}

// CurrentRepository resolves the owner/name of the repository the working
// directory belongs to, as gh sees it.
func (c *Client) CurrentRepository(ctx context.Context) (string, error) {
	stdout, stderr, err := c.run(ctx, "", "repo", "view", "--json", "nameWithOwner")
	if err != nil {
		return "", fmt.Errorf("could not detect repository (pass --repo): %s", commandFailure(stderr, err))
	}

	var view struct {
		NameWithOwner string `json:"nameWithOwner"`
	}
	if err := json.Unmarshal([]byte(stdout), &view); err != nil {
		return "", fmt.Errorf("could not parse gh repo view output: %w", err)
	}
	if view.NameWithOwner == "" {
		return "", fmt.Errorf("gh repo view reported no repository (pass --repo)")
	}

	c.logger.Info("detected repository", "repo", view.NameWithOwner)
	return view.NameWithOwner, nil
}

// ListSecretNames returns the names of the Actions secrets currently set
// on repo, sorted. Called once per run when skip-existing is enabled.
func (c *Client) ListSecretNames(ctx context.Context, repo string) ([]string, error) {
	stdout, stderr, err := c.run(ctx, "", "secret", "list", "--repo", repo, "--json", "name")
	if err != nil {
		return nil, fmt.Errorf("listing secrets for %s: %s", repo, commandFailure(stderr, err))
	}

	var rows []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(stdout), &rows); err != nil {
		return nil, fmt.Errorf("could not parse gh secret list output: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	sort.Strings(names)

	c.logger.Debug("listed existing secrets", "repo", repo, "count", len(names))
	return names, nil
}

// SetSecret writes one Actions secret. The value travels via stdin.
func (c *Client) SetSecret(ctx context.Context, repo, name, value string) error {
	c.logger.Debug("setting secret", "repo", repo, "secret", name)

	_, stderr, err := c.run(ctx, value, "secret", "set", name, "--repo", repo)
	if err != nil {
		return fmt.Errorf("gh secret set %s: %s", name, commandFailure(stderr, err))
	}
	return nil
}

// commandFailure folds stderr into a readable failure message. gh usually
// explains itself on stderr; the raw exit error alone rarely helps.
func commandFailure(stderr string, err error) string {
	if msg := firstLine(stderr); msg != "" {
		return fmt.Sprintf("%s (%v)", msg, err)
	}
	return err.Error()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
