// Package release checks GitHub for newer deploykit releases.
//
// The check is advisory: callers surface a short notice and never block
// or fail a command because an update exists. Network access happens
// only when a caller explicitly asks (version --check).
package release

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// Repository is the GitHub repository that hosts deploykit releases.
const Repository = "zavastore/deploykit"

// Info describes the latest published release.
type Info struct {
	// Tag is the release tag as published (usually with a leading "v").
	Tag string
	// Version is the tag with the "v" prefix stripped.
	Version string
	// URL points at the release page for humans.
	URL string
}

// releaseGetter is the slice of the GitHub API the checker needs.
// *github.RepositoriesService satisfies it; tests substitute a fake.
type releaseGetter interface {
	GetLatestRelease(ctx context.Context, owner, repo string) (*github.RepositoryRelease, *github.Response, error)
}

// Checker queries the GitHub releases API for the latest deploykit release.
type Checker struct {
	releases      releaseGetter
	repo          string
	authenticated bool
}

// New creates a release checker.
// If the GITHUB_TOKEN environment variable is set it is used for
// authenticated requests, which raises the API rate limit.
func New() *Checker {
	var httpClient *http.Client
	authenticated := false

	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
		authenticated = true
	}

	return &Checker{
		releases:      github.NewClient(httpClient).Repositories,
		repo:          Repository,
		authenticated: authenticated,
	}
}

// Latest fetches the most recent published release.
// Callers should bound the call with a context deadline; the checker
// itself imposes none.
func (c *Checker) Latest(ctx context.Context) (*Info, error) {
	owner, name, ok := strings.Cut(c.repo, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("invalid repository %q (expected owner/repo)", c.repo)
	}

	rel, _, err := c.releases.GetLatestRelease(ctx, owner, name)
	if err != nil {
		var rateLimitErr *github.RateLimitError
		if errors.As(err, &rateLimitErr) {
			if c.authenticated {
				return nil, fmt.Errorf("GitHub API rate limit exceeded, resets at %s: %w",
					rateLimitErr.Rate.Reset.Format("15:04 MST"), err)
			}
			return nil, fmt.Errorf("GitHub API rate limit exceeded, set GITHUB_TOKEN to raise the limit: %w", err)
		}

		if strings.Contains(err.Error(), "no such host") ||
			strings.Contains(err.Error(), "network is unreachable") ||
			strings.Contains(err.Error(), "dial tcp") {
			return nil, fmt.Errorf("network unavailable: %w", err)
		}

		return nil, fmt.Errorf("failed to fetch latest release: %w", err)
	}

	tag := rel.GetTagName()
	if tag == "" {
		return nil, fmt.Errorf("release for %s has no tag", c.repo)
	}

	return &Info{
		Tag:     tag,
		Version: strings.TrimPrefix(tag, "v"),
		URL:     rel.GetHTMLURL(),
	}, nil
}

// IsNewer reports whether latest is strictly newer than current.
// Versions that do not parse as semver (dev builds such as
// "dev-1a2b3c4d5e6f" or "unknown") never report an update.
func IsNewer(current, latest string) bool {
	cur, err := semver.NewVersion(strings.TrimPrefix(current, "v"))
	if err != nil {
		return false
	}
	lat, err := semver.NewVersion(strings.TrimPrefix(latest, "v"))
	if err != nil {
		return false
	}
	return cur.LessThan(lat)
}
