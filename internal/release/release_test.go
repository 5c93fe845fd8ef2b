package release

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/require"
)

type fakeReleases struct {
	release *github.RepositoryRelease
	err     error

	calls int
	owner string
	repo  string
}

func (f *fakeReleases) GetLatestRelease(ctx context.Context, owner, repo string) (*github.RepositoryRelease, *github.Response, error) {
	f.calls++
	f.owner, f.repo = owner, repo
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.release, nil, nil
}

func TestLatest(t *testing.T) {
	fake := &fakeReleases{
		release: &github.RepositoryRelease{
			TagName: github.String("v1.4.0"),
			HTMLURL: github.String("https://github.com/zavastore/deploykit/releases/tag/v1.4.0"),
		},
	}
	c := &Checker{releases: fake, repo: Repository}

	info, err := c.Latest(context.Background())
	require.NoError(t, err)

	require.Equal(t, "v1.4.0", info.Tag)
	require.Equal(t, "1.4.0", info.Version)
	require.Equal(t, "https://github.com/zavastore/deploykit/releases/tag/v1.4.0", info.URL)
	require.Equal(t, 1, fake.calls)
	require.Equal(t, "zavastore", fake.owner)
	require.Equal(t, "deploykit", fake.repo)
}

func TestLatestMissingTag(t *testing.T) {
	fake := &fakeReleases{release: &github.RepositoryRelease{}}
	c := &Checker{releases: fake, repo: Repository}

	_, err := c.Latest(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no tag")
}

func TestLatestInvalidRepository(t *testing.T) {
	c := &Checker{releases: &fakeReleases{}, repo: "not-a-repo"}

	_, err := c.Latest(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected owner/repo")
}

func TestLatestRateLimited(t *testing.T) {
	rateErr := &github.RateLimitError{
		Rate:    github.Rate{Reset: github.Timestamp{Time: time.Date(2026, 3, 1, 14, 30, 0, 0, time.UTC)}},
		Message: "API rate limit exceeded",
	}

	t.Run("unauthenticated suggests a token", func(t *testing.T) {
		c := &Checker{releases: &fakeReleases{err: rateErr}, repo: Repository}

		_, err := c.Latest(context.Background())
		require.Error(t, err)
		require.Contains(t, err.Error(), "rate limit")
		require.Contains(t, err.Error(), "GITHUB_TOKEN")
	})

	t.Run("authenticated reports the reset time", func(t *testing.T) {
		c := &Checker{releases: &fakeReleases{err: rateErr}, repo: Repository, authenticated: true}

		_, err := c.Latest(context.Background())
		require.Error(t, err)
		require.Contains(t, err.Error(), "resets at")
		require.NotContains(t, err.Error(), "GITHUB_TOKEN")
	})
}

func TestLatestNetworkError(t *testing.T) {
	fake := &fakeReleases{err: errors.New(`Get "https://api.github.com/...": dial tcp: lookup api.github.com: no such host`)}
	c := &Checker{releases: fake, repo: Repository}

	_, err := c.Latest(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "network unavailable")
}

func TestLatestOtherError(t *testing.T) {
	fake := &fakeReleases{err: errors.New("500 Internal Server Error")}
	c := &Checker{releases: fake, repo: Repository}

	_, err := c.Latest(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to fetch latest release")
}

func TestNewReadsToken(t *testing.T) {
	t.Run("token set", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "ghp_example")
		c := New()
		require.True(t, c.authenticated)
		require.Equal(t, Repository, c.repo)
	})

	t.Run("token unset", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")
		c := New()
		require.False(t, c.authenticated)
	})
}

func TestIsNewer(t *testing.T) {
	tests := []struct {
		name    string
		current string
		latest  string
		want    bool
	}{
		{"patch upgrade", "1.4.0", "1.4.1", true},
		{"minor upgrade", "1.4.0", "1.5.0", true},
		{"v prefixes tolerated", "v1.4.0", "v2.0.0", true},
		{"same version", "1.4.0", "1.4.0", false},
		{"current ahead", "2.0.0", "1.9.9", false},
		{"prerelease to stable", "1.4.0-rc.1", "1.4.0", true},
		{"dev build never updates", "dev-1a2b3c4d5e6f", "9.9.9", false},
		{"unknown build never updates", "unknown", "9.9.9", false},
		{"garbage latest", "1.4.0", "not-a-version", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsNewer(tt.current, tt.latest))
		})
	}
}
