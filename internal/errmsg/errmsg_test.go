package errmsg

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/zavastore/deploykit/internal/azcli"
	"github.com/zavastore/deploykit/internal/envfile"
	"github.com/zavastore/deploykit/internal/ghsecrets"
)

func TestFormat_NilError(t *testing.T) {
	result := Format(nil, nil)
	if result != "" {
		t.Errorf("expected empty string for nil error, got %q", result)
	}
}

func TestFormat_GenericError(t *testing.T) {
	err := errors.New("something went wrong")
	result := Format(err, nil)
	if result != "something went wrong" {
		t.Errorf("expected original error message, got %q", result)
	}
}

func TestFormat_EnvNotFound(t *testing.T) {
	err := &envfile.NotFoundError{Path: "src/chat-app/.env"}
	result := Format(err, &ErrorContext{EnvFile: "src/chat-app/.env"})

	checks := []string{
		"src/chat-app/.env",
		"Possible causes:",
		"different directory",
		"Suggestions:",
		"--env-file",
		".env.sample",
		"deploykit sp setup",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected result to contain %q, got:\n%s", check, result)
		}
	}
}

func TestFormat_WrappedEnvNotFound(t *testing.T) {
	err := fmt.Errorf("loading environment: %w", &envfile.NotFoundError{Path: ".env"})
	result := Format(err, nil)

	if !strings.Contains(result, "--env-file") {
		t.Errorf("expected wrapped NotFoundError to be recognized, got:\n%s", result)
	}
}

func TestFormat_GhNotInstalled(t *testing.T) {
	err := &ghsecrets.UnavailableError{Type: ghsecrets.ErrTypeNotInstalled}
	result := Format(err, nil)

	checks := []string{
		"not installed",
		"No secrets were touched",
		"cli.github.com",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected result to contain %q, got:\n%s", check, result)
		}
	}
}

func TestFormat_GhNotAuthenticated(t *testing.T) {
	err := &ghsecrets.UnavailableError{
		Type:   ghsecrets.ErrTypeNotAuthenticated,
		Detail: "You are not logged into any GitHub hosts.",
	}
	result := Format(err, nil)

	checks := []string{
		"not authenticated",
		"gh auth login",
		"No secrets were touched",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected result to contain %q, got:\n%s", check, result)
		}
	}
}

func TestFormat_AzNotLoggedIn(t *testing.T) {
	err := &azcli.UnavailableError{Type: azcli.ErrTypeNotLoggedIn}
	result := Format(err, nil)

	if !strings.Contains(result, "az login") {
		t.Errorf("expected az login suggestion, got:\n%s", result)
	}
}

func TestFormat_RateLimitError(t *testing.T) {
	err := errors.New("GitHub API rate limit exceeded")
	result := Format(err, nil)

	checks := []string{
		"rate limit",
		"Possible causes:",
		"Too many requests",
		"Suggestions:",
		"GITHUB_TOKEN",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected result to contain %q, got:\n%s", check, result)
		}
	}
}

type fakeNetError struct {
	timeout bool
}

func (e *fakeNetError) Error() string   { return "dial tcp: connection failed" }
func (e *fakeNetError) Timeout() bool   { return e.timeout }
func (e *fakeNetError) Temporary() bool { return false }

func TestFormat_NetworkError(t *testing.T) {
	err := &fakeNetError{}
	result := Format(err, nil)

	checks := []string{
		"connection failed",
		"Network connectivity issue",
		"Check your internet connection",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected result to contain %q, got:\n%s", check, result)
		}
	}
}

func TestFormat_NetworkTimeout(t *testing.T) {
	err := &fakeNetError{timeout: true}
	result := Format(err, nil)

	if !strings.Contains(result, "timed out") {
		t.Errorf("expected timeout cause, got:\n%s", result)
	}
}

func TestFormat_GenericNetworkErrorByMessage(t *testing.T) {
	err := errors.New("Get \"https://api.github.com\": dial tcp: no such host")
	result := Format(err, nil)

	if !strings.Contains(result, "DNS resolution failure") {
		t.Errorf("expected DNS cause for no-such-host, got:\n%s", result)
	}
}

func TestFormat_NotFoundError(t *testing.T) {
	err := errors.New("HTTP 404: Not Found (https://api.github.com/repos/zava/gone)")
	result := Format(err, &ErrorContext{Repo: "zava/gone"})

	checks := []string{
		"404",
		"gh repo view zava/gone",
		"deploy.toml",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected result to contain %q, got:\n%s", check, result)
		}
	}
}

func TestFormat_NotFoundErrorWithoutContext(t *testing.T) {
	err := errors.New("repository not found")
	result := Format(err, nil)

	if !strings.Contains(result, "gh repo view <owner/name>") {
		t.Errorf("expected generic repo suggestion, got:\n%s", result)
	}
}

func TestFormat_PermissionError(t *testing.T) {
	err := errors.New("HTTP 403: permission denied")
	result := Format(err, &ErrorContext{EnvFile: ".env"})

	checks := []string{
		"admin",
		".env",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected result to contain %q, got:\n%s", check, result)
		}
	}
}

func TestFprint(t *testing.T) {
	var buf bytes.Buffer
	Fprint(&buf, errors.New("something broke"), nil)

	got := buf.String()
	if !strings.HasPrefix(got, "Error: something broke") {
		t.Errorf("expected Error prefix, got %q", got)
	}
	if !strings.HasSuffix(got, "\n") {
		t.Errorf("expected trailing newline, got %q", got)
	}
}

func TestFprint_NilError(t *testing.T) {
	var buf bytes.Buffer
	Fprint(&buf, nil, nil)

	if buf.Len() != 0 {
		t.Errorf("expected no output for nil error, got %q", buf.String())
	}
}
