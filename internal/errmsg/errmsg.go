// Package errmsg provides enhanced error message formatting with actionable suggestions.
package errmsg

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/zavastore/deploykit/internal/azcli"
	"github.com/zavastore/deploykit/internal/envfile"
	"github.com/zavastore/deploykit/internal/ghsecrets"
)

// ErrorContext provides additional context for error formatting
type ErrorContext struct {
	Repo    string // target repository (for suggestions)
	EnvFile string // environment file path the command was reading
}

// Fprint writes a formatted error message to w, prefixed with "Error: ".
// The context parameter is optional - pass nil for generic formatting.
func Fprint(w io.Writer, err error, ctx *ErrorContext) {
	if err == nil {
		return
	}
	msg := Format(err, ctx)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(w, "Error: "+msg)
}

// Format returns a formatted error message with possible causes and suggestions.
// The context parameter is optional - pass nil for generic formatting.
func Format(err error, ctx *ErrorContext) string {
	if err == nil {
		return ""
	}

	errMsg := err.Error()

	// Structured errors first: missing env file, unavailable CLIs.
	var notFound *envfile.NotFoundError
	if errors.As(err, &notFound) {
		return formatEnvNotFound(notFound, ctx)
	}

	var ghUnavailable *ghsecrets.UnavailableError
	if errors.As(err, &ghUnavailable) {
		return formatUnavailable(errMsg, ghUnavailable.Suggestion())
	}

	var azUnavailable *azcli.UnavailableError
	if errors.As(err, &azUnavailable) {
		return formatUnavailable(errMsg, azUnavailable.Suggestion())
	}

	// Check for rate limit errors (string matching for unstructured errors)
	if isRateLimitError(errMsg) {
		return formatRateLimitError(errMsg)
	}

	// Check for network errors
	var netErr net.Error
	if errors.As(err, &netErr) {
		return formatNetworkError(netErr)
	}
	if isNetworkError(errMsg) {
		return formatGenericNetworkError(errMsg)
	}

	// Check for "not found" errors (wrong repo, deleted repo)
	if isNotFoundError(errMsg) {
		return formatNotFoundError(errMsg, ctx)
	}

	// Check for permission errors
	if isPermissionError(errMsg) {
		return formatPermissionError(errMsg, ctx)
	}

	// Return original error for unrecognized types
	return errMsg
}

func formatEnvNotFound(err *envfile.NotFoundError, ctx *ErrorContext) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - Running from a different directory than the project root\n")
	sb.WriteString("  - The environment file has not been created yet\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Pass --env-file with the correct path\n")
	sb.WriteString("  - Copy .env.sample to the expected location and fill it in\n")
	sb.WriteString("  - Run 'deploykit sp setup' to provision credentials and write the file\n")

	return sb.String()
}

func formatUnavailable(errMsg, suggestion string) string {
	var sb strings.Builder
	sb.WriteString(errMsg)
	sb.WriteString("\n")

	sb.WriteString("\nNo secrets were touched.\n")
	if suggestion != "" {
		sb.WriteString("\nSuggestions:\n")
		sb.WriteString("  - " + suggestion + "\n")
	}

	return sb.String()
}

func formatRateLimitError(errMsg string) string {
	var sb strings.Builder
	sb.WriteString(errMsg)
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - Too many requests to the API\n")
	sb.WriteString("  - Unauthenticated requests have lower limits\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Set GITHUB_TOKEN to increase the rate limit\n")
	sb.WriteString("  - Wait a few minutes before retrying\n")

	return sb.String()
}

func formatNetworkError(err net.Error) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	if err.Timeout() {
		sb.WriteString("  - Request timed out\n")
		sb.WriteString("  - Slow or unstable network connection\n")
	} else {
		sb.WriteString("  - Network connectivity issue\n")
		sb.WriteString("  - DNS resolution failure\n")
	}
	sb.WriteString("  - Firewall or proxy blocking the connection\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Check your internet connection\n")
	sb.WriteString("  - Try again in a few minutes\n")

	return sb.String()
}

func formatGenericNetworkError(errMsg string) string {
	var sb strings.Builder
	sb.WriteString(errMsg)
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - Network connectivity issue\n")
	sb.WriteString("  - DNS resolution failure\n")
	sb.WriteString("  - Service temporarily unavailable\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Check your internet connection\n")
	sb.WriteString("  - Try again in a few minutes\n")

	return sb.String()
}

func formatNotFoundError(errMsg string, ctx *ErrorContext) string {
	var sb strings.Builder
	sb.WriteString(errMsg)
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - The repository name is wrong or the repository was moved\n")
	sb.WriteString("  - The authenticated account cannot see the repository\n")

	sb.WriteString("\nSuggestions:\n")
	if ctx != nil && ctx.Repo != "" {
		sb.WriteString(fmt.Sprintf("  - Run 'gh repo view %s' to confirm access\n", ctx.Repo))
	} else {
		sb.WriteString("  - Run 'gh repo view <owner/name>' to confirm access\n")
	}
	sb.WriteString("  - Check the --repo flag or the repository setting in deploy.toml\n")

	return sb.String()
}

func formatPermissionError(errMsg string, ctx *ErrorContext) string {
	var sb strings.Builder
	sb.WriteString(errMsg)
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - The authenticated account lacks admin rights on the repository\n")
	if ctx != nil && ctx.EnvFile != "" {
		sb.WriteString(fmt.Sprintf("  - Insufficient filesystem permissions on %s\n", ctx.EnvFile))
	} else {
		sb.WriteString("  - Insufficient filesystem permissions on the environment file\n")
	}

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Repository secrets require admin access; ask an owner to grant it\n")
	sb.WriteString("  - Check file ownership and mode on the environment file\n")

	return sb.String()
}

// isRateLimitError checks if the error message indicates a rate limit
func isRateLimitError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "rate-limit") ||
		strings.Contains(lower, "too many requests")
}

// isNetworkError checks if the error message indicates a network issue
func isNetworkError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "connection reset") ||
		strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "network is unreachable") ||
		strings.Contains(lower, "dial tcp") ||
		strings.Contains(lower, "i/o timeout")
}

// isNotFoundError checks if the error message indicates something not found
func isNotFoundError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "not found") ||
		strings.Contains(lower, "404") ||
		strings.Contains(lower, "could not resolve")
}

// isPermissionError checks if the error message indicates a permission issue
func isPermissionError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "permission denied") ||
		strings.Contains(lower, "access denied") ||
		strings.Contains(lower, "403") ||
		strings.Contains(lower, "operation not permitted")
}
