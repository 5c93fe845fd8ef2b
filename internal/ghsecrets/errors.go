package ghsecrets

import "fmt"

// ErrorType classifies gh availability failures for better handling
type ErrorType int

const (
	// ErrTypeNotInstalled indicates the gh binary was not found on PATH
	ErrTypeNotInstalled ErrorType = iota
	// ErrTypeNotAuthenticated indicates gh is installed but has no active login
	ErrTypeNotAuthenticated
)

// UnavailableError reports that the GitHub CLI cannot serve requests.
// It is always fatal: no secret write is ever attempted against an
// unreachable or unauthenticated destination.
type UnavailableError struct {
	Type   ErrorType
	Detail string // trailing stderr from the failed probe, if any
	Err    error  // underlying error (if any)
}

// Error implements the error interface
func (e *UnavailableError) Error() string {
	switch e.Type {
	case ErrTypeNotInstalled:
		return "GitHub CLI (gh) is not installed"
	case ErrTypeNotAuthenticated:
		if e.Detail != "" {
			return fmt.Sprintf("GitHub CLI is not authenticated: %s", e.Detail)
		}
		return "GitHub CLI is not authenticated"
	default:
		return "GitHub CLI is unavailable"
	}
}

// Unwrap returns the underlying error for error chain support
func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Suggestion returns an actionable suggestion for the user based on the
// error type. Returns an empty string if no specific suggestion is
// available.
func (e *UnavailableError) Suggestion() string {
	switch e.Type {
	case ErrTypeNotInstalled:
		return "Install it from https://cli.github.com and re-run"
	case ErrTypeNotAuthenticated:
		return "Run 'gh auth login' and re-run"
	default:
		return ""
	}
}
