package azcli

import "fmt"

// ErrorType classifies az availability failures
type ErrorType int

const (
	// ErrTypeNotInstalled indicates the az binary was not found on PATH
	ErrTypeNotInstalled ErrorType = iota
	// ErrTypeNotLoggedIn indicates az is installed but has no active session
	ErrTypeNotLoggedIn
)

// UnavailableError reports that the Azure CLI cannot serve requests.
type UnavailableError struct {
	Type   ErrorType
	Detail string // trailing stderr from the failed probe, if any
	Err    error  // underlying error (if any)
}

// Error implements the error interface
func (e *UnavailableError) Error() string {
	switch e.Type {
	case ErrTypeNotInstalled:
		return "Azure CLI (az) is not installed"
	case ErrTypeNotLoggedIn:
		if e.Detail != "" {
			return fmt.Sprintf("Azure CLI has no active session: %s", e.Detail)
		}
		return "Azure CLI has no active session"
	default:
		return "Azure CLI is unavailable"
	}
}

// Unwrap returns the underlying error for error chain support
func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Suggestion returns an actionable suggestion for the user based on the
// error type.
func (e *UnavailableError) Suggestion() string {
	switch e.Type {
	case ErrTypeNotInstalled:
		return "Install it from https://learn.microsoft.com/cli/azure/install-azure-cli and re-run"
	case ErrTypeNotLoggedIn:
		return "Run 'az login' and re-run"
	default:
		return ""
	}
}
