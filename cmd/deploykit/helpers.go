package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/zavastore/deploykit/internal/errmsg"
)

// ANSI color codes for terminal output
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
)

// printInfo prints an informational message unless quiet mode is enabled
func printInfo(a ...interface{}) {
	if !quietFlag {
		fmt.Println(a...)
	}
}

// printInfof prints a formatted informational message unless quiet mode is enabled
func printInfof(format string, a ...interface{}) {
	if !quietFlag {
		fmt.Printf(format, a...)
	}
}

// printJSON marshals the given value to JSON and prints it to stdout
func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		exitWithCode(ExitGeneral)
	}
}

// printError prints an error to stderr with suggestions if available.
// This uses the errmsg package to format errors with actionable suggestions.
func printError(err error, ctx *errmsg.ErrorContext) {
	errmsg.Fprint(os.Stderr, err, ctx)
}

// truncateValue shortens a secret value for dry-run previews so only a
// short prefix ever reaches the terminal.
func truncateValue(v string) string {
	const keep = 8
	if len(v) <= keep {
		return v
	}
	return v[:keep] + "..."
}
