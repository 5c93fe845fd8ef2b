package main

import "os"

// Exit codes for different error types.
// These enable scripts to distinguish between failure modes.
const (
	// ExitSuccess indicates successful execution, dry runs included
	ExitSuccess = 0

	// ExitGeneral indicates a general error
	ExitGeneral = 1

	// ExitUsage indicates invalid arguments or usage error
	ExitUsage = 2

	// ExitEnvMissing indicates the environment file was not found
	ExitEnvMissing = 3

	// ExitUnavailable indicates gh or az is not installed or not authenticated
	ExitUnavailable = 4

	// ExitPublishFailed indicates at least one secret write failed
	ExitPublishFailed = 5

	// ExitDeclined indicates the operator declined to continue
	ExitDeclined = 6

	// ExitDoctor indicates a setup check failed
	ExitDoctor = 7
)

// exitWithCode exits with the specified exit code
func exitWithCode(code int) {
	os.Exit(code)
}
