package functional

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/zavastore/deploykit/internal/testutil"
)

// writeEnvFile writes lines to src/.env inside the scenario project.
func writeEnvFile(state *testState, lines []string) error {
	dir := filepath.Join(state.workDir, "src")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	content := strings.Join(lines, "\n") + "\n"
	return os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600)
}

func aCompleteEnvironmentFile(ctx context.Context) (context.Context, error) {
	state := getState(ctx)
	if state == nil {
		return ctx, fmt.Errorf("no test state; is the Before hook running?")
	}
	return ctx, writeEnvFile(state, testutil.CompleteEnv())
}

func anIncompleteEnvironmentFile(ctx context.Context) (context.Context, error) {
	state := getState(ctx)
	if state == nil {
		return ctx, fmt.Errorf("no test state; is the Before hook running?")
	}
	// Only two of the required values; everything else is missing.
	return ctx, writeEnvFile(state, []string{
		"AZURE_OPENAI_ENDPOINT=https://openai.example.com/",
		"COSMOS_DB_ENDPOINT=https://cosmos.example.com:443/",
	})
}

// noEnvironmentFile is a no-op because the Before hook already starts each
// scenario from an empty project. This step exists so feature files read
// naturally.
func noEnvironmentFile(ctx context.Context) (context.Context, error) {
	return ctx, nil
}

func repositoryHasSecret(ctx context.Context, name string) (context.Context, error) {
	state := getState(ctx)
	state.extraEnv = append(state.extraEnv, fmt.Sprintf(`GH_EXISTING_SECRETS=[{"name":%q}]`, name))
	return ctx, nil
}

func ghAuthenticationFails(ctx context.Context) (context.Context, error) {
	state := getState(ctx)
	state.extraEnv = append(state.extraEnv, "GH_AUTH_EXIT=1")
	return ctx, nil
}

func ghIsNotInstalled(ctx context.Context) (context.Context, error) {
	state := getState(ctx)
	if err := os.Remove(filepath.Join(state.stubDir, "gh")); err != nil {
		return ctx, err
	}
	state.hiddenBinaries = append(state.hiddenBinaries, "gh")
	return ctx, nil
}

func settingSecretFails(ctx context.Context, name string) (context.Context, error) {
	state := getState(ctx)
	state.extraEnv = append(state.extraEnv, "GH_FAIL_SECRET="+name)
	return ctx, nil
}

func installedGhVersion(ctx context.Context, version string) (context.Context, error) {
	state := getState(ctx)
	state.extraEnv = append(state.extraEnv, "GH_STUB_VERSION="+version)
	return ctx, nil
}

// iRun executes a command string, replacing "deploykit" with the test
// binary path. The stub directory leads PATH so gh and az resolve to the
// scenario's scripts, and stdin is closed so prompts never hang.
func iRun(ctx context.Context, command string) (context.Context, error) {
	state := getState(ctx)
	if state == nil {
		return ctx, fmt.Errorf("no test state; is the Before hook running?")
	}

	args := strings.Fields(command)
	if len(args) > 0 && args[0] == "deploykit" {
		args[0] = state.binPath
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = state.workDir
	cmd.Stdin = strings.NewReader("")

	path := state.stubDir + string(os.PathListSeparator) + filteredPATH(state.hiddenBinaries)
	env := append(os.Environ(),
		"PATH="+path,
		"DEPLOYKIT_CONFIG="+filepath.Join(state.workDir, "deploy.toml"),
		"DEPLOYKIT_STUB_LOG="+state.stubLog,
	)
	env = append(env, state.extraEnv...)
	cmd.Env = env

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	state.stdout = stdout.String()
	state.stderr = stderr.String()

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			state.exitCode = exitErr.ExitCode()
		} else {
			return ctx, fmt.Errorf("command execution failed: %w", err)
		}
	} else {
		state.exitCode = 0
	}

	return ctx, nil
}

func theExitCodeIs(ctx context.Context, expected int) error {
	state := getState(ctx)
	if state.exitCode != expected {
		return fmt.Errorf("expected exit code %d, got %d\nstdout: %s\nstderr: %s",
			expected, state.exitCode, state.stdout, state.stderr)
	}
	return nil
}

func theOutputContains(ctx context.Context, text string) error {
	state := getState(ctx)
	if !strings.Contains(state.stdout, text) {
		return fmt.Errorf("expected stdout to contain %q, got:\n%s", text, state.stdout)
	}
	return nil
}

func theOutputDoesNotContain(ctx context.Context, text string) error {
	state := getState(ctx)
	if strings.Contains(state.stdout, text) {
		return fmt.Errorf("expected stdout not to contain %q, got:\n%s", text, state.stdout)
	}
	return nil
}

func theErrorOutputContains(ctx context.Context, text string) error {
	state := getState(ctx)
	if !strings.Contains(state.stderr, text) {
		return fmt.Errorf("expected stderr to contain %q, got:\n%s", text, state.stderr)
	}
	return nil
}

// recordedCalls reads the stub call log. A missing log means no stub ran.
func recordedCalls(state *testState) []string {
	data, err := os.ReadFile(state.stubLog)
	if err != nil {
		return nil
	}
	var calls []string
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line != "" {
			calls = append(calls, line)
		}
	}
	return calls
}

func noGhCommandsRecorded(ctx context.Context) error {
	state := getState(ctx)
	for _, call := range recordedCalls(state) {
		if strings.HasPrefix(call, "gh ") {
			return fmt.Errorf("expected no gh calls, recorded: %q", call)
		}
	}
	return nil
}

func noSecretWritesRecorded(ctx context.Context) error {
	state := getState(ctx)
	for _, call := range recordedCalls(state) {
		if strings.HasPrefix(call, "gh secret set") {
			return fmt.Errorf("expected no secret writes, recorded: %q", call)
		}
	}
	return nil
}

func recordedGhCallsInclude(ctx context.Context, fragment string) error {
	state := getState(ctx)
	calls := recordedCalls(state)
	for _, call := range calls {
		if strings.HasPrefix(call, "gh ") && strings.Contains(call, fragment) {
			return nil
		}
	}
	return fmt.Errorf("no gh call containing %q, recorded:\n%s", fragment, strings.Join(calls, "\n"))
}

func recordedAzCallsInclude(ctx context.Context, fragment string) error {
	state := getState(ctx)
	calls := recordedCalls(state)
	for _, call := range calls {
		if strings.HasPrefix(call, "az ") && strings.Contains(call, fragment) {
			return nil
		}
	}
	return fmt.Errorf("no az call containing %q, recorded:\n%s", fragment, strings.Join(calls, "\n"))
}

func environmentFileContains(ctx context.Context, text string) error {
	state := getState(ctx)
	path := filepath.Join(state.workDir, "src", ".env")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if !strings.Contains(string(data), text) {
		return fmt.Errorf("expected %s to contain %q, got:\n%s", path, text, string(data))
	}
	return nil
}
