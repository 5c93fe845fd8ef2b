// Package testutil provides shared fixtures for deploykit tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteEnvFile writes the given lines as an env file under dir and
// returns its path.
func WriteEnvFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	return path
}

// CompleteEnv returns env file lines that provide a value for every
// mapped source key, required and optional alike.
func CompleteEnv() []string {
	return append(RequiredEnv(),
		"shopper=asst-shopper-004",
		"AZURE_OPENAI_API_KEY=sk-test-0000",
		"AZURE_OPENAI_API_VERSION=2024-10-21",
		"COSMOS_DB_DATABASE=zava",
		"COSMOS_DB_CONTAINER=carts",
		"AZURE_RESOURCE_GROUP=rg-zava-dev",
		"AZURE_CONTAINER_REGISTRY=zavaacr",
		"AZURE_WEBAPP_NAME=zava-chat-app",
	)
}

// RequiredEnv returns env file lines covering only the source keys the
// sync treats as required, including the four service principal fields
// the credential bundle is built from.
func RequiredEnv() []string {
	return []string{
		"AZURE_AI_AGENT_ENDPOINT=https://agents.example.com/api",
		"AZURE_AI_AGENT_MODEL_DEPLOYMENT_NAME=gpt-4o",
		"gpt_deployment=gpt-4o",
		"interior_designer=asst-interior-001",
		"inventory_agent=asst-inventory-002",
		"customer_loyalty=asst-loyalty-003",
		"AZURE_OPENAI_ENDPOINT=https://openai.example.com",
		"COSMOS_DB_ENDPOINT=https://cosmos.example.com:443/",
		"AZURE_CLIENT_ID=11111111-1111-1111-1111-111111111111",
		"AZURE_CLIENT_SECRET=s3cr3t-value",
		"AZURE_SUBSCRIPTION_ID=22222222-2222-2222-2222-222222222222",
		"AZURE_TENANT_ID=33333333-3333-3333-3333-333333333333",
	}
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// AssertFileExists checks if a file exists at the given path
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if !FileExists(path) {
		t.Errorf("file does not exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does NOT exist at the given path
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if FileExists(path) {
		t.Errorf("file should not exist: %s", path)
	}
}
