// Package azcli talks to Azure through the az CLI.
//
// It covers the handful of control-plane operations the deployment flow
// needs: checking the session, granting the Cosmos DB data-plane role, and
// provisioning the service principal the workflows authenticate with.
// Like the gh wrapper, it interprets exit status and stderr rather than
// speaking to Azure APIs directly, so it works with whatever auth state
// the operator's az session already has.
package azcli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/zavastore/deploykit/internal/log"
)

// CosmosDataContributorRoleID is the built-in Cosmos DB SQL role that
// grants data-plane read/write. Fixed GUID across all accounts.
const CosmosDataContributorRoleID = "00000000-0000-0000-0000-000000000002"

// lookPath locates the az binary. It can be overridden for testing.
var lookPath = exec.LookPath

type runnerFunc func(ctx context.Context, args ...string) (stdout, stderr string, err error)

// Client wraps the az CLI.
type Client struct {
	logger log.Logger
	run    runnerFunc
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for diagnostic output.
func WithLogger(l log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a Client that invokes the real az binary.
func NewClient(opts ...Option) *Client {
	c := &Client{
		logger: log.Default(),
		run:    execRunner,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func execRunner(ctx context.Context, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, "az", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// CheckAvailable verifies az is installed and has an active session.
// Returns *UnavailableError on failure.
func (c *Client) CheckAvailable(ctx context.Context) error {
	if _, err := lookPath("az"); err != nil {
		return &UnavailableError{Type: ErrTypeNotInstalled, Err: err}
	}

	_, stderr, err := c.run(ctx, "account", "show", "--output", "json")
	if err != nil {
		return &UnavailableError{
			Type:   ErrTypeNotLoggedIn,
			Detail: firstLine(stderr),
			Err:    err,
		}
	}
	c.logger.Debug("az availability check passed")
	return nil
}

// Version runs `az version` and extracts the core CLI version.
func (c *Client) Version(ctx context.Context) (string, error) {
	stdout, _, err := c.run(ctx, "version", "--output", "json")
	if err != nil {
		return "", fmt.Errorf("failed to run 'az version': %w", err)
	}

	var v struct {
		AzureCLI string `json:"azure-cli"`
	}
	if err := json.Unmarshal([]byte(stdout), &v); err != nil {
		return "", fmt.Errorf("could not parse az version output: %w", err)
	}
	if v.AzureCLI == "" {
		return "", fmt.Errorf("az version output had no azure-cli field")
	}
	return v.AzureCLI, nil
}

// AccountUser identifies who is signed in.
type AccountUser struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Account describes the active az subscription context.
type Account struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	TenantID string      `json:"tenantId"`
	User     AccountUser `json:"user"`
}

// Account returns the active subscription context.
func (c *Client) Account(ctx context.Context) (*Account, error) {
	stdout, stderr, err := c.run(ctx, "account", "show", "--output", "json")
	if err != nil {
		return nil, fmt.Errorf("az account show: %s", commandFailure(stderr, err))
	}

	var acct Account
	if err := json.Unmarshal([]byte(stdout), &acct); err != nil {
		return nil, fmt.Errorf("could not parse az account output: %w", err)
	}
	return &acct, nil
}

// SignedInUserID returns the object id of the signed-in user, the default
// principal for role grants when none is given.
func (c *Client) SignedInUserID(ctx context.Context) (string, error) {
	stdout, stderr, err := c.run(ctx, "ad", "signed-in-user", "show", "--query", "id", "--output", "tsv")
	if err != nil {
		return "", fmt.Errorf("az ad signed-in-user show: %s", commandFailure(stderr, err))
	}
	id := strings.TrimSpace(stdout)
	if id == "" {
		return "", fmt.Errorf("az reported an empty signed-in user id")
	}
	return id, nil
}

// RoleAssignment names one Cosmos DB data-plane grant.
type RoleAssignment struct {
	Account       string
	ResourceGroup string
	PrincipalID   string
	RoleDefID     string // defaults to CosmosDataContributorRoleID
	Scope         string // defaults to "/", the whole account
}

// AssignCosmosRole grants a data-plane role on a Cosmos DB account.
// Re-running against an existing assignment reports created=false and no
// error, so the grant is safe to repeat.
func (c *Client) AssignCosmosRole(ctx context.Context, a RoleAssignment) (created bool, err error) {
	roleDef := a.RoleDefID
	if roleDef == "" {
		roleDef = CosmosDataContributorRoleID
	}
	scope := a.Scope
	if scope == "" {
		scope = "/"
	}

	c.logger.Info("assigning cosmos role",
		"account", a.Account, "principal", a.PrincipalID, "role", roleDef)

	_, stderr, err := c.run(ctx,
		"cosmosdb", "sql", "role", "assignment", "create",
		"--account-name", a.Account,
		"--resource-group", a.ResourceGroup,
		"--scope", scope,
		"--principal-id", a.PrincipalID,
		"--role-definition-id", roleDef,
	)
	if err != nil {
		if alreadyAssigned(stderr) {
			c.logger.Info("role already assigned", "account", a.Account, "principal", a.PrincipalID)
			return false, nil
		}
		return false, fmt.Errorf("assigning cosmos role: %s", commandFailure(stderr, err))
	}
	return true, nil
}

// alreadyAssigned recognizes the conflict Azure raises for a duplicate
// role assignment id.
func alreadyAssigned(stderr string) bool {
	lower := strings.ToLower(stderr)
	return strings.Contains(lower, "already exists") ||
		strings.Contains(lower, "conflict")
}

// ServicePrincipal is the credential material az returns for a new app
// registration.
type ServicePrincipal struct {
	AppID    string `json:"appId"`
	Name     string `json:"displayName"`
	Password string `json:"password"`
	Tenant   string `json:"tenant"`
}

// CreateServicePrincipal registers an app with Contributor rights on the
// subscription. Azure generates a fresh client secret on every call, so
// run this once and store the result.
func (c *Client) CreateServicePrincipal(ctx context.Context, name, subscriptionID string) (*ServicePrincipal, error) {
	c.logger.Info("creating service principal", "name", name)

	stdout, stderr, err := c.run(ctx,
		"ad", "sp", "create-for-rbac",
		"--name", name,
		"--role", "Contributor",
		"--scopes", "/subscriptions/"+subscriptionID,
		"--output", "json",
	)
	if err != nil {
		return nil, fmt.Errorf("creating service principal: %s", commandFailure(stderr, err))
	}

	var sp ServicePrincipal
	if err := json.Unmarshal([]byte(stdout), &sp); err != nil {
		return nil, fmt.Errorf("could not parse service principal output: %w", err)
	}
	if sp.AppID == "" {
		return nil, fmt.Errorf("az returned no appId for service principal %s", name)
	}
	return &sp, nil
}

// AppRegistration identifies an app created without credential material.
type AppRegistration struct {
	AppID       string `json:"appId"`
	DisplayName string `json:"displayName"`
}

// CreateApp registers a bare application, the first step of a workload
// identity setup. Unlike CreateServicePrincipal no client secret is
// generated.
func (c *Client) CreateApp(ctx context.Context, displayName string) (*AppRegistration, error) {
	c.logger.Info("creating app registration", "name", displayName)

	stdout, stderr, err := c.run(ctx,
		"ad", "app", "create",
		"--display-name", displayName,
		"--output", "json",
	)
	if err != nil {
		return nil, fmt.Errorf("creating app registration: %s", commandFailure(stderr, err))
	}

	var app AppRegistration
	if err := json.Unmarshal([]byte(stdout), &app); err != nil {
		return nil, fmt.Errorf("could not parse app registration output: %w", err)
	}
	if app.AppID == "" {
		return nil, fmt.Errorf("az returned no appId for app %s", displayName)
	}
	return &app, nil
}

// EnsureServicePrincipal makes sure the app has a service principal in
// the tenant. Re-running against an app that already has one is a no-op.
func (c *Client) EnsureServicePrincipal(ctx context.Context, appID string) error {
	_, stderr, err := c.run(ctx, "ad", "sp", "create", "--id", appID)
	if err != nil {
		if alreadyAssigned(stderr) {
			return nil
		}
		return fmt.Errorf("creating service principal for app %s: %s", appID, commandFailure(stderr, err))
	}
	return nil
}

// AssignSubscriptionRole grants the app a role over the whole
// subscription. An existing identical assignment is a no-op.
func (c *Client) AssignSubscriptionRole(ctx context.Context, appID, role, subscriptionID string) error {
	c.logger.Info("assigning subscription role", "app", appID, "role", role)

	_, stderr, err := c.run(ctx,
		"role", "assignment", "create",
		"--assignee", appID,
		"--role", role,
		"--scope", "/subscriptions/"+subscriptionID,
	)
	if err != nil {
		if alreadyAssigned(stderr) {
			return nil
		}
		return fmt.Errorf("assigning %s role: %s", role, commandFailure(stderr, err))
	}
	return nil
}

// FederatedCredential configures workload identity federation on an app.
type FederatedCredential struct {
	Name      string   `json:"name"`
	Issuer    string   `json:"issuer"`
	Subject   string   `json:"subject"`
	Audiences []string `json:"audiences"`
}

// GitHubOIDCCredential builds the federation subject GitHub Actions
// presents for pushes to one branch of a repository.
func GitHubOIDCCredential(repo, branch string) FederatedCredential {
	return FederatedCredential{
		Name:      "github-" + strings.ReplaceAll(repo, "/", "-") + "-" + branch,
		Issuer:    "https://token.actions.githubusercontent.com",
		Subject:   fmt.Sprintf("repo:%s:ref:refs/heads/%s", repo, branch),
		Audiences: []string{"api://AzureADTokenExchange"},
	}
}

// CreateFederatedCredential attaches a federated credential to the app,
// letting the repository's workflows log in without a client secret.
func (c *Client) CreateFederatedCredential(ctx context.Context, appID string, cred FederatedCredential) error {
	params, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encoding federated credential: %w", err)
	}

	c.logger.Info("creating federated credential", "app", appID, "subject", cred.Subject)

	_, stderr, err := c.run(ctx,
		"ad", "app", "federated-credential", "create",
		"--id", appID,
		"--parameters", string(params),
	)
	if err != nil {
		if alreadyAssigned(stderr) {
			c.logger.Info("federated credential already exists", "app", appID)
			return nil
		}
		return fmt.Errorf("creating federated credential: %s", commandFailure(stderr, err))
	}
	return nil
}

func commandFailure(stderr string, err error) string {
	if msg := firstLine(stderr); msg != "" {
		return fmt.Sprintf("%s (%v)", msg, err)
	}
	return err.Error()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
