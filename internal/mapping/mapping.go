// Package mapping joins the deployment environment file against the fixed
// table of repository secrets the GitHub Actions workflows consume.
//
// Each secret is defined by one Rule in the rules table (specs.go), binding
// a source key in the environment file to a destination secret name. A key
// that is absent, or present with an empty value, produces no entry; if the
// rule is required the omission is reported so the operator can decide
// whether to continue. Resolution is pure: it never talks to GitHub and
// never mutates the table.
package mapping

import (
	"encoding/json"
	"strings"
)

// Rule binds one environment file key to one repository secret.
type Rule struct {
	// SourceKey is the key looked up in the environment file.
	SourceKey string

	// Destination is the secret name written to the repository.
	Destination string

	// Required marks values the workflows cannot run without.
	Required bool

	// Desc is a human-readable description for error messages and CLI display.
	Desc string
}

// Source supplies raw values by key. *envfile.File satisfies it.
type Source interface {
	Lookup(key string) (string, bool)
}

// Entry is one secret ready to publish, produced by joining a Rule against
// a Source. The credential bundle entry carries BundleName as its SourceKey.
type Entry struct {
	Destination string
	Value       string
	SourceKey   string
	Desc        string
}

// Resolution is the outcome of joining the full rules table, plus the
// credential bundle, against one environment file.
type Resolution struct {
	// Entries lists the secrets to publish, in table order, bundle last.
	// No destination name appears twice.
	Entries []Entry

	// MissingRequired lists required rules that produced no entry. The
	// credential bundle contributes a single synthetic rule when any of
	// its four inputs is missing.
	MissingRequired []Rule

	// MissingOptional lists optional rules that produced no entry. Kept
	// for the skipped-missing count and verbose output only.
	MissingOptional []Rule

	// SkippedExisting lists destination names dropped because the
	// repository already has them.
	SkippedExisting []string
}

// BundleName is the synthetic secret assembled from the four service
// principal values. The azure/login workflow step consumes it as a single
// JSON credential object.
const BundleName = "AZURE_CREDENTIALS"

// bundleSources are the environment keys combined into the bundle, in the
// order they appear in the rendered JSON.
var bundleSources = [4]string{
	"AZURE_CLIENT_ID",
	"AZURE_CLIENT_SECRET",
	"AZURE_SUBSCRIPTION_ID",
	"AZURE_TENANT_ID",
}

// azureCredentials is the wire shape azure/login expects.
type azureCredentials struct {
	ClientID       string `json:"clientId"`
	ClientSecret   string `json:"clientSecret"`
	SubscriptionID string `json:"subscriptionId"`
	TenantID       string `json:"tenantId"`
}

// Resolve joins the rules table against src. When skipExisting is set,
// destinations already present in existingNames are dropped and reported
// in SkippedExisting; otherwise existingNames is ignored.
//
// A later rule targeting an already-emitted destination overwrites the
// earlier entry in place, so duplicate destinations resolve to the last
// rule deterministically.
func Resolve(src Source, existingNames []string, skipExisting bool) Resolution {
	existing := make(map[string]bool, len(existingNames))
	if skipExisting {
		for _, name := range existingNames {
			existing[name] = true
		}
	}

	var res Resolution
	emitted := make(map[string]int)

	emit := func(e Entry) {
		if i, ok := emitted[e.Destination]; ok {
			res.Entries[i] = e
			return
		}
		emitted[e.Destination] = len(res.Entries)
		res.Entries = append(res.Entries, e)
	}

	for _, rule := range rules {
		value, _ := src.Lookup(rule.SourceKey)
		value = strings.TrimSpace(value)
		if value == "" {
			if rule.Required {
				res.MissingRequired = append(res.MissingRequired, rule)
			} else {
				res.MissingOptional = append(res.MissingOptional, rule)
			}
			continue
		}
		if existing[rule.Destination] {
			res.SkippedExisting = append(res.SkippedExisting, rule.Destination)
			continue
		}
		emit(Entry{
			Destination: rule.Destination,
			Value:       value,
			SourceKey:   rule.SourceKey,
			Desc:        rule.Desc,
		})
	}

	// The bundle is assembled last so its entry publishes after the
	// individual values it is derived from.
	if value, ok := credentialBundle(src); !ok {
		res.MissingRequired = append(res.MissingRequired, bundleRule)
	} else if existing[BundleName] {
		res.SkippedExisting = append(res.SkippedExisting, BundleName)
	} else {
		emit(Entry{
			Destination: BundleName,
			Value:       value,
			SourceKey:   BundleName,
			Desc:        bundleRule.Desc,
		})
	}

	return res
}

// bundleRule stands in for the four service principal inputs in
// missing-required reports. The bundle is reported as one unit, never as
// its individual fields.
var bundleRule = Rule{
	SourceKey:   BundleName,
	Destination: BundleName,
	Required:    true,
	Desc:        "service principal credential JSON for azure/login",
}

// credentialBundle renders the AZURE_CREDENTIALS JSON value. ok is false
// unless all four inputs are present and non-empty.
func credentialBundle(src Source) (string, bool) {
	var values [4]string
	for i, key := range bundleSources {
		v, _ := src.Lookup(key)
		v = strings.TrimSpace(v)
		if v == "" {
			return "", false
		}
		values[i] = v
	}

	data, err := json.Marshal(azureCredentials{
		ClientID:       values[0],
		ClientSecret:   values[1],
		SubscriptionID: values[2],
		TenantID:       values[3],
	})
	if err != nil {
		// Marshal of a flat string struct cannot fail.
		return "", false
	}
	return string(data), true
}

// Rules returns a copy of the mapping table in publish order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// RequiredCount reports how many table rules are marked required. The
// credential bundle is not included.
func RequiredCount() int {
	n := 0
	for _, r := range rules {
		if r.Required {
			n++
		}
	}
	return n
}
