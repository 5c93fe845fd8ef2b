package ghsecrets

import (
	"context"

	"github.com/zavastore/deploykit/internal/log"
)

// Secret is one name/value pair ready to write.
type Secret struct {
	Name  string
	Value string
}

// Outcome aggregates per-entry results of one publish run.
type Outcome struct {
	Created     int
	Failed      int
	FailedNames []string
}

// SecretWriter is the single destination operation publishing needs.
// *Client satisfies it.
type SecretWriter interface {
	SetSecret(ctx context.Context, repo, name, value string) error
}

// Publisher writes a batch of secrets to one repository, one at a time
// and in order, so the repository's audit log matches the mapping table.
type Publisher struct {
	Writer SecretWriter
	Repo   string

	// Logger for diagnostics. Nil falls back to the package default.
	Logger log.Logger

	// OnResult, when set, is invoked after each write with the outcome
	// for that secret. Used by the CLI to report progress live.
	OnResult func(s Secret, err error)
}

// Publish writes each secret in order. A failed write is counted and the
// remaining secrets still publish; one bad entry never blocks its
// siblings. There is no retry: each write succeeds or fails exactly once.
func (p *Publisher) Publish(ctx context.Context, secrets []Secret) Outcome {
	logger := p.Logger
	if logger == nil {
		logger = log.Default()
	}

	var out Outcome
	for _, s := range secrets {
		err := p.Writer.SetSecret(ctx, p.Repo, s.Name, s.Value)
		if err != nil {
			out.Failed++
			out.FailedNames = append(out.FailedNames, s.Name)
			logger.Error("secret write failed", "secret", s.Name, "error", err)
		} else {
			out.Created++
			logger.Info("secret written", "secret", s.Name)
		}
		if p.OnResult != nil {
			p.OnResult(s, err)
		}
	}
	return out
}
