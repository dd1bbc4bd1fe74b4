package services

import (
	"context"
	"errors"
	"time"

	"github.com/laundryhub/api/internal/platform/changefeed"
	"github.com/laundryhub/api/internal/repositories"
)

type noopUnitOfWork struct{}

func (noopUnitOfWork) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func isRepoNotFound(err error) bool {
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr.IsNotFound()
	}
	return false
}

func isRepoConflict(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsConflict()
}

func isRepoUnavailable(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsUnavailable()
}

func noopLogger(context.Context, string, map[string]any) {}

// changeNotifier publishes change feed entries. Failures are logged and swallowed.
type changeNotifier struct {
	publisher ChangePublisher
	logger    func(context.Context, string, map[string]any)
	now       func() time.Time
}

func (n changeNotifier) publish(ctx context.Context, key, id string, op changefeed.Op) {
	if n.publisher == nil {
		return
	}
	change := changefeed.Change{Key: key, ID: id, Op: op, At: n.now()}
	if err := n.publisher.Publish(ctx, change); err != nil && n.logger != nil {
		n.logger(ctx, "changefeed.publish.failed", map[string]any{
			"key":   key,
			"id":    id,
			"op":    string(op),
			"error": err.Error(),
		})
	}
}
