package retry

import (
	"context"
	"time"

	"github.com/groundwater-portal/reportload/pkg/reportload"
)

// Executor runs an operation, retrying it while the classifier reports
// transient failures and the backoff strategy allows more attempts.
// Safe for concurrent use; Execute keeps no state between calls.
type Executor struct {
	classifier reportload.ErrorClassifier
	strategy   reportload.BackoffStrategy
	logger     reportload.Logger
}

// NewExecutor creates a new retry executor.
// Panics if classifier or strategy is nil. logger may be nil.
func NewExecutor(classifier reportload.ErrorClassifier, strategy reportload.BackoffStrategy, logger reportload.Logger) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{classifier: classifier, strategy: strategy, logger: logger}
}

// NewDefaultExecutor returns the executor used by the database connectors:
// PostgreSQL classification with the reportload retry defaults.
func NewDefaultExecutor(logger reportload.Logger) *Executor {
	return NewExecutor(
		NewPostgreSQLErrorClassifier(),
		NewExponentialBackoff(reportload.DefaultRetryMaxAttempts,
			WithInitialDelay(reportload.DefaultRetryInitialDelay),
			WithMaxDelay(reportload.DefaultRetryMaxDelay),
		),
		logger,
	)
}

// Execute runs operation once and then retries transient failures.
// It returns nil on success, the first fatal error, the last transient error
// once attempts are exhausted, or the context error if ctx ends while waiting.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	err := operation(ctx)
	maxAttempts := e.strategy.MaxAttempts()

	for attempt := 0; err != nil && e.classifier.IsTransient(err); attempt++ {
		if maxAttempts >= 0 && attempt >= maxAttempts {
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		delay := e.strategy.NextDelay(attempt)
		if e.logger != nil {
			e.logger.Verbose("transient failure (retry %d in %v): %v", attempt+1, delay, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		err = operation(ctx)
	}
	return err
}
