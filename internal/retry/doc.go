// Package retry retries database connection attempts that fail for transient reasons.
//
//	executor := retry.NewDefaultExecutor(logger)
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
//
// Only connecting is retried. A failed load is never retried: the run aborts.
package retry
