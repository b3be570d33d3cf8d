// Package manager provides table lifecycle operations for the load target.
//
// It checks whether a table exists, lists its columns, drops it and creates
// it with text columns. All identifiers are quoted with
// pgx.Identifier.Sanitize(), so names with spaces, quotes or mixed case
// reach PostgreSQL unchanged.
//
// Operations take a Querier, satisfied by both *pgxpool.Pool and pgx.Tx, so
// the loader can run them inside its transaction.
//
// # Example Usage
//
//	name, err := manager.ParseTableName("staging.reports")
//	mgr := manager.New()
//	exists, err := mgr.TableExists(ctx, tx, name)
//	err = mgr.Create(ctx, tx, name, []string{"Station", "Level_m"})
package manager
