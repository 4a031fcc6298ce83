// Package repositories implements SQLite persistence for sync run history.
//
// [RunRepository] stores each completed run in the runs table and its per-item failures in
// run_failures, both written in one transaction. Runs are listed newest first and can be looked
// up by full ID or by a unique prefix (the short IDs printed by `plsync history`).
//
// The schema lives in internal/shared/sql and is applied by shared.RunMigrations.
package repositories
