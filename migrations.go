package logtrail

import "embed"

// MigrationsFS holds the DDL for the logtrail_logs table. PostgreSQL files sit
// at data/sql/migrations/*.sql and the SQLite variants under
// data/sql/migrations/sqlite/. Applying them is left to the host's runner;
// the migrations package registers the sub tree and can verify the resulting
// schema:
//
//	for _, fsys := range migrations.Filesystems() {
//	    runner.Register(fsys)
//	}
//	err := migrations.ValidateLogSchema(ctx, sqlDB, "sqlite")
//
//go:embed data/sql/migrations
var MigrationsFS embed.FS

// GetMigrationsFS returns the embedded migration files.
func GetMigrationsFS() embed.FS {
	return MigrationsFS
}
