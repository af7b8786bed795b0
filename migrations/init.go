package migrations

import (
	"io/fs"

	logtrail "github.com/goliatone/go-logtrail"
)

func init() {
	if sub, err := fs.Sub(logtrail.GetMigrationsFS(), "data/sql/migrations"); err == nil {
		Register(sub)
	}
}
