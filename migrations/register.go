package migrations

import (
	"io/fs"
	"sort"
	"sync"
)

var (
	mu          sync.RWMutex
	filesystems []fs.FS
)

// Register adds a filesystem laid out like data/sql/migrations: PostgreSQL
// files at the root and SQLite files under sqlite/. Nil is ignored.
func Register(fsys fs.FS) {
	if fsys == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	filesystems = append(filesystems, fsys)
}

// Filesystems returns a copy of the registered filesystems in registration
// order.
func Filesystems() []fs.FS {
	mu.RLock()
	defer mu.RUnlock()
	return append([]fs.FS(nil), filesystems...)
}

// UpFiles lists the forward migrations of fsys for dialect in apply order.
func UpFiles(fsys fs.FS, dialect string) ([]string, error) {
	normalized, err := normalizeDialect(dialect)
	if err != nil {
		return nil, err
	}
	pattern := "*.up.sql"
	if normalized == "sqlite" {
		pattern = "sqlite/*.up.sql"
	}
	files, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
