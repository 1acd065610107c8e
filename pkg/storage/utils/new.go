package storageutils

import (
	"context"
	"fmt"

	"github.com/papercomputeco/mealprep/pkg/storage"
	"github.com/papercomputeco/mealprep/pkg/storage/inmemory"
	"github.com/papercomputeco/mealprep/pkg/storage/postgres"
	"github.com/papercomputeco/mealprep/pkg/storage/sqlite"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type NewDriverOpts struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
}

// NewDriver opens the configured storage backend. An empty driver name
// selects SQLite when a path is set and memory otherwise.
func NewDriver(ctx context.Context, o *NewDriverOpts) (storage.Driver, error) {
	name := o.Driver
	if name == "" {
		name = DriverMemory
		if o.SQLitePath != "" {
			name = DriverSQLite
		}
	}

	switch name {
	case DriverMemory:
		return inmemory.NewDriver(), nil
	case DriverSQLite:
		if o.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite storage requires a database path")
		}
		return sqlite.NewDriver(o.SQLitePath)
	case DriverPostgres:
		if o.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres storage requires a DSN")
		}
		return postgres.NewDriver(ctx, o.PostgresDSN)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", name)
	}
}
