package repo

import (
	"context"
	"fmt"

	"Thermex/internal/fluid"
)

// OpenProvider builds the property source named by FLUID_SOURCE. Remote
// sources are memoised and fall back to the built-in table only for
// substances or temperatures they do not cover. The returned close func
// releases the database, if any.
func OpenProvider(ctx context.Context, source, connStr string) (fluid.Provider, func() error, error) {
	noop := func() error { return nil }
	switch source {
	case "", "table":
		return fluid.DefaultTable(), noop, nil
	case "nist":
		return fluid.NewCache(fluid.Chain{fluid.NewClient(), fluid.DefaultTable()}), noop, nil
	case "postgres":
		db, err := Open(ctx, connStr)
		if err != nil {
			return nil, nil, err
		}
		pg := NewPostgresPropertyDB(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("repo: ensure schema: %w", err)
		}
		return fluid.NewCache(fluid.Chain{pg, fluid.DefaultTable()}), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("repo: unknown fluid source %q (want table, nist or postgres)", source)
	}
}
