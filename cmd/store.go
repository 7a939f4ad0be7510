package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/db"
	"github.com/sells-group/leadgen-cli/internal/leads"
)

func initStore(ctx context.Context) (leads.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return leads.NewSQLite(cfg.Store.SQLitePath)
	case "postgres":
		return leads.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initPool opens a pgx pool against the company-view database. Generation
// always queries Postgres regardless of the lead sink driver.
func initPool(ctx context.Context) (db.Pool, func(), error) {
	pool, err := db.Connect(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return pool, pool.Close, nil
}
