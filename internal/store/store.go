// Package store opens the configured persistence backend.
package store

import (
	"context"
	"fmt"

	"github.com/sunpark333/topicwala/internal/core/access"
	"github.com/sunpark333/topicwala/internal/core/config"
	"github.com/sunpark333/topicwala/internal/core/route"
	"github.com/sunpark333/topicwala/internal/core/rules"
	"github.com/sunpark333/topicwala/internal/core/topic"
	"github.com/sunpark333/topicwala/internal/store/jsonfile"
	"github.com/sunpark333/topicwala/internal/store/sqlstore"
)

// Backend is every store the relay needs, served by one persistence backend.
type Backend interface {
	topic.Directory
	rules.Store
	access.Store
	route.Store
	Close() error
}

var (
	_ Backend = (*jsonfile.Store)(nil)
	_ Backend = (*sqlstore.Store)(nil)
)

// Open returns the backend selected by cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.Store.Driver {
	case config.DriverJSONFile:
		return jsonfile.New(cfg.StateFile()), nil
	case config.DriverSQLite:
		return sqlstore.Open(ctx, sqlstore.SQLite, cfg.SQLitePath())
	case config.DriverPostgres:
		return sqlstore.Open(ctx, sqlstore.Postgres, cfg.Store.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
