package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/edgard/intillasense/internal/advisor"
	"github.com/edgard/intillasense/internal/database"
	"github.com/edgard/intillasense/internal/farm"
	"github.com/edgard/intillasense/internal/recommend"
)

// runtime holds the components that talk to the database and the model.
type runtime struct {
	db      *sqlx.DB
	store   database.Store
	service *recommend.Service
	log     *zap.Logger
}

// openStore opens the exchange database.
func (c *cli) openStore() (*sqlx.DB, database.Store, error) {
	db, err := database.NewDB(c.cfg.Database.Path, c.log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database %s: %w", c.cfg.Database.Path, err)
	}
	return db, database.NewStore(db, c.log), nil
}

// openRuntime builds the recommendation service and its dependencies.
func (c *cli) openRuntime(ctx context.Context) (*runtime, error) {
	catalog, err := farm.DefaultCatalog()
	if err != nil {
		return nil, err
	}

	client, err := advisor.NewClient(ctx, c.cfg.AI, c.log)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", c.cfg.AI.Provider, err)
	}

	db, store, err := c.openStore()
	if err != nil {
		return nil, err
	}

	svc := recommend.NewService(recommend.Deps{
		Logger:    c.log,
		Config:    c.cfg.AI,
		Assembler: farm.NewAssembler(catalog, afero.NewOsFs(), c.cfg.Farms.DataDir, c.log),
		Client:    client,
		Store:     store,
	})

	if !c.cfg.AI.HasAPIKey() {
		c.log.Warn("No API key configured; completions will fail until one is set", zap.String("provider", c.cfg.AI.Provider))
	}

	return &runtime{db: db, store: store, service: svc, log: c.log}, nil
}

func (r *runtime) Close() {
	database.CloseDB(r.db, r.log)
}
