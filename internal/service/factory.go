// File: internal/service/factory.go
// Description: Dependency injection for the mission runner. Builds the stage
// components, the coordinator, and the optional archive store from the
// application configuration.

package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/debdutta1777/AuraProcure/internal/compliance"
	"github.com/debdutta1777/AuraProcure/internal/config"
	"github.com/debdutta1777/AuraProcure/internal/directory"
	"github.com/debdutta1777/AuraProcure/internal/drafter"
	"github.com/debdutta1777/AuraProcure/internal/hitl"
	"github.com/debdutta1777/AuraProcure/internal/llm"
	"github.com/debdutta1777/AuraProcure/internal/orchestrator"
	"github.com/debdutta1777/AuraProcure/internal/parser"
	"github.com/debdutta1777/AuraProcure/internal/sourcing"
	"github.com/debdutta1777/AuraProcure/internal/store"
)

// Components holds the initialized runner and its owned resources. It
// centralizes lifecycle management so commands only deal with Service and
// Shutdown.
type Components struct {
	Service *Service
	DBPool  *pgxpool.Pool

	logger *zap.Logger
}

// Shutdown releases the components' resources.
func (c *Components) Shutdown() {
	if c.DBPool != nil {
		c.DBPool.Close()
		c.logger.Debug("Database connection pool closed")
	}
}

// Build wires the full pipeline from configuration: directory, stages,
// coordinator, service, and (when a database URL is configured) the mission
// archive.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	dir, err := directory.Load(cfg.Directory.VendorsFile, cfg.Directory.PoliciesFile)
	if err != nil {
		return nil, err
	}

	gen := llm.New(ctx, cfg.LLM, logger)
	if !gen.Enabled() {
		logger.Info("No text-generation API key configured; all stages run deterministically")
	}

	coord, err := orchestrator.New(
		cfg,
		logger,
		parser.New(gen, logger),
		sourcing.New(sourcing.SystemRand(), logger),
		compliance.New(logger),
		hitl.New(cfg.Approval, logger),
		drafter.New(cfg.Documents, logger),
		sourcing.SystemRand(),
	)
	if err != nil {
		return nil, err
	}

	components := &Components{logger: logger.Named("service")}

	var archive Archiver
	if cfg.Database.URL != "" {
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to create database connection pool: %w", err)
		}
		components.DBPool = pool

		st, err := store.New(ctx, pool, logger)
		if err != nil {
			components.Shutdown()
			return nil, fmt.Errorf("failed to initialize mission archive: %w", err)
		}
		archive = st
		logger.Info("Mission archive enabled")
	}

	svc, err := New(cfg, logger, dir, coord, archive)
	if err != nil {
		components.Shutdown()
		return nil, err
	}
	components.Service = svc
	return components, nil
}
