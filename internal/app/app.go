// Package app wires a configured Engine for the commands.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cognicore/ticketai/pkg/ticketai"
	"github.com/cognicore/ticketai/pkg/ticketai/classify"
	"github.com/cognicore/ticketai/pkg/ticketai/config"
	"github.com/cognicore/ticketai/pkg/ticketai/store"
	"github.com/cognicore/ticketai/pkg/ticketai/store/memstore"
	"github.com/cognicore/ticketai/pkg/ticketai/store/sqlite"
	"github.com/cognicore/ticketai/pkg/ticketai/ticket"
)

// OpenStore opens the configured ticket store, creating the database
// directory when needed.
func OpenStore(ctx context.Context, db config.Database) (store.Store, error) {
	switch db.Type {
	case "memory":
		return memstore.New(), nil
	case "sqlite":
		if dir := filepath.Dir(db.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
		return sqlite.OpenSQLite(ctx, db.Path)
	}
	return nil, fmt.Errorf("unknown database type %q", db.Type)
}

// BuildEngine loads the vocabulary files, both models and the store, and
// seeds the identifier counter from the stored tickets. The returned
// cleanup closes the store.
func BuildEngine(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*ticketai.Engine, func(), error) {
	components, err := cfg.Loader().Load()
	if err != nil {
		return nil, nil, err
	}

	predictor, err := classify.Open(cfg.Models.Dir, cfg.Models.Files)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.CheckClasses(predictor.Classes()); err != nil {
		return nil, nil, err
	}
	for _, info := range predictor.Describe() {
		logger.Info("model loaded",
			zap.String("name", info.Name),
			zap.String("version", info.Version),
			zap.String("algorithm", string(info.Algorithm)),
			zap.Strings("classes", info.Classes),
			zap.Int("features", info.Features))
	}

	st, err := OpenStore(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	engine := ticketai.New(ticketai.Options{
		Normalizer:  components.Normalizer,
		Extractor:   components.Extractor,
		Predictor:   predictor,
		IDs:         ticket.NewIDGenerator(cfg.Tickets.Prefix, cfg.Tickets.Start),
		Assembler:   ticket.Assembler{Status: cfg.Tickets.Status},
		Store:       st,
		TitleMaxLen: cfg.Tickets.TitleMaxLength,
		Thresholds:  cfg.Confidence,
		Logger:      logger,
	})
	if err := engine.SeedIDs(ctx); err != nil {
		engine.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := engine.Close(); err != nil {
			logger.Warn("close store", zap.Error(err))
		}
	}
	return engine, cleanup, nil
}
