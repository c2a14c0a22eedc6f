// Package app assembles the estimation stack from configuration. Both the
// HTTP server and the CLI build their dependencies through it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/crop-loss-service/internal/adapter/dataset"
	"github.com/couchcryptid/crop-loss-service/internal/adapter/imagery"
	kafkaadapter "github.com/couchcryptid/crop-loss-service/internal/adapter/kafka"
	"github.com/couchcryptid/crop-loss-service/internal/config"
	"github.com/couchcryptid/crop-loss-service/internal/domain"
	"github.com/couchcryptid/crop-loss-service/internal/estimator"
	"github.com/couchcryptid/crop-loss-service/internal/explain"
	"github.com/couchcryptid/crop-loss-service/internal/observability"
	"github.com/couchcryptid/crop-loss-service/internal/pipeline"
)

// App holds the wired service. Close releases what Build opened.
type App struct {
	Assessor  *pipeline.Assessor
	Readiness observability.ReadinessGroup
	// Audit is nil unless KAFKA_ENABLED is set. Its Run loop must be started
	// by the caller.
	Audit *pipeline.AuditPublisher

	closers []func() error
}

// Build wires the imagery client, dataset source, tier chain, explanation
// model and optional audit publisher.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*App, error) {
	a := &App{}

	var tiers []pipeline.Tier
	if provider, err := imageryProvider(cfg, logger, metrics); err != nil {
		return nil, err
	} else if provider != nil {
		sat := estimator.NewSatellite(provider, estimator.SatelliteConfig{
			BufferMPerHa: cfg.ImageryBufferMPerHa,
			MaxCloudPct:  cfg.ImageryMaxCloudPct,
		}, logger)
		tiers = append(tiers, pipeline.Tier{Name: pipeline.TierSatellite, Estimator: sat})
	}

	source, err := a.historicalSource(ctx, cfg, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	offline := estimator.NewOffline(source, estimator.OfflineConfig{
		WindowDays:     cfg.OfflineWindowDays,
		UnknownVillage: estimator.UnknownVillagePolicy(cfg.OfflineUnknownVillage),
	}, logger)
	tiers = append(tiers, pipeline.Tier{Name: pipeline.TierOffline, Estimator: offline})

	var sink pipeline.EventSink
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		a.closers = append(a.closers, writer.Close)
		a.Audit = pipeline.NewAuditPublisher(writer, logger, metrics, cfg.AuditBatchSize, cfg.AuditFlushInterval)
		a.Readiness = append(a.Readiness, observability.NamedCheck{Name: "audit", Checker: a.Audit})
		sink = a.Audit
		logger.Info("estimate audit publishing enabled", "topic", cfg.KafkaEstimateTopic, "brokers", cfg.KafkaBrokers)
	}

	orch := pipeline.NewOrchestrator(tiers, estimator.NewSimulation(cfg.SimulationSeedScale), sink, logger, metrics)
	svc := explain.NewService(loadModel(cfg.ModelPath, logger), logger, metrics)
	a.Assessor = pipeline.NewAssessor(orch, svc, logger)
	return a, nil
}

// Close releases the dataset connection and the Kafka writer.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func imageryProvider(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (domain.ImageryProvider, error) {
	if !cfg.ImageryEnabled {
		metrics.ImageryEnabled.Set(0)
		logger.Info("satellite imagery disabled")
		return nil, nil
	}
	client := imagery.NewClient(cfg.ImageryAPIURL, cfg.ImageryAPIKey, cfg.ImageryTimeout, metrics, logger)
	cached, err := imagery.NewCachedProvider(client, cfg.ImageryCacheSize, metrics)
	if err != nil {
		return nil, fmt.Errorf("imagery cache: %w", err)
	}
	metrics.ImageryEnabled.Set(1)
	logger.Info("satellite imagery enabled", "cache_size", cfg.ImageryCacheSize, "timeout", cfg.ImageryTimeout)
	return cached, nil
}

func (a *App) historicalSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.HistoricalSource, error) {
	if cfg.DatasetDriver == config.DriverCSV {
		src := dataset.NewCSVSource(cfg.DatasetPath)
		a.Readiness = append(a.Readiness, observability.NamedCheck{Name: "dataset", Checker: src})
		logger.Info("historical dataset", "driver", cfg.DatasetDriver, "path", cfg.DatasetPath)
		return src, nil
	}

	store, err := dataset.OpenSQL(ctx, cfg.DatasetDriver, cfg.DatasetDSN)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	a.Readiness = append(a.Readiness, observability.NamedCheck{Name: "dataset", Checker: store})
	logger.Info("historical dataset", "driver", cfg.DatasetDriver)
	return store, nil
}

// loadModel fails closed: an unreadable or invalid artifact leaves the
// service on the rule strategy.
func loadModel(path string, logger *slog.Logger) *explain.Model {
	if path == "" {
		logger.Info("no trained model configured, using rule strategy")
		return explain.NewRuleModel()
	}
	artifact, err := explain.LoadArtifact(path)
	if err != nil {
		logger.Warn("trained model unavailable, using rule strategy", "path", path, "error", err)
		return explain.NewRuleModel()
	}
	return explain.NewModel(artifact, logger)
}
