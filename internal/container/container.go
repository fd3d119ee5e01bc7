// Package container provides dependency injection for the finance-agent
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/kcbailey111/finance-agent/internal/anomaly"
	"github.com/kcbailey111/finance-agent/internal/categorizer"
	"github.com/kcbailey111/finance-agent/internal/config"
	"github.com/kcbailey111/finance-agent/internal/ingest"
	"github.com/kcbailey111/finance-agent/internal/logging"
	"github.com/kcbailey111/finance-agent/internal/pipeline"
	"github.com/kcbailey111/finance-agent/internal/recurring"
	"github.com/kcbailey111/finance-agent/internal/store"
)

// Container holds all application dependencies and provides methods to
// access them. Fields are private and only reachable through getters, so
// nothing can rewire a dependency after initialization.
type Container struct {
	logger    logging.Logger
	config    *config.Config
	ruleStore *store.RuleStore
	engine    *categorizer.RuleEngine
	secondary categorizer.SecondaryClassifier
	router    *categorizer.Router
	loader    *ingest.Loader
	anomalies *anomaly.Detector
	recurring *recurring.Detector
	pipeline  *pipeline.Pipeline
}

// NewContainer creates and wires all application dependencies from the
// validated configuration.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)

	if cfg.CSV.Delimiter != "" {
		ingest.SetDelimiter([]rune(cfg.CSV.Delimiter)[0])
	}

	ruleStore := store.NewRuleStore(cfg.Rules.File, cfg.Rules.OverridesFile)
	engine := categorizer.NewRuleEngine(ruleStore, logger)

	if cfg.AI.Enabled && cfg.AI.APIKey == "" {
		cfg.AI.APIKey = config.GetGeminiAPIKey()
	}

	var secondary categorizer.SecondaryClassifier
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		gemini, err := categorizer.NewGeminiClassifier(
			ctx,
			cfg.AI.APIKey,
			cfg.AI.Model,
			engine.CategoryNames(),
			time.Duration(cfg.AI.TimeoutSeconds)*time.Second,
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini classifier: %w", err)
		}
		secondary = gemini
		logger.Info("AI escalation enabled",
			logging.Field{Key: "model", Value: cfg.AI.Model})
	} else {
		logger.Info("AI escalation disabled")
	}

	routerOpts := []categorizer.RouterOption{
		categorizer.WithThresholds(cfg.Routing.AcceptThreshold, cfg.Routing.EscalateThreshold),
	}
	if secondary != nil {
		routerOpts = append(routerOpts,
			categorizer.WithSecondary(secondary),
			categorizer.WithVerdictLearning(),
		)
	}
	router := categorizer.NewRouter(engine, logger, routerOpts...)

	anomalyDetector := anomaly.NewDetector(cfg.Anomaly.ZScoreThreshold, cfg.Anomaly.IQRMultiplier, logger)
	recurringDetector := recurring.NewDetector(
		cfg.Recurring.MinOccurrences,
		cfg.Recurring.MonthlyMinDays,
		cfg.Recurring.MonthlyMaxDays,
		cfg.Recurring.AmountTolerance,
		logger,
	)

	return &Container{
		logger:    logger,
		config:    cfg,
		ruleStore: ruleStore,
		engine:    engine,
		secondary: secondary,
		router:    router,
		loader:    ingest.NewLoader(logger),
		anomalies: anomalyDetector,
		recurring: recurringDetector,
		pipeline:  pipeline.New(router, anomalyDetector, recurringDetector, logger),
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetRouter returns the escalation router.
func (c *Container) GetRouter() *categorizer.Router {
	return c.router
}

// GetLoader returns the CSV loader.
func (c *Container) GetLoader() *ingest.Loader {
	return c.loader
}

// GetAnomalyDetector returns the anomaly detector.
func (c *Container) GetAnomalyDetector() *anomaly.Detector {
	return c.anomalies
}

// GetRecurringDetector returns the recurring charge detector.
func (c *Container) GetRecurringDetector() *recurring.Detector {
	return c.recurring
}

// GetPipeline returns the full enrichment pipeline.
func (c *Container) GetPipeline() *pipeline.Pipeline {
	return c.pipeline
}

// Close releases container resources: learned merchant overrides are
// persisted and the AI client connection is shut down.
func (c *Container) Close() error {
	if err := c.engine.SaveOverrides(); err != nil {
		c.logger.WithError(err).Warn("Failed to save merchant overrides")
	}
	if closer, ok := c.secondary.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
