package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include query variables in spans; refused in production by config validation
	SlowQueryThresh time.Duration // default 200ms
}

// DBTracingPlugin registers otelgorm and marks slow or failed queries on their spans.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin with the given configuration.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

type queryStartKey struct{}

// Register installs otelgorm and the slow query callbacks on db
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	hooks := []struct {
		name     string
		register func(name string, before bool) error
	}{
		{"create", func(n string, before bool) error {
			if before {
				return cb.Create().Before("gorm:create").Register(n, p.before)
			}
			return cb.Create().After("gorm:create").Register(n, p.after)
		}},
		{"query", func(n string, before bool) error {
			if before {
				return cb.Query().Before("gorm:query").Register(n, p.before)
			}
			return cb.Query().After("gorm:query").Register(n, p.after)
		}},
		{"update", func(n string, before bool) error {
			if before {
				return cb.Update().Before("gorm:update").Register(n, p.before)
			}
			return cb.Update().After("gorm:update").Register(n, p.after)
		}},
		{"delete", func(n string, before bool) error {
			if before {
				return cb.Delete().Before("gorm:delete").Register(n, p.before)
			}
			return cb.Delete().After("gorm:delete").Register(n, p.after)
		}},
		{"row", func(n string, before bool) error {
			if before {
				return cb.Row().Before("gorm:row").Register(n, p.before)
			}
			return cb.Row().After("gorm:row").Register(n, p.after)
		}},
		{"raw", func(n string, before bool) error {
			if before {
				return cb.Raw().Before("gorm:raw").Register(n, p.before)
			}
			return cb.Raw().After("gorm:raw").Register(n, p.after)
		}},
	}
	for _, h := range hooks {
		if err := h.register("otel_timing:before_"+h.name, true); err != nil {
			return err
		}
		if err := h.register("otel_slow_query:"+h.name, false); err != nil {
			return err
		}
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

func (p *DBTracingPlugin) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (p *DBTracingPlugin) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	startTime, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(startTime); elapsed > p.config.SlowQueryThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
		))
	}
}
