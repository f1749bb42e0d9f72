package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/starford/notemover/internal/history"
	"github.com/starford/notemover/internal/mover"
	"github.com/starford/notemover/internal/noteservice"
	"github.com/starford/notemover/internal/rules"
	"github.com/starford/notemover/internal/sse"
	"github.com/starford/notemover/internal/storage"
	"github.com/starford/notemover/internal/template"
)

// components is everything a command needs, built from one Config.
type components struct {
	store  *storage.FS
	db     *history.DB
	queue  *mover.Queue
	broker *sse.Broker
	engine *mover.Engine
	svc    *noteservice.Service

	drained chan struct{}
}

// newApplication applies opts. Unless a logger is supplied, logs go to
// logOut as JSON.
func newApplication(opts []Option, logOut io.Writer) (*application, error) {
	app := &application{out: os.Stdout, version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		// Initialize structured JSON logger.
		app.logger = slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}
	slog.SetDefault(app.logger)
	return app, nil
}

// build opens the vault and history and wires the move pipeline. Reports
// are drained on their own goroutine until close is called.
func (a *application) build(ctx context.Context) (*components, error) {
	cfg := a.config
	logger := a.logger

	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	matcher, err := rules.NewMatcher(cfg.Mover.Rules, cfg.Mover.Match)
	if err != nil {
		return nil, fmt.Errorf("init rules: %w", err)
	}

	db, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("init history: %w", err)
	}

	c := &components{
		store:   store,
		db:      db,
		queue:   mover.NewQueue(cfg.Mover.ReportBuffer),
		broker:  sse.NewBroker(15 * time.Second),
		drained: make(chan struct{}),
	}

	go func() {
		defer close(c.drained)
		c.queue.Run(ctx, func(r mover.Report) {
			mover.LogReport(logger, r)
			c.broker.PublishReport(r)
		})
	}()

	exec := mover.NewExecutor(store, cfg.Mover.Move, c.queue, template.NewFiles(store, cfg.Mover.TemplateFolder))
	c.engine = mover.NewEngine(store, matcher, exec,
		mover.WithRecorder(db),
		mover.WithLogger(logger),
	)
	c.svc = noteservice.NewService(c.engine, db, c.broker, cfg.Mover.Trigger)

	logger.Info("Move pipeline ready",
		slog.Int("rules", len(cfg.Mover.Rules)),
		slog.String("trigger", string(cfg.Mover.Trigger)),
		slog.String("indicator", mover.Indicator(cfg.Mover.Trigger)))

	return c, nil
}

// close flushes pending reports and releases the history database.
func (c *components) close(logger *slog.Logger) {
	c.queue.Close()
	<-c.drained
	if n := c.queue.Dropped(); n > 0 {
		logger.Warn("reports dropped", slog.Int("count", n))
	}
	c.broker.Close()
	if err := c.db.Close(); err != nil {
		logger.Error("close history failed", slog.String("error", err.Error()))
	}
}
