// Package app assembles the Innkeeper application: state store, guest-facing
// Matrix channel, planner provider, dispatchers, and the turn pipeline.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmorandell/innkeeper/common/trace"
	"github.com/dmorandell/innkeeper/internal/innkeeper/audit"
	"github.com/dmorandell/innkeeper/internal/innkeeper/availability"
	"github.com/dmorandell/innkeeper/internal/innkeeper/channel"
	"github.com/dmorandell/innkeeper/internal/innkeeper/dispatch"
	"github.com/dmorandell/innkeeper/internal/innkeeper/domain"
	"github.com/dmorandell/innkeeper/internal/innkeeper/observability"
	"github.com/dmorandell/innkeeper/internal/innkeeper/pipeline"
	"github.com/dmorandell/innkeeper/internal/innkeeper/planner"
	"github.com/dmorandell/innkeeper/internal/innkeeper/policy"
	"github.com/dmorandell/innkeeper/internal/innkeeper/state"
	"github.com/dmorandell/innkeeper/internal/innkeeper/supervise"
	"github.com/dmorandell/innkeeper/internal/innkeeper/verdict"
)

// Config holds application configuration.
type Config struct {
	// TenantID identifies the property this instance serves. All
	// conversation state is namespaced under it.
	TenantID string

	// DatabasePath is the SQLite database file. Used by the sqlite state
	// backend, the supervision record store, and the Matrix sync store.
	DatabasePath string

	// StateBackend selects the conversation state store: "sqlite" (default),
	// "redis", or "memory". The supervision record store always lives in
	// SQLite regardless of this setting.
	StateBackend string

	// RedisAddr, RedisPassword and RedisDB configure the redis backend.
	// Ignored unless StateBackend is "redis".
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// RedisTTL is the idle conversation lifetime. Zero uses the store default.
	RedisTTL time.Duration

	// Matrix is the guest-facing chat listener configuration.
	Matrix channel.MatrixConfig

	// OpsRoomID is an optional Matrix room where disagreements, held turns,
	// and handoffs are announced to the operations team. Empty disables it.
	OpsRoomID string

	// Planner configures the OpenAI-compatible planner. An empty APIKey
	// leaves the pipeline in the deterministic constrained mode.
	Planner planner.Config

	// Availability configures the property-management availability client.
	// An empty BaseURL falls back to the built-in static room catalog.
	Availability availability.HTTPConfig

	// Document configures the document-delivery service used to mail
	// reservation summaries. An empty BaseURL disables that channel.
	Document dispatch.DocumentConfig

	// PolicyPath is an optional YAML file overriding the built-in
	// per-category agreement policy table.
	PolicyPath string

	// Pipeline holds the stage switches and supervision mode.
	Pipeline pipeline.Config

	// HTTPAddr is the TCP address for the optional health/status HTTP server
	// (e.g. ":8080"). When empty the server is disabled.
	HTTPAddr string
}

// App is the running application.
type App struct {
	config       *Config
	store        state.Store
	sqlite       *state.SQLiteStore
	matrix       *channel.Matrix
	records      *supervise.Records
	pipeline     *pipeline.Pipeline
	healthServer *HealthServer
}

// New wires the application together. The SQLite database is always opened,
// even when conversation state lives in Redis, because supervision records
// and the Matrix sync token are SQLite-only.
func New(config *Config) (*App, error) {
	slog.Info("opening database", "path", config.DatabasePath)
	sqlite, err := state.NewSQLite(config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var store state.Store
	switch config.StateBackend {
	case "", "sqlite":
		store = sqlite
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			sqlite.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		store = state.NewRedis(client, config.RedisTTL)
		slog.Info("conversation state backend: redis", "addr", config.RedisAddr)
	case "memory":
		store = state.NewMemory()
		slog.Warn("conversation state backend: memory, state is lost on restart")
	default:
		sqlite.Close()
		return nil, fmt.Errorf("unknown state backend %q", config.StateBackend)
	}

	// Inject the DB so the channel can persist the sync token across restarts.
	matrixCfg := config.Matrix
	matrixCfg.DB = sqlite.DB()
	slog.Info("connecting to Matrix", "homeserver", matrixCfg.Homeserver)
	matrixClient, err := channel.NewMatrix(matrixCfg)
	if err != nil {
		sqlite.Close()
		return nil, fmt.Errorf("failed to initialize Matrix channel: %w", err)
	}

	records := supervise.NewRecords(sqlite.DB())

	var notifier audit.Notifier = audit.Noop{}
	if config.OpsRoomID != "" {
		notifier = audit.NewMatrixNotifier(matrixClient, config.OpsRoomID)
		slog.Info("ops room notifier ready", "room", config.OpsRoomID)
	}

	// Agreement policy table: file override or built-in defaults.
	table := policy.Default()
	if config.PolicyPath != "" {
		table, err = policy.LoadFile(config.PolicyPath)
		if err != nil {
			sqlite.Close()
			return nil, fmt.Errorf("failed to load policy table: %w", err)
		}
		slog.Info("agreement policy table loaded", "path", config.PolicyPath)
	}

	// Planner provider. Without an API key the pipeline runs every turn
	// through the deterministic path.
	pipeCfg := config.Pipeline
	var provider planner.Provider
	if config.Planner.APIKey != "" {
		provider = planner.New(config.Planner)
		slog.Info("planner provider ready", "model", config.Planner.Model)
	} else {
		pipeCfg.ConstrainedEnv = true
		slog.Info("planner: no API key configured, deterministic mode active")
	}

	// Availability checker: property-management backend when configured,
	// otherwise the static room catalog.
	var checker availability.Checker
	if config.Availability.BaseURL != "" {
		checker = availability.NewHTTPChecker(config.Availability)
		slog.Info("availability checker: property-management backend", "base", config.Availability.BaseURL)
	} else {
		checker = availability.NewStaticChecker(availability.DefaultCatalog)
		slog.Info("availability checker: static catalog")
	}

	// Side-channel dispatchers for summary resend requests. The Matrix
	// dispatcher reuses the channel credentials; it only ever pushes.
	dispatchers := map[string]dispatch.Dispatcher{}
	matrixDisp, err := dispatch.NewMatrixDispatcher(dispatch.MatrixConfig{
		Homeserver:  config.Matrix.Homeserver,
		UserID:      config.Matrix.UserID,
		AccessToken: config.Matrix.AccessToken,
	})
	if err != nil {
		sqlite.Close()
		return nil, fmt.Errorf("failed to initialize Matrix dispatcher: %w", err)
	}
	dispatchers["matrix"] = matrixDisp
	if config.Document.BaseURL != "" {
		dispatchers["document"] = dispatch.NewDocumentDispatcher(config.Document)
		slog.Info("document dispatcher ready", "base", config.Document.BaseURL)
	}

	pipe, err := pipeline.New(pipeCfg, pipeline.Deps{
		Store:       store,
		Verdicts:    verdict.NewEngine(table),
		Provider:    provider,
		Records:     records,
		Notifier:    notifier,
		Checker:     checker,
		Dispatchers: dispatchers,
	})
	if err != nil {
		sqlite.Close()
		return nil, fmt.Errorf("failed to assemble pipeline: %w", err)
	}

	var healthServer *HealthServer
	if config.HTTPAddr != "" {
		healthServer = NewHealthServer(config.HTTPAddr, records)
		NewReviewAPI(records, notifier).RegisterRoutes(healthServer)
		slog.Info("health server configured", "addr", config.HTTPAddr)
	}

	return &App{
		config:       config,
		store:        store,
		sqlite:       sqlite,
		matrix:       matrixClient,
		records:      records,
		pipeline:     pipe,
		healthServer: healthServer,
	}, nil
}

// Run starts the application and blocks until an interrupt signal.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.healthServer != nil {
		if err := a.healthServer.Start(ctx); err != nil {
			slog.Warn("health server failed to start; continuing without it", "err", err)
		}
	}

	slog.Info("starting Matrix sync")
	if err := a.matrix.Start(ctx, a.handleMessage); err != nil {
		return fmt.Errorf("failed to start Matrix channel: %w", err)
	}

	if a.config.OpsRoomID != "" {
		a.matrix.SendNotice(a.config.OpsRoomID, "✅ Innkeeper started.")
	}

	slog.Info("Innkeeper is running; press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down")
	return nil
}

// Stop shuts the application down.
func (a *App) Stop() {
	slog.Info("stopping Matrix channel")
	a.matrix.Stop()

	if a.healthServer != nil {
		slog.Info("stopping health server")
		a.healthServer.Stop()
	}

	slog.Info("closing state store")
	if a.store != a.sqlite {
		a.store.Close()
	}
	a.sqlite.Close()
}

// handleMessage runs one inbound guest message through the pipeline and
// sends the reply when the turn auto-sends. Held turns stay silent toward
// the guest; the ops room notification was already posted by the pipeline.
func (a *App) handleMessage(ctx context.Context, msg channel.Message) {
	ctx = trace.WithTraceID(ctx, trace.GenerateID())
	log := observability.WithTrace(ctx)

	env := domain.TurnEnvelope{
		TenantID:         a.config.TenantID,
		Channel:          "matrix",
		ConversationID:   msg.RoomID,
		GuestID:          msg.Sender,
		Content:          msg.Content,
		DetectedLanguage: channel.DetectLanguage(msg.Content),
		Timestamp:        msg.At,
	}

	res, err := a.pipeline.HandleTurn(ctx, env)
	if err != nil {
		log.Error("turn failed", "room", msg.RoomID, "err", err)
		return
	}

	if !res.AutoSend {
		log.Info("turn held for review", "room", msg.RoomID, "category", res.Category)
		return
	}
	if err := a.matrix.SendText(msg.RoomID, res.Reply); err != nil {
		log.Error("failed to send reply", "room", msg.RoomID, "err", err)
	}
}
