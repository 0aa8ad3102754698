package pipeline

import (
	"github.com/dmorandell/innkeeper/common/environment"
	"github.com/dmorandell/innkeeper/internal/innkeeper/supervise"
)

// StageMode says whether a stage runs its new implementation or defers to the
// legacy collaborator. Rollout state is plain data on the Config, injected at
// construction; nothing in the pipeline reads process environment at turn
// time.
type StageMode string

const (
	// StageActive runs the stage's own implementation.
	StageActive StageMode = "active"
	// StageLegacy makes the stage a no-op; the legacy handler owns its
	// output for the turn.
	StageLegacy StageMode = "legacy"
)

// Config is the pipeline rollout and behavior configuration.
type Config struct {
	// Per-stage rollout switches.
	Normalize   StageMode
	Plan        StageMode
	Audit       StageMode
	Supervise   StageMode
	StateUpdate StageMode
	Format      StageMode

	// Mode is the tenant's supervision mode for outbound replies.
	Mode supervise.Mode
	// DefaultLocale is used when a turn carries no detected language and the
	// conversation has none stored.
	DefaultLocale string
	// ConstrainedEnv enables the deterministic greeting fast path for
	// deployments without a model planner.
	ConstrainedEnv bool
	// HistoryDepth is how many recent turns are kept per conversation for
	// year inheritance and planner context.
	HistoryDepth int
}

// DefaultConfig runs every stage active, automatic mode, Spanish replies.
func DefaultConfig() Config {
	return Config{
		Normalize:     StageActive,
		Plan:          StageActive,
		Audit:         StageActive,
		Supervise:     StageActive,
		StateUpdate:   StageActive,
		Format:        StageActive,
		Mode:          supervise.ModeAutomatic,
		DefaultLocale: "es",
		HistoryDepth:  8,
	}
}

// ConfigFromEnv reads the rollout flags once at startup. Each stage has its
// own boolean so legacy and new paths can coexist during migration.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.Normalize = stageFromEnv("INNKEEPER_STAGE_NORMALIZE")
	cfg.Plan = stageFromEnv("INNKEEPER_STAGE_PLAN")
	cfg.Audit = stageFromEnv("INNKEEPER_STAGE_AUDIT")
	cfg.Supervise = stageFromEnv("INNKEEPER_STAGE_SUPERVISE")
	cfg.StateUpdate = stageFromEnv("INNKEEPER_STAGE_STATE_UPDATE")
	cfg.Format = stageFromEnv("INNKEEPER_STAGE_FORMAT")

	if environment.StringOr("INNKEEPER_SUPERVISION_MODE", "automatic") == "supervised" {
		cfg.Mode = supervise.ModeSupervised
	}
	cfg.DefaultLocale = environment.StringOr("INNKEEPER_DEFAULT_LOCALE", "es")
	cfg.ConstrainedEnv = environment.BoolOr("INNKEEPER_CONSTRAINED_ENV", false)
	cfg.HistoryDepth = environment.IntOr("INNKEEPER_HISTORY_DEPTH", 8)
	return cfg
}

func stageFromEnv(name string) StageMode {
	if environment.BoolOr(name, true) {
		return StageActive
	}
	return StageLegacy
}
