package main

import (
	"fmt"
	"os"

	"github.com/dmorandell/innkeeper/common/environment"
	"github.com/dmorandell/innkeeper/common/version"
	"github.com/dmorandell/innkeeper/internal/innkeeper/app"
	"github.com/dmorandell/innkeeper/internal/innkeeper/availability"
	"github.com/dmorandell/innkeeper/internal/innkeeper/channel"
	"github.com/dmorandell/innkeeper/internal/innkeeper/dispatch"
	"github.com/dmorandell/innkeeper/internal/innkeeper/observability"
	"github.com/dmorandell/innkeeper/internal/innkeeper/pipeline"
	"github.com/dmorandell/innkeeper/internal/innkeeper/planner"
)

func main() {
	fmt.Printf("Innkeeper Guest Support Agent\n")
	fmt.Printf("Version: %s\n", version.Version)
	fmt.Printf("Commit: %s\n", version.GitCommit)
	fmt.Printf("Build Time: %s\n", version.BuildTime)
	fmt.Println()

	observability.Setup(
		environment.StringOr("LOG_LEVEL", "info"),
		environment.StringOr("LOG_FORMAT", "text"),
	)

	// Load configuration from environment
	config := loadConfig()

	// Validate required configuration
	if config.Matrix.Homeserver == "" {
		fmt.Fprintf(os.Stderr, "Error: MATRIX_HOMESERVER is required\n")
		os.Exit(1)
	}
	if config.Matrix.UserID == "" {
		fmt.Fprintf(os.Stderr, "Error: MATRIX_USER_ID is required\n")
		os.Exit(1)
	}
	if config.Matrix.AccessToken == "" {
		fmt.Fprintf(os.Stderr, "Error: MATRIX_ACCESS_TOKEN is required\n")
		os.Exit(1)
	}

	// Create application
	innkeeper, err := app.New(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize Innkeeper: %v\n", err)
		os.Exit(1)
	}
	defer innkeeper.Stop()

	// Run application
	if err := innkeeper.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running Innkeeper: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration from environment variables
func loadConfig() *app.Config {
	return &app.Config{
		TenantID:     environment.StringOr("INNKEEPER_TENANT_ID", "default"),
		DatabasePath: environment.StringOr("DATABASE_PATH", "./innkeeper.db"),
		StateBackend: environment.StringOr("INNKEEPER_STATE_BACKEND", "sqlite"),

		RedisAddr:     environment.StringOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: environment.StringOr("REDIS_PASSWORD", ""),
		RedisDB:       environment.IntOr("REDIS_DB", 0),
		RedisTTL:      environment.DurationOr("REDIS_TTL", 0),

		Matrix: channel.MatrixConfig{
			Homeserver:  environment.StringOr("MATRIX_HOMESERVER", ""),
			UserID:      environment.StringOr("MATRIX_USER_ID", ""),
			AccessToken: environment.StringOr("MATRIX_ACCESS_TOKEN", ""),
			GuestRooms:  environment.StringSliceOr("MATRIX_GUEST_ROOMS", nil),
		},
		OpsRoomID: environment.StringOr("MATRIX_OPS_ROOM", ""),

		Planner: planner.Config{
			APIKey:  environment.StringOr("INNKEEPER_PLANNER_API_KEY", ""),
			BaseURL: environment.StringOr("INNKEEPER_PLANNER_ENDPOINT", ""),
			Model:   environment.StringOr("INNKEEPER_PLANNER_MODEL", ""),
		},

		Availability: availability.HTTPConfig{
			BaseURL: environment.StringOr("INNKEEPER_PMS_URL", ""),
			APIKey:  environment.StringOr("INNKEEPER_PMS_API_KEY", ""),
		},

		Document: dispatch.DocumentConfig{
			BaseURL: environment.StringOr("INNKEEPER_DOCUMENT_URL", ""),
			APIKey:  environment.StringOr("INNKEEPER_DOCUMENT_API_KEY", ""),
		},

		PolicyPath: environment.StringOr("INNKEEPER_POLICY_PATH", ""),
		Pipeline:   pipeline.ConfigFromEnv(),
		HTTPAddr:   environment.StringOr("INNKEEPER_HTTP_ADDR", ""),
	}
}
