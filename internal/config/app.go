package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/medgraph/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"MEDGRAPH_RUNTIME_PATH" envDefault:".medgraph"`

	// HTTP transport
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// Optional MCP stdio transport exposing the same tools
	EnableMCP bool `env:"ENABLE_MCP" envDefault:"false"`

	// Orchestrator budgets
	MaxIterations  int `env:"MAX_ITERATIONS" envDefault:"8"`
	RepairAttempts int `env:"REPAIR_ATTEMPTS" envDefault:"2"`

	// Per-request wall clock for one /chat run, seconds
	RequestTimeoutSec int `env:"REQUEST_TIMEOUT_SEC" envDefault:"120"`

	// History window sent to the reasoning model, in tokens
	HistoryTokenBudget int `env:"HISTORY_TOKEN_BUDGET" envDefault:"6000"`

	// Upper bound on user-supplied graph query length
	MaxQueryLength int `env:"MAX_QUERY_LENGTH" envDefault:"2000"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetSystemPromptPath() string {
	return filepath.Join(c.RuntimePath, "SYSTEM.md")
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "medgraph.db")
}
