package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/sandevgo/medgraph/pkg/log"
	"github.com/sandevgo/medgraph/pkg/retry"
)

// RetryConfig is the one retry policy applied to every outbound call:
// graph store, prediction services, the reasoning model.
type RetryConfig struct {
	MaxAttempts          int `env:"RETRY_MAX_ATTEMPTS" envDefault:"3" validate:"min=1"`
	BaseDelayMs          int `env:"RETRY_BASE_DELAY_MS" envDefault:"300"`
	MaxDelayMs           int `env:"RETRY_MAX_DELAY_MS" envDefault:"20000"`
	JitterMs             int `env:"RETRY_JITTER_MS" envDefault:"50"`
	PerAttemptTimeoutSec int `env:"RETRY_PER_ATTEMPT_TIMEOUT_SEC" envDefault:"30"`
}

func NewRetryConfig(ctx context.Context) *RetryConfig {
	c := &RetryConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Retry config")
	}
	if err := validator.New().Struct(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("invalid Retry config")
	}
	return c
}

func (c RetryConfig) Policy() *retry.Policy {
	return &retry.Policy{
		MaxAttempts:       c.MaxAttempts,
		BaseDelay:         time.Duration(c.BaseDelayMs) * time.Millisecond,
		MaxDelay:          time.Duration(c.MaxDelayMs) * time.Millisecond,
		Jitter:            time.Duration(c.JitterMs) * time.Millisecond,
		PerAttemptTimeout: time.Duration(c.PerAttemptTimeoutSec) * time.Second,
	}
}
