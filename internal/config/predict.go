package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/sandevgo/medgraph/pkg/log"
)

type PredictConfig struct {
	BaseURL    string `env:"PREDICT_BASE_URL" envDefault:"http://localhost:8500" validate:"required,url"`
	TimeoutSec int    `env:"PREDICT_TIMEOUT_SEC" envDefault:"15"`
}

func NewPredictConfig(ctx context.Context) *PredictConfig {
	c := &PredictConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Predict config")
	}
	if err := validator.New().Struct(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("invalid Predict config")
	}
	return c
}
