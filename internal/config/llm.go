package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/medgraph/pkg/log"
)

type LLMConfig struct {
	BaseURL string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com"`
	APIKey  string `env:"LLM_API_KEY,required,notEmpty"`
	Model   string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LLM config")
	}
	return c
}
