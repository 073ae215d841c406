package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/sandevgo/medgraph/pkg/log"
)

type Neo4jConfig struct {
	URI      string `env:"NEO4J_URI" envDefault:"bolt://localhost:7687" validate:"required,uri"`
	Username string `env:"NEO4J_USERNAME" envDefault:"neo4j"`
	Password string `env:"NEO4J_PASSWORD,required,notEmpty"`
	Database string `env:"NEO4J_DATABASE" envDefault:"neo4j"`
}

func NewNeo4jConfig(ctx context.Context) *Neo4jConfig {
	c := &Neo4jConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Neo4j config")
	}
	if err := validator.New().Struct(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("invalid Neo4j config")
	}
	return c
}
