package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sandevgo/medgraph/internal/config"
	"github.com/sandevgo/medgraph/internal/providers/llm"
	"github.com/sandevgo/medgraph/internal/providers/predict"
	"github.com/sandevgo/medgraph/internal/service/agent"
	"github.com/sandevgo/medgraph/internal/storage/neo4j"
	"github.com/sandevgo/medgraph/internal/storage/sqlite"
	"github.com/sandevgo/medgraph/internal/tools"
	"github.com/sandevgo/medgraph/internal/tools/builtin"
	httptransport "github.com/sandevgo/medgraph/internal/transport/http"
	"github.com/sandevgo/medgraph/internal/transport/mcpserver"
	"github.com/sandevgo/medgraph/pkg/log"
	"github.com/sandevgo/medgraph/pkg/retry"
	"github.com/sandevgo/medgraph/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	retrier := retry.NewRetrier(config.NewRetryConfig(ctx).Policy())

	// 2. Storage
	db, messagesRepo, ehrRepo, err := initStorage(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	// 3. Graph store
	graphStore, err := neo4j.NewStore(ctx, config.NewNeo4jConfig(ctx), retrier, appCfg.MaxQueryLength)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize graph store")
	}
	services = append(services, srv.NewCleanup(func() error {
		return graphStore.Close(context.Background())
	}))

	// 4. Prediction service client
	predictClient := predict.NewClient(config.NewPredictConfig(ctx), retrier)

	// 5. Tool registry
	registry, err := initTools(ehrRepo, graphStore, predictClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register tools")
	}

	// 6. AI Provider
	aiProvider := llm.NewOpenAICompatible(config.NewLLMConfig(ctx))

	// 7. Agent Service
	orchestrator := agent.NewOrchestrator(appCfg, aiProvider, registry, messagesRepo, retrier)

	// 8. Transports
	services = append(services, initTransports(ctx, appCfg, orchestrator, registry, db, graphStore, predictClient)...)

	return services
}

func initStorage(ctx context.Context, cfg *config.AppConfig) (*sql.DB, *sqlite.MessagesRepo, *sqlite.EHRRepo, error) {
	db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
	if err != nil {
		return nil, nil, nil, err
	}
	return db, sqlite.NewMessagesRepo(db), sqlite.NewEHRRepo(db), nil
}

func initTools(ehrRepo *sqlite.EHRRepo, graphStore *neo4j.Store, predictClient *predict.Client) (*tools.Registry, error) {
	registry := tools.NewRegistry()

	descriptors := builtin.NewKnowledgeGraph(ehrRepo, graphStore).Descriptors()
	descriptors = append(descriptors, builtin.NewLookup(ehrRepo).Descriptors()...)
	descriptors = append(descriptors, builtin.NewPredictions(predictClient).Descriptors()...)

	for _, d := range descriptors {
		if err := registry.Register(d); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func initTransports(
	ctx context.Context,
	cfg *config.AppConfig,
	orchestrator *agent.Orchestrator,
	registry *tools.Registry,
	db *sql.DB,
	graphStore *neo4j.Store,
	predictClient *predict.Client,
) []srv.Service {
	handler := httptransport.NewHandler(orchestrator, map[string]httptransport.Pinger{
		"sqlite":     httptransport.PingerFunc(db.PingContext),
		"neo4j":      graphStore,
		"prediction": predictClient,
	})

	services := []srv.Service{httptransport.NewServer(ctx, cfg, handler)}

	if cfg.EnableMCP {
		services = append(services, mcpserver.NewServer(registry))
	}
	return services
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
