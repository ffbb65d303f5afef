package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sandevgo/motorbot/internal/config"
	"github.com/sandevgo/motorbot/internal/core"
	"github.com/sandevgo/motorbot/internal/providers/llm"
	"github.com/sandevgo/motorbot/internal/providers/pinecone"
	"github.com/sandevgo/motorbot/internal/providers/supabase"
	"github.com/sandevgo/motorbot/internal/service/engine"
	"github.com/sandevgo/motorbot/internal/service/filter"
	"github.com/sandevgo/motorbot/internal/service/intent"
	"github.com/sandevgo/motorbot/internal/service/reply"
	"github.com/sandevgo/motorbot/internal/service/resolver"
	"github.com/sandevgo/motorbot/internal/service/retrieval"
	"github.com/sandevgo/motorbot/internal/storage/memstore"
	"github.com/sandevgo/motorbot/internal/storage/sqlite"
	"github.com/sandevgo/motorbot/internal/transport/cli"
	"github.com/sandevgo/motorbot/internal/transport/line"
	"github.com/sandevgo/motorbot/internal/transport/telegram"
	"github.com/sandevgo/motorbot/pkg/log"
	"github.com/sandevgo/motorbot/pkg/srv"
)

// Rough token budget for prior turns in the classifier prompt.
const classifierHistoryTokens = 2000

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	err := initEnv(ctx, config.GetRuntimePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	supabaseCfg := config.NewSupabaseConfig(ctx)
	pineconeCfg := config.NewPineconeConfig(ctx)

	// 2. Session storage
	sessions, cleanup := initSessions(ctx, appCfg)
	if cleanup != nil {
		services = append(services, cleanup)
	}

	// 3. AI providers (chat + embeddings)
	chat, embedder, err := llm.NewProvider(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	// 4. Retrieval adapters
	store := supabase.NewClient(supabaseCfg.URL, supabaseCfg.Key)
	index := pinecone.NewClient(pineconeCfg.Endpoint, pineconeCfg.APIKey)

	structured := retrieval.NewStructured(store, supabaseCfg.Tables, supabaseCfg.Limit, appCfg.MaxRetries)
	vector := retrieval.NewVector(embedder, index, pineconeCfg.TopK, pineconeCfg.ScoreThreshold, appCfg.MaxRetries)

	// 5. Resolution engine
	res := resolver.New(
		sessions,
		intent.NewClassifier(chat, classifierHistoryTokens),
		filter.NewCompiler(nil),
		structured,
		vector,
		resolver.Config{
			TurnTimeout:  appCfg.TurnTimeout,
			MaxRetries:   appCfg.MaxRetries,
			PausePhrase:  appCfg.PausePhrase,
			ResumePhrase: appCfg.ResumePhrase,
		},
	)
	eng := engine.New(res, reply.NewSynthesizer(chat))

	// 6. Transports
	transports, err := initTransports(ctx, appCfg, eng)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	if len(transports) == 0 {
		logger.Fatal().Msg("no transport enabled, nothing to serve")
	}
	services = append(services, transports...)

	return services
}

func initSessions(ctx context.Context, cfg *config.AppConfig) (core.SessionStore, srv.Service) {
	logger := log.FromCtx(ctx)

	switch cfg.SessionBackend {
	case "sqlite":
		db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open session database")
		}
		return sqlite.NewSessions(db, cfg.SessionTTL, cfg.HistorySize, cfg.PivotField), srv.NewCleanup(db.Close)
	case "memory":
		return memstore.NewSessions(cfg.SessionTTL, cfg.HistorySize, cfg.PivotField), nil
	default:
		logger.Fatal().Str("backend", cfg.SessionBackend).Msg("unknown session backend")
		return nil, nil
	}
}

func initTransports(ctx context.Context, cfg *config.AppConfig, eng *engine.Engine) ([]srv.Service, error) {
	var services []srv.Service

	// LINE webhook server
	if cfg.EnableLine {
		lineCfg := config.NewLineConfig(ctx)
		services = append(services, line.NewServer(ctx, lineCfg, eng))
	}

	// Telegram Bot (staff channel)
	if cfg.EnableTelegram {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, eng)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	// Local terminal
	if cfg.EnableCLI {
		rl, err := cli.NewReadLine(eng, cfg)
		if err != nil {
			return nil, err
		}
		services = append(services, rl)
	}

	return services, nil
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
