package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/sandevgo/motorbot/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"MOTORBOT_RUNTIME_PATH" envDefault:".motorbot"`
	// Allow selecting the provider
	LLMProvider string `env:"LLM_PROVIDER" envDefault:"openai"`

	// Transport Flags
	EnableLine     bool `env:"ENABLE_LINE" envDefault:"true"`
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`
	EnableCLI      bool `env:"ENABLE_CLI" envDefault:"false"`

	// Conversational memory
	HistorySize    int           `env:"HISTORY_SIZE" envDefault:"10"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	SessionBackend string        `env:"SESSION_BACKEND" envDefault:"memory"`
	// PivotField resets the whole conversation context when its value changes.
	PivotField string `env:"PIVOT_FIELD" envDefault:"廠牌"`

	// Per-turn budget across all upstream calls.
	TurnTimeout time.Duration `env:"TURN_TIMEOUT" envDefault:"10s"`
	// Bounded retries for transient upstream failures.
	MaxRetries int `env:"UPSTREAM_MAX_RETRIES" envDefault:"3"`

	// Manual-operator mode trigger phrases.
	PausePhrase  string `env:"OPERATOR_PAUSE_PHRASE" envDefault:"人工客服您好"`
	ResumePhrase string `env:"OPERATOR_RESUME_PHRASE" envDefault:"人工客服結束"`
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

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "motorbot.db")
}
