package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/motorbot/pkg/log"
)

type SupabaseConfig struct {
	URL string `env:"SUPABASE_URL,required,notEmpty"`
	Key string `env:"SUPABASE_KEY,required,notEmpty"`
	// Tables is the ordered fallback list for structured retrieval.
	Tables []string `env:"SUPABASE_TABLES" envSeparator:"," envDefault:"cars,company"`
	Limit  int      `env:"SUPABASE_QUERY_LIMIT" envDefault:"5"`
}

func NewSupabaseConfig(ctx context.Context) *SupabaseConfig {
	c := &SupabaseConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Supabase config")
	}
	return c
}
