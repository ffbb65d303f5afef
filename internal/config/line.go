package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/motorbot/pkg/log"
)

type LineConfig struct {
	ChannelSecret string `env:"LINE_CHANNEL_SECRET,required,notEmpty"`
	AccessToken   string `env:"LINE_CHANNEL_ACCESS_TOKEN,required,notEmpty"`
	ListenAddr    string `env:"LINE_LISTEN_ADDR" envDefault:":8000"`
}

func NewLineConfig(ctx context.Context) *LineConfig {
	c := &LineConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LINE config")
	}
	return c
}
