package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/motorbot/internal/config"
	"github.com/sandevgo/motorbot/internal/service/resolver"
	"github.com/sandevgo/motorbot/pkg/conv"
	"github.com/sandevgo/motorbot/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

// Answerer produces the reply for one inbound turn; resolver.ErrSilenced
// means no reply at all.
type Answerer interface {
	Answer(ctx context.Context, userID, text string) (string, error)
}

// Bot is the optional Telegram transport, mostly used by the dealership
// staff to poke at the engine without going through LINE.
type Bot struct {
	bot    *tele.Bot
	cfg    *config.TelegramConfig
	engine Answerer
}

func NewBot(ctx context.Context, cfg *config.TelegramConfig, eng Answerer) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:    b,
		cfg:    cfg,
		engine: eng,
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Staff channel: only the configured owner gets answers.
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if cfg.OwnerID != 0 && c.Sender().ID != cfg.OwnerID {
				return nil
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)
	userID := fmt.Sprintf("telegram-%d", c.Chat().ID)

	_ = c.Notify(tele.Typing)

	answer, err := b.engine.Answer(ctx, userID, c.Text())
	if err != nil {
		if errors.Is(err, resolver.ErrSilenced) {
			return nil
		}
		logger.Error().Err(err).Msg("turn failed")
		return nil
	}

	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(answer)))
	if html == "" {
		return nil
	}
	if err := c.Send(html, tele.ModeHTML); err != nil {
		logger.Error().Err(err).Msg("failed to send telegram message")
	}
	return nil
}
