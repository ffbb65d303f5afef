package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/sandevgo/motorbot/internal/config"
	"github.com/sandevgo/motorbot/internal/service/resolver"
	"github.com/sandevgo/motorbot/pkg/log"
)

const localUserID = "cli-local"

// Answerer produces the reply for one inbound turn; resolver.ErrSilenced
// means no reply at all.
type Answerer interface {
	Answer(ctx context.Context, userID, text string) (string, error)
}

// ReadLine is the local terminal transport, handy for trying prompts
// and filters without any messaging credentials.
type ReadLine struct {
	cfg    *config.AppConfig
	engine Answerer
	rl     *readline.Instance
}

func NewReadLine(eng Answerer, cfg *config.AppConfig) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(cfg.RuntimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:    cfg,
		engine: eng,
		rl:     rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("ReadLine chat started. Type 'exit' to quit.")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					return nil
				}
				continue
			} else if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		answer, err := r.engine.Answer(ctx, localUserID, line)
		if err != nil {
			if errors.Is(err, resolver.ErrSilenced) {
				continue
			}
			logger.Error().Err(err).Msg("turn failed")
			fmt.Fprintf(r.rl.Stdout(), "Error: %v\n", err)
			continue
		}
		fmt.Fprintf(r.rl.Stdout(), "%s\n", answer)
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
