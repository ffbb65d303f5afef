package engine

import (
	"context"

	"github.com/sandevgo/motorbot/internal/service/reply"
	"github.com/sandevgo/motorbot/internal/service/resolver"
)

// Engine is the one entry point transports talk to: resolve the turn,
// then phrase the outcome. The only error it surfaces is
// resolver.ErrSilenced, which means "send nothing".
type Engine struct {
	resolver    *resolver.Resolver
	synthesizer *reply.Synthesizer
}

func New(r *resolver.Resolver, s *reply.Synthesizer) *Engine {
	return &Engine{resolver: r, synthesizer: s}
}

func (e *Engine) Answer(ctx context.Context, userID, text string) (string, error) {
	out, err := e.resolver.Resolve(ctx, userID, text)
	if err != nil {
		return "", err
	}
	return e.synthesizer.Compose(ctx, text, out), nil
}
