package resolver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sandevgo/motorbot/internal/core"
	"github.com/sandevgo/motorbot/pkg/log"
	"github.com/sandevgo/motorbot/pkg/retry"
)

// Canned replies. Raw errors never reach the user; every failed turn
// collapses into exactly one of these.
const (
	MsgRetry       = "不好意思，請再試一次，我們會請專人協助您！"
	MsgUnavailable = "目前資料查詢異常，我們會請專人協助您！"
	MsgNoData      = "目前查無符合條件的資料，您還有其他問題嗎？"
	MsgOffTopic    = "請詢問亞鈺汽車相關問題，謝謝！"
	MsgPaused      = "已為您轉接人工客服，稍後將由專人回覆您。"
	MsgResumed     = "人工客服已結束，很高興繼續為您服務！"
)

// ErrSilenced marks a turn that must produce no reply at all: the user
// is being handled by a human operator.
var ErrSilenced = errors.New("session handed to manual operator")

type Classifier interface {
	Classify(ctx context.Context, history []string, utterance string) (core.Intent, error)
}

type Compiler interface {
	Compile(filters []core.Filter) []core.Predicate
}

type StructuredRetriever interface {
	Retrieve(ctx context.Context, predicates []core.Predicate) (core.RetrievalResult, error)
}

type VectorRetriever interface {
	Retrieve(ctx context.Context, question string) (core.RetrievalResult, error)
}

type Config struct {
	TurnTimeout  time.Duration
	MaxRetries   int
	PausePhrase  string
	ResumePhrase string
}

// Resolver drives one turn end to end: session bookkeeping,
// classification, topic merge, category-ordered retrieval. It owns the
// per-turn deadline and the error-to-fallback boundary.
type Resolver struct {
	sessions   core.SessionStore
	classifier Classifier
	compiler   Compiler
	structured StructuredRetriever
	vector     VectorRetriever
	cfg        Config
	retrier    *retry.Retrier
}

func New(sessions core.SessionStore, classifier Classifier, compiler Compiler, structured StructuredRetriever, vector VectorRetriever, cfg Config) *Resolver {
	if cfg.TurnTimeout <= 0 {
		cfg.TurnTimeout = 10 * time.Second
	}
	return &Resolver{
		sessions:   sessions,
		classifier: classifier,
		compiler:   compiler,
		structured: structured,
		vector:     vector,
		cfg:        cfg,
		retrier:    retry.NewUpstreamRetrier(cfg.MaxRetries, core.IsRetryable),
	}
}

// Resolve handles one inbound turn. The only error it ever returns is
// ErrSilenced; everything else is folded into a fallback Outcome so the
// transport always has something safe to send.
func (r *Resolver) Resolve(ctx context.Context, userID, text string) (core.Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.TurnTimeout)
	defer cancel()

	logger := log.FromCtx(ctx).With().Str("user_id", userID).Logger()
	ctx = logger.WithContext(ctx)

	text = strings.TrimSpace(text)

	if out, handled := r.handleOperatorPhrases(ctx, userID, text); handled {
		return out, nil
	}

	sess, err := r.sessions.Load(ctx, userID)
	if err != nil {
		logger.Error().Err(err).Msg("session load failed")
		return fallback(MsgUnavailable), nil
	}
	if sess.ManualOverride {
		return core.Outcome{}, ErrSilenced
	}

	if err := r.sessions.Append(ctx, userID, text); err != nil {
		logger.Error().Err(err).Msg("history append failed")
		return fallback(MsgUnavailable), nil
	}

	var intent core.Intent
	err = r.retrier.Do(ctx, func() error {
		var cErr error
		intent, cErr = r.classifier.Classify(ctx, sess.History, text)
		return cErr
	})
	if err != nil {
		var vErr *core.ValidationError
		if errors.As(err, &vErr) {
			logger.Warn().Err(err).Msg("unusable classification")
			return fallback(MsgRetry), nil
		}
		logger.Error().Err(err).Msg("classification failed")
		return fallback(MsgUnavailable), nil
	}

	if intent.Category == core.CategoryOutOfDomain {
		followup := intent.Followup
		if followup == "" {
			followup = MsgOffTopic
		}
		return fallback(followup), nil
	}

	if err := r.sessions.MergeTopic(ctx, userID, intent.FilterMap(), text); err != nil {
		logger.Error().Err(err).Msg("topic merge failed")
		return fallback(MsgUnavailable), nil
	}

	predicates := r.compiler.Compile(intent.Filters)
	out, err := r.retrieve(ctx, intent.Category, predicates, text)
	if err != nil {
		logger.Error().Err(err).Msg("retrieval failed")
		return fallback(MsgUnavailable), nil
	}
	return out, nil
}

// retrieve applies the category-driven source ordering: knowledge
// questions go to the similarity index first and fall through to the
// record store, also when the index itself is down; structured queries
// never touch the index.
func (r *Resolver) retrieve(ctx context.Context, category core.Category, predicates []core.Predicate, text string) (core.Outcome, error) {
	if category == core.CategoryKnowledge {
		res, err := r.vector.Retrieve(ctx, text)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("similarity search failed, trying record store")
		} else if res.Source == core.SourceVector {
			return core.Outcome{Source: core.SourceVector, Context: matchContext(res.Matches)}, nil
		}
	}

	res, err := r.structured.Retrieve(ctx, predicates)
	if err != nil {
		return core.Outcome{}, err
	}
	if res.Source == core.SourceStructured {
		return core.Outcome{Source: core.SourceStructured, Records: res.Records}, nil
	}

	return fallback(MsgNoData), nil
}

func (r *Resolver) handleOperatorPhrases(ctx context.Context, userID, text string) (core.Outcome, bool) {
	logger := log.FromCtx(ctx)

	switch text {
	case r.cfg.PausePhrase:
		if r.cfg.PausePhrase == "" {
			return core.Outcome{}, false
		}
		if err := r.sessions.Pause(ctx, userID); err != nil {
			logger.Error().Err(err).Msg("pause failed")
			return fallback(MsgUnavailable), true
		}
		logger.Info().Msg("session paused for manual operator")
		return fallback(MsgPaused), true
	case r.cfg.ResumePhrase:
		if r.cfg.ResumePhrase == "" {
			return core.Outcome{}, false
		}
		if err := r.sessions.Resume(ctx, userID); err != nil {
			logger.Error().Err(err).Msg("resume failed")
			return fallback(MsgUnavailable), true
		}
		logger.Info().Msg("session resumed from manual operator")
		return fallback(MsgResumed), true
	}
	return core.Outcome{}, false
}

func matchContext(matches []core.Match) string {
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, m.Text)
	}
	return strings.Join(parts, "\n\n")
}

func fallback(followup string) core.Outcome {
	return core.Outcome{Source: core.SourceNone, Followup: followup}
}
