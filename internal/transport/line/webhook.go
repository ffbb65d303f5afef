package line

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sandevgo/motorbot/internal/config"
	"github.com/sandevgo/motorbot/internal/service/resolver"
	"github.com/sandevgo/motorbot/pkg/conv"
	"github.com/sandevgo/motorbot/pkg/log"
)

// Answerer produces the reply for one inbound turn; resolver.ErrSilenced
// means no reply at all.
type Answerer interface {
	Answer(ctx context.Context, userID, text string) (string, error)
}

type webhookEvent struct {
	Type       string `json:"type"`
	ReplyToken string `json:"replyToken"`
	Source     struct {
		UserID string `json:"userId"`
	} `json:"source"`
	Message struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
}

type webhookBody struct {
	Events []webhookEvent `json:"events"`
}

// Server receives LINE webhook callbacks and answers through the reply
// API. LINE expects a 200 quickly regardless of what we do with the
// events; only a bad signature gets a 400.
type Server struct {
	cfg     *config.LineConfig
	engine  Answerer
	sender  *Sender
	httpSrv *http.Server
	baseCtx context.Context
}

func NewServer(ctx context.Context, cfg *config.LineConfig, eng Answerer) *Server {
	s := &Server{
		cfg:     cfg,
		engine:  eng,
		sender:  NewSender(cfg.AccessToken),
		baseCtx: ctx,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /callback", s.handleCallback)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.httpSrv = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.cfg.ListenAddr).Msg("starting line webhook server")
	if err := s.httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	logger := log.FromCtx(s.baseCtx)

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "read error", http.StatusBadRequest)
		return
	}

	if !validSignature(s.cfg.ChannelSecret, body, r.Header.Get("X-Line-Signature")) {
		logger.Warn().Msg("webhook signature mismatch")
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	var payload webhookBody
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Warn().Err(err).Msg("unparsable webhook body")
		w.WriteHeader(http.StatusOK)
		return
	}

	for _, event := range payload.Events {
		if event.Type != "message" || event.Message.Type != "text" {
			continue
		}
		if event.Message.Text == "" || event.ReplyToken == "" {
			continue
		}
		s.handleTurn(event)
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleTurn(event webhookEvent) {
	ctx := s.baseCtx
	logger := log.FromCtx(ctx).With().Str("user_id", event.Source.UserID).Logger()

	answer, err := s.engine.Answer(ctx, event.Source.UserID, event.Message.Text)
	if err != nil {
		if errors.Is(err, resolver.ErrSilenced) {
			logger.Info().Msg("manual operator active, staying silent")
			return
		}
		logger.Error().Err(err).Msg("turn failed")
		return
	}

	// LINE renders plain text only; strip any markdown the model slipped in.
	text := strings.TrimSpace(conv.MarkdownToPlainText([]byte(answer)))
	if text == "" {
		return
	}
	if err := s.sender.Reply(ctx, event.ReplyToken, text); err != nil {
		logger.Error().Err(err).Msg("failed to deliver line reply")
	}
}
