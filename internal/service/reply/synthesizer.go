package reply

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sandevgo/motorbot/internal/core"
	"github.com/sandevgo/motorbot/pkg/log"
)

// ReplyPrefix opens every synthesized answer so customers always know
// who is talking.
const ReplyPrefix = "亞鈺智能客服您好："

const personaPrompt = "你是亞鈺汽車的50年資深客服專員，擅長拆解並解答問題。\n" +
	"請先閱讀參考資料（若有）再回答，用自然、貼近人心的口吻回覆客戶問題，整體不要超過250字。\n" +
	"若內容不足，請先提出需要進一步資訊的問題。"

// Synthesizer turns a resolution outcome into the natural-language
// reply that goes back over the transport. Canned followups pass
// through untouched; retrieved context goes through the language model
// with the dealership persona.
type Synthesizer struct {
	provider core.AIProvider
}

func NewSynthesizer(provider core.AIProvider) *Synthesizer {
	return &Synthesizer{provider: provider}
}

// Compose produces the final reply text. A synthesis failure never
// fails the turn: the formatted source material is returned directly
// instead, which is worse prose but still a correct answer.
func (s *Synthesizer) Compose(ctx context.Context, question string, out core.Outcome) string {
	logger := log.FromCtx(ctx)

	material := s.contextFor(out)
	if material == "" {
		if out.Followup != "" {
			return out.Followup
		}
		return ReplyPrefix + "感謝您的詢問，目前您的問題需要專人回覆您，請稍後馬上有人為您服務！"
	}

	messages := []core.Message{
		{Role: core.RoleSystem, Content: personaPrompt},
		{Role: core.RoleUser, Content: fmt.Sprintf("【資料來源：%s】\n參考資料：\n%s\n\n問題：%s", out.Source, material, question)},
	}

	answer, err := s.provider.Chat(ctx, messages)
	if err != nil {
		logger.Warn().Err(err).Msg("reply synthesis failed, answering with raw context")
		return ReplyPrefix + material
	}

	text := strings.TrimSpace(answer.Content)
	if !strings.HasPrefix(text, ReplyPrefix) {
		text = ReplyPrefix + text
	}
	return text
}

func (s *Synthesizer) contextFor(out core.Outcome) string {
	switch out.Source {
	case core.SourceVector:
		return out.Context
	case core.SourceStructured:
		lines := make([]string, 0, len(out.Records))
		for _, rec := range out.Records {
			lines = append(lines, FormatRecord(rec))
		}
		return strings.Join(lines, "\n")
	}
	return ""
}

// FormatRecord renders one inventory row as a single listing line.
// Rows that don't look like car inventory fall back to compact JSON so
// knowledge-table rows still produce usable context.
func FormatRecord(rec core.Record) string {
	if _, ok := rec["廠牌"]; !ok {
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Sprintf("%v", rec)
		}
		return string(raw)
	}

	return strings.TrimSpace(fmt.Sprintf(
		"%s %s %s %s年式，顏色：%s，里程：%s，售價：%s，聯絡人：%s（%s）",
		field(rec, "廠牌", ""),
		field(rec, "車款", ""),
		field(rec, "車型", ""),
		field(rec, "年份", "未標示"),
		field(rec, "顏色", "未標示"),
		field(rec, "行駛里程", "未標示"),
		field(rec, "車輛售價", "洽詢"),
		field(rec, "聯絡人", "N/A"),
		field(rec, "行動電話", "電話不公開"),
	))
}

func field(rec core.Record, key, fallback string) string {
	v, ok := rec[key]
	if !ok || v == nil {
		return fallback
	}
	s := strings.TrimSpace(fmt.Sprintf("%v", v))
	if s == "" {
		return fallback
	}
	return s
}
