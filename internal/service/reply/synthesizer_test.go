package reply

import (
	"context"
	"strings"
	"testing"

	"github.com/sandevgo/motorbot/internal/core"
)

type scriptedProvider struct {
	reply    string
	err      error
	messages []core.Message
}

func (p *scriptedProvider) Chat(_ context.Context, history []core.Message) (core.Message, error) {
	p.messages = history
	if p.err != nil {
		return core.Message{}, p.err
	}
	return core.Message{Role: core.RoleAssistant, Content: p.reply}, nil
}

func TestComposeCannedFollowupPassesThrough(t *testing.T) {
	provider := &scriptedProvider{}
	s := NewSynthesizer(provider)

	out := core.Outcome{Source: core.SourceNone, Followup: "請詢問亞鈺汽車相關問題，謝謝！"}
	got := s.Compose(context.Background(), "天氣如何", out)
	if got != out.Followup {
		t.Errorf("Compose() = %q", got)
	}
	if provider.messages != nil {
		t.Error("canned followups must not invoke the model")
	}
}

func TestComposeStructuredContext(t *testing.T) {
	provider := &scriptedProvider{reply: "亞鈺智能客服您好：為您找到一台 2021 年的 Lexus RX。"}
	s := NewSynthesizer(provider)

	out := core.Outcome{
		Source:  core.SourceStructured,
		Records: []core.Record{{"廠牌": "Lexus", "車款": "RX", "年份": 2021}},
	}
	got := s.Compose(context.Background(), "有Lexus嗎", out)
	if !strings.HasPrefix(got, ReplyPrefix) {
		t.Errorf("reply missing prefix: %q", got)
	}
	if len(provider.messages) != 2 {
		t.Fatalf("messages = %d", len(provider.messages))
	}
	if !strings.Contains(provider.messages[1].Content, "Lexus RX") {
		t.Errorf("prompt missing formatted record: %q", provider.messages[1].Content)
	}
}

func TestComposeAddsMissingPrefix(t *testing.T) {
	provider := &scriptedProvider{reply: "我們每天 9 點開門。"}
	s := NewSynthesizer(provider)

	out := core.Outcome{Source: core.SourceVector, Context: "營業時間 9:00-21:00"}
	got := s.Compose(context.Background(), "幾點開門", out)
	if got != ReplyPrefix+"我們每天 9 點開門。" {
		t.Errorf("Compose() = %q", got)
	}
}

func TestComposeDegradesOnModelFailure(t *testing.T) {
	provider := &scriptedProvider{err: &core.UpstreamError{Upstream: "openai", Status: 500}}
	s := NewSynthesizer(provider)

	out := core.Outcome{Source: core.SourceVector, Context: "營業時間 9:00-21:00"}
	got := s.Compose(context.Background(), "幾點開門", out)
	if !strings.Contains(got, "營業時間 9:00-21:00") {
		t.Errorf("degraded reply should carry the raw context: %q", got)
	}
}

func TestFormatRecord(t *testing.T) {
	rec := core.Record{
		"廠牌":   "Toyota",
		"車款":   "RAV4",
		"車型":   "2.0 旗艦",
		"年份":   2022,
		"顏色":   "白",
		"行駛里程": "3.2萬公里",
		"車輛售價": "89.8萬",
		"聯絡人":  "陳先生",
	}
	got := FormatRecord(rec)
	for _, want := range []string{"Toyota", "RAV4", "2022年式", "顏色：白", "售價：89.8萬", "電話不公開"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatRecord() = %q, missing %q", got, want)
		}
	}
}

func TestFormatRecordNonInventoryRow(t *testing.T) {
	got := FormatRecord(core.Record{"標題": "營業時間", "內容": "9:00-21:00"})
	if !strings.Contains(got, "營業時間") {
		t.Errorf("FormatRecord() = %q", got)
	}
}
