package intent

import (
	"context"
	"fmt"

	"github.com/sandevgo/motorbot/internal/core"
	"github.com/sandevgo/motorbot/pkg/log"
)

const systemPrompt = `你是亞鈺汽車的客服助手，請用以下 JSON 結構分析使用者訊息，並只回傳該 JSON：
{"category": "cars" | "company" | "other", "params": { ... }, "followup": "..."}
規則如下：
1. category 為 cars 時，params 會包含車輛查詢條件，欄位限定為：廠牌、車款、車型、年份、年式、顏色、車輛售價、行駛里程；數值條件請用 {"gte": n}、{"lte": n} 或 {"eq": n} 表示，例如 {"年份": {"gte": 2020}, "車輛售價": {"lte": "100萬"}}。
2. category 為 company 時，params 為使用者問的關鍵字，例如 {"關鍵字": "營業時間"}。
3. 無法判斷時請回傳 {"category": "other", "params": {}, "followup": "請詢問亞鈺汽車相關問題，謝謝！"}`

// Classifier asks the language model to label one utterance with a
// category and extracted filters. Prior turns ride along as plain user
// messages so follow-ups like "那白色的呢" resolve against context.
type Classifier struct {
	provider core.AIProvider
	history  *historyBudget
}

func NewClassifier(provider core.AIProvider, maxHistoryTokens int) *Classifier {
	return &Classifier{
		provider: provider,
		history:  newHistoryBudget(maxHistoryTokens),
	}
}

// Classify labels the utterance. Provider failures come back wrapped
// but with their retryability intact; malformed or out-of-contract
// model output is a ValidationError and must not be retried.
func (c *Classifier) Classify(ctx context.Context, history []string, utterance string) (core.Intent, error) {
	logger := log.FromCtx(ctx)

	messages := make([]core.Message, 0, len(history)+2)
	messages = append(messages, core.Message{Role: core.RoleSystem, Content: systemPrompt})
	for _, prior := range c.history.fit(history) {
		messages = append(messages, core.Message{Role: core.RoleUser, Content: prior})
	}
	messages = append(messages, core.Message{Role: core.RoleUser, Content: utterance})

	reply, err := c.provider.Chat(ctx, messages)
	if err != nil {
		return core.Intent{}, fmt.Errorf("classification failed: %w", err)
	}

	intent, err := Parse(reply.Content)
	if err != nil {
		logger.Warn().Err(err).Str("raw", truncateRaw(reply.Content)).Msg("unusable classifier output")
		return core.Intent{}, err
	}

	logger.Debug().
		Str("category", string(intent.Category)).
		Int("filters", len(intent.Filters)).
		Msg("utterance classified")
	return intent, nil
}

func truncateRaw(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
