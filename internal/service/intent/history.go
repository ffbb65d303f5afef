package intent

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// historyBudget trims prior turns so the classifier prompt stays within
// a token budget. Newest turns survive; the whole slice passes through
// when it already fits.
type historyBudget struct {
	maxTokens int

	once    sync.Once
	encoder *tiktoken.Tiktoken
}

func newHistoryBudget(maxTokens int) *historyBudget {
	return &historyBudget{maxTokens: maxTokens}
}

func (b *historyBudget) fit(history []string) []string {
	if b.maxTokens <= 0 || len(history) == 0 {
		return history
	}

	total := 0
	counts := make([]int, len(history))
	for i, msg := range history {
		counts[i] = b.count(msg)
		total += counts[i]
	}

	start := 0
	for start < len(history) && total > b.maxTokens {
		total -= counts[start]
		start++
	}
	return history[start:]
}

func (b *historyBudget) count(s string) int {
	b.once.Do(func() {
		// o200k_base covers the gpt-4o family.
		enc, err := tiktoken.GetEncoding("o200k_base")
		if err == nil {
			b.encoder = enc
		}
	})
	if b.encoder == nil {
		// Encoder dictionaries are fetched lazily; without them a rune
		// count is a usable overestimate for CJK-heavy text.
		return len([]rune(s))
	}
	return len(b.encoder.Encode(s, nil, nil))
}
