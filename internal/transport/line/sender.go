package line

import (
	"context"
	"net/http"
	"time"

	"github.com/sandevgo/motorbot/internal/providers/rest"
)

const messagingAPIBase = "https://api.line.me"

// Sender delivers replies through the LINE Messaging API. A reply token
// is single-use and expires quickly, so there is no retry here; a
// failed send is logged by the caller and dropped.
type Sender struct {
	rest  *rest.Client
	token string
}

func NewSender(accessToken string) *Sender {
	return &Sender{
		rest:  rest.NewClient("line", messagingAPIBase, 10*time.Second),
		token: accessToken,
	}
}

func newSenderWithBase(accessToken, baseURL string) *Sender {
	return &Sender{
		rest:  rest.NewClient("line", baseURL, 10*time.Second),
		token: accessToken,
	}
}

func (s *Sender) Reply(ctx context.Context, replyToken, text string) error {
	payload := map[string]any{
		"replyToken": replyToken,
		"messages": []map[string]string{
			{"type": "text", "text": text},
		},
	}
	headers := map[string]string{
		"Authorization": "Bearer " + s.token,
	}
	return s.rest.DoJSON(ctx, http.MethodPost, "/v2/bot/message/reply", payload, headers, nil)
}
