package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// validSignature checks the X-Line-Signature header: base64 of the
// HMAC-SHA256 of the raw request body, keyed with the channel secret.
func validSignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
