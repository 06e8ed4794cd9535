package sinks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"casino-wallet/internal/httpclient"
)

const SignatureHeader = "X-Wallet-Signature"

// WebhookAdapter posts the event JSON as-is. With a secret the body is signed
// with HMAC-SHA256 so receivers can verify the sender.
type WebhookAdapter struct {
	client *httpclient.Client
}

func NewWebhookAdapter(client *httpclient.Client) *WebhookAdapter {
	return &WebhookAdapter{client: client}
}

func (a *WebhookAdapter) Name() string {
	return "webhook"
}

func (a *WebhookAdapter) Send(ctx context.Context, endpoint, secret string, msg Message) error {
	headers := map[string]string{}
	if secret != "" {
		headers[SignatureHeader] = Sign(secret, msg.Body)
	}
	return a.client.PostJSON(ctx, endpoint, headers, json.RawMessage(msg.Body), nil)
}

func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
