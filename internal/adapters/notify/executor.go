package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"arena/internal/adapters/email"
)

// EmailExecutor replays a deferred notification email from its outbox payload.
type EmailExecutor struct {
	Sender email.Sender
}

// Execute sends the email encoded in payload.
// PRE: payload is a JSON-encoded email.SendRequest
// POST: Returns the provider message ID
func (e *EmailExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var req email.SendRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	if len(req.To) == 0 {
		return "", fmt.Errorf("payload has no recipient")
	}
	res, err := e.Sender.Send(ctx, req)
	if err != nil {
		return "", err
	}
	return res.MessageID, nil
}
