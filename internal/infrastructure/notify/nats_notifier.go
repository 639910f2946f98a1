package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/docvault-ai/docvault/internal/core/domain"
)

// NATSNotifier publishes workflow notifications to a NATS subject.
// Delivery is fire-and-forget; downstream consumers (mail gateway,
// webhook bridge) subscribe to the subject independently.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
}

func NewNATSNotifier(conn *nats.Conn, subject string) *NATSNotifier {
	return &NATSNotifier{conn: conn, subject: subject}
}

type notificationMessage struct {
	Recipient  string `json:"recipient"`
	Message    string `json:"message"`
	DocumentID string `json:"document_id"`
	RuleID     string `json:"rule_id"`
}

func (n *NATSNotifier) Notify(_ context.Context, notification domain.Notification) error {
	payload, err := json.Marshal(notificationMessage{
		Recipient:  notification.Recipient,
		Message:    notification.Message,
		DocumentID: notification.DocumentID,
		RuleID:     notification.RuleID,
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := n.conn.Publish(n.subject, payload); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}
