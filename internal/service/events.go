package service

import (
	"context"

	"github.com/Skotchmaster/online_cafe/internal/logging"
	"github.com/Skotchmaster/online_cafe/internal/mykafka"
)

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// Notifier delivers verification codes to a phone.
type Notifier interface {
	SendVerificationCode(ctx context.Context, phone, code string) error
}

// LogNotifier writes the code to the log instead of sending an SMS and,
// when Events is set, announces the request on the user topic.
type LogNotifier struct {
	Events Publisher
}

func (n LogNotifier) SendVerificationCode(ctx context.Context, phone, code string) error {
	logging.FromContext(ctx).Info("verification_code_issued", "phone", phone, "code", code)
	if n.Events != nil {
		publish(ctx, n.Events, mykafka.TopicUserEvents, phone, "verification_code_requested", map[string]any{
			"phone": phone,
		})
	}
	return nil
}

// publish never fails the caller; delivery problems are only logged.
func publish(ctx context.Context, p Publisher, topic, key, eventType string, payload any) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, topic, key, mykafka.NewEvent(eventType, payload)); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "topic", topic, "type", eventType, "error", err)
	}
}
