package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Event types published on entity changes.
const (
	EventUserCreated         = "user.created"
	EventUserUpdated         = "user.updated"
	EventOrganisationCreated = "organisation.created"
	EventDomainCreated       = "domain.created"
)

// Event is the JSON payload published to the entity event queue. The worker
// binary consumes these for notification delivery.
type Event struct {
	Type     string         `json:"type"`
	EntityID string         `json:"entity_id"`
	At       time.Time      `json:"at"`
	Data     map[string]any `json:"data,omitempty"`
}

// EventPublisher is satisfied by helpers.RabbitPublisher.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// publishEvent fires an event without failing the surrounding use case.
// Event delivery is best-effort; entity state in Postgres is the source of
// truth.
func publishEvent(ctx context.Context, pub EventPublisher, logger *logrus.Logger, eventType, entityID string, data map[string]any) {
	if pub == nil {
		return
	}
	ev := Event{Type: eventType, EntityID: entityID, At: time.Now().UTC(), Data: data}
	if err := pub.PublishJSON(ctx, ev); err != nil && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{"event": eventType, "entity_id": entityID}).Warn("event publish failed")
	}
}
