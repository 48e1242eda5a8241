// Package workflow holds the status-driven transitions the admin console
// orchestrates: purchase order receiving, listing moderation, sale
// completion with commission, and order fulfillment. Every operation
// validates before it mutates; all persistence goes through the gateway.
package workflow

import (
	"time"

	"github.com/autoparts-mx/commerce-engine/internal/commerce"
	"github.com/autoparts-mx/commerce-engine/internal/gateway"
	kafkax "github.com/autoparts-mx/commerce-engine/internal/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Role string

const RoleAdmin Role = "ADMIN"

// Actor is the explicit caller identity; authorization is a precondition
// checked inside each mutating operation, not ambient state.
type Actor struct {
	ID   string
	Role Role
}

// Result is the uniform outcome of every workflow operation.
type Result struct {
	Entity         string         `json:"entity"`
	ID             string         `json:"id"`
	PreviousStatus string         `json:"previous_status"`
	NewStatus      string         `json:"new_status"`
	Sale           *commerce.Sale `json:"sale,omitempty"`
}

// Publisher is what the engine needs from the event pipeline. Nil disables
// publishing (tests, offline tooling).
type Publisher interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header)
}

type Engine struct {
	GW      gateway.Gateway
	Pub     Publisher
	Log     *zap.Logger
	Service string
}

func New(gw gateway.Gateway, pub Publisher, log *zap.Logger, service string) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{GW: gw, Pub: pub, Log: log, Service: service}
}

func requireAdmin(actor Actor, entity, id string) error {
	if actor.Role != RoleAdmin {
		return &commerce.Error{
			Kind: commerce.KindPreconditionFailed, Code: commerce.CodeNotAuthorized,
			Entity: entity, ID: id,
		}
	}
	return nil
}

func (e *Engine) publish(topic, eventType, entityID, actorID string, payload any) {
	if e.Pub == nil {
		return
	}
	ev := commerce.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      e.Service,
		ActorID:       actorID,
		CorrelationID: entityID,
		Payload:       kafkax.MustMarshal(payload),
	}
	e.Pub.Publish(topic, commerce.PartitionKey(entityID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
