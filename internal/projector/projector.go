// Package projector folds workflow events into the redis status cache so
// the console's list refetches after every action stay cheap.
package projector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/autoparts-mx/commerce-engine/internal/commerce"
	kafkax "github.com/autoparts-mx/commerce-engine/internal/kafka"
	"github.com/autoparts-mx/commerce-engine/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Service struct {
	Redis *redis.Client
	Log   *zap.Logger
	Name  string
}

type cachedStatus struct {
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HandleEvent is wired as the consumer handler for all workflow topics.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env commerce.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.Name, env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	entity, id, status, err := project(env)
	if err != nil {
		return err
	}
	if entity == "" {
		return nil // event type this projector does not track
	}

	key := fmt.Sprintf(redisx.KeyStatus, entity, id)
	val := kafkax.MustMarshal(cachedStatus{Status: status, UpdatedAt: env.OccurredAt})
	if err := s.Redis.Set(ctx, key, val, redisx.TTLStatusCache).Err(); err != nil {
		return err
	}

	s.Log.Debug("status cached",
		zap.String("entity", entity), zap.String("id", id), zap.String("status", status))
	return nil
}

func project(env commerce.Envelope) (entity, id, status string, err error) {
	switch env.EventType {
	case commerce.EventPurchaseOrderReceived:
		p, err := kafkax.UnwrapPayload[commerce.PurchaseOrderReceivedPayload](env.Payload)
		if err != nil {
			return "", "", "", err
		}
		return redisx.EntityPurchaseOrder, p.PurchaseOrderID, string(commerce.PurchaseOrderReceived), nil
	case commerce.EventListingApproved, commerce.EventListingRejected:
		p, err := kafkax.UnwrapPayload[commerce.ListingModeratedPayload](env.Payload)
		if err != nil {
			return "", "", "", err
		}
		return redisx.EntityListing, p.ListingID, string(p.Status), nil
	case commerce.EventSaleCompleted:
		p, err := kafkax.UnwrapPayload[commerce.SaleCompletedPayload](env.Payload)
		if err != nil {
			return "", "", "", err
		}
		return redisx.EntityListing, p.ListingID, string(commerce.ListingSold), nil
	case commerce.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[commerce.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return "", "", "", err
		}
		return redisx.EntityOrder, p.OrderID, string(p.NewStatus), nil
	}
	return "", "", "", nil
}
