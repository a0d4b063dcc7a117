package messenger

import (
	"encoding/json"

	"github.com/openmint/nft-marketplace/internal/event"
	"go.uber.org/zap"
)

type EventPublisher interface {
	Subscribe()
}

type eventPublisher struct {
	messageService MessageService
}

// NewEventPublisher fans marketplace transition events out to the broker so
// consumers outside this process can react to them.
func NewEventPublisher(messageService MessageService) EventPublisher {
	return eventPublisher{messageService}
}

func (p eventPublisher) Subscribe() {
	for _, eventType := range []event.Type{
		event.AssetMintedEvent,
		event.AssetBurnedEvent,
		event.ListingCreatedEvent,
		event.ListingPriceUpdatedEvent,
		event.ListingSoldEvent,
		event.ListingCancelledEvent,
	} {
		eventType := eventType
		event.AddEventListener(eventType, func(msg interface{}) {
			p.publish(eventType, msg)
		})
	}
}

func (p eventPublisher) publish(eventType event.Type, msg interface{}) {
	body, err := json.Marshal(Envelope{Type: string(eventType), Payload: msg})
	if err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to encode event envelope")
		return
	}

	if err := p.messageService.SendMessage(MarketEvents, body, false); err != nil {
		zap.L().With(zap.Error(err), zap.String("event", string(eventType))).Error("Failed to publish event")
	}
}
