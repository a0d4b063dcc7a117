package main

import (
	"fmt"

	"github.com/openmint/nft-marketplace/internal/config"
	"github.com/openmint/nft-marketplace/internal/messenger"
	"go.uber.org/zap"
)

// eventsubd tails the market.events exchange. Useful for debugging what
// downstream consumers will see.
func main() {
	config.Init()

	messageService := messenger.NewMessenger(config.Get().Amqp.Uri)

	zap.L().Info("Subscribing to market events")

	err := messageService.ConsumeMessages(messenger.MarketEvents, func(msg string) {
		fmt.Println(msg)
	})
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to consume market events")
	}
}
