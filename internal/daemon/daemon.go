package daemon

import (
	"encoding/json"
	"time"

	"github.com/openmint/nft-marketplace/internal/api"
	"github.com/openmint/nft-marketplace/internal/config"
	"github.com/openmint/nft-marketplace/internal/config/di"
	"github.com/openmint/nft-marketplace/internal/elastic_search"
	"github.com/openmint/nft-marketplace/internal/indexer"
	"github.com/openmint/nft-marketplace/internal/messenger"
	sd "github.com/sarulabs/di/v2"
	"go.uber.org/zap"
)

var container sd.Container

// Execute wires the mirror services and blocks serving the api. Ledger
// mutations happen elsewhere; the daemon only consumes their events.
func Execute() {
	initialize()

	elastic := container.Get("elastic").(elastic_search.Index)
	elastic.InstallMappings()

	container.Get("indexer.market").(indexer.MarketIndexer).Subscribe()

	// building the metadata indexer registers its refresh listener
	_ = container.Get("indexer.metadata").(indexer.MetadataIndexer)

	container.Get("publisher").(messenger.EventPublisher).Subscribe()

	go consumeMetadataRefresh()
	go persistLoop(elastic)

	if err := container.Get("api").(*api.Server).Serve(config.Get().ApiPort); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Api server failed")
	}
}

func initialize() {
	config.Init()

	var err error
	container, err = di.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}

	zap.L().Info("Marketplace daemon started")
}

// consumeMetadataRefresh drains the refresh queue, fetching metadata for
// each queued asset. Failed fetches are left to the next trigger.
func consumeMetadataRefresh() {
	messageService := container.Get("messenger").(messenger.MessageService)
	metadataIndexer := container.Get("indexer.metadata").(indexer.MetadataIndexer)

	err := messageService.ConsumeMessages(messenger.MetadataRefresh, func(msg string) {
		var refresh messenger.Refresh
		if err := json.Unmarshal([]byte(msg), &refresh); err != nil {
			zap.L().With(zap.Error(err)).Error("Failed to decode refresh message")
			return
		}

		if _, err := metadataIndexer.RefreshMetadata(refresh.Asset); err != nil {
			zap.L().With(zap.Error(err), zap.String("asset", refresh.Asset)).Warn("Metadata refresh failed")
		}
	})
	if err != nil {
		zap.L().With(zap.Error(err)).Error("Metadata refresh consumer stopped")
	}
}

func persistLoop(elastic elastic_search.Index) {
	for {
		time.Sleep(5 * time.Second)
		elastic.Persist()
	}
}
