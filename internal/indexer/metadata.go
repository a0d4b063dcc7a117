package indexer

import (
	"encoding/json"

	"github.com/openmint/nft-marketplace/internal/dev"
	"github.com/openmint/nft-marketplace/internal/elastic_search"
	"github.com/openmint/nft-marketplace/internal/entity"
	"github.com/openmint/nft-marketplace/internal/event"
	"github.com/openmint/nft-marketplace/internal/messenger"
	"github.com/openmint/nft-marketplace/internal/metadata"
	"github.com/openmint/nft-marketplace/internal/repository"
	"go.uber.org/zap"
)

type MetadataIndexer interface {
	TriggerMetadataRefresh(el interface{})
	RefreshMetadata(handle string) (*entity.Asset, error)
}

type metadataIndexer struct {
	elastic         elastic_search.Index
	assetRepo       repository.AssetRepository
	messageService  messenger.MessageService
	metadataService metadata.Service
}

func NewMetadataIndexer(
	elastic elastic_search.Index,
	assetRepo repository.AssetRepository,
	messageService messenger.MessageService,
	metadataService metadata.Service,
) MetadataIndexer {
	i := metadataIndexer{elastic, assetRepo, messageService, metadataService}

	event.AddEventListener(event.MetadataRefreshEvent, i.TriggerMetadataRefresh)

	return i
}

// TriggerMetadataRefresh queues the asset for a metadata fetch once its
// document has been persisted to the mirror.
func (i metadataIndexer) TriggerMetadataRefresh(el interface{}) {
	asset, ok := el.(entity.Asset)
	if !ok {
		return
	}

	if asset.Uri == "" {
		return
	}

	msgJson, _ := json.Marshal(messenger.Refresh{Asset: asset.Handle})
	if err := i.messageService.SendMessage(messenger.MetadataRefresh, msgJson, false); err != nil {
		zap.L().Error("Failed to queue metadata refresh")
		return
	}

	zap.L().With(zap.String("asset", asset.Handle)).Info("Trigger metadata refresh")
}

func (i metadataIndexer) RefreshMetadata(handle string) (*entity.Asset, error) {
	zap.L().With(zap.String("asset", handle)).Info("Asset refresh metadata")

	asset, err := i.assetRepo.GetAsset(handle)
	if err != nil {
		return nil, err
	}

	data, err := i.metadataService.FetchMetadata(asset)
	if err != nil {
		zap.L().With(
			zap.Error(err),
			zap.String("asset", asset.Handle),
			zap.String("uri", asset.Uri),
		).Warn("Failed to get asset metadata")

		asset.HasMetadata = false
		asset.MetadataError = err.Error()
		i.elastic.AddUpdateRequest(elastic_search.AssetIndex.Get(), asset, elastic_search.AssetMetadata)
		i.elastic.AddIndexRequest(elastic_search.DevErrorIndex.Get(), dev.NewError("metadata", "fetch", err, map[string]interface{}{
			"asset": asset.Handle,
			"uri":   asset.Uri,
		}), elastic_search.DevError)
		i.elastic.BatchPersist()

		return nil, err
	}

	dev.Dump(data)

	asset.HasMetadata = true
	asset.MetadataError = ""
	asset.Metadata = data

	i.elastic.AddUpdateRequest(elastic_search.AssetIndex.Get(), asset, elastic_search.AssetMetadata)
	i.elastic.BatchPersist()

	return &asset, nil
}
