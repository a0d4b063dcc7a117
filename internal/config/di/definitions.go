package di

import (
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/openmint/nft-marketplace/internal/api"
	"github.com/openmint/nft-marketplace/internal/config"
	"github.com/openmint/nft-marketplace/internal/elastic_search"
	"github.com/openmint/nft-marketplace/internal/indexer"
	"github.com/openmint/nft-marketplace/internal/ledger"
	"github.com/openmint/nft-marketplace/internal/marketplace"
	"github.com/openmint/nft-marketplace/internal/messenger"
	"github.com/openmint/nft-marketplace/internal/metadata"
	"github.com/openmint/nft-marketplace/internal/registry"
	"github.com/openmint/nft-marketplace/internal/repository"
	"github.com/sarulabs/di/v2"
	"go.uber.org/zap"
)

var Definitions = []di.Def{
	{
		Name: "ledger",
		Build: func(ctn di.Container) (interface{}, error) {
			l, err := ledger.New(config.Get().DataDir)
			if err != nil {
				zap.L().With(zap.Error(err)).Fatal("Failed to open ledger")
			}

			return l, nil
		},
	},
	{
		Name: "marketplace",
		Build: func(ctn di.Container) (interface{}, error) {
			program, err := ledger.NewAddress(config.Get().ProgramID)
			if err != nil {
				return nil, err
			}

			return marketplace.New(ctn.Get("ledger").(*ledger.Ledger), program)
		},
	},
	{
		Name: "registry",
		Build: func(ctn di.Container) (interface{}, error) {
			program, err := ledger.NewAddress(config.Get().ProgramID)
			if err != nil {
				return nil, err
			}

			return registry.New(ctn.Get("ledger").(*ledger.Ledger), program)
		},
	},
	{
		Name: "elastic",
		Build: func(ctn di.Container) (interface{}, error) {
			elastic, err := elastic_search.New()
			if err != nil {
				zap.L().With(zap.Error(err)).Fatal("Failed to start ES")
			}

			return elastic, nil
		},
	},
	{
		Name: "messenger",
		Build: func(ctn di.Container) (interface{}, error) {
			return messenger.NewMessenger(config.Get().Amqp.Uri), nil
		},
	},
	{
		Name: "publisher",
		Build: func(ctn di.Container) (interface{}, error) {
			return messenger.NewEventPublisher(ctn.Get("messenger").(messenger.MessageService)), nil
		},
	},
	{
		Name: "metadata",
		Build: func(ctn di.Container) (interface{}, error) {
			client := retryablehttp.NewClient()
			client.RetryMax = config.Get().MetadataRetries
			client.HTTPClient.Timeout = time.Duration(config.Get().IpfsTimeout) * time.Second
			client.Logger = nil

			return metadata.NewMetadataService(client), nil
		},
	},
	{
		Name: "listing.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewListingRepository(ctn.Get("elastic").(elastic_search.Index)), nil
		},
	},
	{
		Name: "asset.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewAssetRepository(ctn.Get("elastic").(elastic_search.Index)), nil
		},
	},
	{
		Name: "action.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewActionRepository(ctn.Get("elastic").(elastic_search.Index)), nil
		},
	},
	{
		Name: "indexer.market",
		Build: func(ctn di.Container) (interface{}, error) {
			return indexer.NewMarketIndexer(ctn.Get("elastic").(elastic_search.Index)), nil
		},
	},
	{
		Name: "indexer.metadata",
		Build: func(ctn di.Container) (interface{}, error) {
			return indexer.NewMetadataIndexer(
				ctn.Get("elastic").(elastic_search.Index),
				ctn.Get("asset.repo").(repository.AssetRepository),
				ctn.Get("messenger").(messenger.MessageService),
				ctn.Get("metadata").(metadata.Service),
			), nil
		},
	},
	{
		Name: "api",
		Build: func(ctn di.Container) (interface{}, error) {
			return api.NewServer(
				ctn.Get("marketplace").(*marketplace.Marketplace),
				ctn.Get("registry").(*registry.Registry),
				ctn.Get("listing.repo").(repository.ListingRepository),
				ctn.Get("asset.repo").(repository.AssetRepository),
				ctn.Get("action.repo").(repository.ActionRepository),
			), nil
		},
	},
}

// NewContainer builds the service container. Services are singletons
// resolved lazily on first Get.
func NewContainer() (di.Container, error) {
	builder, err := di.NewBuilder()
	if err != nil {
		return nil, err
	}

	if err := builder.Add(Definitions...); err != nil {
		return nil, err
	}

	return builder.Build(), nil
}
