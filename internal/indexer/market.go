// Package indexer maintains the off-chain search mirror of marketplace state.
// The mirror is eventually consistent and never authoritative; the ledger's
// listing records are the single source of truth.
package indexer

import (
	"github.com/openmint/nft-marketplace/internal/elastic_search"
	"github.com/openmint/nft-marketplace/internal/entity"
	"github.com/openmint/nft-marketplace/internal/event"
	"github.com/openmint/nft-marketplace/internal/factory"
	"go.uber.org/zap"
)

type MarketIndexer interface {
	Subscribe()
}

type marketIndexer struct {
	elastic elastic_search.Index
}

func NewMarketIndexer(elastic elastic_search.Index) MarketIndexer {
	return marketIndexer{elastic}
}

// Subscribe registers the indexer against every marketplace transition event.
func (i marketIndexer) Subscribe() {
	event.AddEventListener(event.AssetMintedEvent, i.onAssetMinted)
	event.AddEventListener(event.AssetBurnedEvent, i.onAssetBurned)
	event.AddEventListener(event.ListingCreatedEvent, i.onListingCreated)
	event.AddEventListener(event.ListingPriceUpdatedEvent, i.onPriceUpdated)
	event.AddEventListener(event.ListingSoldEvent, i.onSold)
	event.AddEventListener(event.ListingCancelledEvent, i.onCancelled)
}

func (i marketIndexer) onAssetMinted(msg interface{}) {
	e, ok := msg.(event.AssetMinted)
	if !ok {
		return
	}

	zap.L().With(zap.String("asset", e.Asset), zap.String("owner", e.Owner)).Info("Index asset mint")

	asset := entity.Asset{
		Handle: e.Asset,
		Name:   e.Name,
		Symbol: e.Symbol,
		Uri:    e.Uri,
		Owner:  e.Owner,
		TxID:   e.TxID,
	}

	i.elastic.AddIndexRequest(elastic_search.AssetIndex.Get(), asset, elastic_search.AssetCreate)
	i.elastic.AddIndexRequest(elastic_search.ActionIndex.Get(), factory.CreateMintAction(e), elastic_search.ActionCreate)
}

func (i marketIndexer) onAssetBurned(msg interface{}) {
	e, ok := msg.(event.AssetBurned)
	if !ok {
		return
	}

	zap.L().With(zap.String("asset", e.Asset)).Info("Index asset burn")

	asset := entity.Asset{Handle: e.Asset, Owner: e.Owner, Burned: true}

	i.elastic.AddUpdateRequest(elastic_search.AssetIndex.Get(), asset, elastic_search.AssetUpdate)
	i.elastic.AddIndexRequest(elastic_search.ActionIndex.Get(), factory.CreateBurnAction(e), elastic_search.ActionCreate)
}

func (i marketIndexer) onListingCreated(msg interface{}) {
	e, ok := msg.(event.ListingCreated)
	if !ok {
		return
	}

	zap.L().With(
		zap.String("asset", e.Asset),
		zap.String("seller", e.Seller),
		zap.Uint64("price", e.Price),
	).Info("Index listing")

	listing := entity.Listing{
		Seller:      e.Seller,
		Asset:       e.Asset,
		Price:       e.Price,
		Status:      entity.ListingActive,
		CustodySlot: e.CustodySlot,
		TxID:        e.TxID,
	}

	i.elastic.AddIndexRequest(elastic_search.ListingIndex.Get(), listing, elastic_search.ListingCreate)
	i.elastic.AddUpdateRequest(
		elastic_search.AssetIndex.Get(),
		entity.Asset{Handle: e.Asset, Owner: e.Seller, Listed: true},
		elastic_search.AssetUpdate,
	)
	i.elastic.AddIndexRequest(elastic_search.ActionIndex.Get(), factory.CreateListingAction(e), elastic_search.ActionCreate)
}

func (i marketIndexer) onPriceUpdated(msg interface{}) {
	e, ok := msg.(event.ListingPriceUpdated)
	if !ok {
		return
	}

	zap.L().With(
		zap.String("asset", e.Asset),
		zap.Uint64("oldPrice", e.OldPrice),
		zap.Uint64("newPrice", e.NewPrice),
	).Info("Index price update")

	listing := entity.Listing{
		Seller: e.Seller,
		Asset:  e.Asset,
		Price:  e.NewPrice,
		Status: entity.ListingActive,
		TxID:   e.TxID,
	}

	i.elastic.AddUpdateRequest(elastic_search.ListingIndex.Get(), listing, elastic_search.ListingUpdate)
	i.elastic.AddIndexRequest(elastic_search.ActionIndex.Get(), factory.CreatePriceAction(e), elastic_search.ActionCreate)
}

func (i marketIndexer) onSold(msg interface{}) {
	e, ok := msg.(event.ListingSold)
	if !ok {
		return
	}

	zap.L().With(
		zap.String("asset", e.Asset),
		zap.String("from", e.Seller),
		zap.String("to", e.Buyer),
		zap.Uint64("price", e.Price),
	).Info("Index sale")

	listing := entity.Listing{
		Seller: e.Seller,
		Asset:  e.Asset,
		Price:  e.Price,
		Status: entity.ListingSold,
		TxID:   e.TxID,
	}

	i.elastic.AddUpdateRequest(elastic_search.ListingIndex.Get(), listing, elastic_search.ListingUpdate)
	i.elastic.AddUpdateRequest(
		elastic_search.AssetIndex.Get(),
		entity.Asset{Handle: e.Asset, Owner: e.Buyer, Listed: false},
		elastic_search.AssetUpdate,
	)
	i.elastic.AddIndexRequest(elastic_search.ActionIndex.Get(), factory.CreateSaleAction(e), elastic_search.ActionCreate)
}

func (i marketIndexer) onCancelled(msg interface{}) {
	e, ok := msg.(event.ListingCancelled)
	if !ok {
		return
	}

	zap.L().With(zap.String("asset", e.Asset), zap.String("seller", e.Seller)).Info("Index delisting")

	listing := entity.Listing{
		Seller: e.Seller,
		Asset:  e.Asset,
		Status: entity.ListingCancelled,
		TxID:   e.TxID,
	}

	i.elastic.AddUpdateRequest(elastic_search.ListingIndex.Get(), listing, elastic_search.ListingUpdate)
	i.elastic.AddUpdateRequest(
		elastic_search.AssetIndex.Get(),
		entity.Asset{Handle: e.Asset, Owner: e.Seller, Listed: false},
		elastic_search.AssetUpdate,
	)
	i.elastic.AddIndexRequest(elastic_search.ActionIndex.Get(), factory.CreateDelistingAction(e), elastic_search.ActionCreate)
}
