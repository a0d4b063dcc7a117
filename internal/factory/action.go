package factory

import (
	"github.com/openmint/nft-marketplace/internal/entity"
	"github.com/openmint/nft-marketplace/internal/event"
)

func CreateMintAction(e event.AssetMinted) entity.MarketAction {
	return entity.MarketAction{
		Asset:  e.Asset,
		TxID:   e.TxID,
		Action: entity.MintAction,
		To:     e.Owner,
	}
}

func CreateBurnAction(e event.AssetBurned) entity.MarketAction {
	return entity.MarketAction{
		Asset:  e.Asset,
		TxID:   e.TxID,
		Action: entity.BurnAction,
		From:   e.Owner,
	}
}

func CreateListingAction(e event.ListingCreated) entity.MarketAction {
	return entity.MarketAction{
		Asset:  e.Asset,
		TxID:   e.TxID,
		Action: entity.ListingAction,
		From:   e.Seller,
		Price:  e.Price,
	}
}

func CreatePriceAction(e event.ListingPriceUpdated) entity.MarketAction {
	return entity.MarketAction{
		Asset:    e.Asset,
		TxID:     e.TxID,
		Action:   entity.PriceAction,
		From:     e.Seller,
		Price:    e.NewPrice,
		OldPrice: e.OldPrice,
	}
}

func CreateSaleAction(e event.ListingSold) entity.MarketAction {
	return entity.MarketAction{
		Asset:  e.Asset,
		TxID:   e.TxID,
		Action: entity.SaleAction,
		From:   e.Seller,
		To:     e.Buyer,
		Price:  e.Price,
	}
}

func CreateDelistingAction(e event.ListingCancelled) entity.MarketAction {
	return entity.MarketAction{
		Asset:  e.Asset,
		TxID:   e.TxID,
		Action: entity.DelistingAction,
		From:   e.Seller,
	}
}
