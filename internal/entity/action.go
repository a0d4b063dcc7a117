package entity

import (
	"crypto/md5"
	"fmt"
)

// MarketAction is the append-only audit record of one marketplace transition,
// mirrored off-chain for querying.
type MarketAction struct {
	Asset    string     `json:"asset"`
	TxID     string     `json:"txId"`
	Action   ActionType `json:"action"`
	From     string     `json:"from,omitempty"`
	To       string     `json:"to,omitempty"`
	Price    uint64     `json:"price,omitempty"`
	OldPrice uint64     `json:"oldPrice,omitempty"`
}

type ActionType string

const (
	MintAction      ActionType = "mint"
	BurnAction      ActionType = "burn"
	ListingAction   ActionType = "listing"
	PriceAction     ActionType = "price"
	SaleAction      ActionType = "sale"
	DelistingAction ActionType = "delisting"
)

func (a MarketAction) Slug() string {
	return CreateMarketActionSlug(a.Asset, a.TxID, string(a.Action))
}

func CreateMarketActionSlug(asset, txId, action string) string {
	data := []byte(fmt.Sprintf("marketaction-%s-%s-%s", asset, txId, action))
	return fmt.Sprintf("%x", md5.Sum(data))
}
