package entity

import (
	"fmt"

	"github.com/gosimple/slug"
)

type ListingStatus string

const (
	ListingActive    ListingStatus = "active"
	ListingSold      ListingStatus = "sold"
	ListingCancelled ListingStatus = "cancelled"
)

// Listing is the persistent record describing one asset's sale terms and
// status. On the ledger it lives at an address derived from the asset handle,
// so at most one listing record can exist per asset.
type Listing struct {
	Seller      string        `json:"seller"`
	Asset       string        `json:"asset"`
	Price       uint64        `json:"price"`
	Status      ListingStatus `json:"status"`
	CustodySlot string        `json:"custodySlot"`
	Bump        uint8         `json:"bump"`
	TxID        string        `json:"txId"`
}

func (l Listing) IsActive() bool {
	return l.Status == ListingActive
}

func (l Listing) Slug() string {
	return CreateListingSlug(l.Asset)
}

func CreateListingSlug(asset string) string {
	return slug.Make(fmt.Sprintf("listing-%s", asset))
}
