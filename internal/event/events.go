package event

type Type string

const (
	AssetMintedEvent         Type = "AssetMintedEvent"
	AssetBurnedEvent         Type = "AssetBurnedEvent"
	ListingCreatedEvent      Type = "ListingCreatedEvent"
	ListingPriceUpdatedEvent Type = "ListingPriceUpdatedEvent"
	ListingSoldEvent         Type = "ListingSoldEvent"
	ListingCancelledEvent    Type = "ListingCancelledEvent"
	MetadataRefreshEvent     Type = "MetadataRefreshEvent"
)

// Payloads carried by the marketplace transition events. Addresses are
// hex-encoded.

type AssetMinted struct {
	TxID   string `json:"txId"`
	Asset  string `json:"asset"`
	Owner  string `json:"owner"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Uri    string `json:"uri"`
}

type AssetBurned struct {
	TxID  string `json:"txId"`
	Asset string `json:"asset"`
	Owner string `json:"owner"`
}

type ListingCreated struct {
	TxID        string `json:"txId"`
	Asset       string `json:"asset"`
	Seller      string `json:"seller"`
	Price       uint64 `json:"price"`
	CustodySlot string `json:"custodySlot"`
}

type ListingPriceUpdated struct {
	TxID     string `json:"txId"`
	Asset    string `json:"asset"`
	Seller   string `json:"seller"`
	OldPrice uint64 `json:"oldPrice"`
	NewPrice uint64 `json:"newPrice"`
}

type ListingSold struct {
	TxID   string `json:"txId"`
	Asset  string `json:"asset"`
	Seller string `json:"seller"`
	Buyer  string `json:"buyer"`
	Price  uint64 `json:"price"`
}

type ListingCancelled struct {
	TxID   string `json:"txId"`
	Asset  string `json:"asset"`
	Seller string `json:"seller"`
}
