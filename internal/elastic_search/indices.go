package elastic_search

import (
	"fmt"

	"github.com/openmint/nft-marketplace/internal/config"
)

type Indices string

var (
	AssetIndex    Indices = "asset"
	ListingIndex  Indices = "listing"
	ActionIndex   Indices = "marketaction"
	DevErrorIndex Indices = "deverror"
)

// Get prefixes the configured namespace and returns the full index name.
func (i *Indices) Get() string {
	return fmt.Sprintf("%s.%s", config.Get().Index, string(*i))
}
