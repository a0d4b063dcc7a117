package elastic_search

import (
	"github.com/openmint/nft-marketplace/internal/entity"
	"go.uber.org/zap"
)

func mergeRequests(index string, cached Request, action RequestAction, e entity.Entity) entity.Entity {
	switch {
	case index == ActionIndex.Get():
		return cached.Entity.(entity.MarketAction)

	case index == ListingIndex.Get():
		result := cached.Entity.(entity.Listing)
		if action == ListingUpdate {
			if e.(entity.Listing).Price != 0 {
				result.Price = e.(entity.Listing).Price
			}
			result.Status = e.(entity.Listing).Status
			result.TxID = e.(entity.Listing).TxID
		} else {
			result = e.(entity.Listing)
		}
		return result

	case index == AssetIndex.Get():
		result := cached.Entity.(entity.Asset)
		if action == AssetUpdate {
			result.Owner = e.(entity.Asset).Owner
			result.Listed = e.(entity.Asset).Listed
			result.Burned = e.(entity.Asset).Burned
		}

		if action == AssetMetadata {
			result.HasMetadata = e.(entity.Asset).HasMetadata
			result.MetadataError = e.(entity.Asset).MetadataError
			result.Metadata = e.(entity.Asset).Metadata
		}

		return result
	}

	zap.L().Fatal("Failed to merge request")
	return nil
}
