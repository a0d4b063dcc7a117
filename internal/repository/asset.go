package repository

import (
	"encoding/json"
	"errors"

	"github.com/olivere/elastic/v7"
	"github.com/openmint/nft-marketplace/internal/elastic_search"
	"github.com/openmint/nft-marketplace/internal/entity"
)

var (
	ErrAssetNotFound = errors.New("asset not found")
)

type AssetRepository interface {
	GetAsset(handle string) (entity.Asset, error)
	GetAssetsByOwner(owner string, size, from int) ([]entity.Asset, int64, error)
}

type assetRepository struct {
	elastic elastic_search.Index
}

func NewAssetRepository(elastic elastic_search.Index) AssetRepository {
	return assetRepository{elastic}
}

func (r assetRepository) GetAsset(handle string) (entity.Asset, error) {
	query := elastic.NewTermQuery("handle.keyword", handle)

	result, err := search(r.elastic.GetClient().
		Search(elastic_search.AssetIndex.Get()).
		Query(query).
		Size(1))

	return r.findOne(result, err)
}

func (r assetRepository) GetAssetsByOwner(owner string, size, from int) ([]entity.Asset, int64, error) {
	query := elastic.NewBoolQuery().Must(
		elastic.NewTermQuery("owner.keyword", owner),
		elastic.NewTermQuery("burned", false),
	)

	result, err := search(r.elastic.GetClient().
		Search(elastic_search.AssetIndex.Get()).
		Query(query).
		Size(size).
		From(from))

	return r.findMany(result, err)
}

func (r assetRepository) findOne(results *elastic.SearchResult, err error) (entity.Asset, error) {
	if err != nil {
		return entity.Asset{}, err
	}

	if len(results.Hits.Hits) == 0 {
		return entity.Asset{}, ErrAssetNotFound
	}

	var asset entity.Asset
	hit := results.Hits.Hits[0]
	err = json.Unmarshal(hit.Source, &asset)

	return asset, err
}

func (r assetRepository) findMany(results *elastic.SearchResult, err error) ([]entity.Asset, int64, error) {
	assets := make([]entity.Asset, 0)

	if err != nil {
		return assets, 0, err
	}

	for _, hit := range results.Hits.Hits {
		var asset entity.Asset
		if err := json.Unmarshal(hit.Source, &asset); err == nil {
			assets = append(assets, asset)
		}
	}

	return assets, results.TotalHits(), nil
}
