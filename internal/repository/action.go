package repository

import (
	"encoding/json"
	"errors"

	"github.com/olivere/elastic/v7"
	"github.com/openmint/nft-marketplace/internal/elastic_search"
	"github.com/openmint/nft-marketplace/internal/entity"
)

var (
	ErrActionNotFound = errors.New("market action not found")
)

type ActionRepository interface {
	GetActionsByAsset(asset string, size, from int) ([]entity.MarketAction, int64, error)
	GetSales(size, from int) ([]entity.MarketAction, int64, error)
}

type actionRepository struct {
	elastic elastic_search.Index
}

func NewActionRepository(elastic elastic_search.Index) ActionRepository {
	return actionRepository{elastic}
}

func (r actionRepository) GetActionsByAsset(asset string, size, from int) ([]entity.MarketAction, int64, error) {
	query := elastic.NewTermQuery("asset.keyword", asset)

	result, err := search(r.elastic.GetClient().
		Search(elastic_search.ActionIndex.Get()).
		Query(query).
		Size(size).
		From(from))

	return r.findMany(result, err)
}

func (r actionRepository) GetSales(size, from int) ([]entity.MarketAction, int64, error) {
	query := elastic.NewTermQuery("action.keyword", string(entity.SaleAction))

	result, err := search(r.elastic.GetClient().
		Search(elastic_search.ActionIndex.Get()).
		Query(query).
		Size(size).
		From(from))

	return r.findMany(result, err)
}

func (r actionRepository) findMany(results *elastic.SearchResult, err error) ([]entity.MarketAction, int64, error) {
	actions := make([]entity.MarketAction, 0)

	if err != nil {
		return actions, 0, err
	}

	for _, hit := range results.Hits.Hits {
		var action entity.MarketAction
		if err := json.Unmarshal(hit.Source, &action); err == nil {
			actions = append(actions, action)
		}
	}

	return actions, results.TotalHits(), nil
}
