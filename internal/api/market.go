package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/openmint/nft-marketplace/internal/ledger"
	"github.com/openmint/nft-marketplace/internal/marketplace"
	"go.uber.org/zap"
)

type mintRequest struct {
	Owner  string `json:"owner"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Uri    string `json:"uri"`
}

type listRequest struct {
	Seller string `json:"seller"`
	Price  uint64 `json:"price"`
}

type priceRequest struct {
	Seller string `json:"seller"`
	Price  uint64 `json:"price"`
}

type buyRequest struct {
	Buyer string `json:"buyer"`
}

type delistRequest struct {
	Seller string `json:"seller"`
}

func (s *Server) mintAsset(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if !decode(w, r, &req) {
		return
	}

	owner, err := ledger.NewAddress(req.Owner)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	asset, err := s.registry.Mint(owner, req.Name, req.Symbol, req.Uri)
	if err != nil {
		writeMarketError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJson(w, asset)
}

func (s *Server) createListing(w http.ResponseWriter, r *http.Request) {
	asset, ok := assetAddr(w, r)
	if !ok {
		return
	}

	var req listRequest
	if !decode(w, r, &req) {
		return
	}

	seller, err := ledger.NewAddress(req.Seller)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	listing, err := s.market.List(seller, asset, req.Price)
	if err != nil {
		writeMarketError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJson(w, listing)
}

func (s *Server) updateListingPrice(w http.ResponseWriter, r *http.Request) {
	asset, ok := assetAddr(w, r)
	if !ok {
		return
	}

	var req priceRequest
	if !decode(w, r, &req) {
		return
	}

	seller, err := ledger.NewAddress(req.Seller)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	listing, err := s.market.UpdatePrice(seller, asset, req.Price)
	if err != nil {
		writeMarketError(w, err)
		return
	}

	writeJson(w, listing)
}

func (s *Server) buyListing(w http.ResponseWriter, r *http.Request) {
	asset, ok := assetAddr(w, r)
	if !ok {
		return
	}

	var req buyRequest
	if !decode(w, r, &req) {
		return
	}

	buyer, err := ledger.NewAddress(req.Buyer)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	listing, err := s.market.Buy(buyer, asset)
	if err != nil {
		writeMarketError(w, err)
		return
	}

	writeJson(w, listing)
}

func (s *Server) cancelListing(w http.ResponseWriter, r *http.Request) {
	asset, ok := assetAddr(w, r)
	if !ok {
		return
	}

	var req delistRequest
	if !decode(w, r, &req) {
		return
	}

	seller, err := ledger.NewAddress(req.Seller)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	listing, err := s.market.Delist(seller, asset)
	if err != nil {
		writeMarketError(w, err)
		return
	}

	writeJson(w, listing)
}

func assetAddr(w http.ResponseWriter, r *http.Request) (ledger.Address, bool) {
	asset, err := ledger.NewAddress(mux.Vars(r)["asset"])
	if err != nil {
		writeBadRequest(w, err)
		return ledger.Address{}, false
	}

	return asset, true
}

func decode(w http.ResponseWriter, r *http.Request, body interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		writeBadRequest(w, err)
		return false
	}

	return true
}

func writeBadRequest(w http.ResponseWriter, err error) {
	w.WriteHeader(http.StatusBadRequest)
	writeJson(w, map[string]string{"error": err.Error()})
}

// writeMarketError maps the protocol error taxonomy to http status codes.
// Unknown errors are hidden behind a 500.
func writeMarketError(w http.ResponseWriter, err error) {
	var status int

	switch {
	case errors.Is(err, marketplace.ErrInvalidPrice):
		status = http.StatusBadRequest
	case errors.Is(err, marketplace.ErrUnauthorizedSeller):
		status = http.StatusForbidden
	case errors.Is(err, marketplace.ErrDuplicateListing),
		errors.Is(err, marketplace.ErrListingNotActive),
		errors.Is(err, ledger.ErrDuplicateAsset):
		status = http.StatusConflict
	case errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrInsufficientBalance):
		status = http.StatusPaymentRequired
	case errors.Is(err, ledger.ErrOwnershipMismatch):
		status = http.StatusForbidden
	case errors.Is(err, ledger.ErrRecordNotFound):
		status = http.StatusNotFound
	default:
		zap.L().With(zap.Error(err)).Error("Market operation failed")
		w.WriteHeader(http.StatusInternalServerError)
		writeJson(w, map[string]string{"error": "internal error"})
		return
	}

	w.WriteHeader(status)
	writeJson(w, map[string]string{"error": err.Error()})
}
