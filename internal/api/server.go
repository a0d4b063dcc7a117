package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/openmint/nft-marketplace/internal/marketplace"
	"github.com/openmint/nft-marketplace/internal/registry"
	"github.com/openmint/nft-marketplace/internal/repository"
	"go.uber.org/zap"
)

// Server exposes the marketplace over HTTP. Reads are served from the
// Elasticsearch mirror; mutations go through the ledger-backed core.
type Server struct {
	market      *marketplace.Marketplace
	registry    *registry.Registry
	listingRepo repository.ListingRepository
	assetRepo   repository.AssetRepository
	actionRepo  repository.ActionRepository
}

func NewServer(
	market *marketplace.Marketplace,
	registry *registry.Registry,
	listingRepo repository.ListingRepository,
	assetRepo repository.AssetRepository,
	actionRepo repository.ActionRepository,
) *Server {
	return &Server{market, registry, listingRepo, assetRepo, actionRepo}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.health).Methods("GET")
	r.HandleFunc("/listings", s.listings).Methods("GET")
	r.HandleFunc("/listings/{asset}", s.listing).Methods("GET")
	r.HandleFunc("/assets/{asset}", s.asset).Methods("GET")
	r.HandleFunc("/assets/{asset}/actions", s.actions).Methods("GET")
	r.HandleFunc("/sales", s.sales).Methods("GET")
	r.HandleFunc("/sellers/{seller}/listings", s.sellerListings).Methods("GET")
	r.HandleFunc("/owners/{owner}/assets", s.ownerAssets).Methods("GET")

	r.HandleFunc("/assets", s.mintAsset).Methods("POST")
	r.HandleFunc("/listings/{asset}", s.createListing).Methods("POST")
	r.HandleFunc("/listings/{asset}/price", s.updateListingPrice).Methods("PUT")
	r.HandleFunc("/listings/{asset}/buy", s.buyListing).Methods("POST")
	r.HandleFunc("/listings/{asset}", s.cancelListing).Methods("DELETE")

	return r
}

func (s *Server) Serve(port string) error {
	zap.S().Infof("Serving api on port %s", port)
	return http.ListenAndServe(fmt.Sprintf(":%s", port), s.Router())
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) listings(w http.ResponseWriter, r *http.Request) {
	size, from := pagination(r)

	listings, total, err := s.listingRepo.GetActiveListings(size, from)
	if err != nil {
		writeError(w, err)
		return
	}

	writePaged(w, listings, total)
}

func (s *Server) listing(w http.ResponseWriter, r *http.Request) {
	asset := mux.Vars(r)["asset"]

	listing, err := s.listingRepo.GetListing(asset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, listing)
}

func (s *Server) asset(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["asset"]

	asset, err := s.assetRepo.GetAsset(handle)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, asset)
}

func (s *Server) actions(w http.ResponseWriter, r *http.Request) {
	asset := mux.Vars(r)["asset"]
	size, from := pagination(r)

	actions, total, err := s.actionRepo.GetActionsByAsset(asset, size, from)
	if err != nil {
		writeError(w, err)
		return
	}

	writePaged(w, actions, total)
}

func (s *Server) sales(w http.ResponseWriter, r *http.Request) {
	size, from := pagination(r)

	sales, total, err := s.actionRepo.GetSales(size, from)
	if err != nil {
		writeError(w, err)
		return
	}

	writePaged(w, sales, total)
}

func (s *Server) sellerListings(w http.ResponseWriter, r *http.Request) {
	seller := mux.Vars(r)["seller"]
	size, from := pagination(r)

	listings, total, err := s.listingRepo.GetListingsBySeller(seller, size, from)
	if err != nil {
		writeError(w, err)
		return
	}

	writePaged(w, listings, total)
}

func (s *Server) ownerAssets(w http.ResponseWriter, r *http.Request) {
	owner := mux.Vars(r)["owner"]
	size, from := pagination(r)

	assets, total, err := s.assetRepo.GetAssetsByOwner(owner, size, from)
	if err != nil {
		writeError(w, err)
		return
	}

	writePaged(w, assets, total)
}

func pagination(r *http.Request) (size int, from int) {
	size = 20
	if v, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && v > 0 && v <= 100 {
		size = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("from")); err == nil && v > 0 {
		from = v
	}

	return size, from
}

func writeJson(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to write api response")
	}
}

func writePaged(w http.ResponseWriter, results interface{}, total int64) {
	writeJson(w, map[string]interface{}{
		"total":   total,
		"results": results,
	})
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrListingNotFound) ||
		errors.Is(err, repository.ErrAssetNotFound) ||
		errors.Is(err, repository.ErrActionNotFound) {
		w.WriteHeader(http.StatusNotFound)
		writeJson(w, map[string]string{"error": err.Error()})
		return
	}

	zap.L().With(zap.Error(err)).Error("Api request failed")
	w.WriteHeader(http.StatusInternalServerError)
	writeJson(w, map[string]string{"error": "internal error"})
}
