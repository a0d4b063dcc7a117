// Package marketplace implements the escrow listing and settlement state
// machine: List, UpdatePrice, Buy and Delist over a host ledger, with custody
// held by a derived authority that has no private key.
package marketplace

import (
	"crypto/sha256"
	"encoding/json"

	"github.com/openmint/nft-marketplace/internal/authority"
	"github.com/openmint/nft-marketplace/internal/entity"
	"github.com/openmint/nft-marketplace/internal/escrow"
	"github.com/openmint/nft-marketplace/internal/event"
	"github.com/openmint/nft-marketplace/internal/ledger"
	"go.uber.org/zap"
)

const listingTag = "listing"

type Marketplace struct {
	ledger    *ledger.Ledger
	program   ledger.Address
	authority ledger.Address
	bump      uint8
}

func New(l *ledger.Ledger, program ledger.Address) (*Marketplace, error) {
	auth, bump, err := authority.Derive([]byte(authority.AuthoritySeed), program)
	if err != nil {
		return nil, err
	}

	zap.L().With(
		zap.String("program", program.String()),
		zap.String("authority", auth.String()),
		zap.Uint8("bump", bump),
	).Info("Marketplace authority derived")

	return &Marketplace{ledger: l, program: program, authority: auth, bump: bump}, nil
}

func (m *Marketplace) Program() ledger.Address {
	return m.program
}

func (m *Marketplace) Authority() ledger.Address {
	return m.authority
}

func (m *Marketplace) Bump() uint8 {
	return m.bump
}

// ListingAddress derives where the listing record for an asset lives. The
// address is a pure function of the asset handle, which is what enforces the
// one-listing-per-asset invariant.
func ListingAddress(asset, program ledger.Address) ledger.Address {
	h := sha256.New()
	h.Write([]byte(listingTag))
	h.Write(asset[:])
	h.Write(program[:])

	var digest [sha256.Size]byte
	copy(digest[:], h.Sum(nil))

	return ledger.AddressFromDigest(digest)
}

// List moves the asset into custody and creates an Active listing. A listing
// that is still Active for the same asset fails fast with ErrDuplicateListing;
// a terminal record from an earlier sale or cancellation is overwritten.
func (m *Marketplace) List(seller, asset ledger.Address, price uint64) (entity.Listing, error) {
	if price == 0 {
		return entity.Listing{}, ErrInvalidPrice
	}

	recordAddr := ListingAddress(asset, m.program)
	var listing entity.Listing

	txId, err := m.ledger.Execute(func(tx *ledger.Tx) error {
		if prev, err := readListing(tx, recordAddr); err == nil && prev.IsActive() {
			return ErrDuplicateListing
		}

		slot, err := escrow.Deposit(tx, seller, asset, m.authority)
		if err != nil {
			if err == ledger.ErrDuplicateAsset {
				return ErrDuplicateListing
			}
			return err
		}

		listing = entity.Listing{
			Seller:      seller.String(),
			Asset:       asset.String(),
			Price:       price,
			Status:      entity.ListingActive,
			CustodySlot: slot.String(),
			Bump:        m.bump,
		}

		return writeListing(tx, recordAddr, listing)
	})
	if err != nil {
		return entity.Listing{}, err
	}
	listing.TxID = txId

	zap.L().With(
		zap.String("txId", txId),
		zap.String("asset", listing.Asset),
		zap.String("seller", listing.Seller),
		zap.Uint64("price", price),
	).Info("Marketplace listing")

	event.EmitEvent(event.ListingCreatedEvent, event.ListingCreated{
		TxID:        txId,
		Asset:       listing.Asset,
		Seller:      listing.Seller,
		Price:       price,
		CustodySlot: listing.CustodySlot,
	})

	return listing, nil
}

// UpdatePrice overwrites the sale price of the caller's Active listing.
func (m *Marketplace) UpdatePrice(seller, asset ledger.Address, newPrice uint64) (entity.Listing, error) {
	recordAddr := ListingAddress(asset, m.program)

	var listing entity.Listing
	var oldPrice uint64

	txId, err := m.ledger.Execute(func(tx *ledger.Tx) error {
		var err error
		listing, err = readListing(tx, recordAddr)
		if err != nil || !listing.IsActive() {
			return ErrListingNotActive
		}

		if listing.Seller != seller.String() {
			return ErrUnauthorizedSeller
		}

		if newPrice == 0 {
			return ErrInvalidPrice
		}

		oldPrice = listing.Price
		listing.Price = newPrice

		return writeListing(tx, recordAddr, listing)
	})
	if err != nil {
		return entity.Listing{}, err
	}
	listing.TxID = txId

	zap.L().With(
		zap.String("txId", txId),
		zap.String("asset", listing.Asset),
		zap.Uint64("oldPrice", oldPrice),
		zap.Uint64("newPrice", newPrice),
	).Info("Marketplace price update")

	event.EmitEvent(event.ListingPriceUpdatedEvent, event.ListingPriceUpdated{
		TxID:     txId,
		Asset:    listing.Asset,
		Seller:   listing.Seller,
		OldPrice: oldPrice,
		NewPrice: newPrice,
	})

	return listing, nil
}

// Buy settles an Active listing: the buyer pays the stored seller and the
// asset leaves custody for the buyer, both inside one ledger transaction.
func (m *Marketplace) Buy(buyer, asset ledger.Address) (entity.Listing, error) {
	recordAddr := ListingAddress(asset, m.program)

	var listing entity.Listing

	txId, err := m.ledger.Execute(func(tx *ledger.Tx) error {
		var err error
		listing, err = readListing(tx, recordAddr)
		if err != nil || !listing.IsActive() {
			return ErrListingNotActive
		}

		if err := m.settle(tx, listing, buyer, asset); err != nil {
			return err
		}

		listing.Status = entity.ListingSold

		return writeListing(tx, recordAddr, listing)
	})
	if err != nil {
		return entity.Listing{}, err
	}
	listing.TxID = txId

	zap.L().With(
		zap.String("txId", txId),
		zap.String("asset", listing.Asset),
		zap.String("seller", listing.Seller),
		zap.String("buyer", buyer.String()),
		zap.Uint64("price", listing.Price),
	).Info("Marketplace sale")

	event.EmitEvent(event.ListingSoldEvent, event.ListingSold{
		TxID:   txId,
		Asset:  listing.Asset,
		Seller: listing.Seller,
		Buyer:  buyer.String(),
		Price:  listing.Price,
	})

	return listing, nil
}

// Delist releases custody back to the seller and cancels the listing.
func (m *Marketplace) Delist(seller, asset ledger.Address) (entity.Listing, error) {
	recordAddr := ListingAddress(asset, m.program)

	var listing entity.Listing

	txId, err := m.ledger.Execute(func(tx *ledger.Tx) error {
		var err error
		listing, err = readListing(tx, recordAddr)
		if err != nil || !listing.IsActive() {
			return ErrListingNotActive
		}

		if listing.Seller != seller.String() {
			return ErrUnauthorizedSeller
		}

		sig := authority.Signature{Seed: []byte(authority.AuthoritySeed), Bump: listing.Bump}
		if err := escrow.Release(tx, asset, seller, m.program, m.authority, sig); err != nil {
			return err
		}

		listing.Status = entity.ListingCancelled

		return writeListing(tx, recordAddr, listing)
	})
	if err != nil {
		return entity.Listing{}, err
	}
	listing.TxID = txId

	zap.L().With(
		zap.String("txId", txId),
		zap.String("asset", listing.Asset),
		zap.String("seller", listing.Seller),
	).Info("Marketplace delisting")

	event.EmitEvent(event.ListingCancelledEvent, event.ListingCancelled{
		TxID:   txId,
		Asset:  listing.Asset,
		Seller: listing.Seller,
	})

	return listing, nil
}

// Listing returns the committed listing record for an asset.
func (m *Marketplace) Listing(asset ledger.Address) (entity.Listing, error) {
	data, err := m.ledger.Record(ListingAddress(asset, m.program))
	if err != nil {
		return entity.Listing{}, ErrListingNotActive
	}

	var listing entity.Listing
	if err := json.Unmarshal(data, &listing); err != nil {
		return entity.Listing{}, err
	}

	return listing, nil
}

func readListing(tx *ledger.Tx, addr ledger.Address) (entity.Listing, error) {
	data, err := tx.Record(addr)
	if err != nil {
		return entity.Listing{}, err
	}

	var listing entity.Listing
	if err := json.Unmarshal(data, &listing); err != nil {
		return entity.Listing{}, err
	}

	return listing, nil
}

func writeListing(tx *ledger.Tx, addr ledger.Address, listing entity.Listing) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return err
	}

	tx.SetRecord(addr, data)

	return nil
}
