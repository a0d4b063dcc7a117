package marketplace

import (
	"github.com/openmint/nft-marketplace/internal/authority"
	"github.com/openmint/nft-marketplace/internal/entity"
	"github.com/openmint/nft-marketplace/internal/escrow"
	"github.com/openmint/nft-marketplace/internal/ledger"
)

// settle runs the two legs of a purchase inside the caller's transaction.
// Payment moves first; custody is released only after the buyer has paid.
// The transaction boundary makes the pair all-or-nothing, so there is no
// compensation path for a half-applied exchange.
func (m *Marketplace) settle(tx *ledger.Tx, listing entity.Listing, buyer, asset ledger.Address) error {
	seller, err := ledger.NewAddress(listing.Seller)
	if err != nil {
		return err
	}

	if err := tx.TransferNative(buyer, seller, listing.Price); err != nil {
		return err
	}

	sig := authority.Signature{Seed: []byte(authority.AuthoritySeed), Bump: listing.Bump}

	return escrow.Release(tx, asset, buyer, m.program, m.authority, sig)
}
