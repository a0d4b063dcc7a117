// Package escrow implements the custody sub-accounts that hold a listed asset
// between listing and sale or cancellation. A custody slot is controlled by
// the derived marketplace authority, never by a party key.
package escrow

import (
	"crypto/sha256"
	"errors"

	"github.com/openmint/nft-marketplace/internal/authority"
	"github.com/openmint/nft-marketplace/internal/ledger"
)

const custodyTag = "custody"

var ErrEmptyCustody = errors.New("empty custody")

// SlotFor derives the custody slot address for an asset under a given
// authority. One slot per asset, reused across listings of that asset.
func SlotFor(asset, auth ledger.Address) ledger.Address {
	h := sha256.New()
	h.Write([]byte(custodyTag))
	h.Write(asset[:])
	h.Write(auth[:])

	var digest [sha256.Size]byte
	copy(digest[:], h.Sum(nil))

	return ledger.AddressFromDigest(digest)
}

// Deposit moves exactly one unit of asset from the seller's holding into the
// custody slot. The slot balance may never exceed one unit.
func Deposit(tx *ledger.Tx, seller, asset, auth ledger.Address) (ledger.Address, error) {
	slot := SlotFor(asset, auth)

	if tx.HoldingBalance(asset, slot) > 0 {
		return slot, ledger.ErrDuplicateAsset
	}

	if err := tx.MoveAsset(asset, seller, slot); err != nil {
		return slot, err
	}

	return slot, nil
}

// Release moves the held unit out of custody to the recipient. It requires a
// signature that re-derives the controlling authority; anything else is
// rejected before custody is touched.
func Release(tx *ledger.Tx, asset, to, program, auth ledger.Address, sig authority.Signature) error {
	if err := authority.VerifySignature(sig, program, auth); err != nil {
		return err
	}

	slot := SlotFor(asset, auth)

	if tx.HoldingBalance(asset, slot) == 0 {
		return ErrEmptyCustody
	}

	return tx.MoveAsset(asset, slot, to)
}

// Held reports whether the custody slot for asset currently holds the unit.
func Held(tx *ledger.Tx, asset, auth ledger.Address) bool {
	return tx.HoldingBalance(asset, SlotFor(asset, auth)) > 0
}
