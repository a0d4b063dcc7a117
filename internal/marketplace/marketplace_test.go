package marketplace

import (
	"crypto/sha256"
	"sync"
	"testing"

	"github.com/openmint/nft-marketplace/internal/entity"
	"github.com/openmint/nft-marketplace/internal/escrow"
	"github.com/openmint/nft-marketplace/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddr(name string) ledger.Address {
	return ledger.AddressFromDigest(sha256.Sum256([]byte(name)))
}

type fixture struct {
	ledger *ledger.Ledger
	market *Marketplace
	seller ledger.Address
	buyer  ledger.Address
	asset  ledger.Address
}

func setup(t *testing.T) fixture {
	t.Helper()

	l, err := ledger.New("")
	require.NoError(t, err)

	market, err := New(l, testAddr("program"))
	require.NoError(t, err)

	f := fixture{
		ledger: l,
		market: market,
		seller: testAddr("seller"),
		buyer:  testAddr("buyer"),
		asset:  testAddr("asset"),
	}

	_, err = l.Execute(func(tx *ledger.Tx) error {
		tx.Credit(f.buyer, 1_000)
		return tx.MintAsset(f.asset, f.seller)
	})
	require.NoError(t, err)

	return f
}

func TestList(t *testing.T) {
	f := setup(t)

	listing, err := f.market.List(f.seller, f.asset, 250)
	require.NoError(t, err)

	assert.Equal(t, f.seller.String(), listing.Seller)
	assert.Equal(t, f.asset.String(), listing.Asset)
	assert.Equal(t, uint64(250), listing.Price)
	assert.Equal(t, entity.ListingActive, listing.Status)
	assert.NotEmpty(t, listing.TxID)

	// asset left the seller for custody
	slot := escrow.SlotFor(f.asset, f.market.Authority())
	assert.Equal(t, uint64(0), f.ledger.HoldingBalance(f.asset, f.seller))
	assert.Equal(t, uint64(1), f.ledger.HoldingBalance(f.asset, slot))

	stored, err := f.market.Listing(f.asset)
	require.NoError(t, err)
	assert.Equal(t, listing.Price, stored.Price)
	assert.Equal(t, listing.Status, stored.Status)
}

func TestListZeroPrice(t *testing.T) {
	f := setup(t)

	_, err := f.market.List(f.seller, f.asset, 0)
	assert.ErrorIs(t, err, ErrInvalidPrice)
	assert.Equal(t, uint64(1), f.ledger.HoldingBalance(f.asset, f.seller))
}

func TestListByNonOwner(t *testing.T) {
	f := setup(t)

	_, err := f.market.List(testAddr("mallory"), f.asset, 250)
	assert.ErrorIs(t, err, ledger.ErrOwnershipMismatch)
	assert.Equal(t, uint64(1), f.ledger.HoldingBalance(f.asset, f.seller))
}

func TestListUnmintedAsset(t *testing.T) {
	f := setup(t)

	_, err := f.market.List(f.seller, testAddr("ghost"), 250)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
}

func TestListTwice(t *testing.T) {
	f := setup(t)

	_, err := f.market.List(f.seller, f.asset, 250)
	require.NoError(t, err)

	_, err = f.market.List(f.seller, f.asset, 300)
	assert.ErrorIs(t, err, ErrDuplicateListing)

	// original terms survive
	listing, err := f.market.Listing(f.asset)
	require.NoError(t, err)
	assert.Equal(t, uint64(250), listing.Price)
}

func TestUpdatePrice(t *testing.T) {
	f := setup(t)

	_, err := f.market.List(f.seller, f.asset, 250)
	require.NoError(t, err)

	listing, err := f.market.UpdatePrice(f.seller, f.asset, 400)
	require.NoError(t, err)
	assert.Equal(t, uint64(400), listing.Price)
	assert.Equal(t, entity.ListingActive, listing.Status)

	stored, err := f.market.Listing(f.asset)
	require.NoError(t, err)
	assert.Equal(t, uint64(400), stored.Price)
}

func TestUpdatePriceUnauthorized(t *testing.T) {
	f := setup(t)

	_, err := f.market.List(f.seller, f.asset, 250)
	require.NoError(t, err)

	_, err = f.market.UpdatePrice(testAddr("mallory"), f.asset, 1)
	assert.ErrorIs(t, err, ErrUnauthorizedSeller)

	stored, err := f.market.Listing(f.asset)
	require.NoError(t, err)
	assert.Equal(t, uint64(250), stored.Price)
}

func TestUpdatePriceZero(t *testing.T) {
	f := setup(t)

	_, err := f.market.List(f.seller, f.asset, 250)
	require.NoError(t, err)

	_, err = f.market.UpdatePrice(f.seller, f.asset, 0)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestUpdatePriceWithoutListing(t *testing.T) {
	f := setup(t)

	_, err := f.market.UpdatePrice(f.seller, f.asset, 100)
	assert.ErrorIs(t, err, ErrListingNotActive)
}

func TestBuy(t *testing.T) {
	f := setup(t)

	_, err := f.market.List(f.seller, f.asset, 250)
	require.NoError(t, err)

	listing, err := f.market.Buy(f.buyer, f.asset)
	require.NoError(t, err)
	assert.Equal(t, entity.ListingSold, listing.Status)

	// payment leg
	assert.Equal(t, uint64(750), f.ledger.Balance(f.buyer))
	assert.Equal(t, uint64(250), f.ledger.Balance(f.seller))

	// custody leg
	slot := escrow.SlotFor(f.asset, f.market.Authority())
	assert.Equal(t, uint64(0), f.ledger.HoldingBalance(f.asset, slot))
	assert.Equal(t, uint64(1), f.ledger.HoldingBalance(f.asset, f.buyer))

	stored, err := f.market.Listing(f.asset)
	require.NoError(t, err)
	assert.Equal(t, entity.ListingSold, stored.Status)
}

func TestBuyAtUpdatedPrice(t *testing.T) {
	f := setup(t)

	_, err := f.market.List(f.seller, f.asset, 250)
	require.NoError(t, err)

	_, err = f.market.UpdatePrice(f.seller, f.asset, 900)
	require.NoError(t, err)

	_, err = f.market.Buy(f.buyer, f.asset)
	require.NoError(t, err)

	assert.Equal(t, uint64(100), f.ledger.Balance(f.buyer))
	assert.Equal(t, uint64(900), f.ledger.Balance(f.seller))
}

func TestBuyInsufficientFundsLeavesListingIntact(t *testing.T) {
	f := setup(t)
	pauper := testAddr("pauper")

	_, err := f.market.List(f.seller, f.asset, 250)
	require.NoError(t, err)

	_, err = f.market.Buy(pauper, f.asset)
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	// the failed settlement left no trace: custody still holds the unit and
	// the listing is still purchasable
	slot := escrow.SlotFor(f.asset, f.market.Authority())
	assert.Equal(t, uint64(1), f.ledger.HoldingBalance(f.asset, slot))
	assert.Equal(t, uint64(0), f.ledger.Balance(f.seller))

	stored, err := f.market.Listing(f.asset)
	require.NoError(t, err)
	assert.Equal(t, entity.ListingActive, stored.Status)

	_, err = f.market.Buy(f.buyer, f.asset)
	assert.NoError(t, err)
}

func TestBuySoldListing(t *testing.T) {
	f := setup(t)

	_, err := f.market.List(f.seller, f.asset, 250)
	require.NoError(t, err)

	_, err = f.market.Buy(f.buyer, f.asset)
	require.NoError(t, err)

	_, err = f.market.Buy(testAddr("latecomer"), f.asset)
	assert.ErrorIs(t, err, ErrListingNotActive)
}

func TestBuyWithoutListing(t *testing.T) {
	f := setup(t)

	_, err := f.market.Buy(f.buyer, f.asset)
	assert.ErrorIs(t, err, ErrListingNotActive)
}

func TestDelist(t *testing.T) {
	f := setup(t)

	_, err := f.market.List(f.seller, f.asset, 250)
	require.NoError(t, err)

	listing, err := f.market.Delist(f.seller, f.asset)
	require.NoError(t, err)
	assert.Equal(t, entity.ListingCancelled, listing.Status)

	// asset back with the seller, custody empty
	slot := escrow.SlotFor(f.asset, f.market.Authority())
	assert.Equal(t, uint64(1), f.ledger.HoldingBalance(f.asset, f.seller))
	assert.Equal(t, uint64(0), f.ledger.HoldingBalance(f.asset, slot))
}

func TestDelistUnauthorized(t *testing.T) {
	f := setup(t)

	_, err := f.market.List(f.seller, f.asset, 250)
	require.NoError(t, err)

	_, err = f.market.Delist(testAddr("mallory"), f.asset)
	assert.ErrorIs(t, err, ErrUnauthorizedSeller)

	stored, err := f.market.Listing(f.asset)
	require.NoError(t, err)
	assert.Equal(t, entity.ListingActive, stored.Status)
}

func TestDelistTerminalListing(t *testing.T) {
	f := setup(t)

	_, err := f.market.List(f.seller, f.asset, 250)
	require.NoError(t, err)

	_, err = f.market.Delist(f.seller, f.asset)
	require.NoError(t, err)

	_, err = f.market.Delist(f.seller, f.asset)
	assert.ErrorIs(t, err, ErrListingNotActive)
}

func TestRelistAfterCancel(t *testing.T) {
	f := setup(t)

	_, err := f.market.List(f.seller, f.asset, 250)
	require.NoError(t, err)

	_, err = f.market.Delist(f.seller, f.asset)
	require.NoError(t, err)

	listing, err := f.market.List(f.seller, f.asset, 500)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), listing.Price)
	assert.Equal(t, entity.ListingActive, listing.Status)
}

func TestRelistBySubsequentOwner(t *testing.T) {
	f := setup(t)

	_, err := f.market.List(f.seller, f.asset, 250)
	require.NoError(t, err)

	_, err = f.market.Buy(f.buyer, f.asset)
	require.NoError(t, err)

	// the buyer becomes the new seller of the same asset
	listing, err := f.market.List(f.buyer, f.asset, 600)
	require.NoError(t, err)
	assert.Equal(t, f.buyer.String(), listing.Seller)

	// the previous seller lost all authority over the listing
	_, err = f.market.Delist(f.seller, f.asset)
	assert.ErrorIs(t, err, ErrUnauthorizedSeller)
}

func TestConcurrentBuySingleWinner(t *testing.T) {
	f := setup(t)

	second := testAddr("second-buyer")
	_, err := f.ledger.Execute(func(tx *ledger.Tx) error {
		tx.Credit(second, 1_000)
		return nil
	})
	require.NoError(t, err)

	_, err = f.market.List(f.seller, f.asset, 250)
	require.NoError(t, err)

	buyers := []ledger.Address{f.buyer, second}
	results := make([]error, len(buyers))

	var wg sync.WaitGroup
	for n, buyer := range buyers {
		wg.Add(1)
		go func(n int, buyer ledger.Address) {
			defer wg.Done()
			_, results[n] = f.market.Buy(buyer, f.asset)
		}(n, buyer)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrListingNotActive)
			losses++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)

	// the seller was paid exactly once
	assert.Equal(t, uint64(250), f.ledger.Balance(f.seller))

	holder, ok := f.ledger.HolderOf(f.asset)
	require.True(t, ok)
	assert.Contains(t, []ledger.Address{f.buyer, second}, holder)
}
