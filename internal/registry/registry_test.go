package registry

import (
	"crypto/sha256"
	"testing"

	"github.com/openmint/nft-marketplace/internal/authority"
	"github.com/openmint/nft-marketplace/internal/escrow"
	"github.com/openmint/nft-marketplace/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddr(name string) ledger.Address {
	return ledger.AddressFromDigest(sha256.Sum256([]byte(name)))
}

func setup(t *testing.T) (*ledger.Ledger, *Registry) {
	t.Helper()

	l, err := ledger.New("")
	require.NoError(t, err)

	r, err := New(l, testAddr("program"))
	require.NoError(t, err)

	return l, r
}

func TestMint(t *testing.T) {
	l, r := setup(t)
	owner := testAddr("owner")

	asset, err := r.Mint(owner, "Sunrise", "SUN", "ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG")
	require.NoError(t, err)

	assert.NotEmpty(t, asset.Handle)
	assert.Equal(t, owner.String(), asset.Owner)
	assert.Equal(t, "Sunrise", asset.Name)
	assert.NotEmpty(t, asset.TxID)

	handle, err := ledger.NewAddress(asset.Handle)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), l.HoldingBalance(handle, owner))

	stored, err := r.Asset(handle)
	require.NoError(t, err)
	assert.Equal(t, asset.Name, stored.Name)
	assert.Equal(t, asset.Owner, stored.Owner)
}

func TestMintUniqueHandles(t *testing.T) {
	_, r := setup(t)
	owner := testAddr("owner")

	first, err := r.Mint(owner, "One", "ONE", "")
	require.NoError(t, err)

	second, err := r.Mint(owner, "Two", "TWO", "")
	require.NoError(t, err)

	assert.NotEqual(t, first.Handle, second.Handle)
}

func TestTransfer(t *testing.T) {
	l, r := setup(t)
	alice := testAddr("alice")
	bob := testAddr("bob")

	minted, err := r.Mint(alice, "Sunrise", "SUN", "")
	require.NoError(t, err)

	handle, err := ledger.NewAddress(minted.Handle)
	require.NoError(t, err)

	require.NoError(t, r.Transfer(alice, bob, handle))

	assert.Equal(t, uint64(0), l.HoldingBalance(handle, alice))
	assert.Equal(t, uint64(1), l.HoldingBalance(handle, bob))

	stored, err := r.Asset(handle)
	require.NoError(t, err)
	assert.Equal(t, bob.String(), stored.Owner)
}

func TestTransferByNonOwner(t *testing.T) {
	l, r := setup(t)
	alice := testAddr("alice")
	mallory := testAddr("mallory")

	minted, err := r.Mint(alice, "Sunrise", "SUN", "")
	require.NoError(t, err)

	handle, err := ledger.NewAddress(minted.Handle)
	require.NoError(t, err)

	err = r.Transfer(mallory, mallory, handle)
	assert.ErrorIs(t, err, ledger.ErrOwnershipMismatch)
	assert.Equal(t, uint64(1), l.HoldingBalance(handle, alice))
}

func TestBurn(t *testing.T) {
	l, r := setup(t)
	owner := testAddr("owner")

	minted, err := r.Mint(owner, "Sunrise", "SUN", "")
	require.NoError(t, err)

	handle, err := ledger.NewAddress(minted.Handle)
	require.NoError(t, err)

	require.NoError(t, r.Burn(owner, handle))

	_, held := l.HolderOf(handle)
	assert.False(t, held)

	stored, err := r.Asset(handle)
	require.NoError(t, err)
	assert.True(t, stored.Burned)
}

func TestBurnByNonHolder(t *testing.T) {
	_, r := setup(t)
	owner := testAddr("owner")

	minted, err := r.Mint(owner, "Sunrise", "SUN", "")
	require.NoError(t, err)

	handle, err := ledger.NewAddress(minted.Handle)
	require.NoError(t, err)

	err = r.Burn(testAddr("mallory"), handle)
	assert.ErrorIs(t, err, ledger.ErrOwnershipMismatch)

	stored, err := r.Asset(handle)
	require.NoError(t, err)
	assert.False(t, stored.Burned)
}

func TestBurnListedAsset(t *testing.T) {
	l, r := setup(t)
	owner := testAddr("owner")

	minted, err := r.Mint(owner, "Sunrise", "SUN", "")
	require.NoError(t, err)

	handle, err := ledger.NewAddress(minted.Handle)
	require.NoError(t, err)

	// move the unit into custody, as listing does
	auth, _, err := authority.Derive([]byte(authority.AuthoritySeed), testAddr("program"))
	require.NoError(t, err)

	_, err = l.Execute(func(tx *ledger.Tx) error {
		_, err := escrow.Deposit(tx, owner, handle, auth)
		return err
	})
	require.NoError(t, err)

	// the unit is out of the owner's hands, so the burn must fail
	err = r.Burn(owner, handle)
	assert.ErrorIs(t, err, ledger.ErrOwnershipMismatch)
}

func TestAssetUnknownHandle(t *testing.T) {
	_, r := setup(t)

	_, err := r.Asset(testAddr("ghost"))
	assert.ErrorIs(t, err, ledger.ErrRecordNotFound)
}
