package escrow

import (
	"crypto/sha256"
	"testing"

	"github.com/openmint/nft-marketplace/internal/authority"
	"github.com/openmint/nft-marketplace/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddr(name string) ledger.Address {
	return ledger.AddressFromDigest(sha256.Sum256([]byte(name)))
}

type fixture struct {
	ledger  *ledger.Ledger
	program ledger.Address
	auth    ledger.Address
	bump    uint8
	seller  ledger.Address
	asset   ledger.Address
}

func setup(t *testing.T) fixture {
	t.Helper()

	l, err := ledger.New("")
	require.NoError(t, err)

	program := testAddr("program")
	auth, bump, err := authority.Derive([]byte(authority.AuthoritySeed), program)
	require.NoError(t, err)

	f := fixture{
		ledger:  l,
		program: program,
		auth:    auth,
		bump:    bump,
		seller:  testAddr("seller"),
		asset:   testAddr("asset"),
	}

	_, err = l.Execute(func(tx *ledger.Tx) error {
		return tx.MintAsset(f.asset, f.seller)
	})
	require.NoError(t, err)

	return f
}

func (f fixture) sig() authority.Signature {
	return authority.Signature{Seed: []byte(authority.AuthoritySeed), Bump: f.bump}
}

func TestDepositMovesUnitIntoCustody(t *testing.T) {
	f := setup(t)

	var slot ledger.Address
	_, err := f.ledger.Execute(func(tx *ledger.Tx) error {
		var err error
		slot, err = Deposit(tx, f.seller, f.asset, f.auth)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, SlotFor(f.asset, f.auth), slot)
	assert.Equal(t, uint64(0), f.ledger.HoldingBalance(f.asset, f.seller))
	assert.Equal(t, uint64(1), f.ledger.HoldingBalance(f.asset, slot))
}

func TestDepositRejectsOccupiedSlot(t *testing.T) {
	f := setup(t)

	_, err := f.ledger.Execute(func(tx *ledger.Tx) error {
		_, err := Deposit(tx, f.seller, f.asset, f.auth)
		return err
	})
	require.NoError(t, err)

	_, err = f.ledger.Execute(func(tx *ledger.Tx) error {
		_, err := Deposit(tx, f.seller, f.asset, f.auth)
		return err
	})
	assert.ErrorIs(t, err, ledger.ErrDuplicateAsset)
}

func TestDepositRequiresOwnership(t *testing.T) {
	f := setup(t)

	_, err := f.ledger.Execute(func(tx *ledger.Tx) error {
		_, err := Deposit(tx, testAddr("mallory"), f.asset, f.auth)
		return err
	})
	assert.ErrorIs(t, err, ledger.ErrOwnershipMismatch)
	assert.Equal(t, uint64(1), f.ledger.HoldingBalance(f.asset, f.seller))
}

func TestReleaseVerifiesAuthority(t *testing.T) {
	f := setup(t)

	_, err := f.ledger.Execute(func(tx *ledger.Tx) error {
		_, err := Deposit(tx, f.seller, f.asset, f.auth)
		return err
	})
	require.NoError(t, err)

	forged := authority.Signature{Seed: []byte("forged"), Bump: f.bump}
	_, err = f.ledger.Execute(func(tx *ledger.Tx) error {
		return Release(tx, f.asset, f.seller, f.program, f.auth, forged)
	})
	assert.ErrorIs(t, err, authority.ErrInvalidAuthority)

	// custody untouched
	assert.Equal(t, uint64(1), f.ledger.HoldingBalance(f.asset, SlotFor(f.asset, f.auth)))
}

func TestReleaseEmptyCustody(t *testing.T) {
	f := setup(t)

	_, err := f.ledger.Execute(func(tx *ledger.Tx) error {
		return Release(tx, f.asset, f.seller, f.program, f.auth, f.sig())
	})
	assert.ErrorIs(t, err, ErrEmptyCustody)
}

func TestReleaseToRecipient(t *testing.T) {
	f := setup(t)
	buyer := testAddr("buyer")

	_, err := f.ledger.Execute(func(tx *ledger.Tx) error {
		_, err := Deposit(tx, f.seller, f.asset, f.auth)
		return err
	})
	require.NoError(t, err)

	_, err = f.ledger.Execute(func(tx *ledger.Tx) error {
		return Release(tx, f.asset, buyer, f.program, f.auth, f.sig())
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(0), f.ledger.HoldingBalance(f.asset, SlotFor(f.asset, f.auth)))
	assert.Equal(t, uint64(1), f.ledger.HoldingBalance(f.asset, buyer))
}

func TestHeld(t *testing.T) {
	f := setup(t)

	_, err := f.ledger.Execute(func(tx *ledger.Tx) error {
		assert.False(t, Held(tx, f.asset, f.auth))

		if _, err := Deposit(tx, f.seller, f.asset, f.auth); err != nil {
			return err
		}

		assert.True(t, Held(tx, f.asset, f.auth))
		return nil
	})
	require.NoError(t, err)
}
