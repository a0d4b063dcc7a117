package ledger

import (
	"crypto/sha256"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddr(name string) Address {
	return AddressFromDigest(sha256.Sum256([]byte(name)))
}

func TestNewAddress(t *testing.T) {
	addr, err := NewAddress("0x6f70656e6d696e742d6d61726b6574706c616365")
	require.NoError(t, err)
	assert.Equal(t, "0x6f70656e6d696e742d6d61726b6574706c616365", addr.String())

	bare, err := NewAddress("6f70656e6d696e742d6d61726b6574706c616365")
	require.NoError(t, err)
	assert.Equal(t, addr, bare)

	_, err = NewAddress("0x1234")
	assert.Error(t, err)

	_, err = NewAddress("not-hex-not-hex-not-hex-not-hex-not-hex!")
	assert.Error(t, err)
}

func TestGenerateKeyPair(t *testing.T) {
	keyPair, err := GenerateKeyPair()
	require.NoError(t, err)

	assert.NotEmpty(t, keyPair.PrivateKey)
	assert.NotEqual(t, Address{}, keyPair.Address)

	other, err := GenerateKeyPair()
	require.NoError(t, err)
	assert.NotEqual(t, keyPair.Address, other.Address)
}

func TestCreditAndTransfer(t *testing.T) {
	l, err := New("")
	require.NoError(t, err)

	alice := testAddr("alice")
	bob := testAddr("bob")

	_, err = l.Execute(func(tx *Tx) error {
		tx.Credit(alice, 100)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(100), l.Balance(alice))

	_, err = l.Execute(func(tx *Tx) error {
		return tx.TransferNative(alice, bob, 60)
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(40), l.Balance(alice))
	assert.Equal(t, uint64(60), l.Balance(bob))
}

func TestTransferInsufficientFunds(t *testing.T) {
	l, err := New("")
	require.NoError(t, err)

	alice := testAddr("alice")
	bob := testAddr("bob")

	_, err = l.Execute(func(tx *Tx) error {
		tx.Credit(alice, 10)
		return nil
	})
	require.NoError(t, err)

	_, err = l.Execute(func(tx *Tx) error {
		return tx.TransferNative(alice, bob, 11)
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, uint64(10), l.Balance(alice))
	assert.Equal(t, uint64(0), l.Balance(bob))
}

func TestExecuteAbortsAtomically(t *testing.T) {
	l, err := New("")
	require.NoError(t, err)

	alice := testAddr("alice")
	asset := testAddr("asset")
	boom := errors.New("boom")

	txId, err := l.Execute(func(tx *Tx) error {
		tx.Credit(alice, 50)
		if err := tx.MintAsset(asset, alice); err != nil {
			return err
		}
		tx.SetRecord(testAddr("record"), []byte("{}"))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, txId)

	assert.Equal(t, uint64(0), l.Balance(alice))
	assert.Equal(t, uint64(0), l.HoldingBalance(asset, alice))

	_, err = l.Record(testAddr("record"))
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestMintMoveBurn(t *testing.T) {
	l, err := New("")
	require.NoError(t, err)

	alice := testAddr("alice")
	bob := testAddr("bob")
	asset := testAddr("asset")

	_, err = l.Execute(func(tx *Tx) error {
		return tx.MintAsset(asset, alice)
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), l.HoldingBalance(asset, alice))

	holder, ok := l.HolderOf(asset)
	require.True(t, ok)
	assert.Equal(t, alice, holder)

	_, err = l.Execute(func(tx *Tx) error {
		return tx.MintAsset(asset, bob)
	})
	assert.ErrorIs(t, err, ErrDuplicateAsset)

	_, err = l.Execute(func(tx *Tx) error {
		return tx.MoveAsset(asset, alice, bob)
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), l.HoldingBalance(asset, alice))
	assert.Equal(t, uint64(1), l.HoldingBalance(asset, bob))

	_, err = l.Execute(func(tx *Tx) error {
		return tx.BurnAsset(asset, bob)
	})
	require.NoError(t, err)

	_, ok = l.HolderOf(asset)
	assert.False(t, ok)
}

func TestMoveAssetErrors(t *testing.T) {
	l, err := New("")
	require.NoError(t, err)

	alice := testAddr("alice")
	bob := testAddr("bob")
	asset := testAddr("asset")

	// nothing minted yet
	_, err = l.Execute(func(tx *Tx) error {
		return tx.MoveAsset(asset, alice, bob)
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	_, err = l.Execute(func(tx *Tx) error {
		return tx.MintAsset(asset, alice)
	})
	require.NoError(t, err)

	// bob does not hold the unit
	_, err = l.Execute(func(tx *Tx) error {
		return tx.MoveAsset(asset, bob, alice)
	})
	assert.ErrorIs(t, err, ErrOwnershipMismatch)
}

func TestRecords(t *testing.T) {
	l, err := New("")
	require.NoError(t, err)

	addr := testAddr("record")

	_, err = l.Record(addr)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	_, err = l.Execute(func(tx *Tx) error {
		tx.SetRecord(addr, []byte(`{"price":5}`))
		return nil
	})
	require.NoError(t, err)

	data, err := l.Record(addr)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"price":5}`), data)

	_, err = l.Execute(func(tx *Tx) error {
		tx.DeleteRecord(addr)

		_, err := tx.Record(addr)
		assert.ErrorIs(t, err, ErrRecordNotFound)

		return nil
	})
	require.NoError(t, err)

	_, err = l.Record(addr)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestTxOverlayReads(t *testing.T) {
	l, err := New("")
	require.NoError(t, err)

	alice := testAddr("alice")

	_, err = l.Execute(func(tx *Tx) error {
		tx.Credit(alice, 30)
		assert.Equal(t, uint64(30), tx.Balance(alice))

		if err := tx.Debit(alice, 20); err != nil {
			return err
		}
		assert.Equal(t, uint64(10), tx.Balance(alice))

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(10), l.Balance(alice))
}

func TestReopenRestoresState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger")

	alice := testAddr("alice")
	bob := testAddr("bob")
	asset := testAddr("asset")
	record := testAddr("record")

	l, err := New(path)
	require.NoError(t, err)

	_, err = l.Execute(func(tx *Tx) error {
		tx.Credit(alice, 75)
		tx.SetRecord(record, []byte(`{"status":"active"}`))
		return tx.MintAsset(asset, bob)
	})
	require.NoError(t, err)
	require.NoError(t, l.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, uint64(75), reopened.Balance(alice))
	assert.Equal(t, uint64(1), reopened.HoldingBalance(asset, bob))

	data, err := reopened.Record(record)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"status":"active"}`), data)
}

func TestAbortedTxNotPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger")

	alice := testAddr("alice")

	l, err := New(path)
	require.NoError(t, err)

	_, err = l.Execute(func(tx *Tx) error {
		tx.Credit(alice, 10)
		return errors.New("abort")
	})
	require.Error(t, err)
	require.NoError(t, l.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, uint64(0), reopened.Balance(alice))
}
