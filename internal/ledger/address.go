package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/Zilliqa/gozilliqa-sdk/keytools"
)

const AddressLength = 20

var ErrInvalidAddress = errors.New("invalid address")

// Address identifies a party, an asset handle, or a protocol-derived
// sub-account on the ledger.
type Address [AddressLength]byte

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func NewAddress(s string) (Address, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")

	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != AddressLength {
		return Address{}, ErrInvalidAddress
	}

	var addr Address
	copy(addr[:], raw)

	return addr, nil
}

// AddressFromDigest truncates a 32 byte digest down to an address, the same
// way account addresses are truncated from hashed public keys.
func AddressFromDigest(digest [sha256.Size]byte) Address {
	var addr Address
	copy(addr[:], digest[sha256.Size-AddressLength:])

	return addr
}

// KeyPair is a party identity. The marketplace core never signs with these
// keys; they exist so callers can be addressed on the ledger.
type KeyPair struct {
	PrivateKey []byte
	PublicKey  []byte
	Address    Address
}

func GenerateKeyPair() (*KeyPair, error) {
	privateKey, err := keytools.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}

	publicKey := keytools.GetPublicKeyFromPrivateKey(privateKey[:], true)

	addr, err := NewAddress(keytools.GetAddressFromPublic(publicKey))
	if err != nil {
		return nil, err
	}

	return &KeyPair{PrivateKey: privateKey[:], PublicKey: publicKey, Address: addr}, nil
}
