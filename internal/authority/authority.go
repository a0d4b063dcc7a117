// Package authority derives the sub-address the marketplace acts as. The
// address has no private key: it is a pure function of a seed and the program
// identity, and an operation is "signed" by it when the caller can present
// the seed and bump that reproduce it.
package authority

import (
	"crypto/sha256"
	"errors"

	"github.com/openmint/nft-marketplace/internal/ledger"
)

// AuthoritySeed matches the seed the marketplace program derives its
// custodian authority from.
const AuthoritySeed = "authority"

const derivationTag = "MarketplaceDerivedAuthority"

var (
	ErrInvalidAuthority = errors.New("invalid authority")
	ErrNoViableBump     = errors.New("no viable bump for seed")
)

// Signature proves that the caller can re-derive the authority address. Only
// program logic holding the seed constant can produce one that verifies.
type Signature struct {
	Seed []byte
	Bump uint8
}

// Derive walks bumps from 255 down and returns the first viable sub-address
// for (seed, program), together with its canonical bump. Roughly half of all
// bumps are not viable, so the bump is part of the proof.
func Derive(seed []byte, program ledger.Address) (ledger.Address, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		addr, ok := tryBump(seed, uint8(bump), program)
		if ok {
			return addr, uint8(bump), nil
		}
	}

	return ledger.Address{}, 0, ErrNoViableBump
}

// Verify recomputes the sub-address for (seed, bump, program) and compares it
// against the candidate. A stale or forged bump fails even when the seed is
// right.
func Verify(seed []byte, bump uint8, program, candidate ledger.Address) error {
	addr, ok := tryBump(seed, bump, program)
	if !ok || addr != candidate {
		return ErrInvalidAuthority
	}

	return nil
}

// VerifySignature checks a signature against the authority address the
// program expects to act as.
func VerifySignature(sig Signature, program, candidate ledger.Address) error {
	return Verify(sig.Seed, sig.Bump, program, candidate)
}

func tryBump(seed []byte, bump uint8, program ledger.Address) (ledger.Address, bool) {
	h := sha256.New()
	h.Write(seed)
	h.Write([]byte{bump})
	h.Write(program[:])
	h.Write([]byte(derivationTag))

	var digest [sha256.Size]byte
	copy(digest[:], h.Sum(nil))

	// A candidate is only viable when the top bit of the final digest byte is
	// clear, mirroring how curve point decompression rejects half the space.
	if digest[sha256.Size-1]&0x80 != 0 {
		return ledger.Address{}, false
	}

	return ledger.AddressFromDigest(digest), true
}
