package ledger

import (
	"errors"
	"sync"

	"github.com/nu7hatch/gouuid"
	"go.uber.org/zap"
)

var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrOwnershipMismatch   = errors.New("ownership mismatch")
	ErrDuplicateAsset      = errors.New("duplicate asset")
	ErrRecordNotFound      = errors.New("record not found")
)

// Ledger is the host transactional system the marketplace protocol executes
// inside. It serializes every operation that touches its state and commits
// each one atomically: a failed operation leaves no observable side effect.
type Ledger struct {
	mu       sync.Mutex
	balances map[Address]uint64
	holdings map[Address]map[Address]uint64
	records  map[Address][]byte
	store    *store
}

// New opens a ledger backed by a pebble database at path. An empty path runs
// the ledger in memory only.
func New(path string) (*Ledger, error) {
	l := &Ledger{
		balances: make(map[Address]uint64),
		holdings: make(map[Address]map[Address]uint64),
		records:  make(map[Address][]byte),
	}

	if path == "" {
		return l, nil
	}

	s, err := openStore(path)
	if err != nil {
		return nil, err
	}
	l.store = s

	if err := s.load(l); err != nil {
		return nil, err
	}

	zap.L().With(
		zap.String("path", path),
		zap.Int("accounts", len(l.balances)),
		zap.Int("records", len(l.records)),
	).Info("Ledger opened")

	return l, nil
}

func (l *Ledger) Close() error {
	if l.store == nil {
		return nil
	}

	return l.store.close()
}

// Execute runs fn against a buffered transaction and commits the staged state
// iff fn returns nil. Execution is single-writer: two operations against the
// same listing or custody slot never interleave. The returned id identifies
// the committed transaction.
func (l *Ledger) Execute(fn func(tx *Tx) error) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := newTx(l)

	if err := fn(tx); err != nil {
		return "", err
	}

	if err := tx.commit(); err != nil {
		return "", err
	}

	u, err := uuid.NewV4()
	if err != nil {
		return "", err
	}

	return u.String(), nil
}

// Balance returns the committed native balance of addr.
func (l *Ledger) Balance(addr Address) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.balances[addr]
}

// HoldingBalance returns the committed unit count of asset held by holder.
// For unique assets this is 0 or 1.
func (l *Ledger) HoldingBalance(asset, holder Address) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.holdings[asset][holder]
}

// HolderOf returns the current holder of a unique asset.
func (l *Ledger) HolderOf(asset Address) (Address, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for holder, units := range l.holdings[asset] {
		if units > 0 {
			return holder, true
		}
	}

	return Address{}, false
}

// Record returns the committed record stored at addr.
func (l *Ledger) Record(addr Address) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, ok := l.records[addr]
	if !ok {
		return nil, ErrRecordNotFound
	}

	out := make([]byte, len(data))
	copy(out, data)

	return out, nil
}
