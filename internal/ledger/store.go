package ledger

import (
	"encoding/binary"

	"github.com/cockroachdb/pebble"
)

// Key prefixes for the durable copy of ledger state.
var (
	balancePrefix = []byte("b:")
	holdingPrefix = []byte("h:")
	recordPrefix  = []byte("r:")
)

type store struct {
	db *pebble.DB
}

func openStore(path string) (*store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}

	return &store{db: db}, nil
}

func (s *store) close() error {
	return s.db.Close()
}

// commit writes every staged mutation of tx as one synced batch. Pebble
// applies the batch atomically, which keeps the durable copy aligned with the
// all-or-nothing contract of Ledger.Execute.
func (s *store) commit(tx *Tx) error {
	batch := s.db.NewBatch()

	for addr, bal := range tx.balances {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], bal)
		if err := batch.Set(balanceKey(addr), buf[:], nil); err != nil {
			return err
		}
	}

	for asset, holders := range tx.holdings {
		for holder, units := range holders {
			key := holdingKey(asset, holder)
			if units == 0 {
				if err := batch.Delete(key, nil); err != nil {
					return err
				}
				continue
			}
			if err := batch.Set(key, []byte{byte(units)}, nil); err != nil {
				return err
			}
		}
	}

	for addr, data := range tx.records {
		if err := batch.Set(recordKey(addr), data, nil); err != nil {
			return err
		}
	}
	for addr := range tx.deleted {
		if err := batch.Delete(recordKey(addr), nil); err != nil {
			return err
		}
	}

	return s.db.Apply(batch, pebble.Sync)
}

func (s *store) load(l *Ledger) error {
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		key := iter.Key()
		if len(key) < 2 {
			continue
		}

		switch key[0] {
		case 'b':
			addr := addressAt(key, 2)
			l.balances[addr] = binary.BigEndian.Uint64(iter.Value())
		case 'h':
			asset := addressAt(key, 2)
			holder := addressAt(key, 2+AddressLength)
			holders, ok := l.holdings[asset]
			if !ok {
				holders = make(map[Address]uint64)
				l.holdings[asset] = holders
			}
			holders[holder] = uint64(iter.Value()[0])
		case 'r':
			addr := addressAt(key, 2)
			data := make([]byte, len(iter.Value()))
			copy(data, iter.Value())
			l.records[addr] = data
		}
	}

	return iter.Error()
}

func balanceKey(addr Address) []byte {
	return append(append([]byte{}, balancePrefix...), addr[:]...)
}

func holdingKey(asset, holder Address) []byte {
	key := append(append([]byte{}, holdingPrefix...), asset[:]...)
	return append(key, holder[:]...)
}

func recordKey(addr Address) []byte {
	return append(append([]byte{}, recordPrefix...), addr[:]...)
}

func addressAt(key []byte, offset int) Address {
	var addr Address
	if len(key) >= offset+AddressLength {
		copy(addr[:], key[offset:offset+AddressLength])
	}

	return addr
}
