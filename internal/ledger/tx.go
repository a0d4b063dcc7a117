package ledger

// Tx stages mutations against the committed ledger state. Nothing a Tx does
// is visible until commit; an aborted Tx is simply dropped.
type Tx struct {
	l *Ledger

	balances map[Address]uint64
	holdings map[Address]map[Address]uint64
	records  map[Address][]byte
	deleted  map[Address]bool
}

func newTx(l *Ledger) *Tx {
	return &Tx{
		l:        l,
		balances: make(map[Address]uint64),
		holdings: make(map[Address]map[Address]uint64),
		records:  make(map[Address][]byte),
		deleted:  make(map[Address]bool),
	}
}

func (tx *Tx) Balance(addr Address) uint64 {
	if bal, ok := tx.balances[addr]; ok {
		return bal
	}

	return tx.l.balances[addr]
}

func (tx *Tx) Credit(addr Address, amount uint64) {
	tx.balances[addr] = tx.Balance(addr) + amount
}

func (tx *Tx) Debit(addr Address, amount uint64) error {
	bal := tx.Balance(addr)
	if bal < amount {
		return ErrInsufficientFunds
	}

	tx.balances[addr] = bal - amount

	return nil
}

// TransferNative moves native currency units between two parties. This is the
// payment leg primitive of settlement.
func (tx *Tx) TransferNative(from, to Address, amount uint64) error {
	if err := tx.Debit(from, amount); err != nil {
		return err
	}
	tx.Credit(to, amount)

	return nil
}

func (tx *Tx) HoldingBalance(asset, holder Address) uint64 {
	if holders, ok := tx.holdings[asset]; ok {
		if units, ok := holders[holder]; ok {
			return units
		}
	}

	return tx.l.holdings[asset][holder]
}

func (tx *Tx) stageHolding(asset, holder Address, units uint64) {
	holders, ok := tx.holdings[asset]
	if !ok {
		holders = make(map[Address]uint64)
		tx.holdings[asset] = holders
	}

	holders[holder] = units
}

// AssetExists reports whether any unit of asset has ever been minted and not
// burned since.
func (tx *Tx) AssetExists(asset Address) bool {
	for holder := range tx.l.holdings[asset] {
		if tx.HoldingBalance(asset, holder) > 0 {
			return true
		}
	}
	for holder := range tx.holdings[asset] {
		if tx.HoldingBalance(asset, holder) > 0 {
			return true
		}
	}

	return false
}

// MintAsset creates the single unit of a unique asset in owner's holding.
func (tx *Tx) MintAsset(asset, owner Address) error {
	if tx.AssetExists(asset) {
		return ErrDuplicateAsset
	}

	tx.stageHolding(asset, owner, 1)

	return nil
}

// BurnAsset destroys the single unit held by owner.
func (tx *Tx) BurnAsset(asset, owner Address) error {
	if err := tx.checkHolder(asset, owner); err != nil {
		return err
	}

	tx.stageHolding(asset, owner, 0)

	return nil
}

// MoveAsset transfers the single unit of a unique asset between holdings.
func (tx *Tx) MoveAsset(asset, from, to Address) error {
	if err := tx.checkHolder(asset, from); err != nil {
		return err
	}

	tx.stageHolding(asset, from, 0)
	tx.stageHolding(asset, to, tx.HoldingBalance(asset, to)+1)

	return nil
}

func (tx *Tx) checkHolder(asset, from Address) error {
	if tx.HoldingBalance(asset, from) > 0 {
		return nil
	}

	if tx.AssetExists(asset) {
		return ErrOwnershipMismatch
	}

	return ErrInsufficientBalance
}

func (tx *Tx) Record(addr Address) ([]byte, error) {
	if tx.deleted[addr] {
		return nil, ErrRecordNotFound
	}
	if data, ok := tx.records[addr]; ok {
		return data, nil
	}

	data, ok := tx.l.records[addr]
	if !ok {
		return nil, ErrRecordNotFound
	}

	return data, nil
}

func (tx *Tx) SetRecord(addr Address, data []byte) {
	delete(tx.deleted, addr)
	tx.records[addr] = data
}

func (tx *Tx) DeleteRecord(addr Address) {
	delete(tx.records, addr)
	tx.deleted[addr] = true
}

// commit applies the staged state to memory and, when the ledger is durable,
// to a single pebble batch. Caller holds the ledger lock.
func (tx *Tx) commit() error {
	if tx.l.store != nil {
		if err := tx.l.store.commit(tx); err != nil {
			return err
		}
	}

	for addr, bal := range tx.balances {
		tx.l.balances[addr] = bal
	}

	for asset, holders := range tx.holdings {
		committed, ok := tx.l.holdings[asset]
		if !ok {
			committed = make(map[Address]uint64)
			tx.l.holdings[asset] = committed
		}
		for holder, units := range holders {
			if units == 0 {
				delete(committed, holder)
				continue
			}
			committed[holder] = units
		}
	}

	for addr, data := range tx.records {
		tx.l.records[addr] = data
	}
	for addr := range tx.deleted {
		delete(tx.l.records, addr)
	}

	return nil
}
