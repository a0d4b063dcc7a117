// Package registry is the asset registry collaborator: it mints unique asset
// handles with descriptive metadata, transfers ownership, and burns. The
// marketplace core consumes its handles but owns none of its logic.
package registry

import (
	"crypto/sha256"
	"encoding/json"

	"github.com/nu7hatch/gouuid"
	"github.com/openmint/nft-marketplace/internal/authority"
	"github.com/openmint/nft-marketplace/internal/entity"
	"github.com/openmint/nft-marketplace/internal/event"
	"github.com/openmint/nft-marketplace/internal/ledger"
	"go.uber.org/zap"
)

const (
	assetTag    = "asset"
	metadataTag = "asset-meta"
)

type Registry struct {
	ledger    *ledger.Ledger
	program   ledger.Address
	authority ledger.Address
	bump      uint8
}

func New(l *ledger.Ledger, program ledger.Address) (*Registry, error) {
	auth, bump, err := authority.Derive([]byte(authority.AuthoritySeed), program)
	if err != nil {
		return nil, err
	}

	return &Registry{ledger: l, program: program, authority: auth, bump: bump}, nil
}

// MetadataAddress derives where an asset's descriptive record lives.
func MetadataAddress(asset, program ledger.Address) ledger.Address {
	h := sha256.New()
	h.Write([]byte(metadataTag))
	h.Write(asset[:])
	h.Write(program[:])

	var digest [sha256.Size]byte
	copy(digest[:], h.Sum(nil))

	return ledger.AddressFromDigest(digest)
}

// Mint creates a fresh unique asset handle, records its single unit in the
// owner's holding and stores the descriptive metadata. Minting is signed by
// the derived authority, re-derived and checked at call time.
func (r *Registry) Mint(owner ledger.Address, name, symbol, uri string) (entity.Asset, error) {
	sig := authority.Signature{Seed: []byte(authority.AuthoritySeed), Bump: r.bump}
	if err := authority.VerifySignature(sig, r.program, r.authority); err != nil {
		return entity.Asset{}, err
	}

	handle, err := newHandle(r.program)
	if err != nil {
		return entity.Asset{}, err
	}

	asset := entity.Asset{
		Handle: handle.String(),
		Name:   name,
		Symbol: symbol,
		Uri:    uri,
		Owner:  owner.String(),
	}

	txId, err := r.ledger.Execute(func(tx *ledger.Tx) error {
		if err := tx.MintAsset(handle, owner); err != nil {
			return err
		}

		return writeAsset(tx, MetadataAddress(handle, r.program), asset)
	})
	if err != nil {
		return entity.Asset{}, err
	}
	asset.TxID = txId

	zap.L().With(
		zap.String("txId", txId),
		zap.String("asset", asset.Handle),
		zap.String("owner", asset.Owner),
		zap.String("name", name),
	).Info("Registry mint")

	event.EmitEvent(event.AssetMintedEvent, event.AssetMinted{
		TxID:   txId,
		Asset:  asset.Handle,
		Owner:  asset.Owner,
		Name:   name,
		Symbol: symbol,
		Uri:    uri,
	})

	return asset, nil
}

// Transfer moves the single unit of an asset between holders directly,
// outside any listing.
func (r *Registry) Transfer(from, to, asset ledger.Address) error {
	metaAddr := MetadataAddress(asset, r.program)

	_, err := r.ledger.Execute(func(tx *ledger.Tx) error {
		if err := tx.MoveAsset(asset, from, to); err != nil {
			return err
		}

		record, err := readAsset(tx, metaAddr)
		if err != nil {
			return err
		}
		record.Owner = to.String()

		return writeAsset(tx, metaAddr, record)
	})

	return err
}

// Burn destroys the single unit held by owner. A listed asset cannot be
// burned: its unit sits in custody, not in the owner's holding.
func (r *Registry) Burn(owner, asset ledger.Address) error {
	metaAddr := MetadataAddress(asset, r.program)

	txId, err := r.ledger.Execute(func(tx *ledger.Tx) error {
		if err := tx.BurnAsset(asset, owner); err != nil {
			return err
		}

		record, err := readAsset(tx, metaAddr)
		if err != nil {
			return err
		}
		record.Burned = true

		return writeAsset(tx, metaAddr, record)
	})
	if err != nil {
		return err
	}

	zap.L().With(zap.String("txId", txId), zap.String("asset", asset.String())).Info("Registry burn")

	event.EmitEvent(event.AssetBurnedEvent, event.AssetBurned{
		TxID:  txId,
		Asset: asset.String(),
		Owner: owner.String(),
	})

	return nil
}

// Asset returns the committed descriptive record for a handle.
func (r *Registry) Asset(handle ledger.Address) (entity.Asset, error) {
	data, err := r.ledger.Record(MetadataAddress(handle, r.program))
	if err != nil {
		return entity.Asset{}, err
	}

	var asset entity.Asset
	if err := json.Unmarshal(data, &asset); err != nil {
		return entity.Asset{}, err
	}

	return asset, nil
}

func newHandle(program ledger.Address) (ledger.Address, error) {
	u, err := uuid.NewV4()
	if err != nil {
		return ledger.Address{}, err
	}

	h := sha256.New()
	h.Write([]byte(assetTag))
	h.Write(program[:])
	h.Write([]byte(u.String()))

	var digest [sha256.Size]byte
	copy(digest[:], h.Sum(nil))

	return ledger.AddressFromDigest(digest), nil
}

func readAsset(tx *ledger.Tx, addr ledger.Address) (entity.Asset, error) {
	data, err := tx.Record(addr)
	if err != nil {
		return entity.Asset{}, err
	}

	var asset entity.Asset
	err = json.Unmarshal(data, &asset)

	return asset, err
}

func writeAsset(tx *ledger.Tx, addr ledger.Address, asset entity.Asset) error {
	data, err := json.Marshal(asset)
	if err != nil {
		return err
	}

	tx.SetRecord(addr, data)

	return nil
}
