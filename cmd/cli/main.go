package main

import (
	"fmt"
	"os"

	"github.com/openmint/nft-marketplace/internal/config"
	"github.com/openmint/nft-marketplace/internal/ledger"
	"github.com/openmint/nft-marketplace/internal/marketplace"
	"github.com/openmint/nft-marketplace/internal/registry"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var (
	l      *ledger.Ledger
	market *marketplace.Marketplace
	assets *registry.Registry
)

func main() {
	config.Init()

	var err error
	l, err = ledger.New(config.Get().DataDir)
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to open ledger")
	}
	defer l.Close()

	program, err := ledger.NewAddress(config.Get().ProgramID)
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Invalid program id")
	}

	market, err = marketplace.New(l, program)
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to create marketplace")
	}

	assets, err = registry.New(l, program)
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to create registry")
	}

	app := &cli.App{
		Name:  "marketplace",
		Usage: "operate the custodial marketplace ledger",
		Commands: []*cli.Command{
			{
				Name:   "keygen",
				Usage:  "Generate a new party keypair",
				Action: keygen,
			},
			{
				Name:   "fund",
				Usage:  "Credit native units to an address",
				Action: fund,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "address", Required: true},
					&cli.Uint64Flag{Name: "amount", Required: true},
				},
			},
			{
				Name:   "balance",
				Usage:  "Show the native balance of an address",
				Action: balance,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "address", Required: true},
				},
			},
			{
				Name:   "mint",
				Usage:  "Mint a new asset to an owner",
				Action: mint,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "owner", Required: true},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "symbol", Required: true},
					&cli.StringFlag{Name: "uri"},
				},
			},
			{
				Name:   "transfer",
				Usage:  "Transfer an asset between owners",
				Action: transfer,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from", Required: true},
					&cli.StringFlag{Name: "to", Required: true},
					&cli.StringFlag{Name: "asset", Required: true},
				},
			},
			{
				Name:   "burn",
				Usage:  "Burn an asset held by its owner",
				Action: burn,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "owner", Required: true},
					&cli.StringFlag{Name: "asset", Required: true},
				},
			},
			{
				Name:   "list",
				Usage:  "List an asset for sale",
				Action: list,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "seller", Required: true},
					&cli.StringFlag{Name: "asset", Required: true},
					&cli.Uint64Flag{Name: "price", Required: true},
				},
			},
			{
				Name:   "update-price",
				Usage:  "Change the price of an active listing",
				Action: updatePrice,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "seller", Required: true},
					&cli.StringFlag{Name: "asset", Required: true},
					&cli.Uint64Flag{Name: "price", Required: true},
				},
			},
			{
				Name:   "buy",
				Usage:  "Buy a listed asset",
				Action: buy,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "buyer", Required: true},
					&cli.StringFlag{Name: "asset", Required: true},
				},
			},
			{
				Name:   "delist",
				Usage:  "Cancel an active listing and reclaim the asset",
				Action: delist,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "seller", Required: true},
					&cli.StringFlag{Name: "asset", Required: true},
				},
			},
			{
				Name:   "show",
				Usage:  "Show the listing state of an asset",
				Action: show,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "asset", Required: true},
				},
			},
			{
				Name:   "asset",
				Usage:  "Show the registry record of an asset",
				Action: showAsset,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "asset", Required: true},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to execute cli")
	}
}

func keygen(c *cli.Context) error {
	keyPair, err := ledger.GenerateKeyPair()
	if err != nil {
		return err
	}

	fmt.Printf("address: %s\n", keyPair.Address)
	fmt.Printf("private: %x\n", keyPair.PrivateKey)

	return nil
}

func fund(c *cli.Context) error {
	addr, err := ledger.NewAddress(c.String("address"))
	if err != nil {
		return err
	}

	txId, err := l.Execute(func(tx *ledger.Tx) error {
		tx.Credit(addr, c.Uint64("amount"))
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("funded %s (tx %s)\n", addr, txId)

	return nil
}

func balance(c *cli.Context) error {
	addr, err := ledger.NewAddress(c.String("address"))
	if err != nil {
		return err
	}

	fmt.Printf("%d\n", l.Balance(addr))

	return nil
}

func mint(c *cli.Context) error {
	owner, err := ledger.NewAddress(c.String("owner"))
	if err != nil {
		return err
	}

	asset, err := assets.Mint(owner, c.String("name"), c.String("symbol"), c.String("uri"))
	if err != nil {
		return err
	}

	fmt.Printf("minted %s to %s (tx %s)\n", asset.Handle, asset.Owner, asset.TxID)

	return nil
}

func transfer(c *cli.Context) error {
	from, err := ledger.NewAddress(c.String("from"))
	if err != nil {
		return err
	}

	to, err := ledger.NewAddress(c.String("to"))
	if err != nil {
		return err
	}

	asset, err := ledger.NewAddress(c.String("asset"))
	if err != nil {
		return err
	}

	if err := assets.Transfer(from, to, asset); err != nil {
		return err
	}

	fmt.Printf("transferred %s to %s\n", asset, to)

	return nil
}

func burn(c *cli.Context) error {
	owner, asset, err := parties(c, "owner")
	if err != nil {
		return err
	}

	if err := assets.Burn(owner, asset); err != nil {
		return err
	}

	fmt.Printf("burned %s\n", asset)

	return nil
}

func list(c *cli.Context) error {
	seller, asset, err := parties(c, "seller")
	if err != nil {
		return err
	}

	listing, err := market.List(seller, asset, c.Uint64("price"))
	if err != nil {
		return err
	}

	fmt.Printf("listed %s for %d (custody %s, tx %s)\n", listing.Asset, listing.Price, listing.CustodySlot, listing.TxID)

	return nil
}

func updatePrice(c *cli.Context) error {
	seller, asset, err := parties(c, "seller")
	if err != nil {
		return err
	}

	listing, err := market.UpdatePrice(seller, asset, c.Uint64("price"))
	if err != nil {
		return err
	}

	fmt.Printf("repriced %s to %d (tx %s)\n", listing.Asset, listing.Price, listing.TxID)

	return nil
}

func buy(c *cli.Context) error {
	buyer, asset, err := parties(c, "buyer")
	if err != nil {
		return err
	}

	listing, err := market.Buy(buyer, asset)
	if err != nil {
		return err
	}

	fmt.Printf("bought %s for %d (tx %s)\n", listing.Asset, listing.Price, listing.TxID)

	return nil
}

func delist(c *cli.Context) error {
	seller, asset, err := parties(c, "seller")
	if err != nil {
		return err
	}

	listing, err := market.Delist(seller, asset)
	if err != nil {
		return err
	}

	fmt.Printf("delisted %s (tx %s)\n", listing.Asset, listing.TxID)

	return nil
}

func show(c *cli.Context) error {
	asset, err := ledger.NewAddress(c.String("asset"))
	if err != nil {
		return err
	}

	listing, err := market.Listing(asset)
	if err != nil {
		return err
	}

	fmt.Printf("asset:   %s\n", listing.Asset)
	fmt.Printf("seller:  %s\n", listing.Seller)
	fmt.Printf("price:   %d\n", listing.Price)
	fmt.Printf("status:  %s\n", listing.Status)
	fmt.Printf("custody: %s\n", listing.CustodySlot)

	return nil
}

func showAsset(c *cli.Context) error {
	handle, err := ledger.NewAddress(c.String("asset"))
	if err != nil {
		return err
	}

	asset, err := assets.Asset(handle)
	if err != nil {
		return err
	}

	fmt.Printf("handle: %s\n", asset.Handle)
	fmt.Printf("name:   %s (%s)\n", asset.Name, asset.Symbol)
	fmt.Printf("owner:  %s\n", asset.Owner)
	fmt.Printf("uri:    %s\n", asset.Uri)
	fmt.Printf("burned: %t\n", asset.Burned)

	return nil
}

func parties(c *cli.Context, party string) (ledger.Address, ledger.Address, error) {
	actor, err := ledger.NewAddress(c.String(party))
	if err != nil {
		return ledger.Address{}, ledger.Address{}, err
	}

	asset, err := ledger.NewAddress(c.String("asset"))
	if err != nil {
		return ledger.Address{}, ledger.Address{}, err
	}

	return actor, asset, nil
}
