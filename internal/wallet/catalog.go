package wallet

import "errors"

var ErrUnknownPackage = errors.New("wallet: unknown package")

// CoinsPerUnit is the fixed withdrawal conversion: 10 coins = 1 currency unit.
const CoinsPerUnit = 10

// CoinsToMinor converts coins to minor currency units (paise).
func CoinsToMinor(coins int64) int64 {
	return coins * 100 / CoinsPerUnit
}

// Package is a purchasable coin bundle. Price is in whole currency units.
type Package struct {
	ID      string `json:"id"`
	Coins   int64  `json:"coins"`
	Bonus   int64  `json:"bonus"`
	Price   int64  `json:"price"`
	Popular bool   `json:"popular,omitempty"`
	Offer   bool   `json:"offer,omitempty"`
}

// TotalCoins is what the buyer receives.
func (p Package) TotalCoins() int64 { return p.Coins + p.Bonus }

const OfferPackageID = "offer-700"

var catalog = []Package{
	{ID: "1", Coins: 100, Price: 99},
	{ID: "2", Coins: 500, Bonus: 50, Price: 399, Popular: true},
	{ID: "3", Coins: 1000, Bonus: 200, Price: 699},
	{ID: "4", Coins: 5000, Bonus: 1500, Price: 2999},
}

var offerPackage = Package{ID: OfferPackageID, Coins: 700, Price: 199, Popular: true, Offer: true}

// Packages returns the regular catalog. The offer package is listed
// separately because it is throttled.
func Packages() []Package {
	out := make([]Package, len(catalog))
	copy(out, catalog)
	return out
}

func OfferPackage() Package { return offerPackage }

func FindPackage(id string) (Package, error) {
	if id == OfferPackageID {
		return offerPackage, nil
	}
	for _, p := range catalog {
		if p.ID == id {
			return p, nil
		}
	}
	return Package{}, ErrUnknownPackage
}
