package entities

import "fmt"

// PackageType is the purchased service tier
type PackageType string

const (
	PackageIndividual PackageType = "individual"
	PackageCouple     PackageType = "couple"
	PackageFamily     PackageType = "family"
)

// DefaultCurrency is the ISO currency all packages are priced in
const DefaultCurrency = "usd"

func (p PackageType) IsValid() bool {
	switch p {
	case PackageIndividual, PackageCouple, PackageFamily:
		return true
	}
	return false
}

// AllowsSpouse reports whether spouse fields apply to the tier
func (p PackageType) AllowsSpouse() bool {
	return p == PackageCouple || p == PackageFamily
}

// AllowsChildren reports whether a non-zero children count applies to the tier
func (p PackageType) AllowsChildren() bool {
	return p == PackageFamily
}

// PriceList maps each tier to its price in minor units
type PriceList map[PackageType]int64

// DefaultPrices returns the standard price list
func DefaultPrices() PriceList {
	return PriceList{
		PackageIndividual: 15000,
		PackageCouple:     25000,
		PackageFamily:     35000,
	}
}

// Price returns the amount in minor units for a tier
func (p PriceList) Price(pkg PackageType) (int64, bool) {
	amount, ok := p[pkg]
	return amount, ok
}

// FormatCents renders a minor-unit amount as a decimal string, e.g. 25000 -> "250.00"
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
