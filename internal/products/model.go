// Package products implements the product resource: the catalog of items a
// user can buy or that recipes consume as ingredients.
package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cantina-dev/cantina/internal/platform/query"
)

// Currency is the currency a product is priced in.
type Currency string

// Product price currencies.
const (
	CurrencyEuro   Currency = "euro"
	CurrencyCredit Currency = "credit"
)

// Unit is the measurement unit a product is counted in.
type Unit string

// Product units.
const (
	UnitUnit  Unit = "unit"
	UnitGram  Unit = "gram"
	UnitLiter Unit = "liter"
	UnitMeter Unit = "meter"
)

// Product is a catalog entry. Image holds the object-storage key of the
// product picture when one was uploaded.
type Product struct {
	ID                  uuid.UUID       `json:"id" db:"id" filter:"multi"`
	Image               *string         `json:"image,omitempty" db:"image"`
	Name                string          `json:"name" db:"name" filter:"multi" sort:"true"`
	DisplayOrder        int32           `json:"display_order" db:"display_order" filter:"range" sort:"true"`
	SellPrice           decimal.Decimal `json:"sell_price" db:"sell_price" filter:"range,name=price" sort:"true"`
	SellPriceCurrency   Currency        `json:"sell_price_currency" db:"sell_price_currency" filter:"multi,name=currency"`
	Unit                Unit            `json:"unit" db:"unit" filter:"multi"`
	Purchasable         bool            `json:"purchasable" db:"purchasable" filter:"single"`
	Hidden              bool            `json:"hidden" db:"hidden" filter:"single"`
	Disabled            bool            `json:"disabled" db:"disabled" filter:"single"`
	MaxQuantityPerOrder *int16          `json:"max_quantity_per_order,omitempty" db:"max_quantity_per_order"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at" filter:"range" sort:"true"`
}

// Def is the derived filter/sort parameter set of the product entity.
var Def = query.MustDef[Product]()

// ValidCurrency reports whether c is a known currency.
func ValidCurrency(c Currency) bool {
	switch c {
	case CurrencyEuro, CurrencyCredit:
		return true
	}
	return false
}

// ValidUnit reports whether u is a known unit.
func ValidUnit(u Unit) bool {
	switch u {
	case UnitUnit, UnitGram, UnitLiter, UnitMeter:
		return true
	}
	return false
}
