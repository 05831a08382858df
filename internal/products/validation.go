package products

import (
	"fmt"

	"github.com/cantina-dev/cantina/internal/shared"
)

// validateProduct checks the invariants every stored product must satisfy,
// shared between the create and edit paths.
func validateProduct(p Product) error {
	if p.Name == "" || len(p.Name) > 32 {
		return fmt.Errorf("%w: name must be 1 to 32 characters", shared.ErrValidation)
	}
	if !p.SellPrice.IsPositive() {
		return fmt.Errorf("%w: sell_price must be positive", shared.ErrValidation)
	}
	if !ValidCurrency(p.SellPriceCurrency) {
		return fmt.Errorf("%w: unknown currency %q", shared.ErrValidation, p.SellPriceCurrency)
	}
	if !ValidUnit(p.Unit) {
		return fmt.Errorf("%w: unknown unit %q", shared.ErrValidation, p.Unit)
	}
	if p.DisplayOrder < 0 {
		return fmt.Errorf("%w: display_order must not be negative", shared.ErrValidation)
	}
	if p.MaxQuantityPerOrder != nil && (*p.MaxQuantityPerOrder < 1 || *p.MaxQuantityPerOrder > 10) {
		return fmt.Errorf("%w: max_quantity_per_order must be between 1 and 10", shared.ErrValidation)
	}
	return nil
}
