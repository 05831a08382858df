package products

import (
	"github.com/shopspring/decimal"
)

// CreateRequest is the payload of POST /product.
type CreateRequest struct {
	Image               *string         `json:"image,omitempty"`
	Name                string          `json:"name" validate:"required,min=1,max=32"`
	DisplayOrder        int32           `json:"display_order" validate:"gte=0"`
	SellPrice           decimal.Decimal `json:"sell_price"`
	SellPriceCurrency   Currency        `json:"sell_price_currency" validate:"required"`
	Unit                Unit            `json:"unit" validate:"required"`
	Purchasable         bool            `json:"purchasable"`
	Hidden              bool            `json:"hidden"`
	Disabled            bool            `json:"disabled"`
	MaxQuantityPerOrder *int16          `json:"max_quantity_per_order,omitempty" validate:"omitempty,min=1,max=10"`
}

// EditRequest is the payload of PUT /product/{id}. Nil fields are untouched;
// Image distinguishes "absent" from "set to null" via UnsetImage.
type EditRequest struct {
	Image               *string          `json:"image,omitempty"`
	UnsetImage          bool             `json:"unset_image,omitempty"`
	Name                *string          `json:"name,omitempty" validate:"omitempty,min=1,max=32"`
	DisplayOrder        *int32           `json:"display_order,omitempty" validate:"omitempty,gte=0"`
	SellPrice           *decimal.Decimal `json:"sell_price,omitempty"`
	SellPriceCurrency   *Currency        `json:"sell_price_currency,omitempty"`
	Unit                *Unit            `json:"unit,omitempty"`
	Purchasable         *bool            `json:"purchasable,omitempty"`
	Hidden              *bool            `json:"hidden,omitempty"`
	Disabled            *bool            `json:"disabled,omitempty"`
	MaxQuantityPerOrder *int16           `json:"max_quantity_per_order,omitempty" validate:"omitempty,min=1,max=10"`
}

// CreateResponse returns the id of a freshly created product.
type CreateResponse struct {
	ID string `json:"id"`
}

// ListResponse is the paginated product envelope.
type ListResponse struct {
	CurrentPage uint64    `json:"current_page"`
	TotalPage   uint64    `json:"total_page"`
	Products    []Product `json:"products"`
}
