// Package warehouses implements the warehouse resource and the per-warehouse
// product stock rows.
package warehouses

import (
	"time"

	"github.com/google/uuid"

	"github.com/cantina-dev/cantina/internal/platform/query"
)

// Warehouse is a stock-holding place.
type Warehouse struct {
	ID        uuid.UUID `json:"id" db:"id" filter:"multi"`
	Name      string    `json:"name" db:"name" filter:"multi" sort:"true"`
	Disabled  bool      `json:"disabled" db:"disabled" filter:"single"`
	CreatedAt time.Time `json:"created_at" db:"created_at" filter:"range" sort:"true"`
}

// WarehouseProduct links a product to a warehouse with the stocked quantity.
type WarehouseProduct struct {
	WarehouseID uuid.UUID `json:"warehouse_id" db:"warehouse_id" filter:"single"`
	ProductID   uuid.UUID `json:"product_id" db:"product_id" filter:"multi"`
	Quantity    int64     `json:"quantity" db:"quantity" filter:"range" sort:"true"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" filter:"range" sort:"true"`
}

// Defs of the two entities' derived filter/sort parameter sets.
var (
	Def        = query.MustDef[Warehouse]()
	ProductDef = query.MustDef[WarehouseProduct]()
)
