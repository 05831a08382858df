// Package locations implements the location resource: the physical places a
// sale can happen at (a drink dispenser, a club room).
package locations

import (
	"time"

	"github.com/google/uuid"

	"github.com/cantina-dev/cantina/internal/platform/query"
)

// Category classifies a location.
type Category string

// Location categories.
const (
	CategoryDispenser Category = "dispenser"
	CategoryRoom      Category = "room"
)

// Location is a physical sale location. Name is unique.
type Location struct {
	ID        uuid.UUID `json:"id" db:"id" filter:"multi"`
	Name      string    `json:"name" db:"name" filter:"multi" sort:"true"`
	Category  *Category `json:"category,omitempty" db:"category" filter:"multi"`
	Disabled  bool      `json:"disabled" db:"disabled" filter:"single"`
	CreatedAt time.Time `json:"created_at" db:"created_at" filter:"range" sort:"true"`
}

// Def is the derived filter/sort parameter set of the location entity.
var Def = query.MustDef[Location]()

// ValidCategory reports whether c is a known category.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryDispenser, CategoryRoom:
		return true
	}
	return false
}
