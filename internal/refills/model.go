// Package refills implements the refill resource: the predefined account
// top-up offers (an amount in euro buying an amount of credit).
package refills

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cantina-dev/cantina/internal/platform/query"
)

// Refill is a top-up offer.
type Refill struct {
	ID           uuid.UUID       `json:"id" db:"id" filter:"multi"`
	Name         *string         `json:"name,omitempty" db:"name" filter:"multi"`
	AmountEuro   decimal.Decimal `json:"amount_euro" db:"amount_euro" filter:"range" sort:"true"`
	AmountCredit decimal.Decimal `json:"amount_credit" db:"amount_credit" filter:"range" sort:"true"`
	Hidden       bool            `json:"hidden" db:"hidden" filter:"single"`
	Disabled     bool            `json:"disabled" db:"disabled" filter:"single"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at" filter:"range" sort:"true"`
}

// Def is the derived filter/sort parameter set of the refill entity.
var Def = query.MustDef[Refill]()
