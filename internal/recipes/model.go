// Package recipes implements the recipe resource: a bill of materials mapping
// ingredient products onto one result product. Editing a recipe reconciles the
// submitted ingredient list against the stored one inside a single
// transaction.
package recipes

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cantina-dev/cantina/internal/platform/query"
)

// Recipe is the recipe header row.
type Recipe struct {
	ID              uuid.UUID `json:"id" db:"id" filter:"single"`
	Name            *string   `json:"name,omitempty" db:"name"`
	ResultProductID uuid.UUID `json:"result_product_id" db:"result_product_id" filter:"single"`
	Disabled        bool      `json:"disabled" db:"disabled" filter:"single"`
	CreatedAt       time.Time `json:"created_at" db:"created_at" filter:"range" sort:"true"`
}

// Ingredient is one stored ingredient row of a recipe.
type Ingredient struct {
	RecipeID     uuid.UUID       `json:"recipe_id" db:"recipe_id"`
	IngredientID uuid.UUID       `json:"ingredient_id" db:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity" db:"quantity"`
	Disabled     bool            `json:"disabled" db:"disabled"`
}

// Def is the derived filter/sort parameter set of the recipe entity.
var Def = query.MustDef[Recipe]()
