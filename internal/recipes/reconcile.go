package recipes

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IngredientInput is one submitted ingredient line. Disabled may be omitted.
type IngredientInput struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Disabled  *bool           `json:"disabled,omitempty"`
}

// mergeIngredients collapses duplicate product lines. Quantities add up; the
// disabled flags are ANDed with an omitted flag counting as true inside the
// AND. A product that never collides keeps its flag, omitted meaning false.
func mergeIngredients(in []IngredientInput) []IngredientInput {
	var order []uuid.UUID
	merged := map[uuid.UUID]IngredientInput{}
	for _, line := range in {
		existing, ok := merged[line.ProductID]
		if !ok {
			merged[line.ProductID] = line
			order = append(order, line.ProductID)
			continue
		}
		disabled := orTrue(existing.Disabled) && orTrue(line.Disabled)
		existing.Quantity = existing.Quantity.Add(line.Quantity)
		existing.Disabled = &disabled
		merged[line.ProductID] = existing
	}

	out := make([]IngredientInput, 0, len(order))
	for _, id := range order {
		line := merged[id]
		if line.Disabled == nil {
			disabled := false
			line.Disabled = &disabled
		}
		out = append(out, line)
	}
	return out
}

// orTrue reads an omitted flag as set, the identity of the collision AND.
func orTrue(b *bool) bool { return b == nil || *b }

// diffIngredients splits a merged incoming list against the stored rows into
// the three disjoint change sets of an edit.
func diffIngredients(incoming []IngredientInput, existing []Ingredient) (add, update []IngredientInput, remove []uuid.UUID) {
	stored := map[uuid.UUID]struct{}{}
	for _, row := range existing {
		stored[row.IngredientID] = struct{}{}
	}
	submitted := map[uuid.UUID]struct{}{}
	for _, line := range incoming {
		submitted[line.ProductID] = struct{}{}
		if _, ok := stored[line.ProductID]; ok {
			update = append(update, line)
		} else {
			add = append(add, line)
		}
	}
	for _, row := range existing {
		if _, ok := submitted[row.IngredientID]; !ok {
			remove = append(remove, row.IngredientID)
		}
	}
	return add, update, remove
}
