package recipes

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func qty(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func boolPtr(v bool) *bool { return &v }

func TestMergeSumsDuplicateQuantities(t *testing.T) {
	flour := uuid.New()
	sugar := uuid.New()

	merged := mergeIngredients([]IngredientInput{
		{ProductID: flour, Quantity: qty(1.5)},
		{ProductID: sugar, Quantity: qty(0.5)},
		{ProductID: flour, Quantity: qty(2)},
	})

	require.Len(t, merged, 2)
	require.Equal(t, flour, merged[0].ProductID)
	require.True(t, merged[0].Quantity.Equal(qty(3.5)))
	require.Equal(t, sugar, merged[1].ProductID)
	require.True(t, merged[1].Quantity.Equal(qty(0.5)))
}

func TestMergeDisabledFold(t *testing.T) {
	id := uuid.New()

	// A single line with no flag stays enabled.
	merged := mergeIngredients([]IngredientInput{{ProductID: id, Quantity: qty(1)}})
	require.False(t, *merged[0].Disabled)

	// Any explicitly enabled line wins the AND.
	merged = mergeIngredients([]IngredientInput{
		{ProductID: id, Quantity: qty(1), Disabled: boolPtr(true)},
		{ProductID: id, Quantity: qty(1), Disabled: boolPtr(false)},
	})
	require.False(t, *merged[0].Disabled)

	// An omitted flag counts as true inside the AND, on either side.
	merged = mergeIngredients([]IngredientInput{
		{ProductID: id, Quantity: qty(1), Disabled: boolPtr(true)},
		{ProductID: id, Quantity: qty(1)},
	})
	require.True(t, *merged[0].Disabled)

	merged = mergeIngredients([]IngredientInput{
		{ProductID: id, Quantity: qty(1)},
		{ProductID: id, Quantity: qty(1), Disabled: boolPtr(true)},
	})
	require.True(t, *merged[0].Disabled)

	// Two flagless lines colliding also merge disabled.
	merged = mergeIngredients([]IngredientInput{
		{ProductID: id, Quantity: qty(1)},
		{ProductID: id, Quantity: qty(1)},
	})
	require.True(t, *merged[0].Disabled)

	// An explicit false anywhere keeps the merged line enabled.
	merged = mergeIngredients([]IngredientInput{
		{ProductID: id, Quantity: qty(1), Disabled: boolPtr(false)},
		{ProductID: id, Quantity: qty(1)},
	})
	require.False(t, *merged[0].Disabled)
}

func TestMergeKeepsAllDisabled(t *testing.T) {
	id := uuid.New()
	merged := mergeIngredients([]IngredientInput{
		{ProductID: id, Quantity: qty(1), Disabled: boolPtr(true)},
		{ProductID: id, Quantity: qty(2), Disabled: boolPtr(true)},
	})
	require.True(t, *merged[0].Disabled)
	require.True(t, merged[0].Quantity.Equal(qty(3)))
}

func TestDiffPartitionsChangeSets(t *testing.T) {
	kept := uuid.New()
	added := uuid.New()
	removed := uuid.New()
	recipeID := uuid.New()

	incoming := []IngredientInput{
		{ProductID: kept, Quantity: qty(2)},
		{ProductID: added, Quantity: qty(1)},
	}
	existing := []Ingredient{
		{RecipeID: recipeID, IngredientID: kept, Quantity: qty(1)},
		{RecipeID: recipeID, IngredientID: removed, Quantity: qty(5)},
	}

	add, update, remove := diffIngredients(incoming, existing)

	require.Len(t, add, 1)
	require.Equal(t, added, add[0].ProductID)
	require.Len(t, update, 1)
	require.Equal(t, kept, update[0].ProductID)
	require.True(t, update[0].Quantity.Equal(qty(2)))
	require.Equal(t, []uuid.UUID{removed}, remove)
}

func TestDiffEmptyIncomingRemovesEverything(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	existing := []Ingredient{{IngredientID: a}, {IngredientID: b}}

	add, update, remove := diffIngredients(nil, existing)
	require.Empty(t, add)
	require.Empty(t, update)
	require.ElementsMatch(t, []uuid.UUID{a, b}, remove)
}
