package recipes

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cantina-dev/cantina/internal/platform/query"
	"github.com/cantina-dev/cantina/internal/shared"
)

type fakeRepo struct {
	recipes     map[uuid.UUID]Recipe
	ingredients map[uuid.UUID][]Ingredient
	units       map[uuid.UUID]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		recipes:     map[uuid.UUID]Recipe{},
		ingredients: map[uuid.UUID][]Ingredient{},
		units:       map[uuid.UUID]string{},
	}
}

func (f *fakeRepo) addProduct(unit string) uuid.UUID {
	id := uuid.New()
	f.units[id] = unit
	return id
}

func (f *fakeRepo) Find(_ context.Context, id uuid.UUID) (Recipe, error) {
	recipe, ok := f.recipes[id]
	if !ok {
		return Recipe{}, shared.ErrNotFound
	}
	return recipe, nil
}

func (f *fakeRepo) Ingredients(_ context.Context, recipeID uuid.UUID) ([]Ingredient, error) {
	return f.ingredients[recipeID], nil
}

func (f *fakeRepo) List(_ context.Context, _ query.Filter, _ query.Sort, _ shared.Pagination) ([]Recipe, uint64, error) {
	var out []Recipe
	for _, recipe := range f.recipes {
		out = append(out, recipe)
	}
	return out, uint64(len(out)), nil
}

func (f *fakeRepo) Create(_ context.Context, recipe Recipe, ingredients []IngredientInput) error {
	f.recipes[recipe.ID] = recipe
	for _, line := range ingredients {
		f.ingredients[recipe.ID] = append(f.ingredients[recipe.ID], Ingredient{
			RecipeID:     recipe.ID,
			IngredientID: line.ProductID,
			Quantity:     line.Quantity,
			Disabled:     line.Disabled != nil && *line.Disabled,
		})
	}
	return nil
}

func (f *fakeRepo) Update(_ context.Context, recipe Recipe, add, update []IngredientInput, remove []uuid.UUID) error {
	if _, ok := f.recipes[recipe.ID]; !ok {
		return shared.ErrNotFound
	}
	f.recipes[recipe.ID] = recipe

	dropped := map[uuid.UUID]struct{}{}
	for _, id := range remove {
		dropped[id] = struct{}{}
	}
	updated := map[uuid.UUID]IngredientInput{}
	for _, line := range update {
		updated[line.ProductID] = line
	}

	var next []Ingredient
	for _, row := range f.ingredients[recipe.ID] {
		if _, ok := dropped[row.IngredientID]; ok {
			continue
		}
		if line, ok := updated[row.IngredientID]; ok {
			row.Quantity = line.Quantity
			row.Disabled = line.Disabled != nil && *line.Disabled
		}
		next = append(next, row)
	}
	for _, line := range add {
		next = append(next, Ingredient{
			RecipeID:     recipe.ID,
			IngredientID: line.ProductID,
			Quantity:     line.Quantity,
			Disabled:     line.Disabled != nil && *line.Disabled,
		})
	}
	f.ingredients[recipe.ID] = next
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.recipes[id]; !ok {
		return shared.ErrNotFound
	}
	delete(f.recipes, id)
	delete(f.ingredients, id)
	return nil
}

func (f *fakeRepo) ProductUnit(_ context.Context, productID uuid.UUID) (string, error) {
	unit, ok := f.units[productID]
	if !ok {
		return "", shared.ErrNotFound
	}
	return unit, nil
}

func (f *fakeRepo) MissingProducts(_ context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := f.units[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func TestCreateMergesAndStores(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, slog.Default())
	ctx := context.Background()

	result := repo.addProduct("unit")
	flour := repo.addProduct("gram")

	id, err := svc.Create(ctx, CreateRequest{
		ResultProductID: result,
		Ingredients: []IngredientInput{
			{ProductID: flour, Quantity: qty(1)},
			{ProductID: flour, Quantity: qty(2)},
		},
	})
	require.NoError(t, err)

	rows := repo.ingredients[id]
	require.Len(t, rows, 1)
	require.True(t, rows[0].Quantity.Equal(qty(3)))
}

func TestCreateValidatesBeforeMutation(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, slog.Default())
	ctx := context.Background()

	result := repo.addProduct("unit")
	flour := repo.addProduct("gram")

	t.Run("unknown ingredient", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateRequest{
			ResultProductID: result,
			Ingredients:     []IngredientInput{{ProductID: uuid.New(), Quantity: qty(1)}},
		})
		require.ErrorIs(t, err, shared.ErrValidation)
		require.Empty(t, repo.recipes)
	})

	t.Run("unknown result product", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateRequest{
			ResultProductID: uuid.New(),
			Ingredients:     []IngredientInput{{ProductID: flour, Quantity: qty(1)}},
		})
		require.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("result product not counted in units", func(t *testing.T) {
		liquid := repo.addProduct("liter")
		_, err := svc.Create(ctx, CreateRequest{
			ResultProductID: liquid,
			Ingredients:     []IngredientInput{{ProductID: flour, Quantity: qty(1)}},
		})
		require.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("self reference", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateRequest{
			ResultProductID: result,
			Ingredients:     []IngredientInput{{ProductID: result, Quantity: qty(1)}},
		})
		require.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateRequest{
			ResultProductID: result,
			Ingredients:     []IngredientInput{{ProductID: flour, Quantity: qty(0)}},
		})
		require.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestEditReconcilesIngredients(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, slog.Default())
	ctx := context.Background()

	result := repo.addProduct("unit")
	flour := repo.addProduct("gram")
	sugar := repo.addProduct("gram")
	yeast := repo.addProduct("gram")

	id, err := svc.Create(ctx, CreateRequest{
		ResultProductID: result,
		Ingredients: []IngredientInput{
			{ProductID: flour, Quantity: qty(1)},
			{ProductID: sugar, Quantity: qty(2)},
		},
	})
	require.NoError(t, err)

	// Keep flour with a new quantity, drop sugar, add yeast.
	ingredients := []IngredientInput{
		{ProductID: flour, Quantity: qty(5)},
		{ProductID: yeast, Quantity: qty(1)},
	}
	require.NoError(t, svc.Edit(ctx, id, EditRequest{Ingredients: &ingredients}))

	rows := repo.ingredients[id]
	require.Len(t, rows, 2)
	byID := map[uuid.UUID]Ingredient{}
	for _, row := range rows {
		byID[row.IngredientID] = row
	}
	require.True(t, byID[flour].Quantity.Equal(qty(5)))
	require.True(t, byID[yeast].Quantity.Equal(qty(1)))
	require.NotContains(t, byID, sugar)
}

func TestEditWithoutIngredientsLeavesRowsAlone(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, slog.Default())
	ctx := context.Background()

	result := repo.addProduct("unit")
	flour := repo.addProduct("gram")

	id, err := svc.Create(ctx, CreateRequest{
		ResultProductID: result,
		Ingredients:     []IngredientInput{{ProductID: flour, Quantity: qty(1)}},
	})
	require.NoError(t, err)

	disabled := true
	require.NoError(t, svc.Edit(ctx, id, EditRequest{Disabled: &disabled}))

	require.True(t, repo.recipes[id].Disabled)
	require.Len(t, repo.ingredients[id], 1)
}

func TestEditRejectsSelfReferenceAgainstNewResultProduct(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, slog.Default())
	ctx := context.Background()

	result := repo.addProduct("unit")
	other := repo.addProduct("unit")

	id, err := svc.Create(ctx, CreateRequest{ResultProductID: result})
	require.NoError(t, err)

	// Pointing the recipe at a result product that is also submitted as an
	// ingredient must fail even though both existed before the edit.
	ingredients := []IngredientInput{{ProductID: other, Quantity: qty(1)}}
	err = svc.Edit(ctx, id, EditRequest{ResultProductID: &other, Ingredients: &ingredients})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeleteRemovesIngredients(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, slog.Default())
	ctx := context.Background()

	result := repo.addProduct("unit")
	flour := repo.addProduct("gram")

	id, err := svc.Create(ctx, CreateRequest{
		ResultProductID: result,
		Ingredients:     []IngredientInput{{ProductID: flour, Quantity: qty(1)}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, id))
	require.Empty(t, repo.ingredients[id])
	require.ErrorIs(t, svc.Delete(ctx, id), shared.ErrNotFound)
}
