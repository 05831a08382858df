package recipes

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cantina-dev/cantina/internal/platform/db"
	"github.com/cantina-dev/cantina/internal/platform/query"
	"github.com/cantina-dev/cantina/internal/shared"
)

// Repository is the persistence port of the recipe resource. Create and Update
// apply the recipe header and its ingredient change sets atomically.
type Repository interface {
	Find(ctx context.Context, id uuid.UUID) (Recipe, error)
	Ingredients(ctx context.Context, recipeID uuid.UUID) ([]Ingredient, error)
	List(ctx context.Context, filter query.Filter, sort query.Sort, page shared.Pagination) ([]Recipe, uint64, error)
	Create(ctx context.Context, recipe Recipe, ingredients []IngredientInput) error
	Update(ctx context.Context, recipe Recipe, add, update []IngredientInput, remove []uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ProductUnit returns the unit of a product, shared.ErrNotFound when the
	// product does not exist.
	ProductUnit(ctx context.Context, productID uuid.UUID) (string, error)
	// MissingProducts returns the subset of ids without a product row.
	MissingProducts(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}

const recipeColumns = `id, name, result_product_id, disabled, created_at`

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) Find(ctx context.Context, id uuid.UUID) (Recipe, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+recipeColumns+` FROM recipe WHERE id = $1`, id)
	var recipe Recipe
	err := row.Scan(&recipe.ID, &recipe.Name, &recipe.ResultProductID, &recipe.Disabled, &recipe.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Recipe{}, shared.ErrNotFound
	}
	if err != nil {
		return Recipe{}, fmt.Errorf("recipes: find: %w", err)
	}
	return recipe, nil
}

func (r *pgRepository) Ingredients(ctx context.Context, recipeID uuid.UUID) ([]Ingredient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT recipe_id, ingredient_id, quantity, disabled
		FROM recipe_ingredients WHERE recipe_id = $1`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("recipes: ingredients: %w", err)
	}
	defer rows.Close()

	var out []Ingredient
	for rows.Next() {
		var row Ingredient
		if err := rows.Scan(&row.RecipeID, &row.IngredientID, &row.Quantity, &row.Disabled); err != nil {
			return nil, fmt.Errorf("recipes: scan ingredient: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recipes: ingredients: %w", err)
	}
	return out, nil
}

func (r *pgRepository) List(ctx context.Context, filter query.Filter, sort query.Sort, page shared.Pagination) ([]Recipe, uint64, error) {
	where, args := filter.SQL(1)

	var total uint64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM recipe`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("recipes: count: %w", err)
	}

	sql := fmt.Sprintf(`SELECT %s FROM recipe%s%s LIMIT $%d OFFSET $%d`,
		recipeColumns, where, sort.SQL(), len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, sql, append(args, page.PerPage, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("recipes: list: %w", err)
	}
	defer rows.Close()

	var out []Recipe
	for rows.Next() {
		var recipe Recipe
		if err := rows.Scan(&recipe.ID, &recipe.Name, &recipe.ResultProductID, &recipe.Disabled, &recipe.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("recipes: scan: %w", err)
		}
		out = append(out, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("recipes: list: %w", err)
	}
	return out, total, nil
}

func (r *pgRepository) Create(ctx context.Context, recipe Recipe, ingredients []IngredientInput) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO recipe (id, name, result_product_id, disabled, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			recipe.ID, recipe.Name, recipe.ResultProductID, recipe.Disabled, recipe.CreatedAt)
		if err != nil {
			return err
		}
		for _, line := range ingredients {
			if err := insertIngredient(ctx, tx, recipe.ID, line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("recipes: create: %w", err)
	}
	return nil
}

func (r *pgRepository) Update(ctx context.Context, recipe Recipe, add, update []IngredientInput, remove []uuid.UUID) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE recipe SET name = $2, result_product_id = $3, disabled = $4 WHERE id = $1`,
			recipe.ID, recipe.Name, recipe.ResultProductID, recipe.Disabled)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		for _, ingredientID := range remove {
			if _, err := tx.Exec(ctx,
				`DELETE FROM recipe_ingredients WHERE recipe_id = $1 AND ingredient_id = $2`,
				recipe.ID, ingredientID); err != nil {
				return err
			}
		}
		for _, line := range update {
			if _, err := tx.Exec(ctx, `
				UPDATE recipe_ingredients SET quantity = $3, disabled = $4
				WHERE recipe_id = $1 AND ingredient_id = $2`,
				recipe.ID, line.ProductID, line.Quantity, line.Disabled != nil && *line.Disabled); err != nil {
				return err
			}
		}
		for _, line := range add {
			if err := insertIngredient(ctx, tx, recipe.ID, line); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, shared.ErrNotFound) {
		return shared.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("recipes: update: %w", err)
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM recipe WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
	if errors.Is(err, shared.ErrNotFound) {
		return shared.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("recipes: delete: %w", err)
	}
	return nil
}

func (r *pgRepository) ProductUnit(ctx context.Context, productID uuid.UUID) (string, error) {
	var unit string
	err := r.pool.QueryRow(ctx, `SELECT unit FROM product WHERE id = $1`, productID).Scan(&unit)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", shared.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("recipes: product unit: %w", err)
	}
	return unit, nil
}

func (r *pgRepository) MissingProducts(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id FROM product WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("recipes: missing products: %w", err)
	}
	defer rows.Close()

	found := map[uuid.UUID]struct{}{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("recipes: missing products: %w", err)
		}
		found[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recipes: missing products: %w", err)
	}

	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func insertIngredient(ctx context.Context, tx pgx.Tx, recipeID uuid.UUID, line IngredientInput) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO recipe_ingredients (recipe_id, ingredient_id, quantity, disabled)
		VALUES ($1, $2, $3, $4)`,
		recipeID, line.ProductID, line.Quantity, line.Disabled != nil && *line.Disabled)
	return err
}
