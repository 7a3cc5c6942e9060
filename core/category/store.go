package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/irsalhamdi/course-platform/core/fault"
	"github.com/irsalhamdi/course-platform/database"
	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, cat Category) error {
	const q = `
	INSERT INTO categories
		(category_id, name, created_at, updated_at)
	VALUES
		(:category_id, :name, :created_at, :updated_at)`

	if err := database.NamedExecContext(ctx, db, q, cat); err != nil {
		return fmt.Errorf("inserting category: %w", err)
	}
	return nil
}

func Update(ctx context.Context, db sqlx.ExtContext, cat Category) error {
	const q = `
	UPDATE categories SET
		"name" = :name,
		"updated_at" = :updated_at
	WHERE
		category_id = :category_id`

	if err := database.NamedExecContext(ctx, db, q, cat); err != nil {
		return fmt.Errorf("updating category[%s]: %w", cat.ID, err)
	}
	return nil
}

// Delete removes the category. Published courses filed under it lose their
// category and with it their eligibility, so they are unpublished first.
func Delete(ctx context.Context, db sqlx.ExtContext, id string) error {
	in := struct {
		ID string `db:"category_id"`
	}{
		ID: id,
	}

	const qc = `
	UPDATE courses SET
		"publish_flag" = FALSE
	WHERE
		category_id = :category_id AND publish_flag`

	if err := database.NamedExecContext(ctx, db, qc, in); err != nil {
		return fmt.Errorf("unpublishing courses of category[%s]: %w", id, err)
	}

	const q = `
	DELETE FROM categories
	WHERE
		category_id = :category_id`

	if err := database.NamedExecContext(ctx, db, q, in); err != nil {
		return fmt.Errorf("deleting category[%s]: %w", id, err)
	}
	return nil
}

// Fetch returns fault.ErrCategoryNotFound when no category has the id.
func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Category, error) {
	in := struct {
		ID string `db:"category_id"`
	}{
		ID: id,
	}

	const q = `
	SELECT
		*
	FROM
		categories
	WHERE
		category_id = :category_id`

	var cat Category
	if err := database.NamedQueryStruct(ctx, db, q, in, &cat); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return Category{}, fault.ErrCategoryNotFound
		}
		return Category{}, fmt.Errorf("selecting category[%s]: %w", id, err)
	}
	return cat, nil
}

func List(ctx context.Context, db sqlx.ExtContext) ([]Category, error) {
	const q = `
	SELECT
		*
	FROM
		categories
	ORDER BY
		name`

	var cats []Category
	if err := database.NamedQuerySlice(ctx, db, q, struct{}{}, &cats); err != nil {
		return nil, fmt.Errorf("selecting categories: %w", err)
	}
	return cats, nil
}
