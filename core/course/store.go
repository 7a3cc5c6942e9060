package course

import (
	"context"
	"errors"
	"fmt"

	"github.com/irsalhamdi/course-platform/core/fault"
	"github.com/irsalhamdi/course-platform/database"
	"github.com/jmoiron/sqlx"
)

const columns = `
		course_id, title, description, image_url, price, user_id, category_id,
		publish_flag, delete_flag, created_at, updated_at`

func Create(ctx context.Context, db sqlx.ExtContext, c Course) error {
	const q = `
	INSERT INTO courses
		(course_id, title, description, image_url, price, user_id, category_id,
		publish_flag, delete_flag, created_at, updated_at)
	VALUES
		(:course_id, :title, :description, :image_url, :price, :user_id, :category_id,
		:publish_flag, :delete_flag, :created_at, :updated_at)`

	if err := database.NamedExecContext(ctx, db, q, c); err != nil {
		return fmt.Errorf("inserting course: %w", err)
	}
	return nil
}

// Update writes the editable fields. Flags change only through UpdateFlags.
func Update(ctx context.Context, db sqlx.ExtContext, c Course) error {
	const q = `
	UPDATE courses SET
		"title" = :title,
		"description" = :description,
		"image_url" = :image_url,
		"price" = :price,
		"category_id" = :category_id,
		"updated_at" = :updated_at
	WHERE
		course_id = :course_id`

	if err := database.NamedExecContext(ctx, db, q, c); err != nil {
		return fmt.Errorf("updating course[%s]: %w", c.ID, err)
	}
	return nil
}

func UpdateFlags(ctx context.Context, db sqlx.ExtContext, up FlagsUp) error {
	const q = `
	UPDATE courses SET
		"publish_flag" = :publish_flag,
		"delete_flag" = :delete_flag,
		"updated_at" = :updated_at
	WHERE
		course_id = :course_id`

	if err := database.NamedExecContext(ctx, db, q, up); err != nil {
		return fmt.Errorf("updating flags of course[%s]: %w", up.ID, err)
	}
	return nil
}

func Delete(ctx context.Context, db sqlx.ExtContext, id string) error {
	in := struct {
		ID string `db:"course_id"`
	}{
		ID: id,
	}

	const q = `
	DELETE FROM courses
	WHERE
		course_id = :course_id`

	if err := database.NamedExecContext(ctx, db, q, in); err != nil {
		return fmt.Errorf("deleting course[%s]: %w", id, err)
	}
	return nil
}

// Fetch returns fault.ErrCourseNotFound when no course has the id.
func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Course, error) {
	in := struct {
		ID string `db:"course_id"`
	}{
		ID: id,
	}

	q := `
	SELECT` + columns + `
	FROM
		courses
	WHERE
		course_id = :course_id`

	var c Course
	if err := database.NamedQueryStruct(ctx, db, q, in, &c); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return Course{}, fault.ErrCourseNotFound
		}
		return Course{}, fmt.Errorf("selecting course[%s]: %w", id, err)
	}
	return c, nil
}

func List(ctx context.Context, db sqlx.ExtContext, f Filter) ([]Course, error) {
	q := `
	SELECT` + columns + `
	FROM
		courses`
	if f.VisibleOnly {
		q += `
	WHERE
		publish_flag AND NOT delete_flag`
	}
	q += `
	ORDER BY
		updated_at DESC`

	var cs []Course
	if err := database.NamedQuerySlice(ctx, db, q, struct{}{}, &cs); err != nil {
		return nil, fmt.Errorf("selecting courses: %w", err)
	}
	return cs, nil
}

// ListOwned returns the courses userID has purchased.
func ListOwned(ctx context.Context, db sqlx.ExtContext, userID string) ([]Course, error) {
	in := struct {
		UserID string `db:"user_id"`
	}{
		UserID: userID,
	}

	const q = `
	SELECT
		c.course_id, c.title, c.description, c.image_url, c.price, c.user_id, c.category_id,
		c.publish_flag, c.delete_flag, c.created_at, c.updated_at
	FROM
		courses AS c
	JOIN
		purchases AS p ON p.course_id = c.course_id
	WHERE
		p.user_id = :user_id AND NOT c.delete_flag
	ORDER BY
		p.created_at`

	var cs []Course
	if err := database.NamedQuerySlice(ctx, db, q, in, &cs); err != nil {
		return nil, fmt.Errorf("selecting courses owned by user[%s]: %w", userID, err)
	}
	return cs, nil
}
