package chapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/irsalhamdi/course-platform/core/course"
	"github.com/irsalhamdi/course-platform/core/fault"
	"github.com/irsalhamdi/course-platform/database"
	"github.com/irsalhamdi/course-platform/validate"
	"github.com/jmoiron/sqlx"
)

const columns = `
		chapter_id, course_id, title, description, video_url, position,
		free_flag, publish_flag, created_at, updated_at`

func Create(ctx context.Context, db sqlx.ExtContext, ch Chapter) error {
	const q = `
	INSERT INTO chapters
		(chapter_id, course_id, title, description, video_url, position,
		free_flag, publish_flag, created_at, updated_at)
	VALUES
		(:chapter_id, :course_id, :title, :description, :video_url, :position,
		:free_flag, :publish_flag, :created_at, :updated_at)`

	if err := database.NamedExecContext(ctx, db, q, ch); err != nil {
		return fmt.Errorf("inserting chapter: %w", err)
	}
	return nil
}

// Register appends a chapter titled title to the course, one position past
// the current last chapter.
func Register(ctx context.Context, db *sqlx.DB, courseID string, cn ChapterNew, now time.Time) (Chapter, error) {
	ch := Chapter{
		ID:        validate.GenerateID(),
		CourseID:  courseID,
		Title:     cn.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := database.Transaction(ctx, db, func(tx sqlx.ExtContext) error {
		if _, err := course.Fetch(ctx, tx, courseID); err != nil {
			return err
		}

		last, err := MaxPosition(ctx, tx, courseID)
		if err != nil {
			return err
		}
		ch.Position = last + 1

		return Create(ctx, tx, ch)
	})
	if err != nil {
		return Chapter{}, err
	}

	return ch, nil
}

func Update(ctx context.Context, db sqlx.ExtContext, ch Chapter) error {
	const q = `
	UPDATE chapters SET
		"title" = :title,
		"description" = :description,
		"video_url" = :video_url,
		"free_flag" = :free_flag,
		"publish_flag" = :publish_flag,
		"updated_at" = :updated_at
	WHERE
		chapter_id = :chapter_id`

	if err := database.NamedExecContext(ctx, db, q, ch); err != nil {
		return fmt.Errorf("updating chapter[%s]: %w", ch.ID, err)
	}
	return nil
}

// UpdatePositions overwrites the position of every listed chapter belonging
// to the course. Ids of other courses are ignored.
func UpdatePositions(ctx context.Context, db sqlx.ExtContext, courseID string, list []Position, now time.Time) error {
	const q = `
	UPDATE chapters SET
		"position" = :position,
		"updated_at" = :updated_at
	WHERE
		chapter_id = :chapter_id AND course_id = :course_id`

	for _, p := range list {
		in := struct {
			Position
			CourseID  string    `db:"course_id"`
			UpdatedAt time.Time `db:"updated_at"`
		}{
			Position:  p,
			CourseID:  courseID,
			UpdatedAt: now,
		}

		if err := database.NamedExecContext(ctx, db, q, in); err != nil {
			return fmt.Errorf("updating position of chapter[%s]: %w", p.ID, err)
		}
	}
	return nil
}

func Delete(ctx context.Context, db sqlx.ExtContext, id string) error {
	in := struct {
		ID string `db:"chapter_id"`
	}{
		ID: id,
	}

	const q = `
	DELETE FROM chapters
	WHERE
		chapter_id = :chapter_id`

	if err := database.NamedExecContext(ctx, db, q, in); err != nil {
		return fmt.Errorf("deleting chapter[%s]: %w", id, err)
	}
	return nil
}

func DeleteByCourse(ctx context.Context, db sqlx.ExtContext, courseID string) error {
	in := struct {
		CourseID string `db:"course_id"`
	}{
		CourseID: courseID,
	}

	const q = `
	DELETE FROM chapters
	WHERE
		course_id = :course_id`

	if err := database.NamedExecContext(ctx, db, q, in); err != nil {
		return fmt.Errorf("deleting chapters of course[%s]: %w", courseID, err)
	}
	return nil
}

// Fetch returns fault.ErrChapterNotFound when the course has no such chapter.
func Fetch(ctx context.Context, db sqlx.ExtContext, courseID string, id string) (Chapter, error) {
	in := struct {
		ID       string `db:"chapter_id"`
		CourseID string `db:"course_id"`
	}{
		ID:       id,
		CourseID: courseID,
	}

	q := `
	SELECT` + columns + `
	FROM
		chapters
	WHERE
		chapter_id = :chapter_id AND course_id = :course_id`

	var ch Chapter
	if err := database.NamedQueryStruct(ctx, db, q, in, &ch); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return Chapter{}, fault.ErrChapterNotFound
		}
		return Chapter{}, fmt.Errorf("selecting chapter[%s]: %w", id, err)
	}
	return ch, nil
}

// FetchView loads the chapter with its playback id and whether userID has
// purchased the course.
func FetchView(ctx context.Context, db sqlx.ExtContext, courseID string, id string, userID string) (View, error) {
	in := struct {
		ID       string `db:"chapter_id"`
		CourseID string `db:"course_id"`
		UserID   string `db:"user_id"`
	}{
		ID:       id,
		CourseID: courseID,
		UserID:   userID,
	}

	const q = `
	SELECT
		c.chapter_id, c.course_id, c.title, c.description, c.video_url, c.position,
		c.free_flag, c.publish_flag, c.created_at, c.updated_at,
		v.playback_id,
		EXISTS (
			SELECT 1 FROM purchases AS p
			WHERE p.course_id = c.course_id AND p.user_id = :user_id
		) AS purchased
	FROM
		chapters AS c
	LEFT JOIN
		video_assets AS v ON v.chapter_id = c.chapter_id
	WHERE
		c.chapter_id = :chapter_id AND c.course_id = :course_id`

	var v View
	if err := database.NamedQueryStruct(ctx, db, q, in, &v); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return View{}, fault.ErrChapterNotFound
		}
		return View{}, fmt.Errorf("selecting chapter view[%s]: %w", id, err)
	}
	return v, nil
}

func List(ctx context.Context, db sqlx.ExtContext, courseID string) ([]Chapter, error) {
	in := struct {
		CourseID string `db:"course_id"`
	}{
		CourseID: courseID,
	}

	q := `
	SELECT` + columns + `
	FROM
		chapters
	WHERE
		course_id = :course_id
	ORDER BY
		position`

	var chs []Chapter
	if err := database.NamedQuerySlice(ctx, db, q, in, &chs); err != nil {
		return nil, fmt.Errorf("selecting chapters of course[%s]: %w", courseID, err)
	}
	return chs, nil
}

func CountPublished(ctx context.Context, db sqlx.ExtContext, courseID string) (int, error) {
	in := struct {
		CourseID string `db:"course_id"`
	}{
		CourseID: courseID,
	}

	const q = `
	SELECT
		COUNT(*) AS count
	FROM
		chapters
	WHERE
		course_id = :course_id AND publish_flag`

	var out struct {
		Count int `db:"count"`
	}
	if err := database.NamedQueryStruct(ctx, db, q, in, &out); err != nil {
		return 0, fmt.Errorf("counting published chapters of course[%s]: %w", courseID, err)
	}
	return out.Count, nil
}

// UnpublishCourseIfEmpty clears the course's publish flag when none of its
// chapters is published and reports whether it did. Run it in the same
// transaction as the chapter write that triggered it.
func UnpublishCourseIfEmpty(ctx context.Context, db sqlx.ExtContext, courseID string, now time.Time) (bool, error) {
	n, err := CountPublished(ctx, db, courseID)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	c, err := course.Fetch(ctx, db, courseID)
	if err != nil {
		return false, err
	}
	if !c.PublishFlag {
		return false, nil
	}

	up := course.FlagsUp{
		ID:          courseID,
		PublishFlag: false,
		DeleteFlag:  c.DeleteFlag,
		UpdatedAt:   now,
	}
	if err := course.UpdateFlags(ctx, db, up); err != nil {
		return false, err
	}
	return true, nil
}

func MaxPosition(ctx context.Context, db sqlx.ExtContext, courseID string) (int, error) {
	in := struct {
		CourseID string `db:"course_id"`
	}{
		CourseID: courseID,
	}

	const q = `
	SELECT
		COALESCE(MAX(position), 0) AS position
	FROM
		chapters
	WHERE
		course_id = :course_id`

	var out struct {
		Position int `db:"position"`
	}
	if err := database.NamedQueryStruct(ctx, db, q, in, &out); err != nil {
		return 0, fmt.Errorf("selecting last position of course[%s]: %w", courseID, err)
	}
	return out.Position, nil
}
