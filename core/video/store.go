package video

import (
	"context"
	"errors"
	"fmt"

	"github.com/irsalhamdi/course-platform/core/fault"
	"github.com/irsalhamdi/course-platform/database"
	"github.com/jmoiron/sqlx"
)

func CreateLink(ctx context.Context, db sqlx.ExtContext, l Link) error {
	const q = `
	INSERT INTO video_assets
		(chapter_id, asset_id, playback_id, created_at)
	VALUES
		(:chapter_id, :asset_id, :playback_id, :created_at)`

	if err := database.NamedExecContext(ctx, db, q, l); err != nil {
		return fmt.Errorf("inserting video link: %w", err)
	}
	return nil
}

// FetchLink returns fault.ErrVideoAssetNotFound when the chapter has no link.
func FetchLink(ctx context.Context, db sqlx.ExtContext, chapterID string) (Link, error) {
	in := struct {
		ChapterID string `db:"chapter_id"`
	}{
		ChapterID: chapterID,
	}

	const q = `
	SELECT
		chapter_id, asset_id, playback_id, created_at
	FROM
		video_assets
	WHERE
		chapter_id = :chapter_id`

	var l Link
	if err := database.NamedQueryStruct(ctx, db, q, in, &l); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return Link{}, fault.ErrVideoAssetNotFound
		}
		return Link{}, fmt.Errorf("selecting video link of chapter[%s]: %w", chapterID, err)
	}
	return l, nil
}

func ListLinksByCourse(ctx context.Context, db sqlx.ExtContext, courseID string) ([]Link, error) {
	in := struct {
		CourseID string `db:"course_id"`
	}{
		CourseID: courseID,
	}

	const q = `
	SELECT
		v.chapter_id, v.asset_id, v.playback_id, v.created_at
	FROM
		video_assets AS v
	JOIN
		chapters AS c ON c.chapter_id = v.chapter_id
	WHERE
		c.course_id = :course_id
	ORDER BY
		c.position`

	var ls []Link
	if err := database.NamedQuerySlice(ctx, db, q, in, &ls); err != nil {
		return nil, fmt.Errorf("selecting video links of course[%s]: %w", courseID, err)
	}
	return ls, nil
}

func DeleteLink(ctx context.Context, db sqlx.ExtContext, chapterID string) error {
	in := struct {
		ChapterID string `db:"chapter_id"`
	}{
		ChapterID: chapterID,
	}

	const q = `
	DELETE FROM video_assets
	WHERE
		chapter_id = :chapter_id`

	if err := database.NamedExecContext(ctx, db, q, in); err != nil {
		return fmt.Errorf("deleting video link of chapter[%s]: %w", chapterID, err)
	}
	return nil
}

func DeleteLinksByCourse(ctx context.Context, db sqlx.ExtContext, courseID string) error {
	in := struct {
		CourseID string `db:"course_id"`
	}{
		CourseID: courseID,
	}

	const q = `
	DELETE FROM video_assets
	WHERE
		chapter_id IN (SELECT chapter_id FROM chapters WHERE course_id = :course_id)`

	if err := database.NamedExecContext(ctx, db, q, in); err != nil {
		return fmt.Errorf("deleting video links of course[%s]: %w", courseID, err)
	}
	return nil
}
