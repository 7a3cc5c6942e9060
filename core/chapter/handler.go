package chapter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/course-platform/api/web"
	"github.com/irsalhamdi/course-platform/api/weberr"
	"github.com/irsalhamdi/course-platform/core/claims"
	"github.com/irsalhamdi/course-platform/core/course"
	"github.com/irsalhamdi/course-platform/core/fault"
	"github.com/irsalhamdi/course-platform/database"
	"github.com/irsalhamdi/course-platform/validate"
	"github.com/jmoiron/sqlx"
)

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "course_id")

		if _, err := course.Fetch(ctx, db, courseID); err != nil {
			return err
		}

		chs, err := List(ctx, db, courseID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, chs, http.StatusOK)
	}
}

// HandleShow hides unpublished content from non-admins and only reveals the
// playback id of free chapters or purchased courses.
func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "course_id")
		chapterID := web.Param(r, "chapter_id")

		clm, err := claims.Get(ctx)
		if err != nil {
			return fault.ErrUnauthenticated
		}
		admin := clm.IsAdmin()

		c, err := course.Fetch(ctx, db, courseID)
		if err != nil {
			return err
		}
		if !admin && !c.Visible() {
			return fault.ErrCourseNotFound
		}

		v, err := FetchView(ctx, db, courseID, chapterID, clm.UserID)
		if err != nil {
			return err
		}
		if !admin && !v.PublishFlag {
			return fault.ErrChapterNotFound
		}

		if !admin && !v.FreeFlag && !v.Purchased {
			v.PlaybackID = nil
			v.VideoURL = nil
		}

		return web.Respond(ctx, w, v, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "course_id")

		var cn ChapterNew
		if err := web.Decode(w, r, &cn); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(cn); err != nil {
			return weberr.BadRequest(err)
		}

		ch, err := Register(ctx, db, courseID, cn, time.Now().UTC())
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, ch, http.StatusCreated)
	}
}

func HandleReorder(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "course_id")

		var ro Reorder
		if err := web.Decode(w, r, &ro); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(ro); err != nil {
			return weberr.BadRequest(err)
		}

		if _, err := course.Fetch(ctx, db, courseID); err != nil {
			return err
		}

		now := time.Now().UTC()
		err := database.Transaction(ctx, db, func(tx sqlx.ExtContext) error {
			return UpdatePositions(ctx, tx, courseID, ro.List, now)
		})
		if err != nil {
			return err
		}

		chs, err := List(ctx, db, courseID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, chs, http.StatusOK)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "course_id")
		chapterID := web.Param(r, "chapter_id")

		var cu ChapterUp
		if err := web.Decode(w, r, &cu); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(cu); err != nil {
			return weberr.BadRequest(err)
		}

		if _, err := course.Fetch(ctx, db, courseID); err != nil {
			return err
		}

		ch, err := Fetch(ctx, db, courseID, chapterID)
		if err != nil {
			return err
		}

		if cu.Title != nil {
			ch.Title = *cu.Title
		}
		if cu.Description != nil {
			ch.Description = cu.Description
		}
		if cu.FreeFlag != nil {
			ch.FreeFlag = *cu.FreeFlag
		}
		ch.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, ch); err != nil {
			return err
		}

		return web.Respond(ctx, w, ch, http.StatusOK)
	}
}
