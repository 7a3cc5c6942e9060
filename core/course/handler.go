package course

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/course-platform/api/web"
	"github.com/irsalhamdi/course-platform/api/weberr"
	"github.com/irsalhamdi/course-platform/core/category"
	"github.com/irsalhamdi/course-platform/core/claims"
	"github.com/irsalhamdi/course-platform/core/fault"
	"github.com/irsalhamdi/course-platform/validate"
	"github.com/jmoiron/sqlx"
)

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return fault.ErrUnauthenticated
		}

		var cn CourseNew
		if err := web.Decode(w, r, &cn); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(cn); err != nil {
			return weberr.BadRequest(err)
		}

		now := time.Now().UTC()
		c := Course{
			ID:        validate.GenerateID(),
			Title:     cn.Title,
			UserID:    clm.UserID,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := Create(ctx, db, c); err != nil {
			return err
		}

		return web.Respond(ctx, w, c, http.StatusCreated)
	}
}

// HandleList lists visible courses; an admin passing all=true also gets
// drafts, unpublished and soft-deleted ones.
func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		f := Filter{VisibleOnly: true}
		if claims.IsAdmin(ctx) && web.Query(r, "all") == "true" {
			f.VisibleOnly = false
		}

		cs, err := List(ctx, db, f)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, cs, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "course_id")

		c, err := Fetch(ctx, db, id)
		if err != nil {
			return err
		}

		if !c.Visible() && !claims.IsAdmin(ctx) {
			return fault.ErrCourseNotFound
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleListOwned(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return fault.ErrUnauthenticated
		}

		cs, err := ListOwned(ctx, db, clm.UserID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, cs, http.StatusOK)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "course_id")

		var cu CourseUp
		if err := web.Decode(w, r, &cu); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(cu); err != nil {
			return weberr.BadRequest(err)
		}

		c, err := Fetch(ctx, db, id)
		if err != nil {
			return err
		}

		if cu.CategoryID != nil {
			if _, err := category.Fetch(ctx, db, *cu.CategoryID); err != nil {
				return err
			}
			c.CategoryID = cu.CategoryID
		}
		if cu.Title != nil {
			c.Title = *cu.Title
		}
		if cu.Description != nil {
			c.Description = cu.Description
		}
		if cu.ImageURL != nil {
			c.ImageURL = cu.ImageURL
		}
		if cu.Price != nil {
			c.Price = cu.Price
		}
		c.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, c); err != nil {
			return err
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}
