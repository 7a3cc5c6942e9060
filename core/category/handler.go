package category

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/course-platform/api/web"
	"github.com/irsalhamdi/course-platform/api/weberr"
	"github.com/irsalhamdi/course-platform/database"
	"github.com/irsalhamdi/course-platform/validate"
	"github.com/jmoiron/sqlx"
)

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		cats, err := List(ctx, db)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, cats, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var cn CategoryNew
		if err := web.Decode(w, r, &cn); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(cn); err != nil {
			return weberr.BadRequest(err)
		}

		now := time.Now().UTC()
		cat := Category{
			ID:        validate.GenerateID(),
			Name:      cn.Name,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := Create(ctx, db, cat); err != nil {
			return err
		}

		return web.Respond(ctx, w, cat, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "category_id")

		var cu CategoryUp
		if err := web.Decode(w, r, &cu); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(cu); err != nil {
			return weberr.BadRequest(err)
		}

		cat, err := Fetch(ctx, db, id)
		if err != nil {
			return err
		}

		cat.Name = cu.Name
		cat.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, cat); err != nil {
			return err
		}

		return web.Respond(ctx, w, cat, http.StatusOK)
	}
}

func HandleDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "category_id")

		cat, err := Fetch(ctx, db, id)
		if err != nil {
			return err
		}

		err = database.Transaction(ctx, db, func(tx sqlx.ExtContext) error {
			return Delete(ctx, tx, id)
		})
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, cat, http.StatusOK)
	}
}
