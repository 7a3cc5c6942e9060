package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/irsalhamdi/course-platform/api/middleware"
	"github.com/irsalhamdi/course-platform/api/web"
	"github.com/irsalhamdi/course-platform/core/auth"
	"github.com/irsalhamdi/course-platform/core/category"
	"github.com/irsalhamdi/course-platform/core/chapter"
	"github.com/irsalhamdi/course-platform/core/course"
	"github.com/irsalhamdi/course-platform/core/publish"
	"github.com/irsalhamdi/course-platform/core/purchase"
	"github.com/irsalhamdi/course-platform/core/video"
	"github.com/irsalhamdi/course-platform/database"
	"github.com/irsalhamdi/course-platform/rate"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin  string
	Log         logrus.FieldLogger
	DB          *sqlx.DB
	Gate        *auth.Gate
	Coordinator *video.Coordinator
	Publisher   *publish.Service
	Checkout    *purchase.Checkout
	Webhook     *purchase.Webhook
	Limiter     *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := cfg.Gate.Require(auth.Authenticated)
	admin := cfg.Gate.Require(auth.Admin)
	optional := cfg.Gate.Optional()

	a.Handle(http.MethodGet, "/health", handleHealth(cfg.DB))

	a.Handle(http.MethodGet, "/categories", category.HandleList(cfg.DB), authen)
	a.Handle(http.MethodPost, "/categories", category.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodPut, "/categories/{category_id}", category.HandleUpdate(cfg.DB), admin)
	a.Handle(http.MethodDelete, "/categories/{category_id}", category.HandleDelete(cfg.DB), admin)

	a.Handle(http.MethodGet, "/courses/owned", course.HandleListOwned(cfg.DB), authen)
	a.Handle(http.MethodGet, "/courses", course.HandleList(cfg.DB), optional)
	a.Handle(http.MethodPost, "/courses", course.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodGet, "/courses/{course_id}", course.HandleShow(cfg.DB), optional)
	a.Handle(http.MethodPut, "/courses/{course_id}", course.HandleUpdate(cfg.DB), admin)
	a.Handle(http.MethodPut, "/courses/{course_id}/publish", publish.HandlePublishCourse(cfg.Publisher), admin)
	a.Handle(http.MethodPut, "/courses/{course_id}/unpublish", publish.HandleUnpublishCourse(cfg.Publisher), admin)
	a.Handle(http.MethodPut, "/courses/{course_id}/delete", publish.HandleSoftDeleteCourse(cfg.Publisher), admin)
	a.Handle(http.MethodDelete, "/courses/{course_id}", publish.HandleHardDeleteCourse(cfg.Publisher), admin)

	a.Handle(http.MethodGet, "/courses/{course_id}/chapters", chapter.HandleList(cfg.DB), admin)
	a.Handle(http.MethodPost, "/courses/{course_id}/chapters", chapter.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodPut, "/courses/{course_id}/chapters/reorder", chapter.HandleReorder(cfg.DB), admin)
	a.Handle(http.MethodGet, "/courses/{course_id}/chapters/{chapter_id}", chapter.HandleShow(cfg.DB), authen)
	a.Handle(http.MethodPut, "/courses/{course_id}/chapters/{chapter_id}", chapter.HandleUpdate(cfg.DB), admin)
	a.Handle(http.MethodPut, "/courses/{course_id}/chapters/{chapter_id}/video", video.HandleSetChapterVideo(cfg.Coordinator), admin)
	a.Handle(http.MethodPut, "/courses/{course_id}/chapters/{chapter_id}/publish", publish.HandlePublishChapter(cfg.Publisher), admin)
	a.Handle(http.MethodPut, "/courses/{course_id}/chapters/{chapter_id}/unpublish", publish.HandleUnpublishChapter(cfg.Publisher), admin)
	a.Handle(http.MethodDelete, "/courses/{course_id}/chapters/{chapter_id}", publish.HandleDeleteChapter(cfg.Publisher), admin)

	a.Handle(http.MethodPost, "/courses/{course_id}/checkout", purchase.HandleCheckout(cfg.Checkout), authen, middleware.RateLimit(cfg.Limiter))
	a.Handle(http.MethodPost, "/webhook", purchase.HandleWebhook(cfg.Webhook))

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {
	handler = web.WrapMiddleware(mw, handler)
	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {
			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}

func handleHealth(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		status := struct {
			Status string `json:"status"`
		}{
			Status: "ok",
		}

		if err := database.StatusCheck(ctx, db); err != nil {
			status.Status = "db not ready"
			return web.Respond(ctx, w, status, http.StatusInternalServerError)
		}

		return web.Respond(ctx, w, status, http.StatusOK)
	}
}
