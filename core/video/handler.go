package video

import (
	"context"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/course-platform/api/web"
	"github.com/irsalhamdi/course-platform/api/weberr"
	"github.com/irsalhamdi/course-platform/validate"
)

func HandleSetChapterVideo(c *Coordinator) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "course_id")
		chapterID := web.Param(r, "chapter_id")

		var vu VideoUp
		if err := web.Decode(w, r, &vu); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(vu); err != nil {
			return weberr.BadRequest(err)
		}

		ch, err := c.SetChapterVideo(ctx, courseID, chapterID, vu.URL)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, ch, http.StatusOK)
	}
}
