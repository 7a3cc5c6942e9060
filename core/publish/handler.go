package publish

import (
	"context"
	"net/http"

	"github.com/irsalhamdi/course-platform/api/web"
)

func HandlePublishCourse(s *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		c, err := s.PublishCourse(ctx, web.Param(r, "course_id"))
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleUnpublishCourse(s *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		c, err := s.UnpublishCourse(ctx, web.Param(r, "course_id"))
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleSoftDeleteCourse(s *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		c, err := s.SoftDeleteCourse(ctx, web.Param(r, "course_id"))
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleHardDeleteCourse(s *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		c, err := s.HardDeleteCourse(ctx, web.Param(r, "course_id"))
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandlePublishChapter(s *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ch, err := s.PublishChapter(ctx, web.Param(r, "course_id"), web.Param(r, "chapter_id"))
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, ch, http.StatusOK)
	}
}

func HandleUnpublishChapter(s *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ch, err := s.UnpublishChapter(ctx, web.Param(r, "course_id"), web.Param(r, "chapter_id"))
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, ch, http.StatusOK)
	}
}

func HandleDeleteChapter(s *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ch, err := s.DeleteChapter(ctx, web.Param(r, "course_id"), web.Param(r, "chapter_id"))
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, ch, http.StatusOK)
	}
}
