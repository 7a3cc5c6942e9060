// Package publish holds the rules that move courses and chapters between
// draft, published, unpublished and deleted.
//
// A course may only be published while it is complete and has at least one
// published chapter. Unpublishing or deleting a chapter recounts the
// course's published chapters and unpublishes the course when none remain.
// The recount runs in the same transaction as the chapter write but takes no
// lock on the course, so two concurrent chapter unpublishes under read
// committed may each still see the other's chapter published and leave a
// published course without published chapters.
package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/irsalhamdi/course-platform/core/chapter"
	"github.com/irsalhamdi/course-platform/core/course"
	"github.com/irsalhamdi/course-platform/core/fault"
	"github.com/irsalhamdi/course-platform/core/video"
	"github.com/irsalhamdi/course-platform/database"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type Service struct {
	log   logrus.FieldLogger
	db    *sqlx.DB
	video *video.Coordinator
}

func NewService(log logrus.FieldLogger, db *sqlx.DB, coord *video.Coordinator) *Service {
	return &Service{log: log, db: db, video: coord}
}

// CheckCourse reports whether c with published chapters may be published.
func CheckCourse(c course.Course, published int) error {
	if c.DeleteFlag {
		return fault.ErrCourseNotFound
	}
	if published < 1 || !c.Complete() {
		return fault.ErrRequiredFieldsEmpty
	}
	return nil
}

// CheckChapter reports whether ch may be published. hasAsset tells whether a
// video link exists for it; a missing link is reported before missing fields.
func CheckChapter(ch chapter.Chapter, hasAsset bool) error {
	if !hasAsset {
		return fault.ErrVideoAssetNotFound
	}
	if !ch.Complete() {
		return fault.ErrRequiredFieldsEmpty
	}
	return nil
}

func (s *Service) PublishCourse(ctx context.Context, courseID string) (course.Course, error) {
	c, err := course.Fetch(ctx, s.db, courseID)
	if err != nil {
		return course.Course{}, err
	}

	n, err := chapter.CountPublished(ctx, s.db, courseID)
	if err != nil {
		return course.Course{}, err
	}

	if err := CheckCourse(c, n); err != nil {
		return course.Course{}, err
	}

	return s.setCourseFlags(ctx, s.db, c, true, false)
}

func (s *Service) UnpublishCourse(ctx context.Context, courseID string) (course.Course, error) {
	c, err := course.Fetch(ctx, s.db, courseID)
	if err != nil {
		return course.Course{}, err
	}

	return s.setCourseFlags(ctx, s.db, c, false, c.DeleteFlag)
}

func (s *Service) SoftDeleteCourse(ctx context.Context, courseID string) (course.Course, error) {
	c, err := course.Fetch(ctx, s.db, courseID)
	if err != nil {
		return course.Course{}, err
	}

	return s.setCourseFlags(ctx, s.db, c, false, true)
}

// HardDeleteCourse deletes every remote asset of the course's chapters, then
// the links, chapters and course rows in one transaction. The first provider
// failure aborts before any local row is removed.
func (s *Service) HardDeleteCourse(ctx context.Context, courseID string) (course.Course, error) {
	c, err := course.Fetch(ctx, s.db, courseID)
	if err != nil {
		return course.Course{}, err
	}

	links, err := video.ListLinksByCourse(ctx, s.db, courseID)
	if err != nil {
		return course.Course{}, err
	}

	for _, l := range links {
		if err := s.video.Release(ctx, l); err != nil {
			return course.Course{}, err
		}
	}

	err = database.Transaction(ctx, s.db, func(tx sqlx.ExtContext) error {
		if err := video.DeleteLinksByCourse(ctx, tx, courseID); err != nil {
			return err
		}
		if err := chapter.DeleteByCourse(ctx, tx, courseID); err != nil {
			return err
		}
		return course.Delete(ctx, tx, courseID)
	})
	if err != nil {
		return course.Course{}, fmt.Errorf("deleting course[%s] rows: %w", courseID, err)
	}

	s.log.WithFields(logrus.Fields{
		"course_id": courseID,
		"assets":    len(links),
	}).Info("course deleted")

	return c, nil
}

func (s *Service) PublishChapter(ctx context.Context, courseID string, chapterID string) (chapter.Chapter, error) {
	if _, err := course.Fetch(ctx, s.db, courseID); err != nil {
		return chapter.Chapter{}, err
	}

	ch, err := chapter.Fetch(ctx, s.db, courseID, chapterID)
	if err != nil {
		return chapter.Chapter{}, err
	}

	_, err = video.FetchLink(ctx, s.db, chapterID)
	hasAsset := err == nil
	if err != nil && !errors.Is(err, fault.ErrVideoAssetNotFound) {
		return chapter.Chapter{}, err
	}

	if err := CheckChapter(ch, hasAsset); err != nil {
		return chapter.Chapter{}, err
	}

	ch.PublishFlag = true
	ch.UpdatedAt = time.Now().UTC()

	if err := chapter.Update(ctx, s.db, ch); err != nil {
		return chapter.Chapter{}, err
	}
	return ch, nil
}

func (s *Service) UnpublishChapter(ctx context.Context, courseID string, chapterID string) (chapter.Chapter, error) {
	if _, err := course.Fetch(ctx, s.db, courseID); err != nil {
		return chapter.Chapter{}, err
	}

	ch, err := chapter.Fetch(ctx, s.db, courseID, chapterID)
	if err != nil {
		return chapter.Chapter{}, err
	}

	ch.PublishFlag = false
	ch.UpdatedAt = time.Now().UTC()

	err = database.Transaction(ctx, s.db, func(tx sqlx.ExtContext) error {
		if err := chapter.Update(ctx, tx, ch); err != nil {
			return err
		}
		return s.cascade(ctx, tx, courseID, ch.UpdatedAt)
	})
	if err != nil {
		return chapter.Chapter{}, err
	}

	return ch, nil
}

// DeleteChapter removes the chapter's remote asset first; a provider failure
// leaves the chapter in place.
func (s *Service) DeleteChapter(ctx context.Context, courseID string, chapterID string) (chapter.Chapter, error) {
	if _, err := course.Fetch(ctx, s.db, courseID); err != nil {
		return chapter.Chapter{}, err
	}

	ch, err := chapter.Fetch(ctx, s.db, courseID, chapterID)
	if err != nil {
		return chapter.Chapter{}, err
	}

	if err := s.video.Detach(ctx, chapterID); err != nil {
		return chapter.Chapter{}, err
	}

	err = database.Transaction(ctx, s.db, func(tx sqlx.ExtContext) error {
		if err := chapter.Delete(ctx, tx, chapterID); err != nil {
			return err
		}
		return s.cascade(ctx, tx, courseID, time.Now().UTC())
	})
	if err != nil {
		return chapter.Chapter{}, err
	}

	return ch, nil
}

// cascade unpublishes the course once it has no published chapter left.
func (s *Service) cascade(ctx context.Context, tx sqlx.ExtContext, courseID string, now time.Time) error {
	done, err := chapter.UnpublishCourseIfEmpty(ctx, tx, courseID, now)
	if err != nil {
		return err
	}
	if done {
		s.log.WithField("course_id", courseID).Info("course unpublished: no published chapter left")
	}
	return nil
}

func (s *Service) setCourseFlags(ctx context.Context, db sqlx.ExtContext, c course.Course, publish bool, del bool) (course.Course, error) {
	c.PublishFlag = publish
	c.DeleteFlag = del
	c.UpdatedAt = time.Now().UTC()

	up := course.FlagsUp{
		ID:          c.ID,
		PublishFlag: c.PublishFlag,
		DeleteFlag:  c.DeleteFlag,
		UpdatedAt:   c.UpdatedAt,
	}
	if err := course.UpdateFlags(ctx, db, up); err != nil {
		return course.Course{}, err
	}

	return c, nil
}
