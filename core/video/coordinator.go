package video

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/irsalhamdi/course-platform/core/chapter"
	"github.com/irsalhamdi/course-platform/core/course"
	"github.com/irsalhamdi/course-platform/core/fault"
	"github.com/irsalhamdi/course-platform/database"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const withdrawTimeout = 10 * time.Second

// Coordinator keeps the provider's assets and the local links in step.
// Remote calls happen outside of any database transaction, so a failed local
// write after a successful remote call leaves the two out of sync; such
// cases are logged with the asset id.
type Coordinator struct {
	log      logrus.FieldLogger
	db       *sqlx.DB
	provider Provider
}

func NewCoordinator(log logrus.FieldLogger, db *sqlx.DB, provider Provider) *Coordinator {
	return &Coordinator{log: log, db: db, provider: provider}
}

// SetChapterVideo replaces the chapter's asset with one ingested from url and
// records url on the chapter. If the old asset is gone but the new one cannot
// be linked, a published chapter is unpublished, and its course with it when
// no published chapter remains.
func (c *Coordinator) SetChapterVideo(ctx context.Context, courseID string, chapterID string, url string) (chapter.Chapter, error) {
	if _, err := course.Fetch(ctx, c.db, courseID); err != nil {
		return chapter.Chapter{}, err
	}

	ch, err := chapter.Fetch(ctx, c.db, courseID, chapterID)
	if err != nil {
		return chapter.Chapter{}, err
	}

	if err := c.Detach(ctx, chapterID); err != nil {
		return chapter.Chapter{}, err
	}

	asset, err := c.provider.CreateAsset(ctx, url)
	if err != nil {
		c.withdraw(ch)
		return chapter.Chapter{}, fault.Provider(fmt.Errorf("creating asset for chapter[%s]: %w", chapterID, err))
	}

	now := time.Now().UTC()
	ch.VideoURL = &url
	ch.UpdatedAt = now

	err = database.Transaction(ctx, c.db, func(tx sqlx.ExtContext) error {
		l := Link{
			ChapterID:  chapterID,
			AssetID:    asset.ID,
			PlaybackID: asset.PlaybackID,
			CreatedAt:  now,
		}
		if err := CreateLink(ctx, tx, l); err != nil {
			return err
		}

		return chapter.Update(ctx, tx, ch)
	})
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"chapter_id": chapterID,
			"asset_id":   asset.ID,
		}).Error("remote asset created but not linked")
		c.withdraw(ch)
		return chapter.Chapter{}, fmt.Errorf("linking asset[%s] to chapter[%s]: %w", asset.ID, chapterID, err)
	}

	return ch, nil
}

// withdraw unpublishes a chapter left without an asset. It runs on its own
// context since the request's may already be done.
func (c *Coordinator) withdraw(ch chapter.Chapter) {
	if !ch.PublishFlag {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), withdrawTimeout)
	defer cancel()

	ch.PublishFlag = false
	ch.UpdatedAt = time.Now().UTC()

	var courseDown bool
	err := database.Transaction(ctx, c.db, func(tx sqlx.ExtContext) error {
		if err := chapter.Update(ctx, tx, ch); err != nil {
			return err
		}

		var err error
		courseDown, err = chapter.UnpublishCourseIfEmpty(ctx, tx, ch.CourseID, ch.UpdatedAt)
		return err
	})

	log := c.log.WithFields(logrus.Fields{
		"chapter_id": ch.ID,
		"course_id":  ch.CourseID,
	})
	if err != nil {
		log.WithError(err).Error("chapter left published without a video asset")
		return
	}

	log.Warn("chapter unpublished: video asset lost")
	if courseDown {
		log.Info("course unpublished: no published chapter left")
	}
}

// Detach deletes the chapter's remote asset and then its link. A chapter
// without a link is left as is. A provider failure stops before the link is
// touched.
func (c *Coordinator) Detach(ctx context.Context, chapterID string) error {
	l, err := FetchLink(ctx, c.db, chapterID)
	if err != nil {
		if errors.Is(err, fault.ErrVideoAssetNotFound) {
			return nil
		}
		return err
	}

	if err := c.Release(ctx, l); err != nil {
		return err
	}

	return DeleteLink(ctx, c.db, chapterID)
}

// Release deletes the remote asset of l without touching the local link.
func (c *Coordinator) Release(ctx context.Context, l Link) error {
	if err := c.provider.DeleteAsset(ctx, l.AssetID); err != nil {
		return fault.Provider(fmt.Errorf("deleting asset[%s] of chapter[%s]: %w", l.AssetID, l.ChapterID, err))
	}

	c.log.WithFields(logrus.Fields{
		"chapter_id": l.ChapterID,
		"asset_id":   l.AssetID,
	}).Info("video asset deleted")
	return nil
}
