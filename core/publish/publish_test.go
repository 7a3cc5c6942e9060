package publish

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/irsalhamdi/course-platform/core/category"
	"github.com/irsalhamdi/course-platform/core/chapter"
	"github.com/irsalhamdi/course-platform/core/course"
	"github.com/irsalhamdi/course-platform/core/fault"
	"github.com/irsalhamdi/course-platform/core/video"
	"github.com/irsalhamdi/course-platform/core/video/videotest"
	"github.com/irsalhamdi/course-platform/database/dbtest"
	"github.com/irsalhamdi/course-platform/validate"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func completeCourse() course.Course {
	price := 3000
	return course.Course{
		ID:          "c1",
		Title:       "Go",
		Description: str("concurrency"),
		ImageURL:    str("https://img.test/go.png"),
		CategoryID:  str("cat"),
		Price:       &price,
	}
}

func TestCheckCourse(t *testing.T) {
	deleted := completeCourse()
	deleted.DeleteFlag = true

	incomplete := completeCourse()
	incomplete.ImageURL = nil

	tests := []struct {
		name      string
		c         course.Course
		published int
		err       error
	}{
		{name: "ok", c: completeCourse(), published: 1},
		{name: "no published chapter", c: completeCourse(), err: fault.ErrRequiredFieldsEmpty},
		{name: "incomplete", c: incomplete, published: 2, err: fault.ErrRequiredFieldsEmpty},
		{name: "soft deleted", c: deleted, published: 1, err: fault.ErrCourseNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCourse(tt.c, tt.published)
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.err), "expected %v, got %v", tt.err, err)
		})
	}
}

func TestCheckChapter(t *testing.T) {
	full := chapter.Chapter{Title: "intro", Description: str("d"), VideoURL: str("https://v.test/a.mp4")}
	bare := chapter.Chapter{Title: "intro"}

	assert.NoError(t, CheckChapter(full, true))
	assert.True(t, errors.Is(CheckChapter(full, false), fault.ErrVideoAssetNotFound))
	assert.True(t, errors.Is(CheckChapter(bare, true), fault.ErrRequiredFieldsEmpty))
	assert.True(t, errors.Is(CheckChapter(bare, false), fault.ErrVideoAssetNotFound))
}

// =============================================================================

type fixture struct {
	db       *sqlx.DB
	provider *videotest.Provider
	coord    *video.Coordinator
	svc      *Service
}

func newFixture(t *testing.T) fixture {
	db := dbtest.New(t)
	log, _ := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	p := &videotest.Provider{}
	coord := video.NewCoordinator(log, db, p)
	return fixture{db: db, provider: p, coord: coord, svc: NewService(log, db, coord)}
}

// seedCourse stores a complete course with n chapters, each with a video
// asset, all of them published.
func (f fixture) seedCourse(t *testing.T, ctx context.Context, n int) (course.Course, []chapter.Chapter) {
	t.Helper()
	now := time.Now().UTC()

	cat := category.Category{ID: validate.GenerateID(), Name: "cat-" + validate.GenerateID(), CreatedAt: now, UpdatedAt: now}
	require.NoError(t, category.Create(ctx, f.db, cat))

	c := completeCourse()
	c.ID = validate.GenerateID()
	c.UserID = "admin"
	c.CategoryID = &cat.ID
	c.CreatedAt = now
	c.UpdatedAt = now
	require.NoError(t, course.Create(ctx, f.db, c))

	var chs []chapter.Chapter
	for i := 0; i < n; i++ {
		ch, err := chapter.Register(ctx, f.db, c.ID, chapter.ChapterNew{Title: fmt.Sprintf("chapter %d", i+1)}, now)
		require.NoError(t, err)

		ch.Description = str("desc")
		require.NoError(t, chapter.Update(ctx, f.db, ch))

		ch, err = f.coord.SetChapterVideo(ctx, c.ID, ch.ID, fmt.Sprintf("https://v.test/%d.mp4", i+1))
		require.NoError(t, err)

		ch, err = f.svc.PublishChapter(ctx, c.ID, ch.ID)
		require.NoError(t, err)
		chs = append(chs, ch)
	}

	if n > 0 {
		var err error
		c, err = f.svc.PublishCourse(ctx, c.ID)
		require.NoError(t, err)
	}

	return c, chs
}

func TestPublishCourseRequiresPublishedChapter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, _ := f.seedCourse(t, ctx, 0)

	_, err := f.svc.PublishCourse(ctx, c.ID)
	assert.True(t, errors.Is(err, fault.ErrRequiredFieldsEmpty), "got %v", err)

	got, err := course.Fetch(ctx, f.db, c.ID)
	require.NoError(t, err)
	assert.False(t, got.PublishFlag)
}

func TestPublishChapterWithoutAsset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, _ := f.seedCourse(t, ctx, 1)

	ch, err := chapter.Register(ctx, f.db, c.ID, chapter.ChapterNew{Title: "no video"}, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 2, ch.Position)

	_, err = f.svc.PublishChapter(ctx, c.ID, ch.ID)
	assert.True(t, errors.Is(err, fault.ErrVideoAssetNotFound), "got %v", err)
}

func TestUnpublishLastChapterUnpublishesCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, chs := f.seedCourse(t, ctx, 2)
	require.True(t, c.PublishFlag)

	_, err := f.svc.UnpublishChapter(ctx, c.ID, chs[0].ID)
	require.NoError(t, err)

	got, err := course.Fetch(ctx, f.db, c.ID)
	require.NoError(t, err)
	assert.True(t, got.PublishFlag, "a published chapter remains")

	_, err = f.svc.UnpublishChapter(ctx, c.ID, chs[1].ID)
	require.NoError(t, err)

	got, err = course.Fetch(ctx, f.db, c.ID)
	require.NoError(t, err)
	assert.False(t, got.PublishFlag)
	assert.False(t, got.DeleteFlag)
}

func TestDeleteLastChapterUnpublishesCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, chs := f.seedCourse(t, ctx, 1)

	_, err := f.svc.DeleteChapter(ctx, c.ID, chs[0].ID)
	require.NoError(t, err)

	_, err = chapter.Fetch(ctx, f.db, c.ID, chs[0].ID)
	assert.True(t, errors.Is(err, fault.ErrChapterNotFound))

	_, err = video.FetchLink(ctx, f.db, chs[0].ID)
	assert.True(t, errors.Is(err, fault.ErrVideoAssetNotFound))

	got, err := course.Fetch(ctx, f.db, c.ID)
	require.NoError(t, err)
	assert.False(t, got.PublishFlag)
	assert.Equal(t, 1, f.provider.Deletes())
}

func TestDeleteChapterProviderFailureKeepsChapter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, chs := f.seedCourse(t, ctx, 1)
	f.provider.Fail = errors.New("provider down")

	_, err := f.svc.DeleteChapter(ctx, c.ID, chs[0].ID)
	kind, _ := fault.KindOf(err)
	assert.Equal(t, fault.KindExternal, kind)

	_, err = chapter.Fetch(ctx, f.db, c.ID, chs[0].ID)
	assert.NoError(t, err)
}

func TestSoftDeleteCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, _ := f.seedCourse(t, ctx, 1)

	got, err := f.svc.SoftDeleteCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.DeleteFlag)
	assert.False(t, got.PublishFlag)

	_, err = f.svc.PublishCourse(ctx, c.ID)
	assert.True(t, errors.Is(err, fault.ErrCourseNotFound), "got %v", err)
	assert.Equal(t, 0, f.provider.Deletes())
}

func TestHardDeleteCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, chs := f.seedCourse(t, ctx, 3)

	_, err := f.svc.HardDeleteCourse(ctx, c.ID)
	require.NoError(t, err)

	assert.Equal(t, len(chs), f.provider.Deletes())

	_, err = course.Fetch(ctx, f.db, c.ID)
	assert.True(t, errors.Is(err, fault.ErrCourseNotFound))

	left, err := chapter.List(ctx, f.db, c.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	links, err := video.ListLinksByCourse(ctx, f.db, c.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestHardDeleteCourseProviderFailureKeepsRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, _ := f.seedCourse(t, ctx, 2)
	f.provider.Fail = errors.New("provider down")

	_, err := f.svc.HardDeleteCourse(ctx, c.ID)
	require.Error(t, err)

	_, err = course.Fetch(ctx, f.db, c.ID)
	assert.NoError(t, err)

	links, err := video.ListLinksByCourse(ctx, f.db, c.ID)
	require.NoError(t, err)
	assert.Len(t, links, 2)
}

func TestHardDeleteCourseRetryAfterPartialFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, _ := f.seedCourse(t, ctx, 3)
	require.Len(t, f.provider.Live(), 3)

	f.provider.SetDeleteFail(map[string]error{"asset-2": errors.New("provider down")})

	_, err := f.svc.HardDeleteCourse(ctx, c.ID)
	kind, _ := fault.KindOf(err)
	assert.Equal(t, fault.KindExternal, kind)

	_, err = course.Fetch(ctx, f.db, c.ID)
	require.NoError(t, err)

	links, err := video.ListLinksByCourse(ctx, f.db, c.ID)
	require.NoError(t, err)
	assert.Len(t, links, 3)
	assert.Contains(t, f.provider.Live(), "asset-2")

	f.provider.SetDeleteFail(nil)

	_, err = f.svc.HardDeleteCourse(ctx, c.ID)
	require.NoError(t, err)

	_, err = course.Fetch(ctx, f.db, c.ID)
	assert.True(t, errors.Is(err, fault.ErrCourseNotFound), "got %v", err)

	links, err = video.ListLinksByCourse(ctx, f.db, c.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
	assert.Empty(t, f.provider.Live())
}
