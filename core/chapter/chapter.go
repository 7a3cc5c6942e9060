package chapter

import "time"

type Chapter struct {
	ID          string    `json:"id" db:"chapter_id"`
	CourseID    string    `json:"courseId" db:"course_id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description" db:"description"`
	VideoURL    *string   `json:"videoUrl" db:"video_url"`
	Position    int       `json:"position" db:"position"`
	FreeFlag    bool      `json:"freeFlag" db:"free_flag"`
	PublishFlag bool      `json:"publishFlag" db:"publish_flag"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Complete reports whether the text and video fields required for
// publishing are set. The video asset link is checked separately.
func (c Chapter) Complete() bool {
	return c.Title != "" &&
		c.Description != nil && *c.Description != "" &&
		c.VideoURL != nil && *c.VideoURL != ""
}

// View is a chapter as shown to a viewer. PlaybackID is only filled when
// the viewer may watch it.
type View struct {
	Chapter
	PlaybackID *string `json:"playbackId" db:"playback_id"`
	Purchased  bool    `json:"purchased" db:"purchased"`
}

type ChapterNew struct {
	Title string `json:"title" validate:"required,max=100"`
}

type ChapterUp struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,min=1,max=1000"`
	FreeFlag    *bool   `json:"freeFlag"`
}

type Position struct {
	ID       string `json:"id" db:"chapter_id" validate:"required"`
	Position int    `json:"position" db:"position"`
}

// Reorder positions are written as given; duplicates and gaps are accepted.
type Reorder struct {
	List []Position `json:"list" validate:"required,dive"`
}
