package course

import "time"

type Course struct {
	ID          string    `json:"id" db:"course_id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description" db:"description"`
	ImageURL    *string   `json:"imageUrl" db:"image_url"`
	Price       *int      `json:"price" db:"price"`
	UserID      string    `json:"userId" db:"user_id"`
	CategoryID  *string   `json:"categoryId" db:"category_id"`
	PublishFlag bool      `json:"publishFlag" db:"publish_flag"`
	DeleteFlag  bool      `json:"deleteFlag" db:"delete_flag"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Visible reports whether non-admin callers may see the course.
func (c Course) Visible() bool {
	return c.PublishFlag && !c.DeleteFlag
}

// Complete reports whether every field required for publishing is set.
func (c Course) Complete() bool {
	return c.Title != "" &&
		filled(c.Description) &&
		filled(c.ImageURL) &&
		filled(c.CategoryID) &&
		c.Price != nil
}

func filled(s *string) bool {
	return s != nil && *s != ""
}

type CourseNew struct {
	Title string `json:"title" validate:"required,max=100"`
}

// CourseUp fields left nil are not changed. Set fields may not be emptied,
// which keeps a published course complete.
type CourseUp struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,min=1,max=1000"`
	ImageURL    *string `json:"imageUrl" validate:"omitempty,url"`
	CategoryID  *string `json:"categoryId" validate:"omitempty,min=1"`
	Price       *int    `json:"price" validate:"omitempty,gte=0,lte=10000000"`
}

type FlagsUp struct {
	ID          string    `db:"course_id"`
	PublishFlag bool      `db:"publish_flag"`
	DeleteFlag  bool      `db:"delete_flag"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type Filter struct {
	VisibleOnly bool
}
