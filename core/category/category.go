package category

import "time"

type Category struct {
	ID        string    `json:"id" db:"category_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type CategoryNew struct {
	Name string `json:"name" validate:"required,max=100"`
}

type CategoryUp struct {
	Name string `json:"name" validate:"required,max=100"`
}
