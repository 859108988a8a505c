package models

import "time"

// BlogPost представляет публикацию блога.
type BlogPost struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Vertical    string    `json:"vertical" validate:"required,oneof=interiors abundance health apothecary"`
	ImageSrc    []string  `json:"image_src"`
	ReadTime    string    `json:"read_time"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
