package models

import "time"

// Journal представляет запись журнала.
type Journal struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required"`
	Author      string    `json:"author"`
	Description string    `json:"description" validate:"required"`
	Vertical    string    `json:"vertical" validate:"required,oneof=interiors abundance health apothecary energy"`
	ImageSrc    []string  `json:"image_src"`
	ReadTime    string    `json:"read_time"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
