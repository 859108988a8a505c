package models

import "time"

// Product представляет товар каталога.
// Поле Details хранит произвольную карточку товара и пишется в jsonb как есть.
type Product struct {
	ID           string         `json:"id"`
	Title        string         `json:"title" validate:"required"`
	Description  string         `json:"description"`
	Type         string         `json:"type" validate:"omitempty,oneof=physical digital affiliate"`
	Category     string         `json:"category" validate:"omitempty,oneof=mugs-drinkware appare-accessories journals-papers home-energy-tools stickers-printables digital-art-decoy jewelry featured-collection"`
	ToolsType    string         `json:"tools_type" validate:"omitempty,oneof=mug shirt journal"`
	ImageSrc     []string       `json:"image_src" validate:"required"`
	Rating       float64        `json:"rating" validate:"gte=0,lte=5"`
	Price        float64        `json:"price" validate:"gte=0"`
	IsNewProduct bool           `json:"is_new_product"`
	IsPick       bool           `json:"is_pick"`
	Details      map[string]any `json:"details,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
