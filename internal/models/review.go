package models

import "time"

// Review представляет отзыв покупателя о товаре.
type Review struct {
	ID              string    `json:"id"`
	BuyerName       string    `json:"buyer_name" validate:"required"`
	FeedbackMark    float64   `json:"feedback_mark" validate:"required,gte=0,lte=5"`
	ReviewText      string    `json:"review_text" validate:"required"`
	IsVerifiedBuyer bool      `json:"is_verified_buyer"`
	IsFeatured      bool      `json:"is_featured"`
	ProductID       string    `json:"product_id" validate:"required,uuid"`
	CreatedAt       time.Time `json:"created_at"`
}
