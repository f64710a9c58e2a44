package product

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("product not found")

type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	OwnerID   *int64    `json:"ownerId,omitempty"`
	OwnerName string    `json:"ownerName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateProductRequest struct {
	Name    string   `json:"name" binding:"required,min=2,max=200"`
	Price   *float64 `json:"price" binding:"required,min=0"`
	OwnerID *int64   `json:"ownerId" binding:"omitempty,min=1"`
}

// A full overwrite of name and price; OwnerID, when present, reassigns the owner.
type UpdateProductRequest struct {
	Name    string   `json:"name" binding:"required,min=2,max=200"`
	Price   *float64 `json:"price" binding:"required,min=0"`
	OwnerID *int64   `json:"ownerId" binding:"omitempty,min=1"`
}
