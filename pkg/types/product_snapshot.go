package types

import "github.com/google/uuid"

// ProductSnapshot freezes the sellable state of a product at order time.
// It must survive later product mutation or deletion.
type ProductSnapshot struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	ImageURL  string    `json:"image_url,omitempty"`
}
