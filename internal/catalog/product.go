package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrStorage         = errors.New("storage failure")
)

type Product struct {
	ID            string    `json:"id" bson:"_id"`
	Name          string    `json:"name" bson:"name"`
	Description   string    `json:"description" bson:"description"`
	Price         float64   `json:"price" bson:"price"`
	OriginalPrice *float64  `json:"originalPrice,omitempty" bson:"originalPrice,omitempty"`
	Category      string    `json:"category" bson:"category"`
	Brand         string    `json:"brand" bson:"brand"`
	Quantity      int       `json:"quantity" bson:"quantity"`
	Rating        float64   `json:"rating" bson:"rating"`
	Reviews       int       `json:"reviews" bson:"reviews"`
	ImageURL      string    `json:"imageUrl" bson:"imageUrl"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

// NewProduct is the create payload. Pointers distinguish "absent" from zero
// so that a price of 0 is accepted while a missing price is not.
type NewProduct struct {
	Name          string   `json:"name" validate:"required"`
	Price         *float64 `json:"price" validate:"required,gte=0"`
	ImageURL      string   `json:"imageUrl" validate:"required"`
	Category      string   `json:"category" validate:"required"`
	Brand         string   `json:"brand" validate:"required"`
	Description   string   `json:"description" validate:"required"`
	OriginalPrice *float64 `json:"originalPrice" validate:"omitnil,gte=0"`
	Rating        *float64 `json:"rating" validate:"omitnil,gte=0,lte=5"`
	Reviews       *int     `json:"reviews" validate:"omitnil,gte=0"`
	Quantity      *int     `json:"quantity" validate:"omitnil,gte=0"`
}

func (n NewProduct) Product(id string, now time.Time) Product {
	p := Product{
		ID:            id,
		Name:          n.Name,
		Description:   n.Description,
		Price:         *n.Price,
		OriginalPrice: n.OriginalPrice,
		Category:      n.Category,
		Brand:         n.Brand,
		ImageURL:      n.ImageURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if n.Rating != nil {
		p.Rating = *n.Rating
	}
	if n.Reviews != nil {
		p.Reviews = *n.Reviews
	}
	if n.Quantity != nil {
		p.Quantity = *n.Quantity
	}
	return p
}

// Patch is a partial update; nil fields are left untouched. An explicit
// "originalPrice": null removes the original price.
type Patch struct {
	Name          *string  `json:"name" validate:"omitnil,min=1"`
	Description   *string  `json:"description" validate:"omitnil,min=1"`
	Price         *float64 `json:"price" validate:"omitnil,gte=0"`
	OriginalPrice *float64 `json:"originalPrice" validate:"omitnil,gte=0"`
	Category      *string  `json:"category" validate:"omitnil,min=1"`
	Brand         *string  `json:"brand" validate:"omitnil,min=1"`
	Quantity      *int     `json:"quantity" validate:"omitnil,gte=0"`
	Rating        *float64 `json:"rating" validate:"omitnil,gte=0,lte=5"`
	Reviews       *int     `json:"reviews" validate:"omitnil,gte=0"`
	ImageURL      *string  `json:"imageUrl" validate:"omitnil,min=1"`

	clearOriginalPrice bool
}

func (pt *Patch) UnmarshalJSON(b []byte) error {
	type fields Patch

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()

	var f fields
	if err := dec.Decode(&f); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v, ok := raw["originalPrice"]
	f.clearOriginalPrice = ok && bytes.Equal(bytes.TrimSpace(v), []byte("null"))

	*pt = Patch(f)
	return nil
}

func (pt Patch) Apply(p Product, now time.Time) Product {
	if pt.Name != nil {
		p.Name = *pt.Name
	}
	if pt.Description != nil {
		p.Description = *pt.Description
	}
	if pt.Price != nil {
		p.Price = *pt.Price
	}
	switch {
	case pt.clearOriginalPrice:
		p.OriginalPrice = nil
	case pt.OriginalPrice != nil:
		v := *pt.OriginalPrice
		p.OriginalPrice = &v
	}
	if pt.Category != nil {
		p.Category = *pt.Category
	}
	if pt.Brand != nil {
		p.Brand = *pt.Brand
	}
	if pt.Quantity != nil {
		p.Quantity = *pt.Quantity
	}
	if pt.Rating != nil {
		p.Rating = *pt.Rating
	}
	if pt.Reviews != nil {
		p.Reviews = *pt.Reviews
	}
	if pt.ImageURL != nil {
		p.ImageURL = *pt.ImageURL
	}
	p.UpdatedAt = now
	return p
}
