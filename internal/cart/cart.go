package cart

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrProductNotFound = errors.New("product not found")
	ErrCartNotFound    = errors.New("cart not found")
	ErrItemNotFound    = errors.New("item not found in cart")
	ErrConflict        = errors.New("cart modified concurrently")
	ErrStorage         = errors.New("storage failure")
)

// LineItem is a snapshot of a product taken when it was first added. Later
// catalog edits do not change it; only Quantity moves.
type LineItem struct {
	ProductID     string   `json:"productId" bson:"productId"`
	Name          string   `json:"name" bson:"name"`
	Price         float64  `json:"price" bson:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty" bson:"originalPrice,omitempty"`
	Image         string   `json:"image" bson:"image"`
	Brand         string   `json:"brand" bson:"brand"`
	Quantity      int      `json:"quantity" bson:"quantity"`
}

// Cart holds at most one LineItem per product id. Version increases on
// every successful save.
type Cart struct {
	UserID    string     `json:"userId" bson:"_id"`
	Items     []LineItem `json:"items" bson:"items"`
	Version   int64      `json:"version" bson:"version"`
	CreatedAt time.Time  `json:"createdAt,omitzero" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt,omitzero" bson:"updatedAt"`
}

func emptyCart(userID string) Cart {
	return Cart{UserID: userID, Items: []LineItem{}}
}

// Clone returns a copy that shares no memory with c.
func (c Cart) Clone() Cart {
	items := make([]LineItem, len(c.Items))
	for i, it := range c.Items {
		if it.OriginalPrice != nil {
			v := *it.OriginalPrice
			it.OriginalPrice = &v
		}
		items[i] = it
	}
	c.Items = items
	return c
}

func (c Cart) indexOf(productID string) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// Item returns the line item for productID, if present.
func (c Cart) Item(productID string) (LineItem, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.Items[i], true
	}
	return LineItem{}, false
}

// add merges qty into an existing line or appends snap with qty.
func (c *Cart) add(snap LineItem, qty int) {
	if i := c.indexOf(snap.ProductID); i >= 0 {
		c.Items[i].Quantity += qty
		return
	}
	snap.Quantity = qty
	c.Items = append(c.Items, snap)
}

func (c *Cart) setQuantity(productID string, qty int) error {
	i := c.indexOf(productID)
	if i < 0 {
		return ErrItemNotFound
	}
	c.Items[i].Quantity = qty
	return nil
}

func (c *Cart) remove(productID string) {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
}

// ParseQuantity accepts a positive integer given as a JSON number or as a
// decimal string. Fractions, exponents and values below 1 are rejected.
func ParseQuantity(v any) (int, error) {
	var n int64
	switch q := v.(type) {
	case int:
		n = int64(q)
	case int64:
		n = q
	case float64:
		if q != math.Trunc(q) || q < 1 || q > math.MaxInt32 {
			return 0, ErrInvalidQuantity
		}
		n = int64(q)
	case json.Number:
		return ParseQuantity(string(q))
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(q), 10, 32)
		if err != nil {
			return 0, ErrInvalidQuantity
		}
		n = parsed
	default:
		return 0, ErrInvalidQuantity
	}

	if n < 1 || n > math.MaxInt32 {
		return 0, ErrInvalidQuantity
	}
	return int(n), nil
}
