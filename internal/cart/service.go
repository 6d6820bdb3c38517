package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const maxSaveAttempts = 3

// Service applies cart mutations as read-modify-write cycles guarded by the
// store's version check. A lost race re-reads and re-applies the mutation.
type Service struct {
	Store   Store
	Catalog Catalog
	Events  Publisher
	Log     *zap.Logger
	Metrics *Metrics
	Now     func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) log() *zap.Logger {
	if s.Log != nil {
		return s.Log
	}
	return zap.NewNop()
}

// Get returns the user's cart or an empty one. It never creates a cart.
func (s *Service) Get(ctx context.Context, userID string) (Cart, error) {
	c, found, err := s.Store.Get(ctx, userID)
	if err != nil {
		return Cart{}, storageErr("get", err)
	}
	if !found {
		return emptyCart(userID), nil
	}
	return c, nil
}

// Add merges quantity into the line for productID, creating the cart and the
// line on first use. Repeated calls accumulate.
func (s *Service) Add(ctx context.Context, userID, productID string, quantity int) (Cart, error) {
	c, err := s.add(ctx, userID, productID, quantity)
	s.Metrics.observe("add", err)
	return c, err
}

func (s *Service) add(ctx context.Context, userID, productID string, quantity int) (Cart, error) {
	if quantity < 1 {
		return Cart{}, ErrInvalidQuantity
	}
	if productID == "" {
		return Cart{}, ErrProductNotFound
	}

	p, err := s.Catalog.GetProduct(ctx, productID)
	if err != nil {
		return Cart{}, err
	}
	snap := p.snapshot()
	snap.ProductID = productID

	c, err := s.mutate(ctx, userID, true, func(c *Cart) error {
		c.add(snap, quantity)
		return nil
	})
	if err != nil {
		return Cart{}, err
	}

	it, _ := c.Item(productID)
	s.publish(ctx, EventItemAdded, c, productID, it.Quantity)
	return c, nil
}

// UpdateQuantity sets the line for productID to quantity.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (Cart, error) {
	c, err := s.updateQuantity(ctx, userID, productID, quantity)
	s.Metrics.observe("update", err)
	return c, err
}

func (s *Service) updateQuantity(ctx context.Context, userID, productID string, quantity int) (Cart, error) {
	if quantity < 1 {
		return Cart{}, ErrInvalidQuantity
	}

	c, err := s.mutate(ctx, userID, false, func(c *Cart) error {
		return c.setQuantity(productID, quantity)
	})
	if err != nil {
		return Cart{}, err
	}

	s.publish(ctx, EventItemUpdated, c, productID, quantity)
	return c, nil
}

// Remove drops the line for productID. An absent line is not an error; the
// cart is saved either way.
func (s *Service) Remove(ctx context.Context, userID, productID string) (Cart, error) {
	c, err := s.mutate(ctx, userID, false, func(c *Cart) error {
		c.remove(productID)
		return nil
	})
	s.Metrics.observe("remove", err)
	if err != nil {
		return Cart{}, err
	}

	s.publish(ctx, EventItemRemoved, c, productID, 0)
	return c, nil
}

// mutate loads the cart, applies fn to a private copy and saves it with the
// version that was read. create controls whether a missing cart starts empty
// or fails with ErrCartNotFound.
func (s *Service) mutate(ctx context.Context, userID string, create bool, fn func(*Cart) error) (Cart, error) {
	for attempt := 1; ; attempt++ {
		cur, found, err := s.Store.Get(ctx, userID)
		if err != nil {
			return Cart{}, storageErr("get", err)
		}

		var next Cart
		switch {
		case found:
			next = cur.Clone()
		case create:
			next = emptyCart(userID)
			next.CreatedAt = s.now()
		default:
			return Cart{}, ErrCartNotFound
		}

		if err := fn(&next); err != nil {
			return Cart{}, err
		}

		expected := next.Version
		next.Version = expected + 1
		next.UpdatedAt = s.now()

		err = s.Store.Save(ctx, next, expected)
		switch {
		case err == nil:
			return next, nil
		case errors.Is(err, ErrConflict):
			if attempt >= maxSaveAttempts {
				s.log().Warn("cart save conflict, giving up",
					zap.String("user_id", userID), zap.Int("attempts", attempt))
				return Cart{}, ErrConflict
			}
			s.log().Debug("cart save conflict, retrying",
				zap.String("user_id", userID), zap.Int("attempt", attempt))
		default:
			return Cart{}, storageErr("save", err)
		}
	}
}

func (s *Service) publish(ctx context.Context, typ EventType, c Cart, productID string, qty int) {
	if s.Events == nil {
		return
	}
	e := Event{
		Type:      typ,
		UserID:    c.UserID,
		ProductID: productID,
		Quantity:  qty,
		Version:   c.Version,
		At:        c.UpdatedAt,
	}
	if err := s.Events.Publish(context.WithoutCancel(ctx), e); err != nil {
		s.log().Warn("publish cart event failed",
			zap.Error(err), zap.String("type", string(typ)), zap.String("user_id", c.UserID))
	}
}

func storageErr(op string, err error) error {
	if errors.Is(err, ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
