package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/five82/storefront/internal/cart"
	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/session"
)

// Notifier is the user-visible message sink.
type Notifier interface {
	Info(msg string)
	Success(msg string)
	Error(msg string)
}

// Controller turns UI cart actions into store writes and tells the user
// how they went.
type Controller struct {
	store   cart.Store
	session *session.Store
	notes   Notifier
	log     logrus.FieldLogger

	// refresh copies the store's cart into the session after a write. Only
	// the local variant sets it: the synchronized cart reaches the session
	// through the subscription.
	refresh func()
}

// NewController builds a controller over store. refresh may be nil.
func NewController(store cart.Store, sess *session.Store, notes Notifier, refresh func(), log logrus.FieldLogger) *Controller {
	return &Controller{store: store, session: sess, notes: notes, refresh: refresh, log: log}
}

// Add puts one of product id in the cart.
func (c *Controller) Add(ctx context.Context, id int) error {
	if err := c.store.Add(ctx, id); err != nil {
		return c.fail("add", id, err)
	}
	c.afterWrite()
	name := "Item"
	if p, err := c.session.Product(id); err == nil {
		name = p.Name
	}
	c.notes.Success(fmt.Sprintf("%s added to your cart", name))
	return nil
}

// Remove drops product id from the cart.
func (c *Controller) Remove(ctx context.Context, id int) error {
	if err := c.store.Remove(ctx, id); err != nil {
		return c.fail("remove", id, err)
	}
	c.afterWrite()
	c.notes.Info("Removed from your cart")
	return nil
}

// Checkout completes the order by clearing the cart. An empty cart only
// produces a notice.
func (c *Controller) Checkout(ctx context.Context) error {
	lines := c.session.Snapshot().Cart
	if len(lines) == 0 {
		c.notes.Info("Your cart is empty")
		return nil
	}
	total := cart.Total(lines)
	if err := c.store.Clear(ctx); err != nil {
		return c.fail("checkout", 0, err)
	}
	c.afterWrite()
	c.log.WithFields(logrus.Fields{
		"items": cart.Count(lines),
		"total": total.StringFixed(2),
	}).Info("checkout complete")
	c.notes.Success(fmt.Sprintf("Thanks for your order! %s charged.", catalog.FormatPrice(total)))
	return nil
}

func (c *Controller) afterWrite() {
	if c.refresh != nil {
		c.refresh()
	}
	c.session.RecordError(nil)
}

func (c *Controller) fail(action string, id int, err error) error {
	entry := c.log.WithError(err).WithField("action", action)
	if id != 0 {
		entry = entry.WithField("product_id", id)
	}
	switch {
	case errors.Is(err, cart.ErrNotAuthenticated):
		entry.Warn("cart write before sign-in finished")
		c.notes.Error("Still signing you in. Please try again in a moment.")
	case errors.Is(err, catalog.ErrProductNotFound):
		entry.Warn("cart write for unknown product")
		c.notes.Error("That product is not available.")
	default:
		entry.Error("cart write failed")
		c.session.RecordError(err)
		c.notes.Error("Your cart could not be updated.")
	}
	return fmt.Errorf("%s: %w", action, err)
}
