package app

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/five82/storefront/internal/cart"
	"github.com/five82/storefront/internal/session"
)

// StartPump copies every cart the subscription delivers into the session
// store. It returns immediately; wait blocks until the channel closes.
func StartPump(ctx context.Context, sess *session.Store, updates <-chan []cart.Line, log logrus.FieldLogger) (wait func()) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case lines, ok := <-updates:
				if !ok {
					log.Debug("cart subscription closed")
					return
				}
				sess.ReplaceCart(lines)
				log.WithField("lines", len(lines)).Debug("cart snapshot applied")
			}
		}
	}()
	return wg.Wait
}
