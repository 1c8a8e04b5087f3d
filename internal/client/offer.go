package client

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"storefront/internal/pricing"
)

type offerData struct {
	Offer *pricing.FlashOffer `json:"offer"`
}

// ActiveOffer returns the running flash offer, or the zero (inactive) offer.
func (c *Client) ActiveOffer(ctx context.Context) (pricing.FlashOffer, error) {
	var data offerData
	if _, err := c.do(ctx, http.MethodGet, "/api/offers/active", nil, &data); err != nil {
		return pricing.FlashOffer{}, err
	}
	if data.Offer == nil {
		return pricing.FlashOffer{}, nil
	}
	return *data.Offer, nil
}

// OfferEvent is one message on the live offer feed.
type OfferEvent struct {
	Type  string              `json:"type"`
	Offer *pricing.FlashOffer `json:"offer"`
}

// WatchOffers streams offer changes to fn until ctx is done or the feed
// closes. fn receives the zero offer when the current one ends.
func (c *Client) WatchOffers(ctx context.Context, fn func(pricing.FlashOffer)) error {
	u := *c.base
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += "/api/offers/live"

	dialer := websocket.Dialer{
		Jar:              c.jar,
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		var ev OfferEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return ctx.Err()
			}
			return err
		}
		if ev.Offer == nil {
			fn(pricing.FlashOffer{})
			continue
		}
		c.log.Debug("offer update", zap.String("title", ev.Offer.Title))
		fn(*ev.Offer)
	}
}
