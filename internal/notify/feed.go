package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/thetechguyfromvietnam/lolibub/internal/order"
	"github.com/thetechguyfromvietnam/lolibub/internal/ws"
)

// FeedSink pushes accepted orders onto the live dashboard hub so an open
// merchant dashboard sees them in real time. Auxiliary: losing a broadcast
// never fails the order.
type FeedSink struct {
	hub *ws.Hub
}

// NewFeedSink creates the sink over a running hub.
func NewFeedSink(hub *ws.Hub) *FeedSink {
	return &FeedSink{hub: hub}
}

func (s *FeedSink) Name() string { return "feed" }

// Send broadcasts the order event.
func (s *FeedSink) Send(_ context.Context, rec *order.Record, message string) error {
	payload, err := json.Marshal(struct {
		Order   *order.Record `json:"order"`
		Message string        `json:"message"`
	}{Order: rec, Message: message})
	if err != nil {
		return fmt.Errorf("marshal feed event: %w", err)
	}

	s.hub.Broadcast(ws.Event{Type: "order.created", Payload: payload})
	return nil
}
