package websocket

import (
	"context"
	"encoding/json"

	"github.com/cristianortiz/sneakerbid/internal/auction/application"
	"github.com/cristianortiz/sneakerbid/internal/shared/websocket"
	"go.uber.org/zap"
)

// HubPublisher broadcasts auction events to the local room of the auction
type HubPublisher struct {
	hub *websocket.Hub
}

func NewHubPublisher(hub *websocket.Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) Publish(_ context.Context, event application.AuctionEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error("failed to marshal auction event", zap.String("auctionID", event.AuctionID.String()), zap.Error(err))
		return
	}
	p.hub.Broadcast(event.AuctionID.String(), data)
}
