package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cristianortiz/sneakerbid/internal/auction/application"
	"github.com/cristianortiz/sneakerbid/internal/auction/domain"
	"github.com/cristianortiz/sneakerbid/internal/shared/logger"
	"github.com/cristianortiz/sneakerbid/internal/shared/websocket"
	userhttp "github.com/cristianortiz/sneakerbid/internal/user/infra/http"
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

const (
	localAuctionID = "auctionID"
	localUserID    = "userID"
	bidTimeout     = 10 * time.Second
)

// AuctionWSHandler joins bidders to per-auction rooms and turns their frames into
// service calls
type AuctionWSHandler struct {
	auctionService application.AuctionService
	hub            *websocket.Hub
	now            func() time.Time
}

func NewAuctionWSHandler(auctionService application.AuctionService, hub *websocket.Hub) *AuctionWSHandler {
	return &AuctionWSHandler{
		auctionService: auctionService,
		hub:            hub,
		now:            time.Now,
	}
}

// RegisterRoutes mounts GET /ws/auctions/:id, auth must already run on the group
func (h *AuctionWSHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/auctions/:id", h.Upgrade, fiberws.New(h.HandleConnection))
}

// Upgrade checks the request before the protocol switch, an unknown auction is a plain 404
func (h *AuctionWSHandler) Upgrade(c *fiber.Ctx) error {
	if !fiberws.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	auctionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid auction id"})
	}
	if _, err := h.auctionService.GetAuction(c.UserContext(), auctionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return err
	}
	user, ok := userhttp.Principal(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	c.Locals(localAuctionID, auctionID)
	c.Locals(localUserID, user.ID.String())
	return c.Next()
}

// HandleConnection joins the auction room: initial state first, then the
// client is registered and receives every later event
func (h *AuctionWSHandler) HandleConnection(conn *fiberws.Conn) {
	auctionID, _ := conn.Locals(localAuctionID).(uuid.UUID)
	userID, _ := conn.Locals(localUserID).(string)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := websocket.NewClient(h.hub, conn, uuid.NewString(), auctionID.String(), userID)

	snapshot, err := h.auctionService.GetAuction(ctx, auctionID)
	if err != nil {
		log.Warn("Auction vanished before join", zap.String("auctionID", auctionID.String()), zap.Error(err))
		return
	}
	if data, err := json.Marshal(application.AuctionEvent{
		Type:       domain.EventType(MessageTypeInitialState),
		AuctionID:  auctionID,
		OccurredAt: h.now(),
		Auction:    snapshot,
	}); err == nil {
		client.Deliver(data)
	}
	h.hub.RegisterClient(client)

	client.Serve(ctx) // blocks until the peer goes away
}

// ListenForMessages drains the hub inbound queue until ctx is done, each frame is
// handled on its own goroutine
func (h *AuctionWSHandler) ListenForMessages(ctx context.Context) {
	log.Info("auction ws: listening for client frames")
	for {
		select {
		case <-ctx.Done():
			log.Info("auction ws: inbound listener stopped")
			return
		case msg := <-h.hub.InboundMessages:
			go h.processMessage(ctx, msg.Client, msg.Payload)
		}
	}
}

// processMessage dispatch the message by this type
func (h *AuctionWSHandler) processMessage(ctx context.Context, client *websocket.Client, data []byte) {
	var envelope BaseMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		h.sendErrorToClient(client, "invalid_message", "invalid message format")
		return
	}
	switch envelope.Type {
	case MessageTypePlaceBid:
		h.handlePlaceBid(ctx, client, data)
	default:
		h.sendErrorToClient(client, "invalid_message", "unknown message type")
	}
}

// handlePlaceBid goes through the same admission path as REST, success is
// announced to the whole room by the bid_accepted event
func (h *AuctionWSHandler) handlePlaceBid(ctx context.Context, client *websocket.Client, data []byte) {
	var bid ClientBidMessage
	if err := json.Unmarshal(data, &bid); err != nil {
		h.sendErrorToClient(client, "invalid_message", "invalid bid message format")
		return
	}
	auctionID, err := uuid.Parse(client.RoomID)
	if err != nil {
		h.sendErrorToClient(client, "invalid_message", "invalid auction id")
		return
	}
	bidderID, err := uuid.Parse(client.UserID)
	if err != nil {
		h.sendErrorToClient(client, "unauthorized", "unknown bidder")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, bidTimeout)
	defer cancel()
	_, err = h.auctionService.PlaceBid(ctx, application.PlaceBidDTO{
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    bid.Payload.Amount,
	})
	if err != nil {
		h.sendErrorToClient(client, errorCode(err), err.Error())
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrState):
		return "invalid_state"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}

// sendErrorToClient serializes and sends an error msg to a specific client
func (h *AuctionWSHandler) sendErrorToClient(client *websocket.Client, code, errorMessage string) {
	errMsg := ServerErrorMessage{
		BaseMessage: BaseMessage{MessageTypeError},
	}
	errMsg.Payload.Error = errorMessage
	errMsg.Payload.Code = code
	data, err := json.Marshal(errMsg)
	if err != nil {
		log.Error("failed to marshal ServerErrorMessage", zap.Error(err))
		return
	}
	if !client.Deliver(data) {
		log.Warn("client send channel full or closed, could not send error msg", zap.String("clientID", client.ID))
	}
}
