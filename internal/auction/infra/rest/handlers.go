package rest

import (
	"time"

	"github.com/cristianortiz/sneakerbid/internal/auction/application"
	"github.com/cristianortiz/sneakerbid/internal/shared/logger"
	userdomain "github.com/cristianortiz/sneakerbid/internal/user/domain"
	userhttp "github.com/cristianortiz/sneakerbid/internal/user/infra/http"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var log = logger.GetLogger()

// AuctionHandler exposes the auction use cases over REST
type AuctionHandler struct {
	auctionService application.AuctionService
}

func NewAuctionHandler(auctionService application.AuctionService) *AuctionHandler {
	return &AuctionHandler{auctionService: auctionService}
}

type createAuctionRequest struct {
	ItemID          uuid.UUID           `json:"item_id"`
	StartingPrice   decimal.NullDecimal `json:"starting_price"`
	MinIncrement    decimal.NullDecimal `json:"min_increment"`
	InstantBuyPrice decimal.NullDecimal `json:"instant_buy_price"`
	Deadline        time.Time           `json:"deadline"`
}

type placeBidRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type paymentRequest struct {
	PayerID uuid.UUID `json:"payer_id"`
}

// RegisterRoutes mounts the auction endpoints, Authenticate must run before them
func (h *AuctionHandler) RegisterRoutes(router fiber.Router) {
	g := router.Group("/auctions")
	g.Post("/", h.CreateAuction)
	g.Get("/:id", h.GetAuction)
	g.Post("/:id/bids", h.PlaceBid)
	g.Post("/:id/close", userhttp.RequireRole(userdomain.RoleAdmin), h.CloseAuction)
	g.Post("/:id/payment", userhttp.RequireRole(userdomain.RolePayment), h.ConfirmPayment)
	g.Post("/:id/decline", h.DeclineWin)
	g.Delete("/:id", userhttp.RequireRole(userdomain.RoleAdmin), h.DeleteAuction)
}

func (h *AuctionHandler) CreateAuction(c *fiber.Ctx) error {
	var req createAuctionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	user, _ := userhttp.Principal(c)

	auction, err := h.auctionService.CreateAuction(c.UserContext(), application.CreateAuctionDTO{
		ItemID:          req.ItemID,
		CreatedBy:       user.ID,
		StartingPrice:   req.StartingPrice,
		MinIncrement:    req.MinIncrement,
		InstantBuyPrice: req.InstantBuyPrice,
		Deadline:        req.Deadline,
	})
	if err != nil {
		return writeError(c, err, fiber.StatusConflict)
	}
	return c.Status(fiber.StatusCreated).JSON(auction)
}

func (h *AuctionHandler) GetAuction(c *fiber.Ctx) error {
	id, err := auctionID(c)
	if err != nil {
		return err
	}
	auction, err := h.auctionService.GetAuction(c.UserContext(), id)
	if err != nil {
		return writeError(c, err, fiber.StatusConflict)
	}
	return c.JSON(auction)
}

func (h *AuctionHandler) PlaceBid(c *fiber.Ctx) error {
	id, err := auctionID(c)
	if err != nil {
		return err
	}
	var req placeBidRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	user, _ := userhttp.Principal(c)

	auction, err := h.auctionService.PlaceBid(c.UserContext(), application.PlaceBidDTO{
		AuctionID: id,
		BidderID:  user.ID,
		Amount:    req.Amount,
	})
	if err != nil {
		return writeError(c, err, fiber.StatusConflict)
	}
	return c.JSON(auction)
}

func (h *AuctionHandler) CloseAuction(c *fiber.Ctx) error {
	id, err := auctionID(c)
	if err != nil {
		return err
	}
	auction, err := h.auctionService.CloseAuction(c.UserContext(), id)
	if err != nil {
		return writeError(c, err, fiber.StatusConflict)
	}
	return c.JSON(auction)
}

func (h *AuctionHandler) ConfirmPayment(c *fiber.Ctx) error {
	id, err := auctionID(c)
	if err != nil {
		return err
	}
	var req paymentRequest
	if err := c.BodyParser(&req); err != nil || req.PayerID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "payer_id is required"})
	}
	auction, err := h.auctionService.ConfirmPayment(c.UserContext(), application.PaymentDTO{
		AuctionID: id,
		PayerID:   req.PayerID,
	})
	if err != nil {
		return writeError(c, err, fiber.StatusBadRequest)
	}
	return c.JSON(auction)
}

func (h *AuctionHandler) DeclineWin(c *fiber.Ctx) error {
	id, err := auctionID(c)
	if err != nil {
		return err
	}
	user, _ := userhttp.Principal(c)
	auction, err := h.auctionService.DeclineWin(c.UserContext(), id, user.ID)
	if err != nil {
		return writeError(c, err, fiber.StatusBadRequest)
	}
	return c.JSON(auction)
}

func (h *AuctionHandler) DeleteAuction(c *fiber.Ctx) error {
	id, err := auctionID(c)
	if err != nil {
		return err
	}
	if err := h.auctionService.DeleteAuction(c.UserContext(), id); err != nil {
		return writeError(c, err, fiber.StatusConflict)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func auctionID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid auction id")
	}
	return id, nil
}
