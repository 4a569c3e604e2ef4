package application

import (
	"time"

	"github.com/cristianortiz/sneakerbid/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuctionDTO is the output DTO exposing the full auction state to REST and WS clients
type AuctionDTO struct {
	ID                uuid.UUID           `json:"id"`
	ItemID            uuid.UUID           `json:"item_id"`
	CreatedBy         uuid.UUID           `json:"created_by"`
	StartingPrice     decimal.Decimal     `json:"starting_price"`
	CurrentHighestBid decimal.Decimal     `json:"current_highest_bid"`
	MinimumNextBid    decimal.Decimal     `json:"minimum_next_bid"`
	MinIncrement      decimal.Decimal     `json:"min_increment"`
	InstantBuyPrice   decimal.NullDecimal `json:"instant_buy_price"`
	Deadline          time.Time           `json:"deadline"`
	Active            bool                `json:"active"`
	Status            string              `json:"status"`
	CloseReason       string              `json:"close_reason,omitempty"`
	ClosedAt          *time.Time          `json:"closed_at,omitempty"`
	Version           int64               `json:"version"`
	UniqueBidders     int                 `json:"unique_bidders"`
	HighestBidderID   *uuid.UUID          `json:"highest_bidder_id,omitempty"`
	Bids              []BidDTO            `json:"bids"`
	Winner            *WinnerDTO          `json:"winner,omitempty"`
	WinnerHistory     []WinnerDTO         `json:"winner_history"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

type BidDTO struct {
	ID       uuid.UUID       `json:"id"`
	Seq      int             `json:"seq"`
	BidderID uuid.UUID       `json:"bidder_id"`
	Amount   decimal.Decimal `json:"amount"`
	PlacedAt time.Time       `json:"placed_at"`
}

type WinnerDTO struct {
	Seq        int             `json:"seq"`
	BidderID   uuid.UUID       `json:"bidder_id"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	AssignedAt time.Time       `json:"assigned_at"`
	PayBy      time.Time       `json:"pay_by"`
	ResolvedAt *time.Time      `json:"resolved_at,omitempty"`
}

// NewAuctionDTO maps the aggregate to its wire representation
func NewAuctionDTO(a *domain.Auction) *AuctionDTO {
	dto := &AuctionDTO{
		ID:                a.ID,
		ItemID:            a.ItemID,
		CreatedBy:         a.CreatedBy,
		StartingPrice:     a.StartingPrice,
		CurrentHighestBid: a.CurrentHighestBid,
		MinimumNextBid:    a.MinimumNextBid(),
		MinIncrement:      a.MinIncrement,
		InstantBuyPrice:   a.InstantBuyPrice,
		Deadline:          a.Deadline,
		Active:            a.Active,
		Status:            string(a.Status),
		CloseReason:       string(a.CloseReason),
		ClosedAt:          a.ClosedAt,
		Version:           a.Version,
		UniqueBidders:     a.UniqueBidders(),
		Bids:              make([]BidDTO, 0, len(a.Bids)),
		WinnerHistory:     make([]WinnerDTO, 0, len(a.Winners)),
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
	if hb := a.HighestBid(); hb != nil {
		id := hb.BidderID
		dto.HighestBidderID = &id
	}
	for _, b := range a.Bids {
		dto.Bids = append(dto.Bids, BidDTO{
			ID:       b.ID,
			Seq:      b.Seq,
			BidderID: b.BidderID,
			Amount:   b.Amount,
			PlacedAt: b.PlacedAt,
		})
	}
	for _, w := range a.Winners {
		dto.WinnerHistory = append(dto.WinnerHistory, WinnerDTO{
			Seq:        w.Seq,
			BidderID:   w.BidderID,
			Amount:     w.Amount,
			Status:     string(w.Status),
			AssignedAt: w.AssignedAt,
			PayBy:      w.PayBy,
			ResolvedAt: w.ResolvedAt,
		})
	}
	if n := len(dto.WinnerHistory); n > 0 {
		current := dto.WinnerHistory[n-1]
		dto.Winner = &current
	}
	return dto
}
