package domain

// EventType names a state change that is broadcast to auction subscribers.
type EventType string

const (
	EventBidAccepted    EventType = "bid_accepted"
	EventAuctionClosed  EventType = "auction_closed"
	EventWinnerAssigned EventType = "winner_assigned"
	EventWinnerExpired  EventType = "winner_expired"
	EventWinnerDeclined EventType = "winner_declined"
	EventWinnerChanged  EventType = "winner_changed"
	EventWinnerPaid     EventType = "winner_paid"
	EventAuctionUnsold  EventType = "auction_unsold"
	EventAuctionDeleted EventType = "auction_deleted"
)
