package websocket

import (
	"github.com/shopspring/decimal"
)

// MessageType defines ws type message
type MessageType string

const (
	MessageTypePlaceBid     MessageType = "place_bid"     // client msg to make a bid
	MessageTypeInitialState MessageType = "initial_state" // server msg with the snapshot sent on join
	MessageTypeError        MessageType = "error"         // server msg indicating error, only to the sender
)

// Every auction event goes out as the JSON form of application.AuctionEvent:
// {type, auction_id, occurred_at, auction}. initial_state uses the same shape.

// BaseMessage is base struct for all the WS messages, includes a Type field for identify the message type
type BaseMessage struct {
	Type MessageType `json:"type"`
}

// ClientBidMessage is DTO for a bid message sent by the client, the bidder is the
// authenticated user of the connection and the auction is the room
type ClientBidMessage struct {
	BaseMessage
	Payload struct {
		Amount decimal.Decimal `json:"amount"`
	} `json:"payload"`
}

type ServerErrorMessage struct {
	BaseMessage
	Payload struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	} `json:"payload"`
}
