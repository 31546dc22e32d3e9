package websocket

import (
	"time"
)

// MessageType discriminates the websocket frames exchanged with article
// viewers.
type MessageType string

const (
	MessageTypeClientBid          MessageType = "client_bid"           // viewer places a bid
	MessageTypeServerUpdate       MessageType = "server_update"        // best bid changed
	MessageTypeServerError        MessageType = "server_error"         // request rejected
	MessageTypeServerInitialState MessageType = "server_initial_state" // sent on connect
)

// BaseMessage carries the discriminator shared by every frame.
type BaseMessage struct {
	Type MessageType `json:"type"`
}

// ClientBidMessage is a bid submitted over the live connection.
type ClientBidMessage struct {
	BaseMessage
	Payload struct {
		ArticleID int `json:"article_id"`
		BidderID  int `json:"bidder_id"`
		Amount    int `json:"amount"`
	} `json:"payload"`
}

// ArticleStatePayload is the article view shared by the initial-state and
// update frames.
type ArticleStatePayload struct {
	ArticleID     int       `json:"article_id"`
	Name          string    `json:"name"`
	StartingPrice int       `json:"starting_price"`
	State         string    `json:"state"`
	EndDate       time.Time `json:"end_date"`
	BestAmount    int       `json:"best_amount,omitempty"`
	BestBidderID  int       `json:"best_bidder_id,omitempty"`
}

type ServerUpdateMessage struct {
	BaseMessage
	Payload ArticleStatePayload `json:"payload"`
}

type ServerInitialStateMessage struct {
	BaseMessage
	Payload ArticleStatePayload `json:"payload"`
}

type ServerErrorMessage struct {
	BaseMessage
	Payload struct {
		Error string `json:"error"`
	} `json:"payload"`
}
