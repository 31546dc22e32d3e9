package websocket

import (
	"context"
	"encoding/json"
	"strconv"

	"encheres/internal/auction/application"
	"encheres/internal/auction/domain"
	"encheres/internal/shared/logger"
	"encheres/internal/shared/websocket"

	fiberws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// ArticleWSHandler serves the live view of one article: viewers get the
// current state on connect, may bid over the socket, and every accepted bid
// is broadcast to the article's group.
type ArticleWSHandler struct {
	articles *application.ArticleService
	bidding  *application.BiddingService
	clock    domain.Clock
	hub      *websocket.Hub
}

func NewArticleWSHandler(articles *application.ArticleService, bidding *application.BiddingService,
	clock domain.Clock, hub *websocket.Hub) *ArticleWSHandler {

	return &ArticleWSHandler{
		articles: articles,
		bidding:  bidding,
		clock:    clock,
		hub:      hub,
	}
}

// Serve runs one upgraded /ws/articles/:id connection until it closes.
func (h *ArticleWSHandler) Serve(ctx context.Context, conn *fiberws.Conn) {
	articleID := conn.Params("id")
	client := &websocket.Client{
		Hub:       h.hub,
		Conn:      conn,
		Send:      make(chan []byte, 16),
		ArticleID: articleID,
		ID:        uuid.New().String(),
	}
	h.hub.RegisterClient(client)

	go client.WritePump(ctx)
	h.sendInitialState(ctx, client)
	client.ReadPump(ctx) // blocks until the connection closes
}

// ListenForMessages consumes the hub's inbound channel and dispatches each
// frame. Run it once at startup.
func (h *ArticleWSHandler) ListenForMessages(ctx context.Context) {
	log.Info("article ws handler listening for inbound messages")
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.hub.InboundMessages:
			go h.processMessage(ctx, msg.Client, msg.Data)
		}
	}
}

func (h *ArticleWSHandler) processMessage(ctx context.Context, client *websocket.Client, data []byte) {
	var baseMsg BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		h.sendErrorToClient(client, "invalid message format")
		return
	}
	switch baseMsg.Type {
	case MessageTypeClientBid:
		h.handleClientBid(ctx, client, data)
	default:
		h.sendErrorToClient(client, "unknown message type")
	}
}

func (h *ArticleWSHandler) handleClientBid(ctx context.Context, client *websocket.Client, data []byte) {
	var bidMsg ClientBidMessage
	if err := json.Unmarshal(data, &bidMsg); err != nil {
		h.sendErrorToClient(client, "invalid bid message format")
		return
	}
	if strconv.Itoa(bidMsg.Payload.ArticleID) != client.ArticleID {
		h.sendErrorToClient(client, "article ID mismatch")
		return
	}

	_, err := h.bidding.PlaceBid(ctx, bidMsg.Payload.ArticleID, bidMsg.Payload.BidderID, bidMsg.Payload.Amount)
	if err != nil {
		h.sendErrorToClient(client, err.Error())
		return
	}

	payload, err := h.articleState(ctx, bidMsg.Payload.ArticleID)
	if err != nil {
		h.sendErrorToClient(client, "failed to load updated article state")
		return
	}
	updateMsg := ServerUpdateMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerUpdate},
		Payload:     *payload,
	}
	data, err = json.Marshal(updateMsg)
	if err != nil {
		log.Error("failed to marshal update message", zap.Error(err))
		return
	}
	h.hub.BroadcastToArticle(client.ArticleID, data)
}

func (h *ArticleWSHandler) sendInitialState(ctx context.Context, client *websocket.Client) {
	id, err := strconv.Atoi(client.ArticleID)
	if err != nil {
		h.sendErrorToClient(client, "invalid article id")
		return
	}
	payload, err := h.articleState(ctx, id)
	if err != nil {
		h.sendErrorToClient(client, "article not found")
		return
	}
	msg := ServerInitialStateMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerInitialState},
		Payload:     *payload,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to marshal initial state", zap.Error(err))
		return
	}
	select {
	case client.Send <- data:
	default:
	}
}

func (h *ArticleWSHandler) articleState(ctx context.Context, articleID int) (*ArticleStatePayload, error) {
	article, err := h.articles.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	payload := &ArticleStatePayload{
		ArticleID:     article.ID,
		Name:          article.Name,
		StartingPrice: article.StartingPrice,
		State:         string(article.StateAt(h.clock.Today())),
		EndDate:       article.EndDate,
	}
	best, err := h.bidding.CurrentBestBid(ctx, articleID)
	if err == nil && best != nil {
		payload.BestAmount = best.Amount
		payload.BestBidderID = best.BidderID
	}
	return payload, nil
}

func (h *ArticleWSHandler) sendErrorToClient(client *websocket.Client, errorMessage string) {
	errMsg := ServerErrorMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerError},
	}
	errMsg.Payload.Error = errorMessage
	data, err := json.Marshal(errMsg)
	if err != nil {
		log.Error("failed to marshal error message", zap.Error(err))
		return
	}
	select {
	case client.Send <- data:
	default:
		log.Warn("client send channel full or closed, could not send error msg")
	}
}
