package http

import (
	"errors"
	"time"

	"encheres/internal/auction/application"
	"encheres/internal/auction/domain"
	"encheres/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// ArticleHandler exposes the auction core over HTTP. It owns no business
// rules: it parses parameters, calls the services and translates the two
// error families into status codes.
type ArticleHandler struct {
	articles    *application.ArticleService
	bidding     *application.BiddingService
	withdrawals *application.WithdrawalService
	clock       domain.Clock
}

func NewArticleHandler(articles *application.ArticleService, bidding *application.BiddingService,
	withdrawals *application.WithdrawalService, clock domain.Clock) *ArticleHandler {

	return &ArticleHandler{
		articles:    articles,
		bidding:     bidding,
		withdrawals: withdrawals,
		clock:       clock,
	}
}

// RegisterRoutes mounts every endpoint under /api.
func (h *ArticleHandler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")
	api.Get("/articles", h.listArticles)
	api.Post("/articles", h.createArticle)
	api.Get("/articles/:id", h.getArticle)
	api.Put("/articles/:id", h.updateArticle)
	api.Delete("/articles/:id", h.deleteArticle)
	api.Get("/articles/:id/bids", h.listBids)
	api.Get("/articles/:id/bids/best", h.bestBid)
	api.Post("/articles/:id/bids", h.placeBid)
	api.Get("/articles/:id/winner", h.winner)
	api.Get("/articles/:id/withdrawal", h.getWithdrawal)
	api.Post("/articles/:id/withdrawal/pickup", h.markPickedUp)
}

type articleBody struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	StartingPrice int    `json:"starting_price"`
	SalePrice     int    `json:"sale_price"`
	StartDate     string `json:"start_date"` // YYYY-MM-DD
	EndDate       string `json:"end_date"`
	CategoryID    int    `json:"category_id"`
	SellerID      int    `json:"seller_id"`
}

type articleResponse struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	StartingPrice int    `json:"starting_price"`
	SalePrice     int    `json:"sale_price"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	CategoryID    int    `json:"category_id"`
	SellerID      int    `json:"seller_id"`
	State         string `json:"state"`
}

type bidResponse struct {
	ID        int    `json:"id"`
	ArticleID int    `json:"article_id"`
	BidderID  int    `json:"bidder_id"`
	Amount    int    `json:"amount"`
	Date      string `json:"date"`
}

const dateLayout = "2006-01-02"

func (h *ArticleHandler) listArticles(c *fiber.Ctx) error {
	filter := domain.ArticleFilter{
		CategoryID: c.QueryInt("category"),
		Name:       c.Query("name"),
	}
	userID := c.QueryInt("user")

	var (
		articles []*domain.Article
		err      error
	)
	switch mode := c.Query("mode", "all"); mode {
	case "all":
		articles, err = h.articles.ListAll(c.Context())
	case "active":
		if c.QueryBool("exclude_seller") {
			articles, err = h.articles.ListActiveExcludingSeller(c.Context(), userID, filter)
		} else {
			articles, err = h.articles.ListActive(c.Context(), filter)
		}
	case "bidding":
		articles, err = h.articles.ListActiveWithBidder(c.Context(), userID, filter)
	case "won":
		articles, err = h.articles.ListWonByUser(c.Context(), userID, filter)
	case "selling-active":
		articles, err = h.articles.ListSellingActiveByUser(c.Context(), userID, filter)
	case "selling-upcoming":
		articles, err = h.articles.ListSellingUpcomingByUser(c.Context(), userID, filter)
	case "selling-closed":
		articles, err = h.articles.ListSellingClosedByUser(c.Context(), userID, filter)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown mode: " + mode})
	}
	if err != nil {
		return h.fail(c, err)
	}

	out := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, h.articleJSON(a))
	}
	return c.JSON(out)
}

func (h *ArticleHandler) getArticle(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid article id"})
	}
	article, err := h.articles.GetByID(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(h.articleJSON(article))
}

func (h *ArticleHandler) createArticle(c *fiber.Ctx) error {
	article, err := h.parseArticle(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := h.articles.Create(c.Context(), article); err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.articleJSON(article))
}

func (h *ArticleHandler) updateArticle(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid article id"})
	}
	article, err := h.parseArticle(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	article.ID = id
	if err := h.articles.Update(c.Context(), article); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(h.articleJSON(article))
}

func (h *ArticleHandler) deleteArticle(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid article id"})
	}
	if err := h.articles.Delete(c.Context(), id); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ArticleHandler) listBids(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid article id"})
	}
	bids, err := h.bidding.ListBids(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]bidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, bidJSON(b))
	}
	return c.JSON(out)
}

func (h *ArticleHandler) bestBid(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid article id"})
	}
	best, err := h.bidding.CurrentBestBid(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	if best == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(bidJSON(best))
}

func (h *ArticleHandler) placeBid(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid article id"})
	}
	var body struct {
		BidderID int `json:"bidder_id"`
		Amount   int `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid bid payload"})
	}
	bid, err := h.bidding.PlaceBid(c.Context(), id, body.BidderID, body.Amount)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(bidJSON(bid))
}

func (h *ArticleHandler) winner(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid article id"})
	}
	best, err := h.bidding.Winner(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	if best == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(bidJSON(best))
}

func (h *ArticleHandler) getWithdrawal(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid article id"})
	}
	w, err := h.withdrawals.Get(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	if w == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(withdrawalJSON(w))
}

func (h *ArticleHandler) markPickedUp(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid article id"})
	}
	var body struct {
		Street string `json:"street"`
		Zip    string `json:"zip"`
		City   string `json:"city"`
	}
	// the address body is optional: marking pickup on an existing record
	// needs no payload
	_ = c.BodyParser(&body)
	addr := domain.PickupAddress{Street: body.Street, Zip: body.Zip, City: body.City}
	w, err := h.withdrawals.MarkPickedUp(c.Context(), id, addr)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(withdrawalJSON(w))
}

func (h *ArticleHandler) parseArticle(c *fiber.Ctx) (*domain.Article, error) {
	var body articleBody
	if err := c.BodyParser(&body); err != nil {
		return nil, errors.New("invalid article payload")
	}
	article := &domain.Article{
		Name:          body.Name,
		Description:   body.Description,
		StartingPrice: body.StartingPrice,
		SalePrice:     body.SalePrice,
		CategoryID:    body.CategoryID,
		SellerID:      body.SellerID,
	}
	// dates are optional here so the validation engine can report DATES_NULL
	if body.StartDate != "" {
		start, err := time.Parse(dateLayout, body.StartDate)
		if err != nil {
			return nil, errors.New("invalid start_date, expected YYYY-MM-DD")
		}
		article.StartDate = start
	}
	if body.EndDate != "" {
		end, err := time.Parse(dateLayout, body.EndDate)
		if err != nil {
			return nil, errors.New("invalid end_date, expected YYYY-MM-DD")
		}
		article.EndDate = end
	}
	return article, nil
}

// fail maps the two error families onto status codes: validation failures
// are client errors carrying their codes verbatim, everything else is a
// single generic operation failure.
func (h *ArticleHandler) fail(c *fiber.Ctx, err error) error {
	if ve := domain.AsValidationError(err); ve != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"codes": ve.Codes})
	}
	switch {
	case errors.Is(err, domain.ErrArticleNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "ITEM_UNKNOWN"})
	case errors.Is(err, domain.ErrAuctionNotOpen):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "AUCTION_NOT_OPEN"})
	case errors.Is(err, domain.ErrBidTooLow):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "BID_TOO_LOW"})
	case errors.Is(err, domain.ErrAuctionStillOpen):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "AUCTION_STILL_OPEN"})
	}
	log.Error("operation failed", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "operation failed"})
}

func (h *ArticleHandler) articleJSON(a *domain.Article) articleResponse {
	return articleResponse{
		ID:            a.ID,
		Name:          a.Name,
		Description:   a.Description,
		StartingPrice: a.StartingPrice,
		SalePrice:     a.SalePrice,
		StartDate:     a.StartDate.Format(dateLayout),
		EndDate:       a.EndDate.Format(dateLayout),
		CategoryID:    a.CategoryID,
		SellerID:      a.SellerID,
		State:         string(a.StateAt(h.clock.Today())),
	}
}

func bidJSON(b *domain.Bid) bidResponse {
	return bidResponse{
		ID:        b.ID,
		ArticleID: b.ArticleID,
		BidderID:  b.BidderID,
		Amount:    b.Amount,
		Date:      b.Date.Format(dateLayout),
	}
}

func withdrawalJSON(w *domain.Withdrawal) fiber.Map {
	return fiber.Map{
		"article_id": w.ArticleID,
		"street":     w.Address.Street,
		"zip":        w.Address.Zip,
		"city":       w.Address.City,
		"picked_up":  w.PickedUp,
	}
}
