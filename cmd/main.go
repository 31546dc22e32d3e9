package main

import (
	"context"
	"os"

	"encheres/internal/auction/application"
	"encheres/internal/auction/domain"
	authttp "encheres/internal/auction/infra/http"
	"encheres/internal/auction/infra/repository/postgres"
	auctionws "encheres/internal/auction/infra/websocket"
	cathttp "encheres/internal/category/infra/http"
	categorypg "encheres/internal/category/infra/repository/postgres"
	"encheres/internal/shared/db"
	"encheres/internal/shared/db/migrations"
	"encheres/internal/shared/httpserver"
	"encheres/internal/shared/logger"
	"encheres/internal/shared/websocket"
	userpg "encheres/internal/user/infra/repository/postgres"

	fiberws "github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

func main() {
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("starting encheres server...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("running database migrations...")
	if err := migrations.RunMigrations(); err != nil {
		log.Fatal("database migration failed", zap.Error(err))
	}

	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	// repositories and collaborators
	articleRepo := postgres.NewArticleRepository(pool)
	bidRepo := postgres.NewBidRepository(pool)
	withdrawalRepo := postgres.NewWithdrawalRepository(pool)
	userRepo := userpg.NewUserRepository(pool)
	categoryRepo := categorypg.NewCategoryRepository(pool)
	clock := domain.SystemClock{}

	// services
	validator := domain.NewValidator(clock, userRepo, categoryRepo, articleRepo)
	withdrawalService := application.NewWithdrawalService(withdrawalRepo, clock)
	articleService := application.NewArticleService(articleRepo, validator, withdrawalService, clock)
	biddingService := application.NewBiddingService(bidRepo, articleService, clock)

	// websocket hub and per-article live view
	hub := websocket.NewHub()
	go hub.Run(ctx)
	wsHandler := auctionws.NewArticleWSHandler(articleService, biddingService, clock, hub)
	go wsHandler.ListenForMessages(ctx)

	server := httpserver.NewServer()
	authttp.NewArticleHandler(articleService, biddingService, withdrawalService, clock).RegisterRoutes(server.App())
	cathttp.NewCategoryHandler(categoryRepo).RegisterRoutes(server.App())
	server.App().Get("/ws/articles/:id", fiberws.New(func(conn *fiberws.Conn) {
		wsHandler.Serve(ctx, conn)
	}))

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":9000"
	}
	if err := server.Start(addr); err != nil {
		log.Fatal("HTTP server failed", zap.Error(err))
	}
}
