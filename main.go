package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleetbid/config"
	"fleetbid/cron"
	"fleetbid/database"
	bookingRepoPkg "fleetbid/database/repository/booking"
	ledgerRepoPkg "fleetbid/database/repository/ledger"
	offerRepoPkg "fleetbid/database/repository/offer"
	sessionRepoPkg "fleetbid/database/repository/session"
	"fleetbid/handlers"
	"fleetbid/middleware"
	"fleetbid/routes"
	"fleetbid/services/auction"
	"fleetbid/services/escrow"
	"fleetbid/services/notification"
	"fleetbid/services/wallet"
	"fleetbid/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.FirebaseInit()
	stripe.Key = config.AppConfig.StripeKey

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	sessionRepo := sessionRepoPkg.NewMongoSessionRepo()
	offerRepo := offerRepoPkg.NewMongoOfferRepo()
	ledgerRepo := ledgerRepoPkg.NewMongoLedgerRepo()

	if err := sessionRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure session indexes: %v", err)
	}
	if err := offerRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure offer indexes: %v", err)
	}
	if err := ledgerRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure ledger indexes: %v", err)
	}

	// services.
	notificationService, err := notification.NewDefaultNotificationService(utils.FCMClient, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification service: %v", err)
	}

	walletService := &wallet.DefaultWalletService{
		Ledger: ledgerRepo,
		Logger: logger,
	}

	feed := auction.NewBroker()
	auctionService := &auction.DefaultAuctionService{
		SessionRepo:   sessionRepo,
		OfferRepo:     offerRepo,
		BookingRepo:   bookingRepo,
		Balance:       walletService,
		Notifier:      notificationService,
		Feed:          feed,
		Logger:        logger,
		DefaultWindow: time.Duration(config.AppConfig.AuctionWindowSeconds) * time.Second,
	}

	escrowService := &escrow.DefaultEscrowService{
		Ledger:   ledgerRepo,
		Notifier: notificationService,
		Logger:   logger,
	}

	// Task queue client used by the completion-signal endpoint.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer asynqClient.Close()

	// handlers.
	sessionHandler := handlers.NewSessionHandler(auctionService, utils.GetCacheClient())
	offerHandler := handlers.NewOfferHandler(auctionService, sessionHandler)
	escrowHandler := handlers.NewEscrowHandler(escrowService)
	walletHandler := handlers.NewWalletHandler(walletService)
	bookingHandler := handlers.NewBookingHandler(bookingRepo, asynqClient)

	handlerBundle := &handlers.HandlerBundle{
		CreateBooking: bookingHandler.CreateBooking,
		GetBooking:    bookingHandler.GetBooking,
		JobCompleted:  bookingHandler.JobCompleted,

		OpenSession:   sessionHandler.OpenSession,
		RaisePrice:    sessionHandler.RaisePrice,
		CancelSession: sessionHandler.CancelSession,
		GetSession:    sessionHandler.GetSession,

		SubmitOffer: offerHandler.SubmitOffer,
		AcceptOffer: offerHandler.AcceptOffer,
		RejectOffer: offerHandler.RejectOffer,
		ListOffers:  offerHandler.ListOffers,

		CreateHold:     escrowHandler.CreateHold,
		ReleaseEscrow:  escrowHandler.Release,
		RefundEscrow:   escrowHandler.Refund,
		OpenDispute:    escrowHandler.OpenDispute,
		ResolveDispute: escrowHandler.ResolveDispute,
		GetEscrow:      escrowHandler.GetTransaction,

		GetWalletBalance:  walletHandler.GetBalance,
		CreateTopUpIntent: walletHandler.CreateTopUpIntent,
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Background worker: expiry sweep + job-completion intake.
	cron.InitDispatchWorker(auctionService, escrowService, bookingRepo)
	cron.InitSweepScheduler()

	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Sugar().Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}
	logger.Sugar().Info("Server exited")
}
