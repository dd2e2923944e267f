package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/lotty-marketplace/internal/config"
	"github.com/iliyamo/lotty-marketplace/internal/database"
	"github.com/iliyamo/lotty-marketplace/internal/handler"
	"github.com/iliyamo/lotty-marketplace/internal/queue"
	"github.com/iliyamo/lotty-marketplace/internal/repository"
	"github.com/iliyamo/lotty-marketplace/internal/router"
	"github.com/iliyamo/lotty-marketplace/internal/service"
	"github.com/iliyamo/lotty-marketplace/internal/ws"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db.DB); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	subs := repository.NewSubscriptionRepo(db)
	listings := repository.NewListingRepo(db)
	chats := repository.NewChatRepo(db)
	offers := repository.NewOfferRepo(db)
	feedback := repository.NewFeedbackRepo(db)

	if cfg.SeedDemo {
		if err := seedDemo(ctx, users, subs, listings, cfg.BcryptCost); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("upload dir: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}

	var events service.Publisher
	if cfg.EventsEnabled {
		url := queue.BrokerURL()
		pub := queue.NewPublisher(url)
		defer pub.Close()
		events = pub
		go func() {
			if err := queue.StartEventConsumer(ctx, url, "logs"); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("event-consumer: %v", err)
			}
		}()
	}

	hub := ws.NewHub(nil)

	subSvc := service.NewSubscriptionService(subs, events)
	listingSvc := service.NewListingService(listings, subSvc, events)
	chatSvc := service.NewChatService(chats, listings, events, hub)
	offerSvc := service.NewOfferService(offers, listings, events)
	feedbackSvc := service.NewFeedbackService(feedback, listings)
	adminSvc := service.NewAdminService(users, listings, subs)
	sweeper := service.NewSweeper(subs, events, cfg.SweepInterval).PurgeSessions(sessions)
	go sweeper.Run(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Printf("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	router.RegisterRoutes(e, router.Handlers{
		Health:       handler.Health(db),
		Auth:         handler.NewAuthHandler(cfg, users, sessions),
		Listings:     handler.NewListingHandler(listingSvc, cfg.UploadDir, cfg.UploadMaxBytes),
		Feedback:     handler.NewFeedbackHandler(feedbackSvc),
		Subscription: handler.NewSubscriptionHandler(subSvc),
		Chats:        handler.NewChatHandler(chatSvc, hub),
		Offers:       handler.NewOfferHandler(offerSvc),
		Admin:        handler.NewAdminHandler(adminSvc, listingSvc, subSvc, sweeper),
	}, router.Deps{
		Cfg:      cfg,
		Sessions: sessions,
		Users:    users,
		Redis:    rdb,
	})

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
