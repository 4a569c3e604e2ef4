package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cristianortiz/sneakerbid/internal/auction/application"
	"github.com/cristianortiz/sneakerbid/internal/auction/infra/broadcast"
	auctioncatalog "github.com/cristianortiz/sneakerbid/internal/auction/infra/catalog"
	"github.com/cristianortiz/sneakerbid/internal/auction/infra/rest"
	auctionws "github.com/cristianortiz/sneakerbid/internal/auction/infra/websocket"
	catalogapp "github.com/cristianortiz/sneakerbid/internal/catalog/application"
	catalogdomain "github.com/cristianortiz/sneakerbid/internal/catalog/domain"
	"github.com/cristianortiz/sneakerbid/internal/shared/config"
	"github.com/cristianortiz/sneakerbid/internal/shared/httpserver"
	"github.com/cristianortiz/sneakerbid/internal/shared/logger"
	"github.com/cristianortiz/sneakerbid/internal/shared/websocket"
	userhttp "github.com/cristianortiz/sneakerbid/internal/user/infra/http"
	"go.uber.org/zap"
)

func main() {
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting sneakerbid server...")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, config.Load())
	stop()
	if err != nil {
		log.Fatal("Server failed", zap.Error(err))
	}
	log.Info("Server stopped")
}

// run wires the application and serves until ctx is done. Everything it opened is
// closed before it returns, on failure too.
func run(ctx context.Context, cfg config.Config) error {
	log := logger.GetLogger()

	stores, err := openStores(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s stores: %w", cfg.Store, err)
	}
	defer stores.Close()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	// with Redis every instance feeds its rooms from the relay, otherwise rooms are local
	var publishers application.MultiPublisher
	if cfg.RedisAddr != "" {
		relay, err := broadcast.NewRedisRelay(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("redis relay: %w", err)
		}
		defer relay.Close()
		relay.Start(ctx)
		go func() {
			if err := relay.Subscribe(ctx, hub); err != nil {
				log.Error("Redis relay subscription ended", zap.Error(err))
			}
		}()
		publishers = append(publishers, relay)
	} else {
		publishers = append(publishers, auctionws.NewHubPublisher(hub))
	}
	if cfg.NatsURL != "" {
		stream, err := broadcast.NewStreamPublisher(ctx, cfg.NatsURL)
		if err != nil {
			return fmt.Errorf("jetstream publisher: %w", err)
		}
		defer stream.Close()
		stream.Start(ctx)
		publishers = append(publishers, stream)
	}

	eligibility := catalogapp.NewEligibilityService(stores.items, catalogdomain.EligibilityPolicy{
		MinPrice:  cfg.EligibleMinPrice,
		Condition: cfg.EligibleCondition,
	})
	auctionService := application.NewAuctionService(
		stores.auctions,
		auctioncatalog.NewItemCatalog(eligibility),
		publishers,
		application.Options{
			PaymentWindow:       cfg.PaymentWindow,
			MaxAttempts:         cfg.BidMaxAttempts,
			DefaultMinIncrement: cfg.DefaultMinIncrement,
			RetryBackoff:        cfg.SchedulerRetryBackoff,
		},
	)
	if err := auctionService.Start(ctx); err != nil {
		return fmt.Errorf("scheduler recovery: %w", err)
	}
	defer auctionService.Stop()

	wsHandler := auctionws.NewAuctionWSHandler(auctionService, hub)
	go wsHandler.ListenForMessages(ctx)

	server := httpserver.NewServer()
	router := server.Router(userhttp.Authenticate(stores.users))
	rest.NewAuctionHandler(auctionService).RegisterRoutes(router)
	wsHandler.RegisterRoutes(router)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown failed", zap.Error(err))
		}
	}()

	if err := server.Start(cfg.HTTPAddr); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
