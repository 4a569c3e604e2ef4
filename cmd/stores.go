package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	auctiondomain "github.com/cristianortiz/sneakerbid/internal/auction/domain"
	auctionmemory "github.com/cristianortiz/sneakerbid/internal/auction/infra/repository/memory"
	auctionpostgres "github.com/cristianortiz/sneakerbid/internal/auction/infra/repository/postgres"
	catalogdomain "github.com/cristianortiz/sneakerbid/internal/catalog/domain"
	catalogmemory "github.com/cristianortiz/sneakerbid/internal/catalog/infra/repository/memory"
	catalogpostgres "github.com/cristianortiz/sneakerbid/internal/catalog/infra/repository/postgres"
	"github.com/cristianortiz/sneakerbid/internal/shared/config"
	"github.com/cristianortiz/sneakerbid/internal/shared/db"
	"github.com/cristianortiz/sneakerbid/internal/shared/db/migrations"
	"github.com/cristianortiz/sneakerbid/internal/shared/logger"
	userdomain "github.com/cristianortiz/sneakerbid/internal/user/domain"
	usermemory "github.com/cristianortiz/sneakerbid/internal/user/infra/repository/memory"
	userpostgres "github.com/cristianortiz/sneakerbid/internal/user/infra/repository/postgres"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type stores struct {
	auctions auctiondomain.AuctionRepository
	items    catalogdomain.ItemRepository
	users    userdomain.UserRepository
	close    func()
}

func (s *stores) Close() {
	if s.close != nil {
		s.close()
	}
}

func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	log := logger.GetLogger()
	switch cfg.Store {
	case "memory":
		users, items, err := loadSeed(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		log.Warn("Using in-memory stores, nothing survives a restart", zap.String("seed", cfg.SeedFile))
		return &stores{
			auctions: auctionmemory.NewAuctionRepository(),
			items:    items,
			users:    users,
		}, nil

	case "postgres":
		log.Info("Running database migrations...")
		if err := migrations.RunMigrations(cfg.MigrationsPath, db.BuildPostgresDSN(cfg.DB)); err != nil {
			return nil, fmt.Errorf("database migration failed: %w", err)
		}
		log.Info("Database migrations completed successfully.")

		pool, err := db.NewPostgresPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		return &stores{
			auctions: auctionpostgres.NewAuctionRepository(pool),
			items:    catalogpostgres.NewItemRepository(pool),
			users:    userpostgres.NewUserRepository(pool),
			close:    pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown STORE %q, want postgres or memory", cfg.Store)
	}
}

// seed is the fixture format for STORE=memory
type seed struct {
	Users []struct {
		ID        uuid.UUID `json:"id"`
		Username  string    `json:"username"`
		Role      string    `json:"role"`
		IsBlocked bool      `json:"is_blocked"`
	} `json:"users"`
	Sneakers []struct {
		ID         uuid.UUID       `json:"id"`
		Title      string          `json:"title"`
		Price      decimal.Decimal `json:"price"`
		Condition  string          `json:"condition"`
		IsApproved bool            `json:"is_approved"`
	} `json:"sneakers"`
}

func loadSeed(path string) (*usermemory.UserRepository, *catalogmemory.ItemRepository, error) {
	users := usermemory.NewUserRepository()
	items := catalogmemory.NewItemRepository()
	if path == "" {
		return users, items, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read seed file: %w", err)
	}
	var s seed
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, nil, fmt.Errorf("parse seed file: %w", err)
	}
	for _, u := range s.Users {
		users.Put(userdomain.User{ID: u.ID, Username: u.Username, Role: userdomain.Role(u.Role), IsBlocked: u.IsBlocked})
	}
	for _, sn := range s.Sneakers {
		items.Put(catalogdomain.Item{ID: sn.ID, Title: sn.Title, Price: sn.Price, Condition: sn.Condition, IsApproved: sn.IsApproved})
	}
	return users, items, nil
}
