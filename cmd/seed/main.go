package main

import (
	"context"
	"fmt"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/seed"
	"github.com/pageza/foodgram/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if config.IsProduction() {
		logging.Fatal().Msg("refusing to seed a production database")
	}

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx := context.Background()
	res, err := seed.Catalog(ctx, db)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to seed catalog")
	}

	user, err := seed.Demo(ctx, db)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to seed demo user")
	}

	token, err := service.NewAuthService(cfg.JWTSecret).GenerateToken(user)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to issue demo token")
	}

	fmt.Printf("Seeded %d tags and %d ingredients\n", res.Tags, res.Ingredients)
	fmt.Printf("Demo user: %s (%s)\n", user.Username, user.ID)
	fmt.Printf("Authorization: Bearer %s\n", token)
}
