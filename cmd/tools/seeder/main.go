package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-tierprice/internal/app"
	"github.com/noah-isme/toko-tierprice/internal/obs"
	"github.com/noah-isme/toko-tierprice/internal/tierstore"
)

type seedVariant struct {
	VariantID       string                `json:"variantId"`
	ProductID       string                `json:"productId"`
	ProductName     string                `json:"productName"`
	RegularPrice    string                `json:"regularPrice"`
	Price           string                `json:"price"`
	MinimumQuantity int                   `json:"minimumQuantity"`
	Tiers           []tierstore.TierEntry `json:"tiers"`
}

func main() {
	file := flag.String("file", "cmd/tools/seeder/testdata/variants.json", "path to the variant pricing seed file")
	migrateFirst := flag.Bool("migrate", true, "apply schema migrations before seeding")
	flag.Parse()

	_ = godotenv.Load()
	logger := obs.NewLogger(os.Getenv("OBS_LOG_FORMAT"), os.Getenv("OBS_LOG_LEVEL"))

	if err := run(*file, *migrateFirst, logger); err != nil {
		logger.Fatal().Err(err).Msg("seeding failed")
	}
}

func run(path string, migrateFirst bool, logger zerolog.Logger) error {
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	variants, err := loadSeed(f)
	if err != nil {
		return err
	}

	if migrateFirst {
		if err := tierstore.Migrate(dbURL); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := app.NewPool(ctx, dbURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	var cache *tierstore.Cache
	if redisURL := strings.TrimSpace(os.Getenv("REDIS_URL")); redisURL != "" {
		client, err := app.NewRedis(ctx, redisURL, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, cached tiers will expire on their own")
		} else {
			defer func(c *redis.Client) { _ = c.Close() }(client)
			cache = tierstore.NewCache(client, 0)
		}
	}

	store, err := tierstore.NewStore(tierstore.StoreConfig{
		Queries: tierstore.PGQueries{Pool: pool},
		Cache:   cache,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	for _, v := range variants {
		if err := store.Save(ctx, v); err != nil {
			return fmt.Errorf("seed variant %s: %w", v.VariantID, err)
		}
		logger.Info().
			Str("variant_id", v.VariantID.String()).
			Str("product", v.ProductName).
			Int("tiers", len(v.Tiers)).
			Msg("variant pricing seeded")
	}
	logger.Info().Int("variants", len(variants)).Msg("seeding completed")
	return nil
}

// loadSeed decodes and checks seed entries.
func loadSeed(r io.Reader) ([]tierstore.SaveParams, error) {
	var raw []seedVariant
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	out := make([]tierstore.SaveParams, 0, len(raw))
	for i, v := range raw {
		variantID, err := uuid.Parse(v.VariantID)
		if err != nil {
			return nil, fmt.Errorf("entry %d: invalid variantId: %w", i, err)
		}
		productID := uuid.Nil
		if v.ProductID != "" {
			if productID, err = uuid.Parse(v.ProductID); err != nil {
				return nil, fmt.Errorf("entry %d: invalid productId: %w", i, err)
			}
		}
		if v.MinimumQuantity < 0 {
			return nil, fmt.Errorf("entry %d: minimumQuantity must not be negative", i)
		}
		out = append(out, tierstore.SaveParams{
			VariantID:       variantID,
			ProductID:       productID,
			ProductName:     v.ProductName,
			RegularPrice:    v.RegularPrice,
			ActivePrice:     v.Price,
			MinimumQuantity: v.MinimumQuantity,
			Tiers:           v.Tiers,
		})
	}
	return out, nil
}
