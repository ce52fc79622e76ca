package tierstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-tierprice/internal/obs"
	"github.com/noah-isme/toko-tierprice/internal/pricing"
)

// ErrNotFound is returned when a variant has no pricing record.
var ErrNotFound = errors.New("tierstore: variant not found")

type queryProvider interface {
	GetVariantPricing(ctx context.Context, id uuid.UUID) (Row, error)
	UpsertVariantPricing(ctx context.Context, arg UpsertParams) error
	Ping(ctx context.Context) error
}

// Record is the catalog view of a variant's tier pricing.
type Record struct {
	ProductID   uuid.UUID              `json:"productId"`
	ProductName string                 `json:"productName"`
	Pricing     pricing.VariantPricing `json:"pricing"`
}

// TierEntry is the stored shape of one tier.
type TierEntry struct {
	Threshold int             `json:"threshold"`
	Price     decimal.Decimal `json:"price"`
}

// Store loads variant pricing from Postgres with a Redis read-through cache.
type Store struct {
	queries queryProvider
	cache   *Cache
	logger  zerolog.Logger
	metrics *obs.PricingMetrics
}

// StoreConfig groups Store dependencies.
type StoreConfig struct {
	Queries queryProvider
	Cache   *Cache
	Logger  zerolog.Logger
	Metrics *obs.PricingMetrics
}

// NewStore constructs a Store.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Queries == nil {
		return nil, errors.New("tierstore: queries provider is required")
	}
	return &Store{
		queries: cfg.Queries,
		cache:   cfg.Cache,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}, nil
}

// Load returns the normalised pricing record for a variant.
func (s *Store) Load(ctx context.Context, variantID uuid.UUID) (Record, error) {
	key := variantKey(variantID)
	if s.cache != nil {
		var cached Record
		ok, err := s.cache.GetJSON(ctx, key, &cached)
		switch {
		case err != nil:
			s.metrics.ObserveCache("error")
			s.logger.Warn().Err(err).Str("variant_id", variantID.String()).Msg("tier cache read failed")
		case ok:
			s.metrics.ObserveCache("hit")
			return cached, nil
		default:
			s.metrics.ObserveCache("miss")
		}
	}

	row, err := s.queries.GetVariantPricing(ctx, variantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("load variant pricing: %w", err)
	}

	rec := s.recordFromRow(row)
	if err := s.cache.SetJSON(ctx, key, rec); err != nil {
		s.logger.Warn().Err(err).Str("variant_id", variantID.String()).Msg("tier cache write failed")
	}
	return rec, nil
}

// HasTieredPricing reports whether the variant has at least one valid tier.
// Unknown variants report false.
func (s *Store) HasTieredPricing(ctx context.Context, variantID uuid.UUID) (bool, error) {
	rec, err := s.Load(ctx, variantID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return rec.Pricing.HasTieredPricing(), nil
}

// SaveParams describes a variant pricing write.
type SaveParams struct {
	VariantID       uuid.UUID
	ProductID       uuid.UUID
	ProductName     string
	RegularPrice    string
	ActivePrice     string
	MinimumQuantity int
	Tiers           []TierEntry
}

// Save upserts a variant's pricing and evicts its cache entry.
func (s *Store) Save(ctx context.Context, p SaveParams) error {
	if p.VariantID == uuid.Nil {
		return errors.New("tierstore: variant id is required")
	}
	tiers := p.Tiers
	if tiers == nil {
		tiers = []TierEntry{}
	}
	encoded, err := json.Marshal(tiers)
	if err != nil {
		return fmt.Errorf("encode tiers: %w", err)
	}
	if err := s.queries.UpsertVariantPricing(ctx, UpsertParams{
		VariantID:       p.VariantID,
		ProductID:       p.ProductID,
		ProductName:     p.ProductName,
		RegularPrice:    optionalAmount(p.RegularPrice),
		ActivePrice:     optionalAmount(p.ActivePrice),
		MinimumQuantity: int32(p.MinimumQuantity),
		Tiers:           encoded,
	}); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, variantKey(p.VariantID)); err != nil {
		s.logger.Warn().Err(err).Str("variant_id", p.VariantID.String()).Msg("tier cache evict failed")
	}
	return nil
}

// PingStore checks database connectivity.
func (s *Store) PingStore(ctx context.Context) error {
	return s.queries.Ping(ctx)
}

// PingCache checks Redis connectivity.
func (s *Store) PingCache(ctx context.Context) error {
	return s.cache.Ping(ctx)
}

func (s *Store) recordFromRow(row Row) Record {
	log := s.logger.With().Str("variant_id", row.VariantID.String()).Logger()

	raw := pricing.VariantPricing{
		VariantID:            row.VariantID,
		BasePrice:            basePrice(log, row.RegularPrice, row.ActivePrice),
		Tiers:                decodeTiers(log, row.Tiers),
		MinimumOrderQuantity: int(row.MinimumQuantity),
	}
	normalized, dropped := raw.Normalized()
	for _, d := range dropped {
		s.metrics.ObserveDropped(string(d.Reason))
		log.Warn().
			Int("threshold", d.Tier.Threshold).
			Str("unit_price", d.Tier.UnitPrice.String()).
			Str("reason", string(d.Reason)).
			Msg("tier entry dropped")
	}
	return Record{
		ProductID:   row.ProductID,
		ProductName: row.ProductName,
		Pricing:     normalized,
	}
}

// basePrice prefers the regular price and falls back to the active price
// when the regular price is empty or zero.
func basePrice(log zerolog.Logger, regular, active *string) decimal.Decimal {
	if v, ok := parseAmount(log, regular); ok && !v.IsZero() {
		return v
	}
	if v, ok := parseAmount(log, active); ok {
		return v
	}
	return decimal.Zero
}

func parseAmount(log zerolog.Logger, s *string) (decimal.Decimal, bool) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(strings.TrimSpace(*s))
	if err != nil {
		log.Warn().Err(err).Str("amount", *s).Msg("unparseable price")
		return decimal.Zero, false
	}
	return v, true
}

// decodeTiers treats malformed tier JSON as no tiers.
func decodeTiers(log zerolog.Logger, data []byte) []pricing.Tier {
	if len(data) == 0 {
		return nil
	}
	var entries []TierEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Warn().Err(err).Msg("malformed tier data ignored")
		return nil
	}
	tiers := make([]pricing.Tier, 0, len(entries))
	for _, e := range entries {
		tiers = append(tiers, pricing.Tier{Threshold: e.Threshold, UnitPrice: e.Price})
	}
	return tiers
}

func optionalAmount(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
