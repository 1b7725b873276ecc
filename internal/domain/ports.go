package domain

import "context"

// SourceAdapter is one partner feed: raw objects plus the rule table that maps them.
type SourceAdapter interface {
	Name() string
	FetchRaw(ctx context.Context) ([]map[string]any, error)
	Rules() RuleTable
}

type HotelRepository interface {
	// Write paths
	UpsertHotel(ctx context.Context, h Hotel, seq int) error

	// Read paths
	GetHotel(ctx context.Context, id string) (Hotel, error)
	ListHotels(ctx context.Context, f Filter) ([]Hotel, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
