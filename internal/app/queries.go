package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"hotelmerge/internal/domain"
)

type QueryService struct {
	repo     domain.HotelRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.HotelRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

// HotelKey is the cache key of one persisted hotel.
func HotelKey(id string) string { return "hotel:" + id }

// ListKey is the cache key of one filtered listing.
func ListKey(f domain.Filter) string {
	ids, dests := selectorString(f)
	return fmt.Sprintf("hotels:%s:%s", ids, dests)
}

func (s *QueryService) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	key := HotelKey(id)
	var h domain.Hotel
	ok, err := s.cache.Get(ctx, key, &h)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache get failed")
	}
	if ok {
		return h, nil
	}
	h, err = s.repo.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	if err := s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds())); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
	return h, nil
}

// ListHotels serves a filtered listing in first-seen order. Listings are not
// evicted on writes; they expire with the cache TTL.
func (s *QueryService) ListHotels(ctx context.Context, f domain.Filter) ([]domain.Hotel, error) {
	key := ListKey(f)
	var out []domain.Hotel
	ok, err := s.cache.Get(ctx, key, &out)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache get failed")
	}
	if ok {
		return out, nil
	}

	hs, err := s.repo.ListHotels(ctx, f)
	if err != nil {
		return nil, err
	}

	// copy slice to avoid aliasing the repo's backing array
	out = make([]domain.Hotel, len(hs))
	copy(out, hs)
	if err := s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds())); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
	return out, nil
}
