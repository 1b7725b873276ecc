package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotelmerge/internal/domain"
)

// PublishService writes a run's merged hotels to the repository and evicts
// their cached copies.
type PublishService struct {
	repo    domain.HotelRepository
	cache   domain.Cache
	workers int
}

func NewPublishService(r domain.HotelRepository, cache domain.Cache, workers int) *PublishService {
	if workers < 1 {
		workers = 1
	}
	return &PublishService{repo: r, cache: cache, workers: workers}
}

// Publish upserts every hotel under its first-seen sequence from seq
// (normally Result.Seq); a hotel missing from seq uses its position in
// hotels. One failed upsert does not stop the others; the count of failures
// is returned as an error.
func (s *PublishService) Publish(ctx context.Context, hotels []domain.Hotel, seq map[string]int) error {
	sem := semaphore.NewWeighted(int64(s.workers))
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)

	for i, h := range hotels {
		n, ok := seq[h.ID]
		if !ok {
			n = i
		}
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return fmt.Errorf("publish: %w", err)
		}

		wg.Add(1)
		go func(pos int, h domain.Hotel) {
			defer wg.Done()
			defer sem.Release(1)

			if err := s.repo.UpsertHotel(ctx, h, pos); err != nil {
				log.Warn().Str("id", h.ID).Err(err).Msg("upsert failed")
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			// Property changed -> evict so readers don't keep an old snapshot.
			if s.cache != nil {
				if err := s.cache.Del(ctx, HotelKey(h.ID)); err != nil {
					log.Warn().Str("id", h.ID).Err(err).Msg("cache evict failed")
				}
			}
			log.Debug().Str("id", h.ID).Msg("upsert ok")
		}(n, h)
	}

	wg.Wait()
	if failed > 0 {
		return fmt.Errorf("publish: %d of %d hotels failed", failed, len(hotels))
	}
	return nil
}
