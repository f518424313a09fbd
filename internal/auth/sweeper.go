package auth

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/moontravel/internal/store"
)

// Sweeper periodically deletes lapsed sessions and tokens. Expiry is always
// checked on read, so the sweeper only bounds storage growth.
type Sweeper struct {
	sessions store.SessionStore
	tokens   store.TokenStore
	interval time.Duration

	// Now is the clock, replaceable in tests.
	Now func() time.Time

	// OnSweep receives the counts of every successful sweep. Optional.
	OnSweep func(ctx context.Context, sessions, tokens int)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweeper creates a sweeper. Call Start to run it in the background.
func NewSweeper(sessions store.SessionStore, tokens store.TokenStore, interval time.Duration) *Sweeper {
	return &Sweeper{
		sessions: sessions,
		tokens:   tokens,
		interval: interval,
		Now:      time.Now,
	}
}

// Start runs the sweep loop until Stop is called or ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.loop()
}

// Stop gracefully stops the background goroutine.
func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
}

func (s *Sweeper) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			log.Info().Msg("Sweeper stopped")
			return

		case <-ticker.C:
			if _, _, err := s.Sweep(s.ctx); err != nil {
				log.Error().Err(err).Msg("Failed to sweep expired credentials")
			}
		}
	}
}

// Sweep deletes everything that has expired as of now and returns the counts.
func (s *Sweeper) Sweep(ctx context.Context) (int, int, error) {
	now := s.Now()

	sessions, err := s.sessions.DeleteExpired(ctx, now)
	if err != nil {
		return 0, 0, err
	}

	tokens, err := s.tokens.DeleteExpired(ctx, now)
	if err != nil {
		return sessions, 0, err
	}

	if s.OnSweep != nil {
		s.OnSweep(ctx, sessions, tokens)
	}

	if sessions > 0 || tokens > 0 {
		log.Info().Int("sessions", sessions).Int("tokens", tokens).Msg("Swept expired credentials")
	}

	return sessions, tokens, nil
}
