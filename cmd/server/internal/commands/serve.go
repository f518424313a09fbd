package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/wolfeidau/moontravel/internal/auth"
	"github.com/wolfeidau/moontravel/internal/logger"
	"github.com/wolfeidau/moontravel/internal/server"
	"github.com/wolfeidau/moontravel/internal/telemetry"
)

type ServeCmd struct {
	// Server configuration
	Listen      string `help:"HTTP server listen address" default:"0.0.0.0:5000" env:"MOONTRAVEL_LISTEN"`
	Environment string `help:"deployment environment, production marks cookies Secure" default:"development" env:"MOONTRAVEL_ENV" enum:"development,production"`
	TrustProxy  bool   `help:"take client addresses from X-Forwarded-For and X-Real-IP" default:"false" env:"MOONTRAVEL_TRUST_PROXY"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins, also trusted for cross-origin writes" env:"MOONTRAVEL_CORS_ORIGINS"`

	// Credential configuration
	Session       SessionFlags  `embed:"" prefix:"session-"`
	BcryptCost    int           `help:"bcrypt work factor" default:"12" env:"MOONTRAVEL_BCRYPT_COST"`
	SweepInterval time.Duration `help:"interval between sweeps of expired sessions and tokens, 0 disables" default:"15m" env:"MOONTRAVEL_SWEEP_INTERVAL"`

	// Observability
	Tracing          bool    `help:"enable tracing" default:"false" env:"MOONTRAVEL_TRACING"`
	TraceSampleRatio float64 `help:"fraction of new traces sampled" default:"1.0" env:"MOONTRAVEL_TRACE_SAMPLE_RATIO"`

	// Store configuration
	Store StoreFlags `embed:""`
}

type SessionFlags struct {
	Secret string        `help:"secret keying session ids at rest, at least 32 bytes" env:"MOONTRAVEL_SESSION_SECRET"`
	TTL    time.Duration `help:"server-side session lifetime" default:"24h" env:"MOONTRAVEL_SESSION_TTL"`
}

func (s *SessionFlags) Validate() error {
	if s.Secret == "" {
		return errors.New("session secret is required (--session-secret or MOONTRAVEL_SESSION_SECRET)")
	}
	if len(s.Secret) < auth.MinSecretLength {
		return fmt.Errorf("session secret must be at least %d bytes (256 bits) for HMAC-SHA256", auth.MinSecretLength)
	}
	if s.TTL <= 0 {
		return errors.New("session TTL must be positive")
	}
	return nil
}

func (c *ServeCmd) config() server.Config {
	return server.Config{
		Environment:   c.Environment,
		SessionSecret: []byte(c.Session.Secret),
		SessionTTL:    c.Session.TTL,
		BcryptCost:    c.BcryptCost,
		CORSOrigins:   c.CORSOrigins,
		TrustProxy:    c.TrustProxy,
		Tracing:       c.Tracing,
	}
}

func (c *ServeCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	if err := c.Session.Validate(); err != nil {
		return err
	}

	var metrics *telemetry.Metrics
	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, "moontravel-server", globals.Version, c.TraceSampleRatio)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
		metrics = telemetry.GetMetrics()
	}

	stores, closeStores, err := c.Store.open(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	srv, err := server.New(c.config(), stores, metrics)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if c.SweepInterval > 0 {
		sweeper := auth.NewSweeper(stores.Sessions, stores.Tokens, c.SweepInterval)
		if metrics != nil {
			sweeper.OnSweep = metrics.RecordSweep
		}
		sweeper.Start(ctx)
		defer sweeper.Stop()
	}

	httpServer := configureHTTPServer(c.Listen, srv.Handler())

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", c.Listen).
			Str("environment", c.Environment).
			Str("store", c.Store.StoreType).
			Msg("Starting HTTP server")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return httpServer.Shutdown(shutdownCtx)
}
