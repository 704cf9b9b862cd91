package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	slacklib "github.com/slack-go/slack"

	"github.com/postpata/pata/internal/api/rest"
	"github.com/postpata/pata/internal/auth"
	"github.com/postpata/pata/internal/catalog"
	"github.com/postpata/pata/internal/config"
	"github.com/postpata/pata/internal/domain"
	"github.com/postpata/pata/internal/lifecycle"
	"github.com/postpata/pata/internal/maintenance"
	"github.com/postpata/pata/internal/media"
	"github.com/postpata/pata/internal/notify"
	"github.com/postpata/pata/internal/payment"
	"github.com/postpata/pata/internal/ratelimit"
	"github.com/postpata/pata/internal/server"
	"github.com/postpata/pata/internal/server/respond"
	"github.com/postpata/pata/internal/store/memory"
	"github.com/postpata/pata/internal/store/postgres"
	redisstore "github.com/postpata/pata/internal/store/redis"
)

// repositories is what both store backends provide.
type repositories interface {
	Properties() domain.PropertyRepository
	Profiles() domain.ProfileRepository
	Maintenance() domain.MaintenanceRepository
	Payments() domain.PaymentRepository
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	level, parseErr := zerolog.ParseLevel(os.Getenv("PATA_LOG_LEVEL"))
	if parseErr != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	if os.Getenv("PATA_LOG_FORMAT") == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	checks := map[string]server.Pinger{}

	var repos repositories
	switch cfg.Store {
	case config.StorePostgres:
		if cfg.Database.MaxConns > math.MaxInt32 {
			return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
		}
		pg, pgErr := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
		if pgErr != nil {
			return pgErr
		}
		defer pg.Close()
		if cfg.Database.EnsureSchema {
			if err := pg.EnsureSchema(ctx); err != nil {
				return err
			}
		}
		repos = pg
		checks["postgres"] = pg
	default:
		log.Warn().Msg("using in-memory store, data is lost on restart")
		repos = memory.New()
	}

	var (
		otps    auth.OTPStore = memory.NewOTPStore()
		limiter ratelimit.Limiter
	)
	if cfg.Redis.Addr != "" {
		rc, rcErr := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if rcErr != nil {
			return rcErr
		}
		defer rc.Close()
		otps = redisstore.NewOTPStore(rc)
		checks["redis"] = rc
		if cfg.RateLimit.Backend == config.LimiterRedis {
			limiter = ratelimit.NewRedis(rc.Raw(), cfg.RateLimit.Max, cfg.RateLimit.Window)
		}
	}
	if limiter == nil {
		limiter = ratelimit.NewLocal(cfg.RateLimit.Max, cfg.RateLimit.Window)
	}

	// Email and SMS have no outbound provider; codes fall back to the debug log.
	channels := notify.NewRegistry()
	if cfg.Slack.BotToken != "" {
		channels.Register(notify.NewSlackChannel(slacklib.New(cfg.Slack.BotToken)))
		log.Info().Msg("Slack admin alerts enabled")
	}
	notifier := notify.New(channels, cfg.Slack.AlertChannel)

	accounts := auth.NewService(repos.Profiles(), cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL,
		auth.WithOTP(otps, notifier, cfg.Accounts.OTPTTL),
		auth.WithAdminSignup(cfg.Accounts.AllowAdminSignup),
	)

	listings := catalog.New(repos.Properties(), repos.Profiles(), catalog.WithAnnouncer(notifier))

	var toggler lifecycle.Toggler = lifecycle.ReadModifyWrite{Properties: repos.Properties()}
	if cfg.Lifecycle.AtomicToggles {
		toggler = lifecycle.Atomic{Properties: repos.Properties()}
	}

	images, err := media.NewDisk(cfg.Media.Dir, cfg.Media.BaseURL, cfg.Media.MaxSize)
	if err != nil {
		return err
	}

	out := respond.New(cfg.Dev())
	handlers := rest.NewHandlers(rest.Deps{
		Translator:  out,
		Catalog:     listings,
		Lifecycle:   lifecycle.New(repos.Properties(), toggler),
		Maintenance: maintenance.New(repos.Maintenance(), listings),
		Payments:    payment.New(repos.Payments(), listings),
		Images:      images,
	})

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.New(cfg, server.Deps{
		Translator: out,
		Verifier:   auth.NewVerifier(cfg.JWT.Secret),
		Limiter:    limiter,
		Accounts:   accounts,
		REST:       handlers,
		Checks:     checks,
		MediaDir:   images.Root(),
		MediaURL:   cfg.Media.BaseURL,
	})

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("store", cfg.Store).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}
