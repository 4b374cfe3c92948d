package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	rediscache "github.com/Kuba27x/Cinema-app/internal/adapter/cache/redis"
	"github.com/Kuba27x/Cinema-app/internal/adapter/queue/rabbitmq"
	"github.com/Kuba27x/Cinema-app/internal/adapter/repository/postgres"
	"github.com/Kuba27x/Cinema-app/internal/core/domain"
	"github.com/Kuba27x/Cinema-app/internal/core/ports"
	"github.com/Kuba27x/Cinema-app/internal/core/services"
	"github.com/Kuba27x/Cinema-app/internal/platform/config"
	"github.com/Kuba27x/Cinema-app/internal/platform/database"
	"github.com/Kuba27x/Cinema-app/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	var envFile, logLevel string
	var asJSON, migrate bool

	flagSet := pflag.NewFlagSet("cinema", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	flagSet.StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	flagSet.BoolVar(&asJSON, "json", false, "print results as JSON")
	flagSet.BoolVar(&migrate, "migrate", false, "create missing tables before running the command")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(out, flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help || flagSet.NArg() == 0 {
		printUsage(out, flagSet)
		return nil
	}

	name := flagSet.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		return &domain.InvalidInputError{Field: "command", Reason: fmt.Sprintf("unknown command %q", name)}
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	a, cleanup, err := wire(ctx, cfg, log, migrate)
	if err != nil {
		return err
	}
	defer cleanup()

	a.out = out
	a.json = asJSON
	return cmd(ctx, a, flagSet.Args()[1:])
}

// wire connects the stores and builds the services. Redis and RabbitMQ are
// optional; if they are unreachable the command runs without them.
func wire(ctx context.Context, cfg config.Config, log *slog.Logger, migrate bool) (*app, func(), error) {
	db, err := database.NewPostgresDB(ctx, cfg.DB, log)
	if err != nil {
		return nil, nil, err
	}
	closers := []func(){func() { db.Close() }}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if migrate {
		if err := database.Migrate(ctx, db); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	var cache ports.SeatCache
	if cfg.CacheEnabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, seat cache disabled", slog.String("addr", cfg.RedisAddr), slog.Any("error", err))
			client.Close()
		} else {
			closers = append(closers, func() { client.Close() })
			cache = rediscache.NewSeatCache(client, cfg.SeatCacheTTL)
		}
	}

	var publisher ports.EventPublisher
	if cfg.PublishEnabled {
		publisher = rabbitmq.NewPublisher(cfg.RabbitMQURL, log)
	}

	catalogRepo := postgres.NewCatalogRepository(db)
	reservationRepo := postgres.NewReservationRepository(db)

	a := &app{
		catalog: services.NewCatalogService(catalogRepo, reservationRepo, log),
		booking: services.NewReservationService(reservationRepo, cache, publisher,
			services.WithLogger(log),
			services.WithSeatGrid(domain.SeatGrid{Rows: cfg.SeatRows, Columns: cfg.SeatColumns}),
		),
		auditInterval: cfg.AuditInterval,
	}
	return a, cleanup, nil
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrOutOfRange):
		return 2
	case errors.Is(err, domain.ErrSeatConflict):
		return 3
	case errors.Is(err, domain.ErrNotFound):
		return 4
	case errors.Is(err, domain.ErrPersistence):
		return 5
	default:
		return 1
	}
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `cinema: browse showings and book seats.

Usage:
  cinema [global flags] <command> [flags]

Commands:
  movies     list movies (--genre, --search)
  showings   list showings (--movie, or --day with optional --from/--to hours)
  seats      print the seat map of a showing (--showing)
  book       reserve seats (--showing --name --email --phone --seat N[:Type] --drag A-B --type)
  receipts   list a customer's tickets grouped by showing (--email)
  audit      compare seat counters with reservations (--watch to keep running)

Global flags:
%s`, flagSet.FlagUsages())
}
