package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airtickets/config"
	"github.com/Domenick1991/airtickets/internal/bootstrap"
	"github.com/Domenick1991/airtickets/internal/cache"
	"github.com/Domenick1991/airtickets/internal/kafka"
	"github.com/Domenick1991/airtickets/internal/logger"
	"github.com/Domenick1991/airtickets/internal/repository"
	"github.com/Domenick1991/airtickets/internal/service/flights"
	"github.com/Domenick1991/airtickets/internal/service/tickets"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/pflag"
)

func main() {
	flags := pflag.NewFlagSet("airtickets", pflag.ContinueOnError)
	cfgPath := flags.StringP("config", "c", "", "path to config file (default $CONFIG_PATH or config.yaml)")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(config.ResolvePath(*cfgPath))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatal("server error", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	checks := map[string]bootstrap.Check{}

	var (
		flightRepo repository.FlightRepository
		ticketRepo repository.TicketRepository
		inventory  repository.Inventory
	)
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		store := repository.NewMemory()
		flightRepo, ticketRepo, inventory = store, store.Tickets(), store
		logger.Get().Warn("using in-memory storage, data is lost on restart")
	default:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		if err := repository.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		flightRepo = repository.NewFlightRepository(pool)
		ticketRepo = repository.NewTicketRepository(pool)
		inventory = repository.NewInventory(pool)
		checks["postgres"] = pool.Ping
	}

	var (
		flightOpts []flights.FlightServiceOption
		ticketOpts = []tickets.TicketServiceOption{tickets.WithRefundWindow(cfg.Tickets.RefundWindow())}
	)

	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Tickets.SearchCacheTTL())
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			logger.Get().Warn("redis unavailable, search served from storage", "error", err)
		}
		flightOpts = append(flightOpts, flights.WithCache(redisCache))
		ticketOpts = append(ticketOpts, tickets.WithCache(redisCache))
		checks["redis"] = redisCache.Ping
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		flightOpts = append(flightOpts, flights.WithEvents(producer, cfg.Kafka.FlightsTopic))
		ticketOpts = append(ticketOpts, tickets.WithEvents(producer, cfg.Kafka.TicketsTopic))
		checks["kafka"] = producer.CheckConnection
	}

	return bootstrap.Run(ctx, cfg, bootstrap.Services{
		Flights: flights.NewFlightService(flightRepo, ticketRepo, inventory, flightOpts...),
		Tickets: tickets.NewTicketService(ticketRepo, inventory, ticketOpts...),
		Checks:  checks,
	})
}
