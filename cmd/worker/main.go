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
	"github.com/Domenick1991/airtickets/internal/email"
	"github.com/Domenick1991/airtickets/internal/kafka"
	"github.com/Domenick1991/airtickets/internal/logger"
	"github.com/spf13/pflag"
)

func main() {
	flags := pflag.NewFlagSet("airtickets-worker", pflag.ContinueOnError)
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

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.TicketsTopic)
	defer consumer.Close()

	sender := email.NewSender(logger.Get())

	logger.Get().Info("worker started", "topic", cfg.Kafka.TicketsTopic, "group_id", cfg.Kafka.GroupID)
	if err := consumer.Consume(ctx, kafka.TicketHandler(sender.Send)); err != nil {
		logger.Get().Error("consumer stopped", "error", err)
		return
	}
	logger.Get().Info("worker stopped")
}
