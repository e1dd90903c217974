package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-grocery-store/internal/config"
	kafkax "github.com/ariefcatur/go-grocery-store/internal/kafka"
	"github.com/ariefcatur/go-grocery-store/internal/orders"
	"github.com/ariefcatur/go-grocery-store/internal/redisx"
	"github.com/ariefcatur/go-grocery-store/internal/sales"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("sales consumer exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := cfg.NewLogger()

	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &sales.Service{Redis: rdb, Log: log.WithField("component", "sales")}

	// Consumer
	cons := kafkax.NewConsumer(brokers, cfg.SalesGroup, orders.TopicOrderCreated, cfg.SalesWorkers, log)
	log.WithFields(logrus.Fields{
		"group":   cfg.SalesGroup,
		"topic":   orders.TopicOrderCreated,
		"workers": cfg.SalesWorkers,
	}).Info("sales consumer started")

	if err := cons.Start(ctx, svc.HandleOrderCreated); err != nil {
		return errors.Wrap(err, "consume")
	}
	log.Info("sales consumer stopped")
	return nil
}
