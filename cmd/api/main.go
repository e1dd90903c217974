package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-grocery-store/internal/catalog"
	"github.com/ariefcatur/go-grocery-store/internal/config"
	"github.com/ariefcatur/go-grocery-store/internal/httpx"
	kafkax "github.com/ariefcatur/go-grocery-store/internal/kafka"
	"github.com/ariefcatur/go-grocery-store/internal/orders"
	"github.com/ariefcatur/go-grocery-store/internal/postgres"
	"github.com/ariefcatur/go-grocery-store/internal/redisx"
	"github.com/ariefcatur/go-grocery-store/internal/sales"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "grocery-api",
		Usage: "grocery store backend",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "migrate", Usage: "apply migrations before serving; fails if the database is unreachable"}},
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations and exit",
				Action: migrate,
			},
		},
		DefaultCommand: "serve",
	}
	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("grocery-api exited")
	}
}

func migrate(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := cfg.NewLogger()

	db, err := postgres.Open(c.Context, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Check(c.Context); err != nil {
		return err
	}
	if err := db.Migrate(); err != nil {
		return err
	}
	log.Info("migrations applied")
	return nil
}

func serve(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := cfg.NewLogger()

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	// DB; the server starts even when it is down and answers 503 until it
	// comes back.
	db, err := postgres.Open(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Check(ctx); err != nil {
		if c.Bool("migrate") {
			return errors.Wrap(err, "migrate")
		}
		log.WithError(err).Warn("database not reachable at startup")
	} else if c.Bool("migrate") {
		if err := db.Migrate(); err != nil {
			return err
		}
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	var (
		publisher kafkax.Publisher = kafkax.Discard{}
		prod      *kafkax.Producer
	)
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		prod = kafkax.NewProducer(brokers, orders.TopicOrderCreated, 1024, log)
		prod.Start()
		publisher = prod
	} else {
		log.Info("no kafka brokers configured, order events are discarded")
	}

	// Repos & handler
	router := httpx.NewRouter(log, cfg.HTTPTimeout)
	h := &httpx.Handler{
		Products: &catalog.Repo{DB: db.SQLX()},
		Orders:   &orders.Repo{DB: db.Pool()},
		Sales:    &sales.Service{Redis: rdb, Log: log},
		DB:       db,
		Producer: publisher,
		Service:  cfg.ServiceName,
		Log:      log,
		Timeout:  cfg.RequestTimeout,
	}
	h.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case err := <-errc:
		return errors.Wrap(err, "listen")
	}
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if prod != nil {
		prod.Close()
		prod.WaitClosed()
	}
	return nil
}
