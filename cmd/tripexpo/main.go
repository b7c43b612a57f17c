// Command tripexpo serves the Trip Expo REST API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"example.com/gkg/tripexpo/internal/api"
	"example.com/gkg/tripexpo/internal/config"
	"example.com/gkg/tripexpo/internal/logger"
	"example.com/gkg/tripexpo/internal/store"
	"example.com/gkg/tripexpo/internal/store/memstore"
	"example.com/gkg/tripexpo/internal/store/mongostore"
	"example.com/gkg/tripexpo/internal/views"
)

var app = &cli.Command{
	Name:  "tripexpo",
	Usage: "REST API for the Trip Expo travel blog",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to the YAML config file",
			Value:   "config.yml",
		},
		&cli.StringFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "listen port, overrides config and PORT",
		},
		&cli.StringFlag{
			Name:  "store",
			Usage: "store backend ('mongo' or 'memory')",
			Value: "mongo",
		},
	},
	Action: serve,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("tripexpo exited")
	}
}

func serve(ctx context.Context, c *cli.Command) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if port := c.String("port"); port != "" {
		cfg.Server.Port = port
	}
	if err := logger.Setup(cfg.Log.Level, cfg.Log.Pretty); err != nil {
		return err
	}
	api.SetGinMode(cfg.Log.Level)
	if cfg.Payment.Secret == "" {
		log.Warn().Msg("PAYMENT_SECRET not set")
	}

	s, err := openStore(ctx, c.String("store"), cfg)
	if err != nil {
		return err
	}
	defer closeStore(s)

	q := openQueue(ctx, cfg)
	defer q.Close()

	srv := api.NewServer(s, q, api.Options{
		Port:        cfg.Server.Port,
		CORSOrigins: cfg.Server.CORSOrigins,
	})
	return srv.Run(ctx)
}

func openStore(ctx context.Context, kind string, cfg *config.Config) (store.Store, error) {
	switch kind {
	case "mongo":
		return mongostore.Connect(ctx, cfg.MongoURI(), cfg.Mongo.Database)
	case "memory":
		log.Warn().Msg("using in-memory store, data is lost on exit")
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unknown store %q", kind)
	}
}

func closeStore(s store.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Close(ctx); err != nil {
		log.Error().Err(err).Msg("error occured while closing store")
	}
}

// openQueue falls back to a no-op queue when Redis is not configured or
// unreachable: view counting is best effort.
func openQueue(ctx context.Context, cfg *config.Config) views.Queue {
	uri := cfg.RedisURI()
	if uri == "" {
		log.Info().Msg("redis not configured, view counting disabled")
		return views.NopQueue{}
	}
	q, err := views.NewRedisQueue(ctx, uri)
	if err != nil {
		log.Error().Err(err).Msg("error occured while connecting to redis, view counting disabled")
		return views.NopQueue{}
	}
	return q
}
