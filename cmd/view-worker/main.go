// Command view-worker drains the blog view queue into the views collection.
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

	"example.com/gkg/tripexpo/internal/config"
	"example.com/gkg/tripexpo/internal/gateway"
	"example.com/gkg/tripexpo/internal/logger"
	"example.com/gkg/tripexpo/internal/store/mongostore"
	"example.com/gkg/tripexpo/internal/views"
)

var app = &cli.Command{
	Name:  "view-worker",
	Usage: "count blog views pushed to redis by tripexpo",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to the YAML config file",
			Value:   "config.yml",
		},
	},
	Action: run,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("view-worker exited")
	}
}

func run(ctx context.Context, c *cli.Command) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if err := logger.Setup(cfg.Log.Level, cfg.Log.Pretty); err != nil {
		return err
	}
	uri := cfg.RedisURI()
	if uri == "" {
		return fmt.Errorf("redis is not configured")
	}

	s, err := mongostore.Connect(ctx, cfg.MongoURI(), cfg.Mongo.Database)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Close(closeCtx); err != nil {
			log.Error().Err(err).Msg("error occured while closing store")
		}
	}()

	q, err := views.NewRedisQueue(ctx, uri)
	if err != nil {
		return err
	}
	defer q.Close()

	return views.NewWorker(q, gateway.New(s, gateway.Views)).Run(ctx)
}
