package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/andrebq/blogbox/cmd/blogbox/admin"
	"github.com/andrebq/blogbox/cmd/blogbox/serve"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "blogbox",
		Usage: "A single author blog backend",
		Commands: []*cli.Command{
			serve.Cmd(),
			admin.Cmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}
}
