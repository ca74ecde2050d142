package serve

import (
	"fmt"
	"net"
	"strconv"

	"github.com/andrebq/blogbox/auth"
	"github.com/andrebq/blogbox/internal/cmdflags"
	"github.com/andrebq/blogbox/internal/config"
	"github.com/andrebq/blogbox/internal/httpserver"
	"github.com/andrebq/blogbox/internal/logutil"
	"github.com/andrebq/blogbox/internal/router"
	"github.com/andrebq/blogbox/journal"
	"github.com/andrebq/blogbox/uploads"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

type (
	// flagValues holds the flags given explicitly on the command line,
	// nil fields keep the value from the config file
	flagValues struct {
		Bind     *string
		Database *string
		LogLevel *string
		Port     int
	}
)

func Cmd() *cli.Command {
	var configFile string
	defaults := config.Default()
	bind := defaults.Bind
	database := defaults.Database
	logLevel := defaults.LogLevel
	var port int
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the blog API server. ADMIN_USERNAME and JWT_SECRET must be set",
		Flags: []cli.Flag{
			cmdflags.Config(&configFile),
			cmdflags.Bind(&bind),
			cmdflags.Port(&port),
			cmdflags.Database(&database),
			cmdflags.LogLevel(&logLevel),
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			var flags flagValues
			if ctx.IsSet("bind") {
				flags.Bind = &bind
			}
			if ctx.IsSet("database") {
				flags.Database = &database
			}
			if ctx.IsSet("log-level") {
				flags.LogLevel = &logLevel
			}
			flags.Port = port
			cfg, err = mergeFlags(cfg, flags)
			if err != nil {
				return err
			}
			zerolog.SetGlobalLevel(cfg.Level())
			logger := log.Logger.With().Str("service", "blogbox").Logger()
			appCtx := logutil.WithLogger(ctx.Context, logger)

			secrets, err := auth.LoadSecrets(nil)
			if err != nil {
				return err
			}

			store, err := journal.Open(appCtx, cfg.Database)
			if err != nil {
				return err
			}
			defer store.Close()

			disk, err := uploads.NewDisk(cfg.UploadDir)
			if err != nil {
				return err
			}

			svc, err := auth.NewService(secrets.AdminUsername,
				auth.JournalIdentities(store),
				auth.NewHasher(),
				auth.NewTokenCodec([]byte(secrets.SigningKey), auth.SessionTTL))
			if err != nil {
				return err
			}
			handler, err := router.AsHandler(appCtx, router.Deps{
				Auth:    svc,
				Journal: store,
				Uploads: disk,
				Config:  cfg,
			})
			if err != nil {
				return err
			}
			logger.Info().
				Str("database", cfg.Database).
				Str("uploads", disk.Dir()).
				Str("allowedOrigin", cfg.AllowedOrigin).
				Msg("Configuration loaded")
			return httpserver.Serve(appCtx, cfg.Bind, handler)
		},
	}
}

// mergeFlags applies flags on top of cfg. A non zero port replaces the
// port of the bind address and keeps its host.
func mergeFlags(cfg config.Config, flags flagValues) (config.Config, error) {
	if flags.Bind != nil {
		cfg.Bind = *flags.Bind
	}
	if flags.Database != nil {
		cfg.Database = *flags.Database
	}
	if flags.LogLevel != nil {
		cfg.LogLevel = *flags.LogLevel
	}
	if flags.Port != 0 {
		host, _, err := net.SplitHostPort(cfg.Bind)
		if err != nil {
			return config.Config{}, fmt.Errorf("invalid bind address %v, cause %w", cfg.Bind, err)
		}
		cfg.Bind = net.JoinHostPort(host, strconv.Itoa(flags.Port))
	}
	return cfg, cfg.Validate()
}
