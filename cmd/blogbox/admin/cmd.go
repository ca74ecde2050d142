package admin

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andrebq/blogbox/auth"
	"github.com/andrebq/blogbox/internal/cmdflags"
	"github.com/andrebq/blogbox/internal/config"
	"github.com/andrebq/blogbox/internal/validate"
	"github.com/andrebq/blogbox/journal"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

var (
	errMissingPassword = errors.New("missing password from stdin")
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Manage the author account",
		Subcommands: []*cli.Command{
			registerCmd(),
		},
	}
}

func registerCmd() *cli.Command {
	database := config.Default().Database
	var username string
	var email string
	return &cli.Command{
		Name:  "register",
		Usage: "Register the author account (password is read from stdin). ADMIN_USERNAME and JWT_SECRET must be set",
		Flags: []cli.Flag{
			cmdflags.Database(&database),
			&cli.StringFlag{
				Name:        "username",
				Aliases:     []string{"u", "user"},
				Usage:       "Name of the user to register, must match ADMIN_USERNAME",
				Destination: &username,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "email",
				Usage:       "Email used to login",
				Destination: &email,
				Required:    true,
			},
		},
		Action: func(ctx *cli.Context) error {
			password, err := readPassword(os.Stdin)
			if err != nil {
				return err
			}
			defer password.Zero()

			secrets, err := auth.LoadSecrets(nil)
			if err != nil {
				return err
			}
			store, err := journal.Open(ctx.Context, database)
			if err != nil {
				return err
			}
			defer store.Close()

			svc, err := auth.NewService(secrets.AdminUsername,
				auth.JournalIdentities(store),
				auth.NewHasher(),
				auth.NewTokenCodec([]byte(secrets.SigningKey), auth.SessionTTL))
			if err != nil {
				return err
			}
			id, err := registerAuthor(ctx.Context, svc, username, email, password)
			if err != nil {
				return err
			}
			log.Info().Str("user.id", id.ID).Str("user.email", id.Email).Msg("User registered")
			return nil
		},
	}
}

// readPassword returns the first line of r as is, only the line
// terminator is removed
func readPassword(r io.Reader) (auth.PlainText, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if sc.Err() != nil {
			return nil, sc.Err()
		}
		return nil, errMissingPassword
	}
	line := strings.TrimSuffix(sc.Text(), "\r")
	if len(line) == 0 {
		return nil, errMissingPassword
	}
	return auth.PlainText(line), nil
}

// registerAuthor applies the same checks as the HTTP registration: the
// admin username policy first, then the shape of each field.
func registerAuthor(ctx context.Context, svc *auth.Service, username, email string, password auth.PlainText) (auth.Identity, error) {
	if !svc.CanRegister(username) {
		return auth.Identity{}, fmt.Errorf("username must match %v, cause %w", auth.AdminUsernameEnvVar, auth.ErrForbidden)
	}
	if errs := validate.Registration(username, email, string(password)); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Msg)
		}
		return auth.Identity{}, fmt.Errorf("invalid registration: %v", strings.Join(msgs, "; "))
	}
	return svc.Register(ctx, auth.Registration{
		Username: username,
		Email:    email,
		Password: password,
	})
}
