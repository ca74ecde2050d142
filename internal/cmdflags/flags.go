package cmdflags

import (
	"github.com/urfave/cli/v2"
)

func Config(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to a TOML file with server settings. Secrets are never read from this file",
		EnvVars:     []string{"BLOGBOX_CONFIG"},
		Destination: out,
		Value:       *out,
	}
}

func Database(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "database",
		Aliases:     []string{"db"},
		Usage:       "Path to the sqlite database that holds users and posts",
		EnvVars:     []string{"BLOGBOX_DATABASE"},
		Destination: out,
		Value:       *out,
	}
}

func LogLevel(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "log-level",
		Usage:       "Minimum level of log messages (debug, info, warn, error)",
		EnvVars:     []string{"BLOGBOX_LOG_LEVEL"},
		Destination: out,
		Value:       *out,
	}
}

func Bind(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "bind",
		Usage:       "Address to bind for incoming requests",
		EnvVars:     []string{"BLOGBOX_BIND"},
		Destination: out,
		Value:       *out,
	}
}

// Port replaces the port of the bind address, hosting platforms usually
// provide it through PORT
func Port(out *int) cli.Flag {
	return &cli.IntFlag{
		Name:        "port",
		Usage:       "Port to listen on, overrides the port from --bind",
		EnvVars:     []string{"PORT"},
		Destination: out,
		Value:       *out,
	}
}
