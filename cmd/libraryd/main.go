package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/bookstore/library/internal/config"
	"github.com/bookstore/library/pkg/logger"
	"go.uber.org/zap"
)

// CLI is the libraryd command line.
type CLI struct {
	EnvFile string `help:"Path to a dotenv file loaded before reading the environment" default:".env" type:"path"`

	Serve   ServeCmd   `cmd:"" default:"1" help:"Run the HTTP API and the gRPC health server"`
	Migrate MigrateCmd `cmd:"" help:"Apply database migrations and exit"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("libraryd"),
		kong.Description("Book catalog service."),
		kong.UsageOnError(),
	)

	if err := config.LoadEnvFile(cli.EnvFile); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", cli.EnvFile, err)
		os.Exit(1)
	}
	cfg := config.Load()

	log := logger.NewLogger(cfg.ServiceName, cfg.LogLevel)
	defer log.Sync()

	if err := kctx.Run(cfg, log); err != nil {
		log.Error("Command failed", zap.String("command", kctx.Command()), zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}
