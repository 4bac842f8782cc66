package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/trade-journal/internal/auth"
	"github.com/rxtech-lab/trade-journal/internal/config"
	"github.com/rxtech-lab/trade-journal/internal/ledger"
	"github.com/rxtech-lab/trade-journal/internal/logger"
	"github.com/rxtech-lab/trade-journal/internal/quote"
	"github.com/rxtech-lab/trade-journal/internal/repository"
	"github.com/rxtech-lab/trade-journal/internal/server"
	"github.com/rxtech-lab/trade-journal/pkg/utils"
)

const shutdownTimeout = 10 * time.Second

// serveAction wires the repository, auth, ledger and HTTP server together
// and blocks until interrupted.
func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	if addr := cmd.String("addr"); addr != "" {
		cfg.Addr = addr
	}

	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	store, err := repository.NewDuckDBStore(cfg.DatabasePath, log)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	var quotes quote.Provider
	if cfg.Quote.Provider != "" {
		quotes, err = quote.NewProvider(quote.ProviderType(cfg.Quote.Provider), cfg.Quote.APIKey, cfg.Quote.APISecret)
		if err != nil {
			return err
		}
	}

	ledgerService := ledger.NewService(store, log)
	authService := auth.NewService(store, log, []byte(cfg.JWTSecret), time.Duration(cfg.TokenTTL))

	srv := server.New(ledgerService, authService, quotes, log)
	if err := srv.Start(cfg.Addr); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// schemaAction prints the JSON schema of the configuration file.
func schemaAction(ctx context.Context, cmd *cli.Command) error {
	schema, err := utils.GetSchemaFromConfig(config.Config{})
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "journal-server",
		Usage: "Run the trade journal HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "Listen address, overrides the config file",
			},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the configuration file",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
