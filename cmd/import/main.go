package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/trade-journal/internal/ledger"
	"github.com/rxtech-lab/trade-journal/internal/logger"
	"github.com/rxtech-lab/trade-journal/internal/repository"
	"github.com/rxtech-lab/trade-journal/internal/types"
)

// importAction bulk-imports a CSV file into a user's journal, reporting
// per-row failures at the end.
func importAction(ctx context.Context, cmd *cli.Command) error {
	filePath := cmd.String("file")
	email := cmd.String("user")
	dbPath := cmd.String("db")

	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	store, err := repository.NewDuckDBStore(dbPath, log)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	user, err := store.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to resolve user %s: %w", email, err)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat import file: %w", err)
	}

	bar := progressbar.DefaultBytes(info.Size(), "importing")
	reader := io.TeeReader(file, bar)

	service := ledger.NewService(store, log)

	results, err := service.ImportTrades(ctx, types.Session{UserID: user.ID}, reader)
	if err != nil {
		return err
	}

	imported := 0

	for _, result := range results {
		if result.Success {
			imported++

			continue
		}

		fmt.Fprintf(os.Stderr, "row %d: %s\n", result.Row, result.Error)
	}

	fmt.Printf("imported %d of %d rows\n", imported, len(results))

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "journal-import",
		Usage: "Bulk-import trades from a CSV file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to the CSV file",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "user",
				Aliases:  []string{"u"},
				Usage:    "Email of the journal owner",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the DuckDB database file",
				Value:   "journal.duckdb",
			},
		},
		Action: importAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
