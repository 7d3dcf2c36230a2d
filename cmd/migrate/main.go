// Command migrate applies or rolls back the embedded database migrations.
//
//	migrate up
//	migrate down [steps]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/Dosada05/vr-score-keeper/db"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s up | down [steps]\n", os.Args[0])
		flag.PrintDefaults()
	}
	dsnFlag := flag.String("database-url", "", "Postgres DSN (defaults to $DATABASE_URL)")
	flag.Parse()

	_ = godotenv.Load()
	dsn := *dsnFlag
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		logger.Error("DATABASE_URL is not set")
		os.Exit(2)
	}

	if err := run(dsn, flag.Args(), logger); err != nil {
		logger.Error("migration failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(dsn string, args []string, logger *slog.Logger) error {
	if len(args) == 0 {
		flag.Usage()
		return fmt.Errorf("missing command")
	}

	switch args[0] {
	case "up":
		version, err := db.MigrateUp(dsn)
		if err != nil {
			return err
		}
		logger.Info("migrations applied", slog.Uint64("version", uint64(version)))
		return nil
	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid steps %q: %w", args[1], err)
			}
			steps = n
		}
		if err := db.MigrateDown(dsn, steps); err != nil {
			return err
		}
		logger.Info("migrations rolled back", slog.Int("steps", steps))
		return nil
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}
