package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/cashclose/internal/report"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	fs := ff.NewFlagSet("cashclose-export")
	var (
		storeKind   = fs.StringLong("store", report.StoreBolt, "Report store: 'bolt' or 'postgres'")
		dbPath      = fs.StringLong("db", "cashclose.db", "BoltDB file path")
		databaseURL = fs.StringLong("database-url", "", "Postgres connection string (store=postgres)")
		format      = fs.StringLong("format", "csv", "Export format: 'csv' or 'xlsx'")
		out         = fs.StringLong("out", "", "Output file (defaults to stdout)")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("CASHCLOSE"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(context.Background(), report.StoreConfig{
		Kind:        *storeKind,
		BoltPath:    *dbPath,
		DatabaseURL: *databaseURL,
	}, *format, *out); err != nil {
		slog.Error("Export failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg report.StoreConfig, format, out string) error {
	write := report.WriteCSV
	switch format {
	case "csv":
	case "xlsx":
		write = report.WriteXLSX
		if out == "" {
			return errors.New("xlsx export needs --out")
		}
	default:
		return fmt.Errorf("unknown format %q (valid: csv, xlsx)", format)
	}

	db, err := report.OpenDB(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	reports, err := db.ListReports(ctx)
	if err != nil {
		return fmt.Errorf("listing reports: %w", err)
	}

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := write(w, reports); err != nil {
		return err
	}
	slog.Info("Exported reports", "count", len(reports), "format", format, "out", out)
	return nil
}
