// Command report runs one EONET extract-transform-report cycle: it loads
// the latest feed snapshot into the local store, derives the rolling-month
// report for the tracked hazard categories, and emails the spreadsheet and
// chart to the given address.
//
// Usage:
//
//	report ops@example.com
//
// A missing or invalid address falls back to an interactive prompt with a
// bounded number of attempts.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/eonet-report-etl/internal/adapter/chart"
	"github.com/couchcryptid/eonet-report-etl/internal/adapter/eonet"
	httpadapter "github.com/couchcryptid/eonet-report-etl/internal/adapter/http"
	"github.com/couchcryptid/eonet-report-etl/internal/adapter/mail"
	"github.com/couchcryptid/eonet-report-etl/internal/adapter/workbook"
	"github.com/couchcryptid/eonet-report-etl/internal/config"
	"github.com/couchcryptid/eonet-report-etl/internal/domain"
	"github.com/couchcryptid/eonet-report-etl/internal/observability"
	"github.com/couchcryptid/eonet-report-etl/internal/pipeline"
	"github.com/couchcryptid/eonet-report-etl/internal/store"
)

// maxAddressAttempts bounds the interactive correction loop.
const maxAddressAttempts = 3

func main() {
	if err := run(); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load() // optional .env for local runs

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	address, err := resolveAddress(os.Stdin, os.Stderr, flag.Arg(0))
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DBPath, logger, metrics)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error("store close error", "error", cerr)
		}
	}()

	fetcher := eonet.NewClient(cfg.EONETURL, cfg.FetchTimeout, logger)
	writer := workbook.NewWriter()
	renderer := chart.NewRenderer(cfg.BasemapPath)
	mailer := mail.NewMailer(cfg, logger)

	p := pipeline.New(fetcher, st, writer, renderer, mailer, logger, metrics, cfg.Categories, cfg.MailSubject)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Metrics endpoint for the duration of the run; set HTTP_ADDR="" to
	// disable.
	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, p, logger)
		go func() {
			if serr := srv.Start(); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
				logger.Error("http server error", "error", serr)
			}
		}()
		defer func() {
			if serr := srv.Shutdown(context.Background()); serr != nil {
				logger.Error("http server shutdown error", "error", serr)
			}
		}()
	}

	return p.Run(ctx, address)
}

// resolveAddress validates the supplied address and, when it fails, prompts
// interactively for a corrected one. The loop is explicit and bounded: after
// maxAddressAttempts failures it gives up with the validation error.
func resolveAddress(in io.Reader, out io.Writer, initial string) (string, error) {
	scanner := bufio.NewScanner(in)
	candidate := initial

	for attempt := 0; attempt < maxAddressAttempts; attempt++ {
		if candidate != "" {
			address, err := domain.NormalizeAddress(candidate)
			if err == nil {
				return address, nil
			}
			fmt.Fprintf(out, "invalid address %q\n", candidate)
		}

		fmt.Fprint(out, "Enter the destination e-mail address: ")
		if !scanner.Scan() {
			break
		}
		candidate = strings.TrimSpace(scanner.Text())
	}

	if candidate != "" {
		if address, err := domain.NormalizeAddress(candidate); err == nil {
			return address, nil
		}
	}
	return "", fmt.Errorf("%w: no valid address after %d attempts", domain.ErrInvalidAddress, maxAddressAttempts)
}
