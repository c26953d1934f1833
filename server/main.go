package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	currency "go-currency-exchange-mcp"
	"go-currency-exchange-mcp/config"
	"go-currency-exchange-mcp/exchange"
	"go-currency-exchange-mcp/http"
	"go-currency-exchange-mcp/rates"
	"go-currency-exchange-mcp/session"
	"go-currency-exchange-mcp/telemetry"
	"go-currency-exchange-mcp/tools"

	nhttp "net/http"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse config: %v\n", err)
		os.Exit(2)
	}
	logger := cfg.Logger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		level.Error(logger).Log("msg", "exiting", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger log.Logger) error {
	shutdownTracing, err := telemetry.Setup(ctx, tools.ServerName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			level.Warn(logger).Log("msg", "telemetry shutdown", "err", err)
		}
	}()

	table := currency.ReferenceTable()
	if cfg.RatesFile != "" {
		table, err = rates.LoadFile(cfg.RatesFile)
		if err != nil {
			return err
		}
	}

	ratesService := rates.NewService(table)
	ratesService = rates.NewLoggingService(log.With(logger, "component", "rates"), ratesService)

	exchangeService := exchange.NewService(ratesService)
	exchangeService = exchange.NewTracingService(otel.Tracer("go-currency-exchange-mcp/exchange"), exchangeService)
	exchangeService = exchange.NewLoggingService(log.With(logger, "component", "exchange"), exchangeService)

	exchangeTool, err := tools.NewExchange(table, exchangeService, log.With(logger, "component", "tools"))
	if err != nil {
		return err
	}

	sessions := session.NewRegistry(log.With(logger, "component", "sessions"))
	handler := http.NewServer(tools.NewServer(exchangeTool), sessions, log.With(logger, "component", "http"))

	srv := &nhttp.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		level.Info(logger).Log("msg", "Currency Exchange Service running", "addr", cfg.Addr, "base", table.Base(), "currencies", len(table.Codes()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nhttp.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		level.Info(logger).Log("msg", "shutting down", "sessions", sessions.Len())

		// SSE handlers only return once their session is gone
		sessions.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
