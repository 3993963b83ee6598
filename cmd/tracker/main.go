package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/globalassets/tracker-backend/internal/acquisition"
	"github.com/globalassets/tracker-backend/internal/api"
	"github.com/globalassets/tracker-backend/internal/config"
	"github.com/globalassets/tracker-backend/internal/external"
	"github.com/globalassets/tracker-backend/internal/models"
	"github.com/globalassets/tracker-backend/internal/notifications"
	"github.com/globalassets/tracker-backend/internal/repository"
	"github.com/globalassets/tracker-backend/internal/scheduler"
)

const banner = `
╔══════════════════════════════════════╗
║     GlobalAssetTracker Backend       ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	once := flag.Bool("once", false, "run a single acquisition, print the summary tables, and exit")
	startFlag := flag.String("start", "", "acquisition start date (YYYY-MM-DD, default one year ago)")
	endFlag := flag.String("end", "", "acquisition end date (YYYY-MM-DD, default today)")
	baseFlag := flag.String("base", "", "base currency for the run (default from config)")
	flag.Parse()

	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	// Cache
	store := repository.NewStore(cfg.CacheFile)
	if err := store.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "[CACHE] Init failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("[CACHE] SQLite cache ready at %s\n", store.Path())

	// Providers
	timeout := time.Duration(cfg.HTTPTimeoutSeconds) * time.Second
	gecko := external.NewCoinGeckoClient(timeout)
	yahoo := external.NewYahooFXClient(timeout)

	svc := acquisition.NewService(gecko, yahoo, store)
	notify := notifications.NewSender(cfg.WebhookURL, cfg.AppName)

	if *once {
		runOnce(cfg, svc, notify, *startFlag, *endFlag, *baseFlag)
		return
	}

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. API server
	srv := api.NewServer(store, svc, notify, cfg.APIPort, cfg.APIKey, cfg.CORSAllowOrigin)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	// 2. Refresh scheduler
	var refresh *scheduler.RefreshScheduler
	if cfg.RefreshHours > 0 {
		refresh = scheduler.NewRefreshScheduler(svc, scheduler.RefreshConfig{
			Interval:     time.Duration(cfg.RefreshHours) * time.Hour,
			LookbackDays: cfg.RefreshLookbackDays,
			BaseCurrency: cfg.BaseCurrency,
			TopCoins:     cfg.TopCoins,
			OnResult: func(result *models.AcquisitionResult) {
				notify.RunFinished(result, cfg.BaseCurrency)
			},
		})
		refresh.Start()
	} else {
		fmt.Println("[REFRESH] Skipped - REFRESH_HOURS not configured")
	}

	fmt.Println("\nAll services started successfully")

	// Wait for shutdown signal
	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	if refresh != nil {
		refresh.Stop()
	}

	svc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
	fmt.Println("Shutdown complete")
}

// runOnce executes one acquisition in the foreground, echoing the worker's
// progress and log streams, then prints the crypto and fiat summary tables.
func runOnce(cfg *config.Config, svc *acquisition.Service, notify *notifications.Sender, startStr, endStr, base string) {
	end := models.Day(time.Now())
	if endStr != "" {
		d, err := time.ParseInLocation("2006-01-02", endStr, time.UTC)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -end date: %v\n", err)
			os.Exit(1)
		}
		end = d
	}
	start := end.AddDate(-1, 0, 0)
	if startStr != "" {
		d, err := time.ParseInLocation("2006-01-02", startStr, time.UTC)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -start date: %v\n", err)
			os.Exit(1)
		}
		start = d
	}
	if base == "" {
		base = cfg.BaseCurrency
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	worker, err := svc.Start(ctx, acquisition.Params{
		Start:        start,
		End:          end,
		BaseCurrency: base,
		TopCoins:     cfg.TopCoins,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not start run: %v\n", err)
		os.Exit(1)
	}

	// First interrupt stops cooperatively; already-collected entities are
	// still reported.
	go func() {
		<-ctx.Done()
		svc.Stop()
	}()

	progressCh := worker.Progress()
	logsCh := worker.Logs()
	for {
		select {
		case p, ok := <-progressCh:
			if !ok {
				progressCh = nil
				continue
			}
			fmt.Printf("[PROGRESS] %d/%d\n", p.Current, p.Total)
		case line, ok := <-logsCh:
			if !ok {
				logsCh = nil
				continue
			}
			fmt.Printf("[RUN] %s\n", line)
		case outcome := <-worker.Outcome():
			if outcome.Err != nil {
				notify.RunFailed(outcome.Err)
				fmt.Fprintf(os.Stderr, "Error fetching data: %v\n", outcome.Err)
				os.Exit(1)
			}
			notify.RunFinished(outcome.Result, base)
			printResult(outcome.Result, base)
			return
		}
	}
}

func printResult(result *models.AcquisitionResult, base string) {
	fmt.Printf("\nCryptocurrencies (Top %d)\n", len(result.Cryptos))
	fmt.Println("--------------------------------------------------")
	for _, c := range result.Cryptos {
		fmt.Printf("  %-24s %s\n", c.Name, formatAvg(c.Average, base, 4))
	}

	fmt.Printf("\nFiat Currencies (%d)\n", len(result.Fiats))
	fmt.Println("--------------------------------------------------")
	for _, f := range result.Fiats {
		fmt.Printf("  %-24s %s\n", fmt.Sprintf("%s (%s)", f.Name, f.ID), formatAvg(f.Average, "", 6))
	}
	fmt.Println()
}

func formatAvg(avg *float64, base string, decimals int) string {
	if avg == nil {
		return "N/A"
	}
	s := fmt.Sprintf("%.*f", decimals, *avg)
	if base != "" {
		return s + " " + base
	}
	return s
}
