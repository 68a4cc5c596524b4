// WealthVista: Indian market data refresher and API
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/seenimoa/wealthvista/api"
	"github.com/seenimoa/wealthvista/internal/config"
	"github.com/seenimoa/wealthvista/internal/datasource"
	"github.com/seenimoa/wealthvista/internal/infra"
	"github.com/seenimoa/wealthvista/internal/market"
	"github.com/seenimoa/wealthvista/internal/refresh"
	"github.com/seenimoa/wealthvista/pkg/models"
	"github.com/seenimoa/wealthvista/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger
var (
	cfg    *config.Config
	logger *slog.Logger
)

var (
	okColor   = color.New(color.FgGreen).SprintFunc()
	failColor = color.New(color.FgRed).SprintFunc()
	dimColor  = color.New(color.Faint).SprintFunc()
	bold      = color.New(color.Bold).SprintFunc()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wealthvista",
	Short: "WealthVista: Indian market data refresher and API",
	Long: `WealthVista keeps a 15-minute cache of currency rates, stock indices,
commodity prices, crypto prices, financial news, and NSE top movers,
and serves them over a read-only HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		logger = infra.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("WealthVista %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command (refresher + API server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the refresh loop and the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cache := infra.NewCache(cfg.Refresh.CacheTTL)
		sources := datasource.NewSources(cfg.Sources, logger)
		query := market.NewQuery(cache, cfg.Refresh.Interval)

		var srv *api.Server
		refresher := refresh.New(cache, sources.All(), refresh.Options{
			Interval:   cfg.Refresh.Interval,
			RunOnStart: cfg.Refresh.RunOnStart,
			OnCycle: func(report refresh.CycleReport) {
				srv.NotifyCycle(report)
			},
		}, logger.With("component", "refresh"))
		srv = api.NewServer(cfg, query, refresher, logger.With("component", "api"))

		if err := refresher.Start(ctx); err != nil {
			return err
		}
		defer refresher.Stop()

		return srv.ListenAndServe(ctx, cfg.API.Addr())
	},
}

// --- Fetch Command (one cycle, no server) ---

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one fetch cycle and print a summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cache := infra.NewCache(cfg.Refresh.CacheTTL)
		sources := datasource.NewSources(cfg.Sources, logger)
		refresher := refresh.New(cache, sources.All(), refresh.Options{Interval: cfg.Refresh.Interval}, logger)

		report, err := refresher.RunCycle(ctx)
		if err != nil {
			return err
		}

		fmt.Println(bold("Fetch cycle " + report.ID))
		for _, res := range report.Results {
			status := okColor("ok")
			detail := fmt.Sprintf("%d items", res.Count)
			if !res.OK() {
				status = failColor("failed")
				detail = res.Error
			}
			fmt.Printf("  %-14s %-18s %-8s %s %s\n",
				res.Source, res.Category, status, detail, dimColor(res.Duration.Round(time.Millisecond)))
		}
		fmt.Printf("  %d of %d sources failed\n", report.Failed(), len(report.Results))

		printRates(market.NewQuery(cache, cfg.Refresh.Interval))
		return nil
	},
}

func printRates(q *market.Query) {
	rates, ok := q.CurrencyRates()
	if !ok {
		return
	}
	keys := make([]string, 0, len(rates))
	for k := range rates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println()
	fmt.Println(bold("Currency rates"))
	for _, k := range keys {
		fmt.Printf("  %-8s %s\n", k, utils.FormatINR(rates[k].Rate))
	}
}

// --- Convert Command ---

var convertCmd = &cobra.Command{
	Use:   "convert FROM TO AMOUNT",
	Short: "Convert an amount using live currency rates",
	Example: `  wealthvista convert USD INR 100
  wealthvista convert inr eur 5000`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[2], err)
		}

		client := datasource.NewClient(cfg.Sources.HTTPTimeout, cfg.Sources.UserAgent, logger)
		src := datasource.NewCurrency(client, cfg.Sources.Currency.URL, logger)
		snap, err := src.Fetch(cmd.Context(), utils.NowIST())
		if err != nil {
			return fmt.Errorf("fetch currency rates: %w", err)
		}
		rates, _ := snap.(models.CurrencyRates)

		conv, err := market.Convert(rates, args[0], args[1], amount)
		if err != nil {
			return err
		}
		fmt.Printf("%s = %s  %s\n",
			utils.FormatAmount(conv.Amount, conv.From),
			bold(utils.FormatAmount(conv.ConvertedAmount, conv.To)),
			dimColor(fmt.Sprintf("(rate %.6g)", conv.Rate)))
		return nil
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  WealthVista: System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Market Status: %s\n", utils.MarketStatus())
		fmt.Printf("  Time (IST):    %s\n", utils.FormatDateTimeIST(utils.NowIST()))
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    Refresh:       every %s (cache TTL %s)\n", cfg.Refresh.Interval, cfg.Refresh.CacheTTL)
		fmt.Printf("    HTTP Timeout:  %s (movers %s)\n", cfg.Sources.HTTPTimeout, cfg.Sources.MoversTimeout)
		fmt.Printf("    RSS Fallback:  %t (%d feeds)\n", cfg.Sources.News.RSSFallback, len(cfg.Sources.News.RSSFeeds))
		fmt.Printf("    API Server:    %s\n", cfg.API.Addr())
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := failColor("not set")
			if k.IsSet {
				status = okColor(fmt.Sprintf("set (%s: %s)", k.Source, k.Masked))
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
