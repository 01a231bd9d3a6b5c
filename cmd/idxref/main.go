// idxref — maintainer for the IDX listed-company reference dataset.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sahamkita/idxref/internal/config"
	"github.com/sahamkita/idxref/internal/pipeline"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "idxref",
	Short: "idxref — IDX listed-company reference dataset maintainer",
	Long: `idxref maintains a reference dataset of companies listed on the
Indonesia Stock Exchange: registration profiles, governance rosters,
aggregated shareholder ownership with period-over-period changes, and
delisting history, enriched with headcount and institutional-ownership
data from Yahoo Finance.`,
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
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		return setupLogging(cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(shareholdersCmd)
	rootCmd.AddCommand(retryCmd)
	rootCmd.AddCommand(delistingCmd)
}

// setupLogging configures zerolog: console writer to stderr, optionally
// teed into the configured log file.
func setupLogging(cfg *config.Config) error {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Logging.Level))
	if err != nil {
		return fmt.Errorf("invalid log level %q", cfg.Logging.Level)
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		w = zerolog.MultiLevelWriter(w, f)
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("idxref %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Update Command ---

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Reconcile the symbol roster and update company profiles",
	Long: `Reconcile the stored symbol roster against the exchange, then scrape
and rebuild profiles. By default only newly listed symbols and symbols
whose registered name drifted are rebuilt; --all rebuilds every active
symbol.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		symbols, _ := cmd.Flags().GetStringSlice("symbols")

		p, err := pipeline.New(cfg)
		if err != nil {
			return err
		}
		summary, err := p.Run(cmd.Context(), pipeline.Options{
			AllSymbols: all,
			Targets:    symbols,
		})
		if summary != nil {
			summary.Render(os.Stdout)
		}
		return err
	},
}

func init() {
	updateCmd.Flags().Bool("all", false, "rebuild every active symbol")
	updateCmd.Flags().StringSlice("symbols", nil, "restrict the run to these symbols")
}

// --- Shareholders Command ---

var shareholdersCmd = &cobra.Command{
	Use:   "shareholders",
	Short: "Refresh only the shareholder ownership columns",
	RunE: func(cmd *cobra.Command, args []string) error {
		symbols, _ := cmd.Flags().GetStringSlice("symbols")

		p, err := pipeline.New(cfg)
		if err != nil {
			return err
		}
		summary, err := p.Run(cmd.Context(), pipeline.Options{
			ShareholdersOnly: true,
			Targets:          symbols,
		})
		if summary != nil {
			summary.Render(os.Stdout)
		}
		return err
	},
}

func init() {
	shareholdersCmd.Flags().StringSlice("symbols", nil, "restrict the run to these symbols")
}

// --- Retry Command ---

var retryCmd = &cobra.Command{
	Use:   "retry-failed",
	Short: "Re-drive the symbols recorded in the last failure report",
	RunE: func(cmd *cobra.Command, args []string) error {
		shareholdersOnly, _ := cmd.Flags().GetBool("shareholders")

		p, err := pipeline.New(cfg)
		if err != nil {
			return err
		}
		summary, err := p.RetryFailed(cmd.Context(), shareholdersOnly)
		if summary != nil {
			summary.Render(os.Stdout)
		}
		return err
	},
}

func init() {
	retryCmd.Flags().Bool("shareholders", false, "refresh only ownership columns on retry")
}

// --- Delisting Command ---

var delistingCmd = &cobra.Command{
	Use:   "delisting",
	Short: "Sync delisting dates from the exchange's issued history",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := pipeline.New(cfg)
		if err != nil {
			return err
		}
		marked, err := p.SyncDelisting(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%d delisting dates recorded\n", marked)
		return nil
	},
}
