package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cv-parser/internal/common"
	"github.com/joseph-ayodele/cv-parser/internal/repository"
)

const app = "cv-parser"

var rootCmd = &cobra.Command{
	Use:           app,
	Short:         "cv-parser turns resume PDFs into structured candidate records",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging (overrides LOG_FORMAT)")
}

// setup loads configuration and builds the process logger.
func setup(cmd *cobra.Command) (*common.Config, *slog.Logger) {
	cfg := common.LoadConfig()
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Log.Level = "debug"
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		cfg.Log.Format = "json"
	}
	logger := newLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger
}

func newLogger(cfg common.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove time attribute, keep message, level and other variables
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// openDB connects to the database alone, for the maintenance commands.
func openDB(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*repository.DB, error) {
	if cfg.Database.DSN == "" {
		return nil, common.NewAppError(common.CodeConfig, "DB_URL is required", common.ErrInvalidInput)
	}
	db, err := repository.Open(ctx, repository.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := db.HealthCheck(ctx, 5*time.Second); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
