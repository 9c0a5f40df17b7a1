package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/jdeps/internal/config"
	"github.com/baaaaaaaka/jdeps/internal/ids"
	"github.com/baaaaaaaka/jdeps/internal/logging"
	"github.com/baaaaaaaka/jdeps/internal/lookup"
	"github.com/baaaaaaaka/jdeps/internal/search"
)

var runSession = search.Run

func runSearch(cmd *cobra.Command) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	logger, closeLog := openLogger(cmd, settings.LogFile)
	defer func() { _ = closeLog() }()

	client, err := lookup.New(settings.Lookup)
	if err != nil {
		return err
	}

	selection, err := runSession(cmd.Context(), search.Options{
		Lookup:   client.Lookup,
		Debounce: settings.Debounce,
		Logger:   logger,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		logger.Error("session failed", "err", err)
		return err
	}
	if selection != nil {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), selection.Format(settings.Format))
	}
	return nil
}

func loadSettings() (config.Settings, error) {
	store, err := config.NewStore("")
	if err != nil {
		return config.Settings{}, err
	}
	cfg, err := store.LoadOrCreate()
	if err != nil {
		return config.Settings{}, err
	}
	return cfg.Resolve(os.Getenv)
}

// openLogger falls back to discarding records when the log file cannot be
// opened; logging must not keep the search from starting.
func openLogger(cmd *cobra.Command, path string) (*slog.Logger, func() error) {
	logger, closeLog, err := logging.Open(path, slog.LevelInfo)
	if err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; logging disabled\n", err)
		return logging.Discard(), func() error { return nil }
	}
	return logger.With("session", ids.Session()), closeLog
}
