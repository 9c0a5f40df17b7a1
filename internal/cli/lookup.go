package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/jdeps/internal/lookup"
)

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <query>",
		Short: "Print the artifacts matching a query and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return errors.New("empty query")
			}
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
			found, err := client.Lookup(cmd.Context(), query)
			if err != nil {
				logger.Warn("lookup failed", "query", query, "err", err)
				return err
			}
			logger.Info("lookup finished", "query", query, "results", len(found))
			out := cmd.OutOrStdout()
			for _, d := range found {
				_, _ = fmt.Fprintln(out, d.Format(settings.Format))
			}
			return nil
		},
	}
}
