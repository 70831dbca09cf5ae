package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "geoctl",
		Short: "resolve Thai flood-victim addresses to coordinates",
		Long: `
geoctl runs the relief geocoder's address fallback chain from the command
line. "rewrite" shows the query each strategy would send without contacting
the provider; "resolve" runs the chain against Nominatim.
`,
		Version:      Version,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log each strategy attempt to stderr")

	logger := func(cmd *cobra.Command) *slog.Logger {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	}

	root.AddCommand(newRewriteCmd(), newResolveCmd(logger))
	return root
}

func writeLine(w io.Writer, s string) {
	_, _ = io.WriteString(w, s+"\n")
}
