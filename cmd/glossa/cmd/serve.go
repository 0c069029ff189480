package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	serveWatch bool
	servePort  int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the annotation HTTP API",
	Long: "Loads dictionaries and serves POST /api/annotate, GET /api/lookup, /api/stats and /api/health.\n" +
		"With --watch, edits to the dictionary files are picked up without a restart.",
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload when dictionary files change (overrides config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (overrides config; 0 = project default)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("watch") {
		cfg.Dictionary.Watch = serveWatch
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if cfg.Dictionary.Watch && !cfg.Dictionary.FromFiles() {
		return fmt.Errorf("--watch needs dictionary files (dictionary.words_path / phrases_path)")
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	if err := a.Start(); err != nil {
		a.Close()
		return err
	}

	st := a.Engine.Snapshot().Stats()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%sglossa serving%s at %s\n", colorBold, colorReset, a.WebServer.URL())
	fmt.Fprintf(out, "  %d phrases, %d words (generation %d)\n", st.Counts.Phrases, st.Counts.Words, st.Generation)
	if a.Watcher != nil {
		fmt.Fprintf(out, "  watching dictionary files\n")
	}

	// Wait for shutdown signal
	<-cmd.Context().Done()

	fmt.Fprintln(out, "\nshutting down...")
	return a.Stop()
}
