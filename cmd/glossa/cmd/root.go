package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corey/glossa/internal/app"
	"github.com/corey/glossa/internal/config"
)

var (
	configPath string
	rootDir    string
)

var rootCmd = &cobra.Command{
	Use:           "glossa",
	Short:         "glossa: dictionary annotation engine",
	Long:          "Finds dictionary phrases and words in text and wraps them in annotation markup.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// projectRoot returns the project root (--root, else cwd).
func projectRoot() string {
	if rootDir != "" {
		return rootDir
	}
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return dir
}

// loadConfig resolves the config (--config, $GLOSSA_CONFIG, .glossa/config.yaml)
// and installs the logger it describes.
func loadConfig() (*config.Config, *slog.Logger, error) {
	paths := app.NewPaths(projectRoot())
	cfg, err := config.Load(configPath, paths.Config)
	if err != nil {
		return nil, nil, err
	}
	return cfg, app.NewLogger(cfg.Log), nil
}

// newApp loads config and wires the app, turning a bbolt lock timeout into
// actionable guidance.
func newApp(cfg *config.Config, logger *slog.Logger) (*app.App, error) {
	root := projectRoot()
	a, err := app.New(app.Options{ProjectRoot: root, Config: cfg, Logger: logger})
	if err != nil {
		if isDBLockError(err) {
			return nil, fmt.Errorf("%w\n%s", err, diagnoseDBLock(root))
		}
		return nil, err
	}
	return a, nil
}

// Execute runs the root command. SIGINT/SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%serror:%s %v\n", colorRed, colorReset, err)
	}
	return err
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default $GLOSSA_CONFIG or .glossa/config.yaml)")
	pf.StringVar(&rootDir, "root", "", "Project root (default: current directory)")

	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dictCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(configCmd)
}
