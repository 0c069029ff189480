package cmd

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/corey/glossa/internal/app"
	"github.com/corey/glossa/internal/config"
)

var configEnv bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows project root, resolved paths, dictionary source and server status.",
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configEnv, "env", false, "List the supported GLOSSA_* environment variables")
}

func runConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if configEnv {
		desc, err := config.Description()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, desc)
		return nil
	}

	root := projectRoot()
	paths := app.NewPaths(root)
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	dbPath := cfg.Dictionary.DBPath
	if dbPath == "" {
		dbPath = paths.DB
	}
	source := fmt.Sprintf("store (%s)", dbPath)
	if cfg.Dictionary.FromFiles() {
		source = fmt.Sprintf("files (phrases=%s words=%s)", orNone(cfg.Dictionary.PhrasesPath), orNone(cfg.Dictionary.WordsPath))
	}

	fmt.Fprintf(out, "%sglossa config%s\n", colorBold, colorReset)
	fmt.Fprintf(out, "  Root:        %s\n", root)
	fmt.Fprintf(out, "  Config:      %s\n", paths.Config)
	fmt.Fprintf(out, "  Dictionary:  %s\n", source)
	fmt.Fprintf(out, "  Markers:     class %s-*, nested=%t, sanitize=%t\n", cfg.Annotate.ClassPrefix, cfg.Annotate.NestedSenses, cfg.Annotate.Sanitize)
	fmt.Fprintf(out, "  Max input:   %d bytes\n", cfg.Annotate.MaxInputBytes)
	fmt.Fprintf(out, "  Server:      %s\n", serverStatus(paths))
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// serverStatus reads the port file and pings /api/health.
func serverStatus(paths *app.Paths) string {
	portData, err := os.ReadFile(paths.PortFile)
	if err != nil {
		return fmt.Sprintf("%s✗ not running%s", colorYellow, colorReset)
	}
	url := fmt.Sprintf("http://localhost:%s", strings.TrimSpace(string(portData)))
	client := http.Client{Timeout: time.Second}
	resp, err := client.Get(url + "/api/health")
	if err != nil {
		return fmt.Sprintf("%s✗ stale port file%s (%s)", colorYellow, colorReset, paths.PortFile)
	}
	resp.Body.Close()
	return fmt.Sprintf("%s✓ running%s at %s", colorGreen, colorReset, url)
}
