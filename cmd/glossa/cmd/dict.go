package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/glossa/internal/adapters/bbolt"
	"github.com/corey/glossa/internal/app"
	"github.com/corey/glossa/internal/domain/lexicon"
)

var (
	dictExportOut string
	dictJSON      bool
)

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Manage stored dictionaries",
	Long:  "Import, inspect, export and drop the dictionaries kept in .glossa/glossa.db.",
}

var dictImportCmd = &cobra.Command{
	Use:   "import <phrases|words> <file>",
	Short: "Import a JSON dictionary, replacing the stored one",
	Args:  cobra.ExactArgs(2),
	RunE:  runDictImport,
}

var dictStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show stored dictionaries",
	Args:  cobra.NoArgs,
	RunE:  runDictStats,
}

var dictExportCmd = &cobra.Command{
	Use:   "export <phrases|words>",
	Short: "Export a stored dictionary as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runDictExport,
}

var dictDropCmd = &cobra.Command{
	Use:   "drop <phrases|words>",
	Short: "Delete a stored dictionary",
	Args:  cobra.ExactArgs(1),
	RunE:  runDictDrop,
}

func init() {
	dictCmd.AddCommand(dictImportCmd)
	dictCmd.AddCommand(dictStatsCmd)
	dictCmd.AddCommand(dictExportCmd)
	dictCmd.AddCommand(dictDropCmd)

	dictExportCmd.Flags().StringVarP(&dictExportOut, "out", "O", "", "Write to file instead of stdout")
	dictStatsCmd.Flags().BoolVar(&dictJSON, "json", false, "Output as JSON")
}

func parseCategoryArg(s string) (lexicon.Category, error) {
	cat, ok := lexicon.ParseCategory(s)
	if !ok {
		return 0, fmt.Errorf("unknown dictionary %q (want phrases or words)", s)
	}
	return cat, nil
}

// openStore opens the dictionary database, diagnosing lock contention.
func openStore() (*bbolt.Store, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	root := projectRoot()
	store, err := app.OpenStore(app.NewPaths(root), cfg)
	if err != nil {
		if isDBLockError(err) {
			return nil, fmt.Errorf("%w\n%s", err, diagnoseDBLock(root))
		}
		return nil, err
	}
	return store, nil
}

func runDictImport(cmd *cobra.Command, args []string) error {
	cat, err := parseCategoryArg(args[0])
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := app.ImportFile(store, cat, args[1])
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatImport(res))
	return nil
}

func runDictStats(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	cats, err := store.Categories()
	if err != nil {
		return err
	}
	if dictJSON {
		return writeJSON(cmd.OutOrStdout(), cats)
	}
	fmt.Fprint(cmd.OutOrStdout(), formatDictStats(store.Path(), cats))
	return nil
}

func runDictExport(cmd *cobra.Command, args []string) error {
	cat, err := parseCategoryArg(args[0])
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if dictExportOut == "" {
		_, err := app.ExportCategory(store, cat, cmd.OutOrStdout())
		return err
	}

	f, err := os.Create(dictExportOut)
	if err != nil {
		return err
	}
	n, err := app.ExportCategory(store, cat, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "exported %d %s records to %s\n", n, cat, dictExportOut)
	return nil
}

func runDictDrop(cmd *cobra.Command, args []string) error {
	cat, err := parseCategoryArg(args[0])
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DropRecords(cat); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "dropped %s dictionary\n", cat)
	return nil
}
