package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	lookupWords   string
	lookupPhrases string
	lookupJSON    bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <spelling>",
	Short: "Show every sense of a spelling",
	Long:  "Looks a word or phrase up in the loaded dictionaries. Case and spacing are normalized like annotation does.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLookup,
}

func init() {
	f := lookupCmd.Flags()
	f.StringVar(&lookupWords, "words", "", "Word dictionary JSON (overrides config)")
	f.StringVar(&lookupPhrases, "phrases", "", "Phrase dictionary JSON (overrides config)")
	f.BoolVar(&lookupJSON, "json", false, "Output as JSON")
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if lookupWords != "" || lookupPhrases != "" {
		cfg.Dictionary.WordsPath = lookupWords
		cfg.Dictionary.PhrasesPath = lookupPhrases
	}
	cfg.Dictionary.Watch = false

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	query := strings.Join(args, " ")
	groups := a.Engine.Lookup(query)
	if lookupJSON {
		return writeJSON(cmd.OutOrStdout(), groups)
	}
	if len(groups) == 0 {
		return fmt.Errorf("%q not found", query)
	}
	fmt.Fprint(cmd.OutOrStdout(), formatLookup(groups))
	return nil
}
