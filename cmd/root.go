package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/jsontable/internal/config"
	"github.com/oakwood-commons/jsontable/pkg/logger"
	"github.com/oakwood-commons/jsontable/pkg/settings"
)

// errShowHelp is returned by readInput when there is nothing to show.
var errShowHelp = errors.New("no input provided")

var (
	interactive   bool
	output        string
	expression    string
	searchTerm    string
	focusPath     string
	delimiter     string
	expandAll     bool
	autoExpand    bool
	extractArray  bool
	inputFormat   string
	limitRecords  int
	offsetRecords int
	tailRecords   int
	width         int
	height        int
	themeName     string
	noColor       bool
	configFile    string
	debug         bool
	logLevel      string
	logFile       string
	exportDir     string
	arrayStyle    string
	treeDepth     int
)

// runConfig is the merged configuration of the current invocation, loaded in
// PersistentPreRunE.
var runConfig config.Config

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName + " [file|-]",
	Short: "Render JSON as an interactive table",
	Long: `jsontable turns a JSON (or NDJSON, YAML, TOML, JWT) document into a table.
Arrays of objects become rows with one column per property; nested arrays
and objects can be expanded in place or focused as tables of their own.

Without -i the table is printed once; -o selects csv, json, html, tree or
yaml instead.`,
	Example: "\n  jsontable users.json\n  curl -s https://api.example.com/items | jsontable -i\n" +
		"  jsontable data.json -e 'items.filter(x, x.active)' -o csv\n  jsontable data.json --focus items[0].tags\n",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setup(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		err := runRoot(cmd, args)
		if errors.Is(err, errShowHelp) {
			return cmd.Help()
		}
		return err
	},
}

func init() { //nolint:gochecknoinits
	f := rootCmd.Flags()
	f.BoolVarP(&interactive, "interactive", "i", false, "start the interactive table")
	f.StringVarP(&output, "output", "o", "table", "output format: table|csv|json|html|tree|yaml")
	f.StringVarP(&expression, "expression", "e", "", "CEL expression applied before tabulating, with '_' as the root; bare paths like 'items' mean '_.items'")
	f.StringVarP(&searchTerm, "search", "s", "", "only show rows containing this text (case-insensitive)")
	f.StringVar(&focusPath, "focus", "", "focus a nested value first, e.g. items[0].tags")
	f.StringVar(&delimiter, "delimiter", "", "CSV delimiter (default from preferences or locale)")
	f.BoolVar(&expandAll, "expand-all", false, "expand every nested value before printing")
	f.BoolVar(&autoExpand, "auto-expand", false, "expand everything after each focus change (default from preferences)")
	f.BoolVar(&extractArray, "extract-array", false, "tabulate the largest array of objects inside a root object")
	f.StringVar(&inputFormat, "format", "auto", "input format: auto|json|ndjson|yaml|toml|jwt")
	f.IntVar(&limitRecords, "limit", 0, "limit the number of records")
	f.IntVar(&offsetRecords, "offset", 0, "skip the first N records")
	f.IntVar(&tailRecords, "tail", 0, "show the last N records (mutually exclusive with --limit; ignores --offset)")
	f.IntVar(&width, "width", 0, "output width in columns (default: terminal width)")
	f.IntVar(&height, "height", 0, "interactive height in rows (default: terminal height)")
	f.StringVar(&themeName, "theme", "", "theme: system, light, dark or a configured theme name")
	f.StringVar(&arrayStyle, "array-style", "index", "tree output array labels: index|numbered|bullet|none")
	f.IntVar(&treeDepth, "tree-depth", 0, "limit tree output depth (0 = unlimited)")
	f.StringVar(&exportDir, "export-dir", "", "directory interactive exports are written to (default: current directory)")

	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&noColor, "no-color", false, "disable color output")
	pf.StringVar(&configFile, "config", "", "config file (default ~/.config/jsontable/config.yaml)")
	pf.BoolVar(&debug, "debug", false, "debug logging (same as --log-level debug)")
	pf.StringVar(&logLevel, "log-level", "info", "log level: debug|info|warn|error")
	pf.StringVar(&logFile, "log-file", "", "write logs to this file (interactive mode discards them otherwise)")

	rootCmd.AddCommand(serveCmd, configCmd, versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func parseLogLevel(s string) (int8, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return -1, nil
	case "", "info":
		return 0, nil
	case "warn", "warning":
		return 1, nil
	case "error":
		return 2, nil
	}
	return 0, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
}

// setup loads the configuration and installs the logger and run settings on
// the command context.
func setup(cmd *cobra.Command) error {
	level, err := parseLogLevel(logLevel)
	if err != nil {
		return err
	}
	if debug {
		level = -1
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	runConfig = cfg

	var out io.Writer = os.Stderr
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		out = f
	case interactive:
		out = io.Discard
	}
	lgr := logger.Setup(logger.Options{Level: level, Output: out})
	lgr = logger.WithValues(lgr, "command", cmd.Name())

	run := settings.NewCliParams()
	run.MinLogLevel = level
	run.ConfigPath = configFile
	run.Interactive = interactive
	run.NoColor = noColor

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, lgr)
	ctx = settings.IntoContext(ctx, run)
	cmd.SetContext(ctx)
	return nil
}
