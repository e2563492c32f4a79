package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/jsontable/internal/export"
	"github.com/oakwood-commons/jsontable/internal/formatter"
	"github.com/oakwood-commons/jsontable/internal/limiter"
	"github.com/oakwood-commons/jsontable/internal/paint/htmlview"
	"github.com/oakwood-commons/jsontable/internal/paint/terminal"
	"github.com/oakwood-commons/jsontable/internal/ui"
	"github.com/oakwood-commons/jsontable/internal/viewer"
	"github.com/oakwood-commons/jsontable/pkg/loader"
	"github.com/oakwood-commons/jsontable/pkg/logger"
	"github.com/oakwood-commons/jsontable/pkg/prefs"
	"github.com/oakwood-commons/jsontable/pkg/settings"
)

// Output formats.
const (
	outputTable = "table"
	outputCSV   = "csv"
	outputJSON  = "json"
	outputHTML  = "html"
	outputTree  = "tree"
	outputYAML  = "yaml"
)

func runRoot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	lgr := *logger.FromContext(ctx)
	run, ok := settings.FromContext(ctx)
	if !ok {
		run = settings.NewCliParams()
	}

	limit := limiter.Config{Limit: limitRecords, Offset: offsetRecords, Tail: tailRecords}
	if err := limit.Validate(); err != nil {
		return fmt.Errorf("record limiting: %w", err)
	}
	format, err := loader.ParseFormat(inputFormat)
	if err != nil {
		return err
	}
	switch output {
	case outputTable, outputCSV, outputJSON, outputHTML, outputTree, outputYAML:
	default:
		return fmt.Errorf("unknown output format %q (want table, csv, json, html, tree or yaml)", output)
	}
	if err := formatter.ValidateArrayStyle(arrayStyle); err != nil {
		return err
	}
	if themeName != "" {
		if err := validateTheme(runConfig, themeName); err != nil {
			return err
		}
	}

	data, source, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	store, err := newPrefsStore(runConfig.Prefs)
	if err != nil {
		return err
	}
	fl := engineFlags{
		Format:       format,
		Expr:         expression,
		Limit:        limit,
		Focus:        focusPath,
		ExtractArray: extractArray,
		Delimiter:    delimiter,
	}
	if cmd.Flags().Changed("auto-expand") {
		fl.AutoExpand = &autoExpand
	}
	engine, err := newEngine(runConfig, store, lgr, fl)
	if err != nil {
		return err
	}
	v, doc, err := engine.Open(ctx, data)
	if err != nil {
		return err
	}
	lgr.V(1).Info("document loaded", "source", source, "format", string(doc.Format), "records", doc.Count)

	if searchTerm != "" {
		v.Search(searchTerm)
	}
	if expandAll {
		v.ExpandAll()
	}
	theme := themeChoice(themeName, engine.Preferences(ctx).Theme, runConfig.Theme.Default)

	if run.Interactive {
		return runInteractive(v, store, theme, run.NoColor, lgr)
	}
	return printView(cmd, v, theme, colorDisabled(run))
}

func colorDisabled(run *settings.Run) bool {
	return run.NoColor || os.Getenv("NO_COLOR") != "" || stdoutIsPiped()
}

func printView(cmd *cobra.Command, v *viewer.Viewer, theme string, plain bool) error {
	out := cmd.OutOrStdout()
	sink := export.WriterSink{W: out}
	switch output {
	case outputCSV:
		_, err := sink.Save(cmd.Context(), v.ExportCSV())
		return err
	case outputJSON:
		_, err := sink.Save(cmd.Context(), v.ExportJSON())
		return err
	case outputHTML:
		return htmlview.Table(out, v.View(), htmlOptions(runConfig, theme))
	case outputTree:
		_, err := io.WriteString(out, formatter.FormatTree(v.Document(), formatter.TreeOptions{
			ArrayStyle:   arrayStyle,
			MaxDepth:     treeDepth,
			ExpandArrays: expandAll,
		}))
		return err
	case outputYAML:
		text, err := formatter.FormatYAML(v.Document(), formatter.YAMLFormatOptions{LiteralBlockStrings: true})
		if err != nil {
			return fmt.Errorf("render yaml: %w", err)
		}
		_, err = io.WriteString(out, text)
		return err
	}

	w := width
	if w == 0 && !stdoutIsPiped() {
		w, _ = detectTerminalSize()
	}
	painter := terminal.New(terminal.Options{
		Width:   w,
		NoColor: plain,
		Theme:   terminalTheme(runConfig, theme),
	})
	_, err := io.WriteString(out, painter.Table(v.View())+"\n")
	return err
}

func runInteractive(v *viewer.Viewer, store prefs.Store, theme string, plain bool, lgr logr.Logger) error {
	w, h := width, height
	if w == 0 || h == 0 {
		dw, dh := detectTerminalSize()
		if w == 0 {
			w = dw
		}
		if h == 0 {
			h = dh
		}
	}
	progOpts, cleanup := getProgramOptions()
	defer cleanup()

	return ui.Run(ui.Options{
		Viewer: v,
		Painter: terminal.New(terminal.Options{
			Width:   w,
			NoColor: plain,
			Theme:   terminalTheme(runConfig, theme),
		}),
		Sink:     export.FileSink{Dir: exportDir, Logger: lgr},
		Prefs:    store,
		Debounce: runConfig.SearchDebounce(),
		NoColor:  plain,
		Width:    w,
		Height:   h,
		Logger:   lgr,
	}, progOpts...)
}
