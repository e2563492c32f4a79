package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/jsontable/internal/export"
	"github.com/oakwood-commons/jsontable/internal/server"
	"github.com/oakwood-commons/jsontable/pkg/logger"
)

var (
	serveAddr      string
	serveTTL       time.Duration
	serveExportDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Serve tables over HTTP",
	Long: `Serve renders tables as HTML pages. With a file argument every visitor
gets a session over that document; without one the start page accepts an
upload.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		lgr := *logger.FromContext(ctx)

		var source []byte
		if len(args) == 1 {
			data, _, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			source = data
		}
		store, err := newPrefsStore(runConfig.Prefs)
		if err != nil {
			return err
		}
		engine, err := newEngine(runConfig, store, lgr, engineFlags{})
		if err != nil {
			return err
		}

		srvCfg := runConfig.Server
		if cmd.Flags().Changed("addr") {
			srvCfg.Addr = serveAddr
		}
		if cmd.Flags().Changed("session-ttl") {
			srvCfg.SessionTTL = serveTTL
		}
		if cmd.Flags().Changed("export-dir") {
			srvCfg.ExportDir = serveExportDir
		}
		opts := server.Options{
			Engine:     engine,
			Source:     source,
			Page:       htmlOptions(runConfig, themeChoice("", engine.Preferences(ctx).Theme, runConfig.Theme.Default)),
			SessionTTL: srvCfg.SessionTTL,
			MaxUpload:  int64(runConfig.Performance.MaxInputBytes),
			Prefs:      store,
			Logger:     lgr,
		}
		if srvCfg.ExportDir != "" {
			opts.Sink = export.FileSink{Dir: srvCfg.ExportDir, Logger: lgr}
		}
		srv, err := server.New(opts)
		if err != nil {
			return err
		}
		return srv.Run(ctx, srvCfg.Addr)
	},
}

func init() { //nolint:gochecknoinits
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "listen address (default from config)")
	serveCmd.Flags().DurationVar(&serveTTL, "session-ttl", server.DefaultSessionTTL, "drop sessions idle for longer (default from config)")
	serveCmd.Flags().StringVar(&serveExportDir, "export-dir", "", "keep a copy of every export in this directory")
}
