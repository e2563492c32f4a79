// Package tui embeds the interactive JSON table in host applications.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/jsontable/internal/ui"
)

// defaultFallbackTermWidth is used when terminal size cannot be detected.
const defaultFallbackTermWidth = 120

// DetectTerminalSize returns the best-effort terminal width and height by probing
// stdout, stderr, and stdin, then falling back to the COLUMNS environment variable.
// If detection fails completely, returns generous defaults (120, 24) to avoid
// overly narrow output in CI or non-TTY environments.
func DetectTerminalSize() (width int, height int) {
	fds := []uintptr{os.Stdout.Fd(), os.Stderr.Fd(), os.Stdin.Fd()}
	for _, fd := range fds {
		if w, h, err := term.GetSize(int(fd)); err == nil && (w > 0 || h > 0) {
			return w, h
		}
	}
	if col := os.Getenv("COLUMNS"); col != "" {
		if w, err := strconv.Atoi(col); err == nil && w > 0 {
			return w, 0
		}
	}
	return defaultFallbackTermWidth, 24
}

// Run loads data and starts the interactive table. It blocks until the user
// quits. Host applications can pass tea.ProgramOption values to control IO.
func Run(ctx context.Context, data []byte, cfg Config, opts ...tea.ProgramOption) error {
	m, err := newModel(ctx, data, cfg)
	if err != nil {
		return err
	}
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	_, err = tea.NewProgram(m, opts...).Run()
	return err
}

// RenderSnapshot renders what the interactive table would show after
// cfg.Query and cfg.StartKeys are applied, without starting a program.
func RenderSnapshot(ctx context.Context, data []byte, cfg Config) (string, error) {
	m, err := newModel(ctx, data, cfg)
	if err != nil {
		return "", err
	}
	if cfg.HideFooter {
		return m.Body(), nil
	}
	return fmt.Sprint(m.View().Content), nil
}

func newModel(ctx context.Context, data []byte, cfg Config) (*ui.Model, error) {
	engine, err := cfg.engine()
	if err != nil {
		return nil, err
	}
	v, _, err := engine.Open(ctx, data)
	if err != nil {
		return nil, err
	}
	if cfg.Query != "" {
		v.Search(cfg.Query)
	}
	w, h := cfg.Width, cfg.Height
	if w == 0 || h == 0 {
		dw, dh := DetectTerminalSize()
		if w == 0 {
			w = dw
		}
		if h == 0 {
			h = dh
		}
	}
	m := ui.New(ui.Options{
		Viewer:   v,
		Painter:  cfg.painter(w),
		Sink:     cfg.sink(),
		Prefs:    cfg.Prefs,
		Debounce: cfg.Debounce,
		NoColor:  cfg.NoColor,
		Width:    w,
		Height:   h,
		Logger:   cfg.logger(),
	})
	for _, k := range cfg.StartKeys {
		m.Update(ui.KeyMsg(k))
	}
	return m, nil
}

// WithIO returns tea.ProgramOptions to set custom input/output.
func WithIO(in io.Reader, out io.Writer) []tea.ProgramOption {
	opts := []tea.ProgramOption{}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}
	return opts
}
