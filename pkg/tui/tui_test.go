package tui

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/jsontable/internal/export"
	"github.com/oakwood-commons/jsontable/pkg/loader"
)

var people = []byte(`[{"name":"Ann","tags":["x","y"]},{"name":"Bob","tags":["z"]}]`)

func snapshotConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 80
	cfg.Height = 30
	cfg.NoColor = true
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.NotEmpty(t, cfg.ThemeName)
	assert.Positive(t, cfg.Debounce)
}

func TestRenderSnapshot(t *testing.T) {
	out, err := RenderSnapshot(context.Background(), people, snapshotConfig())
	require.NoError(t, err)
	assert.Contains(t, out, "JSON Table")
	assert.Contains(t, out, "Ann")
	assert.Contains(t, out, "q quit")
}

func TestRenderSnapshotHideFooter(t *testing.T) {
	cfg := snapshotConfig()
	cfg.HideFooter = true
	out, err := RenderSnapshot(context.Background(), people, cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Bob")
	assert.NotContains(t, out, "q quit")
}

func TestRenderSnapshotQuery(t *testing.T) {
	cfg := snapshotConfig()
	cfg.Query = "bob"
	out, err := RenderSnapshot(context.Background(), people, cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Bob")
	assert.NotContains(t, out, "Ann")
}

func TestRenderSnapshotStartKeys(t *testing.T) {
	cfg := snapshotConfig()
	cfg.StartKeys = []string{"v"}
	out, err := RenderSnapshot(context.Background(), people, cfg)
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Ann"`)
}

func TestRenderSnapshotBadInput(t *testing.T) {
	_, err := RenderSnapshot(context.Background(), []byte("   "), snapshotConfig())
	assert.ErrorIs(t, err, loader.ErrEmptyInput)
}

func TestRunRejectsBadInput(t *testing.T) {
	err := Run(context.Background(), []byte("   "), snapshotConfig(), WithIO(&bytes.Buffer{}, &bytes.Buffer{})...)
	assert.ErrorIs(t, err, loader.ErrEmptyInput)
}

func TestRunStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, people, snapshotConfig(), WithIO(&bytes.Buffer{}, &bytes.Buffer{})...)
	}()
	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the context was cancelled")
	}
}

func TestConfigSink(t *testing.T) {
	cfg := Config{ExportDir: "out"}
	fs, ok := cfg.sink().(export.FileSink)
	require.True(t, ok)
	assert.Equal(t, "out", fs.Dir)

	cfg.Sink = export.WriterSink{W: &bytes.Buffer{}}
	assert.IsType(t, export.WriterSink{}, cfg.sink())
}

func TestWithIO(t *testing.T) {
	assert.Len(t, WithIO(&bytes.Buffer{}, &bytes.Buffer{}), 2)
	assert.Empty(t, WithIO(nil, nil))
	assert.Len(t, WithIO(&bytes.Buffer{}, nil), 1)
	assert.Len(t, WithIO(nil, &bytes.Buffer{}), 1)
}
