package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "jsontable", cfg.App.Name)
	assert.Equal(t, "system", cfg.Theme.Default)
	assert.True(t, cfg.Behavior.AutoExpand)
	assert.Equal(t, 200, cfg.Behavior.SampleRows)
	assert.Equal(t, 3_000_000, cfg.Performance.MaxInputBytes)
	assert.Equal(t, 10*time.Second, cfg.Performance.ParseTimeout)
	assert.Equal(t, 30*time.Minute, cfg.Server.SessionTTL)
	assert.Equal(t, "none", cfg.Prefs.Backend)
	assert.Equal(t, "jsontable:prefs", cfg.Prefs.Redis.Key)
	assert.Equal(t, []string{"dark", "light"}, cfg.ThemeNames())
	assert.Equal(t, ColorValue("#ffd75f"), cfg.Themes["dark"].MatchBG)
	assert.Equal(t, 150*time.Millisecond, cfg.SearchDebounce())
}

func TestDefaultReturnsCopies(t *testing.T) {
	a, err := Default()
	require.NoError(t, err)
	a.Themes["dark"] = ThemeConfig{}
	a.Behavior.SampleRows = 1

	b, err := Default()
	require.NoError(t, err)
	assert.Equal(t, ColorValue("#5fd7ff"), b.Themes["dark"].HeaderFG)
	assert.Equal(t, 200, b.Behavior.SampleRows)

	raw := DefaultYAML()
	raw[0] = '#'
	assert.NotEqual(t, raw[0], DefaultYAML()[0])
}

func TestLoadMergesUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
theme:
  default: mine
behavior:
  sample_rows: 20
themes:
  dark:
    match_bg: 226
  mine:
    key: "#ff0000"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mine", cfg.Theme.Default)
	assert.Equal(t, 20, cfg.Behavior.SampleRows)
	assert.True(t, cfg.Behavior.AutoExpand, "unset keys keep their defaults")
	assert.Equal(t, ColorValue("226"), cfg.Themes["dark"].MatchBG)
	assert.Equal(t, ColorValue("#5fd7ff"), cfg.Themes["dark"].HeaderFG)
	assert.Equal(t, ColorValue("#ff0000"), cfg.Themes["mine"].Key)
	assert.Contains(t, cfg.Themes, "light")
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "behavior: [", "decode"},
		{"bad backend", "prefs:\n  backend: etcd\n", "prefs.backend"},
		{"unknown theme", "theme:\n  default: neon\n", `unknown theme "neon"`},
		{"negative sample", "behavior:\n  sample_rows: -1\n", "non-negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			_, err := Load(path)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestLoadWithoutUserFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "jsontable", cfg.App.Name)
}

func TestMarshalAddsComments(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	out, err := Marshal(cfg)
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "# CSV delimiter; empty derives it from the locale")
	assert.Contains(t, text, "# Application name")
	assert.Contains(t, text, "parse_timeout: 10s")

	var back Config
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, cfg.Behavior, back.Behavior)
	assert.Equal(t, cfg.Themes["light"], back.Themes["light"])
}

func TestColorValueYAML(t *testing.T) {
	out, err := yaml.Marshal(map[string]ColorValue{"a": "81", "b": "#fff", "c": ""})
	require.NoError(t, err)
	assert.Equal(t, "a: 81\nb: '#fff'\nc: \"\"\n", string(out))

	var got map[string]ColorValue
	require.NoError(t, yaml.Unmarshal([]byte("a: 81\nb: \"#fff\"\n"), &got))
	assert.Equal(t, ColorValue("81"), got["a"])
	assert.Equal(t, ColorValue("#fff"), got["b"])
}
