package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/jsontable/internal/config"
	"github.com/oakwood-commons/jsontable/pkg/prefs"
	"github.com/oakwood-commons/jsontable/pkg/settings"
)

const people = `[{"name":"Ann","tags":["x","y"]},{"name":"Bob","tags":["z"]}]`

func resetFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func resetRootCmdState(t *testing.T) {
	t.Helper()
	for _, c := range []*cobra.Command{rootCmd, serveCmd, configCmd} {
		resetFlags(c.Flags())
		resetFlags(c.PersistentFlags())
	}
	runConfig = config.Config{}

	origStdin, origStdout := stdinIsPiped, stdoutIsPiped
	stdinIsPiped = func() bool { return false }
	stdoutIsPiped = func() bool { return true }
	t.Cleanup(func() {
		stdinIsPiped, stdoutIsPiped = origStdin, origStdout
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	// Isolate from the user's config and locale.
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LC_ALL", "en_US.UTF-8")
	t.Setenv("NO_COLOR", "")
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetRootCmdState(t)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCLI_TableUsesConfigAutoExpand(t *testing.T) {
	out, err := runCLI(t, writeFile(t, "people.json", people), "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "JSON Table (2 rows)")
	assert.Contains(t, out, "[-] [2] items »")
	assert.Contains(t, out, "Array Items (2):")
}

func TestCLI_AutoExpandFlagOverrides(t *testing.T) {
	out, err := runCLI(t, writeFile(t, "people.json", people), "--no-color", "--auto-expand=false")
	require.NoError(t, err)
	assert.Contains(t, out, "[+] [2] items »")
	assert.NotContains(t, out, "Array Items")
}

func TestCLI_CSV(t *testing.T) {
	path := writeFile(t, "people.json", people)

	out, err := runCLI(t, path, "-o", "csv")
	require.NoError(t, err)
	assert.Equal(t, "name,tags\n\"Ann\",\"[\"\"x\"\",\"\"y\"\"]\"\n\"Bob\",\"[\"\"z\"\"]\"\n", out)

	out, err = runCLI(t, path, "-o", "csv", "--delimiter", ";", "-s", "bob")
	require.NoError(t, err)
	assert.Equal(t, "name;tags\n\"Bob\";\"[\"\"z\"\"]\"\n", out)

	out, err = runCLI(t, path, "-o", "csv", "--limit", "1")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestCLI_LocaleDelimiter(t *testing.T) {
	path := writeFile(t, "people.json", people)
	resetRootCmdState(t)
	t.Setenv("LC_ALL", "de_DE.UTF-8")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{path, "-o", "csv"})
	require.NoError(t, Execute())
	assert.True(t, strings.HasPrefix(out.String(), "name;tags\n"))
}

func TestCLI_JSONWithExpression(t *testing.T) {
	path := writeFile(t, "doc.json", `{"items":[{"id":1,"ok":true},{"id":2,"ok":false}]}`)
	out, err := runCLI(t, path, "-o", "json", "-e", "items.filter(x, x.ok)")
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, float64(1), got[0]["id"])
}

func TestCLI_Focus(t *testing.T) {
	path := writeFile(t, "doc.json", `{"items":[{"tags":["a","b"]}]}`)
	out, err := runCLI(t, path, "--no-color", "--focus", "items")
	require.NoError(t, err)
	assert.Contains(t, out, "JSON Table (1 rows) - items (Array)")
	assert.Contains(t, out, "0 Root › 1 items (Array)")
}

func TestCLI_HTML(t *testing.T) {
	out, err := runCLI(t, writeFile(t, "people.json", people), "-o", "html", "--theme", "light")
	require.NoError(t, err)
	assert.Contains(t, out, "<table")
	assert.Contains(t, out, "Ann")
	assert.NotContains(t, out, "/toggle?key=")
}

func TestCLI_Tree(t *testing.T) {
	path := writeFile(t, "people.json", people)
	out, err := runCLI(t, path, "-o", "tree")
	require.NoError(t, err)
	assert.Contains(t, out, "[0]")
	assert.Contains(t, out, "name: Ann")

	out, err = runCLI(t, path, "-o", "tree", "--array-style", "numbered", "--tree-depth", "1")
	require.NoError(t, err)
	assert.NotContains(t, out, "[0]")
	assert.Contains(t, out, "name: ...")
}

func TestCLI_YAMLOutput(t *testing.T) {
	out, err := runCLI(t, writeFile(t, "people.json", `[{"name":"Ann","age":30}]`), "-o", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "- name: Ann\n  age: 30\n", out)
}

func TestCLI_YAMLInput(t *testing.T) {
	path := writeFile(t, "people.yaml", "- name: Ann\n- name: Bob\n")
	out, err := runCLI(t, path, "-o", "csv")
	require.NoError(t, err)
	assert.Equal(t, "name\n\"Ann\"\n\"Bob\"\n", out)
}

func TestCLI_Stdin(t *testing.T) {
	resetRootCmdState(t)
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(`[{"a":1}]`))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"-", "-o", "csv"})
	require.NoError(t, Execute())
	assert.Equal(t, "a\n\"1\"\n", out.String())
}

func TestCLI_NoInputShowsHelp(t *testing.T) {
	out, err := runCLI(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "--expression")
}

func TestCLI_Errors(t *testing.T) {
	path := writeFile(t, "people.json", people)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"limit and tail", []string{path, "--limit", "1", "--tail", "1"}, "mutually exclusive"},
		{"output", []string{path, "-o", "xml"}, "unknown output format"},
		{"array style", []string{path, "-o", "tree", "--array-style", "roman"}, "invalid array-style"},
		{"format", []string{path, "--format", "csv"}, "unknown input format"},
		{"theme", []string{path, "--theme", "neon"}, "unknown theme"},
		{"log level", []string{path, "--log-level", "loud"}, "unknown log level"},
		{"expression", []string{path, "-e", "_.("}, "expression"},
		{"missing file", []string{filepath.Join(t.TempDir(), "nope.json")}, "read input"},
		{"empty input", []string{writeFile(t, "empty.json", "")}, "empty input"},
		{"missing config", []string{path, "--config", filepath.Join(t.TempDir(), "c.yaml")}, "read config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCLI_PrefsFileBackend(t *testing.T) {
	dir := t.TempDir()
	prefsPath := filepath.Join(dir, "prefs.toml")
	require.NoError(t, os.WriteFile(prefsPath, []byte("auto_expand = false\ncsv_delimiter = \"|\"\n"), 0o600))
	cfgPath := writeFile(t, "config.yaml", "prefs:\n  backend: file\n  path: "+prefsPath+"\n")
	path := writeFile(t, "people.json", people)

	out, err := runCLI(t, path, "--config", cfgPath, "-o", "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "name|tags\n"))

	out, err = runCLI(t, path, "--config", cfgPath, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "[+] [2] items")
}

func TestConfigCommands(t *testing.T) {
	out, err := runCLI(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "auto_expand: true")
	assert.Contains(t, out, "# Expand every nested value after each focus change")

	out, err = runCLI(t, "config", "themes")
	require.NoError(t, err)
	assert.Equal(t, "system\ndark\nlight\n", out)

	out, err = runCLI(t, "config", "path")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), filepath.Join(".config", "jsontable", "config.yaml")))

	out, err = runCLI(t, "config", "default")
	require.NoError(t, err)
	assert.Equal(t, string(config.DefaultYAML()), out)
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, settings.CliBinaryName+" "+settings.VersionInformation.BuildVersion))
}

func TestNewPrefsStore(t *testing.T) {
	s, err := newPrefsStore(config.PrefsConfig{Backend: "none"})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = newPrefsStore(config.PrefsConfig{Backend: "file", Path: filepath.Join(t.TempDir(), "p.toml")})
	require.NoError(t, err)
	assert.IsType(t, &prefs.FileStore{}, s)

	s, err = newPrefsStore(config.PrefsConfig{Backend: "redis", Redis: config.RedisConfig{Addr: "localhost:0", Key: "k"}})
	require.NoError(t, err)
	require.IsType(t, &prefs.RedisStore{}, s)
	assert.Equal(t, "k", s.(*prefs.RedisStore).Key())

	_, err = newPrefsStore(config.PrefsConfig{Backend: "etcd"})
	assert.Error(t, err)
}

func TestThemeChoice(t *testing.T) {
	assert.Equal(t, "warm", themeChoice("warm", prefs.ThemeDark, "light"))
	assert.Equal(t, "dark", themeChoice("", prefs.ThemeDark, "light"))
	assert.Equal(t, "light", themeChoice("", prefs.ThemeSystem, "light"))
	assert.Equal(t, "system", themeChoice("", prefs.ThemeSystem, ""))
}

func TestHTMLOptionsModes(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	assert.Equal(t, "system", htmlOptions(cfg, "system").Mode)
	assert.Equal(t, "light", htmlOptions(cfg, "light").Mode)
	dark := htmlOptions(cfg, "dark")
	assert.Equal(t, "dark", dark.Mode)
	assert.Equal(t, cfg.Themes["dark"], dark.Dark)
	assert.Equal(t, cfg.Themes["dark"], terminalTheme(cfg, "system"))
}

func TestConfigDefaults(t *testing.T) {
	t.Setenv("LC_ALL", "fr_FR.UTF-8")
	cfg, err := config.Default()
	require.NoError(t, err)
	p := configDefaults(cfg)
	assert.True(t, p.AutoExpand)
	assert.Equal(t, prefs.ThemeSystem, p.Theme)
	assert.Equal(t, ";", p.CSVDelimiter)

	cfg.Behavior.CSVDelimiter = "\t"
	assert.Equal(t, "\t", configDefaults(cfg).CSVDelimiter)
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]int8{"debug": -1, "": 0, "INFO": 0, "warn": 1, "error": 2} {
		got, err := parseLogLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}
