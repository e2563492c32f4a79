// Package config holds the application configuration. Defaults are embedded
// in the binary; a user file is decoded on top of them, so it only needs the
// keys it changes.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

var (
	embeddedConfigOnce sync.Once
	embeddedConfig     Config
	embeddedConfigErr  error
)

// Config is the full configuration file.
type Config struct {
	App         AppConfig              `yaml:"app"`
	Theme       ThemeSelectionConfig   `yaml:"theme"`
	Behavior    BehaviorConfig         `yaml:"behavior"`
	Performance PerformanceConfig      `yaml:"performance"`
	Server      ServerConfig           `yaml:"server"`
	Prefs       PrefsConfig            `yaml:"prefs"`
	Themes      map[string]ThemeConfig `yaml:"themes"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name        string `yaml:"name,omitempty" yamlcomment:"Application name"`
	Description string `yaml:"description,omitempty" yamlcomment:"Application description"`
}

// ThemeSelectionConfig holds theme selection configuration.
type ThemeSelectionConfig struct {
	Default string `yaml:"default,omitempty" yamlcomment:"Theme: system, light, dark or a name under themes"`
}

// BehaviorConfig holds table behaviour settings. Stored preferences override
// auto_expand and csv_delimiter.
type BehaviorConfig struct {
	AutoExpand          bool   `yaml:"auto_expand" yamlcomment:"Expand every nested value after each focus change"`
	ExtractLargestArray bool   `yaml:"extract_largest_array" yamlcomment:"Tabulate the largest array of objects in a root object"`
	CSVDelimiter        string `yaml:"csv_delimiter" yamlcomment:"CSV delimiter; empty derives it from the locale"`
	SearchDebounceMs    int    `yaml:"search_debounce_ms" yamlcomment:"Delay before a typed search is applied (milliseconds)"`
	SampleRows          int    `yaml:"sample_rows" yamlcomment:"Rows sampled to derive columns"`
	NestedSample        int    `yaml:"nested_sample" yamlcomment:"Items sampled to derive nested table columns"`
	NestedMaxColumns    int    `yaml:"nested_max_columns" yamlcomment:"Maximum columns of a nested table"`
	DateLayout          string `yaml:"date_layout" yamlcomment:"Go time layout for timestamp cells"`
}

// PerformanceConfig holds input limits.
type PerformanceConfig struct {
	MaxInputBytes        int           `yaml:"max_input_bytes" yamlcomment:"Reject inputs larger than this"`
	BackgroundParseBytes int           `yaml:"background_parse_bytes" yamlcomment:"Parse inputs this large in the background"`
	ParseTimeout         time.Duration `yaml:"parse_timeout" yamlcomment:"Give up on a background parse after this long"`
}

// ServerConfig configures `jsontable serve`.
type ServerConfig struct {
	Addr       string        `yaml:"addr" yamlcomment:"Listen address"`
	SessionTTL time.Duration `yaml:"session_ttl" yamlcomment:"Idle sessions are dropped after this long"`
	ExportDir  string        `yaml:"export_dir" yamlcomment:"Also keep a copy of every export here when set"`
}

// PrefsConfig selects the preference store.
type PrefsConfig struct {
	Backend string      `yaml:"backend" yamlcomment:"none, file or redis"`
	Path    string      `yaml:"path" yamlcomment:"File backend path; empty means ~/.config/jsontable/prefs.toml"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis preference backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// ColorValue stores a color token (hex or ANSI number) and marshals numerics
// as YAML ints.
type ColorValue string

func (c ColorValue) MarshalYAML() (interface{}, error) {
	if c == "" {
		return "", nil
	}
	s := string(c)
	if _, err := strconv.Atoi(s); err == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: s}, nil
	}
	return s, nil
}

func (c *ColorValue) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		*c = ""
		return nil
	}
	*c = ColorValue(value.Value)
	return nil
}

// ThemeConfig is a palette. Colors accept hex strings or ANSI numbers.
type ThemeConfig struct {
	Background ColorValue `yaml:"background"`
	Foreground ColorValue `yaml:"foreground"`
	HeaderFG   ColorValue `yaml:"header_fg"`
	HeaderBG   ColorValue `yaml:"header_bg"`
	Border     ColorValue `yaml:"border"`
	Muted      ColorValue `yaml:"muted"`
	String     ColorValue `yaml:"string"`
	Number     ColorValue `yaml:"number"`
	Bool       ColorValue `yaml:"bool"`
	Null       ColorValue `yaml:"null"`
	Key        ColorValue `yaml:"key"`
	Badge      ColorValue `yaml:"badge"`
	Link       ColorValue `yaml:"link"`
	MatchFG    ColorValue `yaml:"match_fg"`
	MatchBG    ColorValue `yaml:"match_bg"`
	SelectedFG ColorValue `yaml:"selected_fg"`
	SelectedBG ColorValue `yaml:"selected_bg"`
}

// DefaultYAML returns a copy of the embedded default config.
func DefaultYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default returns the embedded defaults. Each call gets its own copy.
func Default() (Config, error) {
	embeddedConfigOnce.Do(func() {
		if len(embeddedDefaultConfig) == 0 {
			embeddedConfigErr = errors.New("embedded default config is empty")
			return
		}
		if err := yaml.Unmarshal(embeddedDefaultConfig, &embeddedConfig); err != nil {
			embeddedConfigErr = fmt.Errorf("decode embedded default config: %w", err)
		}
	})
	if embeddedConfigErr != nil {
		return Config{}, embeddedConfigErr
	}
	out := embeddedConfig
	out.Themes = make(map[string]ThemeConfig, len(embeddedConfig.Themes))
	for k, v := range embeddedConfig.Themes {
		out.Themes[k] = v
	}
	return out, nil
}

// DefaultPath is the user config file looked up when --config is not given.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "jsontable", "config.yaml")
}

// Load returns the defaults merged with the file at path. An empty path
// loads DefaultPath when that file exists. A named file that does not exist
// is an error.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := Merge(&cfg, data); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Merge decodes data on top of cfg. Themes are merged per name, and a theme
// that only sets some colors keeps the rest from the built-in palette of the
// same name.
func Merge(cfg *Config, data []byte) error {
	base := cfg.Themes
	cfg.Themes = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg.Themes = base
		return fmt.Errorf("decode: %w", err)
	}
	merged := make(map[string]ThemeConfig, len(base)+len(cfg.Themes))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range cfg.Themes {
		merged[k] = mergeTheme(merged[k], v)
	}
	cfg.Themes = merged
	return cfg.Validate()
}

func mergeTheme(base, override ThemeConfig) ThemeConfig {
	out := base
	apply := func(val ColorValue, target *ColorValue) {
		if val != "" {
			*target = val
		}
	}
	apply(override.Background, &out.Background)
	apply(override.Foreground, &out.Foreground)
	apply(override.HeaderFG, &out.HeaderFG)
	apply(override.HeaderBG, &out.HeaderBG)
	apply(override.Border, &out.Border)
	apply(override.Muted, &out.Muted)
	apply(override.String, &out.String)
	apply(override.Number, &out.Number)
	apply(override.Bool, &out.Bool)
	apply(override.Null, &out.Null)
	apply(override.Key, &out.Key)
	apply(override.Badge, &out.Badge)
	apply(override.Link, &out.Link)
	apply(override.MatchFG, &out.MatchFG)
	apply(override.MatchBG, &out.MatchBG)
	apply(override.SelectedFG, &out.SelectedFG)
	apply(override.SelectedBG, &out.SelectedBG)
	return out
}

// Validate checks values the rest of the program relies on.
func (c Config) Validate() error {
	switch c.Prefs.Backend {
	case "", "none", "file", "redis":
	default:
		return fmt.Errorf("prefs.backend must be none, file or redis, got %q", c.Prefs.Backend)
	}
	if c.Behavior.SampleRows < 0 || c.Behavior.NestedSample < 0 || c.Behavior.NestedMaxColumns < 0 {
		return errors.New("behavior sample sizes must be non-negative")
	}
	if c.Behavior.SearchDebounceMs < 0 {
		return errors.New("behavior.search_debounce_ms must be non-negative")
	}
	if t := c.Theme.Default; t != "" && t != "system" {
		if _, ok := c.Themes[t]; !ok {
			return fmt.Errorf("unknown theme %q (available: %v)", t, c.ThemeNames())
		}
	}
	return nil
}

// ThemeNames lists the configured palettes, sorted.
func (c Config) ThemeNames() []string {
	names := make([]string, 0, len(c.Themes))
	for name := range c.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SearchDebounce is the search delay as a duration.
func (c Config) SearchDebounce() time.Duration {
	return time.Duration(c.Behavior.SearchDebounceMs) * time.Millisecond
}

// Marshal renders cfg as YAML with a comment above each documented field.
func Marshal(cfg Config) ([]byte, error) {
	var node yaml.Node
	if err := node.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	annotate(&node, cfg)
	out, err := yaml.Marshal(&node)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return out, nil
}
