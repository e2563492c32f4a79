// Package loader turns raw input into a document. JSON is the primary
// format; NDJSON, YAML (single or multi document), TOML and JWT tokens are
// detected and converted so they can be tabulated the same way.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/jsontable/pkg/jsonvalue"
)

// Failures reported to callers. Match with errors.Is.
var (
	ErrEmptyInput   = errors.New("empty input")
	ErrTooLarge     = errors.New("input too large")
	ErrNotJSON      = errors.New("input is not a structured document")
	ErrParseTimeout = errors.New("parse timed out")
)

// Defaults applied when Options fields are zero.
const (
	DefaultMaxBytes        = 3_000_000
	DefaultBackgroundBytes = 1_000_000
	DefaultParseTimeout    = 10 * time.Second
)

// Format names an input format.
type Format string

const (
	FormatAuto   Format = ""
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatYAML   Format = "yaml"
	FormatTOML   Format = "toml"
	FormatJWT    Format = "jwt"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAuto, FormatJSON, FormatNDJSON, FormatYAML, FormatTOML, FormatJWT:
		return f, nil
	case "auto":
		return FormatAuto, nil
	case "yml":
		return FormatYAML, nil
	case "jsonl":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("unknown input format %q", s)
}

// Options controls loading.
type Options struct {
	Format Format
	// MaxBytes rejects larger inputs with ErrTooLarge. Negative disables the
	// check.
	MaxBytes int
	// Inputs of at least BackgroundBytes are parsed off the calling goroutine
	// and abandoned after Timeout.
	BackgroundBytes int
	Timeout         time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxBytes == 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	if o.BackgroundBytes <= 0 {
		o.BackgroundBytes = DefaultBackgroundBytes
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultParseTimeout
	}
	return o
}

// Document is a loaded input.
type Document struct {
	Value  jsonvalue.Value
	Format Format
	// Count is the number of documents or records the input held. Inputs
	// with more than one are returned as an array.
	Count int
}

// Load parses data synchronously.
func Load(data []byte, opts Options) (Document, error) {
	opts = opts.withDefaults()
	if err := checkSize(data, opts); err != nil {
		return Document{}, err
	}
	return parse(data, opts.Format)
}

// LoadContext parses data, moving large inputs to a background goroutine
// bounded by opts.Timeout. A timeout is reported as ErrParseTimeout.
func LoadContext(ctx context.Context, data []byte, opts Options) (Document, error) {
	opts = opts.withDefaults()
	if err := checkSize(data, opts); err != nil {
		return Document{}, err
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	if len(data) < opts.BackgroundBytes {
		return parse(data, opts.Format)
	}

	type result struct {
		doc Document
		err error
	}
	done := make(chan result, 1)
	go func() {
		doc, err := parse(data, opts.Format)
		done <- result{doc, err}
	}()

	timer := time.NewTimer(opts.Timeout)
	defer timer.Stop()
	select {
	case r := <-done:
		return r.doc, r.err
	case <-timer.C:
		return Document{}, fmt.Errorf("%w after %s", ErrParseTimeout, opts.Timeout)
	case <-ctx.Done():
		return Document{}, ctx.Err()
	}
}

// LoadReader reads at most MaxBytes+1 bytes from r and loads them.
func LoadReader(ctx context.Context, r io.Reader, opts Options) (Document, error) {
	opts = opts.withDefaults()
	if opts.MaxBytes > 0 {
		r = io.LimitReader(r, int64(opts.MaxBytes)+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read input: %w", err)
	}
	return LoadContext(ctx, data, opts)
}

// LoadFile loads a file. Without an explicit format the file extension picks
// the parser, falling back to detection when that parser fails.
func LoadFile(ctx context.Context, path string, opts Options) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()

	if opts.Format != FormatAuto {
		return LoadReader(ctx, f, opts)
	}
	hinted := opts
	hinted.Format = formatForExtension(filepath.Ext(path))
	doc, err := LoadReader(ctx, f, hinted)
	if err == nil || hinted.Format == FormatAuto || !errors.Is(err, ErrNotJSON) {
		return doc, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Document{}, err
	}
	return LoadReader(ctx, f, opts)
}

func formatForExtension(ext string) Format {
	switch strings.ToLower(ext) {
	case ".json":
		return FormatJSON
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".jwt":
		return FormatJWT
	}
	return FormatAuto
}

func checkSize(data []byte, opts Options) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return ErrEmptyInput
	}
	if opts.MaxBytes > 0 && len(data) > opts.MaxBytes {
		return fmt.Errorf("%w: more than %d bytes", ErrTooLarge, opts.MaxBytes)
	}
	return nil
}

func parse(data []byte, format Format) (Document, error) {
	input := strings.TrimSpace(string(data))
	if input == "" {
		return Document{}, ErrEmptyInput
	}
	if format == FormatAuto {
		format = Detect(input)
	}
	var (
		docs []jsonvalue.Value
		err  error
	)
	switch format {
	case FormatJWT:
		var v jsonvalue.Value
		v, err = DecodeJWT(input)
		docs = []jsonvalue.Value{v}
	case FormatNDJSON:
		docs, err = loadNDJSON(input)
	case FormatTOML:
		docs, err = loadTOML(input)
	case FormatYAML:
		docs, err = loadYAML(input)
	default:
		docs, err = loadJSON(input)
		format = FormatJSON
	}
	if err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrNotJSON, err)
	}
	if len(docs) == 1 {
		// A bare JSON scalar is kept and shown as a single row. YAML turns
		// any free text into a string scalar, so there it means the input
		// was not a document at all.
		if format == FormatYAML && !docs[0].IsContainer() {
			return Document{}, fmt.Errorf("%w: top-level value is a %s", ErrNotJSON, docs[0].Kind())
		}
		return Document{Value: docs[0], Format: format, Count: 1}, nil
	}
	return Document{Value: jsonvalue.Array(docs...), Format: format, Count: len(docs)}, nil
}

// Detect guesses the format of trimmed input. Anything that parses as one
// JSON value, scalars included, is JSON. Otherwise input starting with a
// brace or bracket is JSON unless it looks like NDJSON or TOML section
// headers.
func Detect(input string) Format {
	if IsJWT(input) {
		return FormatJWT
	}
	if singleJSON(input) {
		return FormatJSON
	}
	if strings.Contains(input, "\n---") || strings.HasPrefix(input, "---") {
		return FormatYAML
	}
	lines := splitLines(input)
	if len(lines) > 1 && isLikelyNDJSON(lines) {
		return FormatNDJSON
	}
	if isLikelyTOML(lines) {
		return FormatTOML
	}
	if strings.HasPrefix(input, "{") || strings.HasPrefix(input, "[") {
		return FormatJSON
	}
	return FormatYAML
}

// singleJSON reports whether input is one complete JSON value, which a
// pretty-printed document spread over many lines is.
func singleJSON(input string) bool {
	_, err := jsonvalue.Parse([]byte(input))
	return err == nil
}

// splitLines splits on \n, \r\n and bare \r.
func splitLines(input string) []string {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.ReplaceAll(input, "\r", "\n")
	return strings.Split(input, "\n")
}

func loadJSON(input string) ([]jsonvalue.Value, error) {
	v, err := jsonvalue.Parse([]byte(input))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return []jsonvalue.Value{v}, nil
}

// loadNDJSON parses one JSON value per line. Lines that are not JSON are
// kept as plain strings.
func loadNDJSON(input string) ([]jsonvalue.Value, error) {
	lines := splitLines(input)
	results := make([]jsonvalue.Value, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := jsonvalue.Parse([]byte(line))
		if err != nil {
			results = append(results, jsonvalue.String(line))
			continue
		}
		results = append(results, v)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no records found")
	}
	// A single record still reads as a list of records.
	if len(results) == 1 {
		return []jsonvalue.Value{jsonvalue.Array(results...)}, nil
	}
	return results, nil
}

// loadYAML parses every document in input, keeping mapping order.
func loadYAML(input string) ([]jsonvalue.Value, error) {
	var results []jsonvalue.Value
	decoder := yaml.NewDecoder(strings.NewReader(input))
	for {
		var node yaml.Node
		if err := decoder.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		v := jsonvalue.FromYAMLNode(&node)
		if v.IsNull() {
			continue
		}
		results = append(results, v)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no documents found in YAML")
	}
	return results, nil
}

// loadTOML parses a TOML document. TOML tables decode to Go maps, so keys
// come out sorted.
func loadTOML(input string) ([]jsonvalue.Value, error) {
	var data map[string]any
	if err := toml.Unmarshal([]byte(input), &data); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	return []jsonvalue.Value{jsonvalue.FromAny(data)}, nil
}

// isLikelyNDJSON reports whether most non-empty lines start a JSON object or
// array.
func isLikelyNDJSON(lines []string) bool {
	jsonCount := 0
	nonEmptyCount := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmptyCount++
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			jsonCount++
		}
	}
	return nonEmptyCount > 1 && jsonCount > nonEmptyCount/2
}

var (
	// [server], [[items]], ["table name"], [database.credentials]
	tomlSection = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	// name = "value", "table name" = "value", database.host = "localhost"
	tomlKeyValue = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

// isLikelyTOML reports whether input has an unindented section header or
// mostly key = value lines.
func isLikelyTOML(lines []string) bool {
	sectionCount := 0
	keyValueCount := 0
	nonEmptyCount := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmptyCount++
		// Indented brackets belong to YAML block scalars, not TOML.
		if line == strings.TrimLeft(line, " \t") && tomlSection.MatchString(line) {
			sectionCount++
		}
		if tomlKeyValue.MatchString(line) {
			keyValueCount++
		}
	}
	if sectionCount > 0 {
		return true
	}
	return nonEmptyCount > 0 && keyValueCount > nonEmptyCount/2
}
