package loader

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/jsontable/pkg/jsonvalue"
)

func load(t *testing.T, input string) Document {
	t.Helper()
	doc, err := Load([]byte(input), Options{})
	require.NoError(t, err)
	return doc
}

func TestLoadJSON(t *testing.T) {
	doc := load(t, `{"name": "test", "value": 42, "a": 1}`)
	assert.Equal(t, FormatJSON, doc.Format)
	assert.Equal(t, 1, doc.Count)
	assert.Equal(t, []string{"name", "value", "a"}, doc.Value.Object().Keys())

	doc = load(t, "[\n  {\"a\": 1},\n  {\"a\": 2}\n]")
	assert.Equal(t, FormatJSON, doc.Format)
	assert.Equal(t, 2, doc.Value.Len())
}

func TestLoadMalformedJSONIsNotRepaired(t *testing.T) {
	for _, in := range []string{`{invalid}`, `[1, 2`, `{"a":1} trailing`} {
		t.Run(in, func(t *testing.T) {
			_, err := Load([]byte(in), Options{})
			assert.ErrorIs(t, err, ErrNotJSON)
		})
	}
}

func TestLoadTypedFailures(t *testing.T) {
	_, err := Load(nil, Options{})
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Load([]byte("  \n\t "), Options{})
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Load([]byte(`[1,2,3]`), Options{MaxBytes: 4})
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = Load([]byte(`[1,2,3]`), Options{MaxBytes: -1})
	assert.NoError(t, err)

	_, err = Load([]byte("just some words"), Options{})
	assert.ErrorIs(t, err, ErrNotJSON)
}

func TestLoadScalarRoot(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
		want   jsonvalue.Kind
	}{
		{"number", `42`, FormatAuto, jsonvalue.KindNumber},
		{"string", `"hello"`, FormatAuto, jsonvalue.KindString},
		{"bool", ` true `, FormatAuto, jsonvalue.KindBool},
		{"null", `null`, FormatAuto, jsonvalue.KindNull},
		{"explicit json", `42`, FormatJSON, jsonvalue.KindNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Load([]byte(tt.input), Options{Format: tt.format})
			require.NoError(t, err)
			assert.Equal(t, FormatJSON, doc.Format)
			assert.Equal(t, 1, doc.Count)
			assert.Equal(t, tt.want, doc.Value.Kind())
		})
	}
}

func TestLoadYAMLScalarRootRejected(t *testing.T) {
	_, err := Load([]byte("plain words"), Options{Format: FormatYAML})
	assert.ErrorIs(t, err, ErrNotJSON)
}

func TestDefaultSizeCap(t *testing.T) {
	big := bytes.Repeat([]byte(" "), DefaultMaxBytes)
	big = append([]byte("[1]"), big...)
	_, err := Load(big, Options{})
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestLoadYAMLKeepsOrder(t *testing.T) {
	doc := load(t, "zeta: 1\nalpha:\n  - x\n  - y\nmid: true\n")
	assert.Equal(t, FormatYAML, doc.Format)
	assert.Equal(t, `{"zeta":1,"alpha":["x","y"],"mid":true}`, jsonvalue.Marshal(doc.Value))
}

func TestLoadMultiDocYAML(t *testing.T) {
	doc := load(t, "---\nname: a\n---\nname: b\n---\n")
	assert.Equal(t, FormatYAML, doc.Format)
	assert.Equal(t, 2, doc.Count)
	assert.Equal(t, `[{"name":"a"},{"name":"b"}]`, jsonvalue.Marshal(doc.Value))
}

func TestLoadYAMLWithListItems(t *testing.T) {
	input := `linters:
  enable:
    - asciicheck
    - bodyclose
    - dogsled
    - errcheck`
	doc := load(t, input)
	assert.Equal(t, FormatYAML, doc.Format)
}

func TestLoadNDJSON(t *testing.T) {
	doc := load(t, "{\"id\":1}\n\n{\"id\":2}\n{\"id\":3}\n")
	assert.Equal(t, FormatNDJSON, doc.Format)
	assert.Equal(t, 3, doc.Count)
	assert.Equal(t, `[{"id":1},{"id":2},{"id":3}]`, jsonvalue.Marshal(doc.Value))
}

func TestLoadNDJSONWithPlainStrings(t *testing.T) {
	input := `{"id": 1, "message": "first"}
this is a plain string line
{"id": 2, "message": "second"}
{"id": 3, "message": "third"}`
	doc := load(t, input)
	require.Equal(t, 4, doc.Count)
	items := doc.Value.Items()
	assert.Equal(t, jsonvalue.KindObject, items[0].Kind())
	assert.Equal(t, "this is a plain string line", items[1].Str())
}

func TestLoadNDJSONLineEndings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"carriage return from progress output", "{\"level\":\"debug\"}\r❌ error message\n{\"level\":\"info\"}", 3},
		{"CRLF", "{\"id\":1}\r\n{\"id\":2}\r\n{\"id\":3}", 3},
		{"mixed", "{\"a\":1}\n{\"b\":2}\r\n{\"c\":3}\r{\"d\":4}", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := load(t, tt.input)
			assert.Equal(t, FormatNDJSON, doc.Format)
			assert.Equal(t, tt.want, doc.Count)
		})
	}
}

func TestLoadTOML(t *testing.T) {
	doc := load(t, "title = \"x\"\n\n[server]\nhost = \"localhost\"\nport = 8080\n")
	assert.Equal(t, FormatTOML, doc.Format)
	assert.Equal(t, `{"server":{"host":"localhost","port":8080},"title":"x"}`, jsonvalue.Marshal(doc.Value))
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Format
	}{
		{"json object", `{"name": "test"}`, FormatJSON},
		{"json array", `[1, 2, 3]`, FormatJSON},
		{"json number", `42`, FormatJSON},
		{"json string", `"x"`, FormatJSON},
		{"json null", `null`, FormatJSON},
		{"json bool", `false`, FormatJSON},
		{"toml section", "[server]\nhost = \"localhost\"", FormatTOML},
		{"toml array of tables", "[[items]]\nname = \"item1\"", FormatTOML},
		{"toml key values", "name = \"test\"\nvalue = 42\nenabled = true", FormatTOML},
		{"toml quoted keys", "\"table name\" = \"value\"\n\"another-key\" = 42", FormatTOML},
		{"yaml mapping", "name: test\nvalue: 42", FormatYAML},
		{"yaml list", "- item1\n- item2", FormatYAML},
		{"yaml multi doc", "a: 1\n---\na: 2", FormatYAML},
		{"ndjson", "{\"a\":1}\n{\"a\":2}", FormatNDJSON},
		{"jwt", validJWT, FormatJWT},
		{"yaml with indented brackets", "items:\n  - expression: |\n      [\"legacy\"]\n  - expression: |\n      [\"modern\"]", FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.input))
		})
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatAuto, "auto": FormatAuto, "JSON": FormatJSON, "yml": FormatYAML, "jsonl": FormatNDJSON, "toml": FormatTOML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestLoadExplicitFormat(t *testing.T) {
	doc, err := Load([]byte(`{"a":1}`), Options{Format: FormatNDJSON})
	require.NoError(t, err)
	assert.Equal(t, `[{"a":1}]`, jsonvalue.Marshal(doc.Value))

	_, err = Load([]byte("a: 1"), Options{Format: FormatJSON})
	assert.ErrorIs(t, err, ErrNotJSON)
}

func TestLoadContextBackground(t *testing.T) {
	input := []byte(`[` + strings.Repeat(`{"n":1},`, 200) + `{"n":2}]`)
	doc, err := LoadContext(context.Background(), input, Options{BackgroundBytes: 10})
	require.NoError(t, err)
	assert.Equal(t, 201, doc.Value.Len())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = LoadContext(ctx, input, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadContextTimeout(t *testing.T) {
	input := []byte(`[` + strings.Repeat(`{"n":[1,2,3,{"deep":"value"}]},`, 50000) + `1]`)
	_, err := LoadContext(context.Background(), input, Options{BackgroundBytes: 1, Timeout: time.Nanosecond})
	assert.ErrorIs(t, err, ErrParseTimeout)
}

func TestLoadReaderCapsInput(t *testing.T) {
	_, err := LoadReader(context.Background(), strings.NewReader(`[1,2,3,4,5]`), Options{MaxBytes: 5})
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestLoadFileHonorsExtension(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}
	ctx := context.Background()

	doc, err := LoadFile(ctx, write("data.yml", "name: test\nvalue: 42\n"), Options{})
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, doc.Format)

	doc, err = LoadFile(ctx, write("data.json", `{"key":"val"}`), Options{})
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, doc.Format)

	doc, err = LoadFile(ctx, write("data.toml", "[server]\nhost = \"localhost\"\n"), Options{})
	require.NoError(t, err)
	assert.Equal(t, FormatTOML, doc.Format)

	doc, err = LoadFile(ctx, write("one.ndjson", `{"a":1}`), Options{})
	require.NoError(t, err)
	assert.Equal(t, `[{"a":1}]`, jsonvalue.Marshal(doc.Value))

	// Wrong extension falls back to detection.
	doc, err = LoadFile(ctx, write("oops.toml", `{"key":"val"}`), Options{})
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, doc.Format)

	_, err = LoadFile(ctx, filepath.Join(dir, "missing.json"), Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
