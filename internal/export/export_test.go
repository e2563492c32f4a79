package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/jsontable/internal/grid"
	"github.com/oakwood-commons/jsontable/internal/search"
	"github.com/oakwood-commons/jsontable/pkg/jsonvalue"
)

func table(t *testing.T, s string) (jsonvalue.Value, *grid.Table) {
	t.Helper()
	v, err := jsonvalue.Parse([]byte(s))
	require.NoError(t, err)
	return v, grid.Build(v, grid.Options{})
}

func TestCSVScenario(t *testing.T) {
	_, tbl := table(t, `[{"name":"Ann","tags":["x","y"]}]`)
	a := CSV(tbl.Columns, tbl.Rows, ",")
	assert.Equal(t, "name,tags\n\"Ann\",\"[\"\"x\"\",\"\"y\"\"]\"", string(a.Content))
	assert.Equal(t, CSVFilename, a.Filename)
	assert.Equal(t, CSVMIMEType, a.MIMEType)
}

func TestCSVFieldRendering(t *testing.T) {
	_, tbl := table(t, `[{"a":null,"b":false,"c":0,"d":"say \"hi\"","e":{"k":1}},{"b":true}]`)
	a := CSV(tbl.Columns, tbl.Rows, ";")
	lines := bytes.Split(a.Content, []byte("\n"))
	require.Len(t, lines, 3)
	assert.Equal(t, "b;c;d;e;a", string(lines[0]))
	assert.Equal(t, `"false";"0";"say ""hi""";"{""k"":1}";""`, string(lines[1]))
	assert.Equal(t, `"true";"";"";"";""`, string(lines[2]))
}

func TestCSVUsesFilteredRows(t *testing.T) {
	_, tbl := table(t, `[{"city":"Berlin"},{"city":"Paris"}]`)
	a := CSV(tbl.Columns, search.Filter(tbl.Rows, "paris"), "")
	assert.Equal(t, "city\n\"Paris\"", string(a.Content))
}

func TestCSVEmptyTable(t *testing.T) {
	a := CSV(nil, nil, ",")
	assert.Equal(t, "", string(a.Content))
}

func TestJSONPrefersOriginal(t *testing.T) {
	doc, tbl := table(t, `{"b":1,"a":[1]}`)
	a := JSON(&doc, tbl.Rows)
	assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": [\n    1\n  ]\n}", string(a.Content))
	assert.Equal(t, JSONMIMEType, a.MIMEType)

	a = JSON(nil, tbl.Rows[:1])
	assert.Equal(t, "[\n  {\n    \"property\": \"b\",\n    \"value\": 1\n  }\n]", string(a.Content))
}

func TestFileSink(t *testing.T) {
	dir := t.TempDir()
	path, err := FileSink{Dir: filepath.Join(dir, "out"), Logger: logr.Discard()}.Save(context.Background(), Artifact{
		Filename: CSVFilename,
		Content:  []byte("a\n\"1\""),
	})
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\n\"1\"", string(data))
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	name, err := WriterSink{W: &buf}.Save(context.Background(), Artifact{Filename: JSONFilename, Content: []byte("{}")})
	require.NoError(t, err)
	assert.Equal(t, JSONFilename, name)
	assert.Equal(t, "{}\n", buf.String())
}
