// Package export builds downloadable CSV and JSON artifacts from table state
// and hands them to a sink.
package export

import (
	"strings"

	"github.com/oakwood-commons/jsontable/internal/grid"
	"github.com/oakwood-commons/jsontable/pkg/jsonvalue"
)

// Artifact names and MIME types.
const (
	CSVFilename  = "json-table-export.csv"
	CSVMIMEType  = "text/csv"
	JSONFilename = "json-table-export.json"
	JSONMIMEType = "application/json"
)

// DefaultDelimiter separates CSV fields when none is configured.
const DefaultDelimiter = ","

// Artifact is a file ready to be saved.
type Artifact struct {
	Filename string
	MIMEType string
	Content  []byte
}

// CSV exports rows under columns. The header is the raw column list; every
// data field is quoted with embedded quotes doubled. Arrays and objects are
// written as compact JSON, null and missing fields as an empty field.
func CSV(columns []string, rows []grid.Row, delimiter string) Artifact {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(columns, delimiter))
	fields := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			v, ok := row.Get(col)
			if !ok {
				fields[i] = quote("")
				continue
			}
			fields[i] = quote(FieldText(v))
		}
		lines = append(lines, strings.Join(fields, delimiter))
	}
	return Artifact{
		Filename: CSVFilename,
		MIMEType: CSVMIMEType,
		Content:  []byte(strings.Join(lines, "\n")),
	}
}

// FieldText is the unquoted CSV text of a value.
func FieldText(v jsonvalue.Value) string {
	switch v.Kind() {
	case jsonvalue.KindNull:
		return ""
	case jsonvalue.KindBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case jsonvalue.KindNumber:
		return v.NumberText().String()
	case jsonvalue.KindString:
		return v.Str()
	default:
		return jsonvalue.Marshal(v)
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// JSON exports the original document pretty-printed with a two-space indent.
// When original is nil the given rows are exported instead.
func JSON(original *jsonvalue.Value, rows []grid.Row) Artifact {
	doc := grid.RowsValue(rows)
	if original != nil {
		doc = *original
	}
	return Artifact{
		Filename: JSONFilename,
		MIMEType: JSONMIMEType,
		Content:  []byte(jsonvalue.MarshalIndent(doc, "  ")),
	}
}
