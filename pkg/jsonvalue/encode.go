package jsonvalue

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Marshal returns the compact JSON text of v. HTML characters are not escaped
// and object members keep their insertion order.
func Marshal(v Value) string {
	var sb strings.Builder
	writeValue(&sb, v, "", "", 0)
	return sb.String()
}

// MarshalIndent returns v as indented JSON text.
func MarshalIndent(v Value, indent string) string {
	var sb strings.Builder
	writeValue(&sb, v, "\n", indent, 0)
	return sb.String()
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return []byte(Marshal(v)), nil
}

// Quote returns s as a JSON string literal without HTML escaping.
func Quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

func writeValue(sb *strings.Builder, v Value, newline, indent string, depth int) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		if v.b {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindNumber:
		sb.WriteString(v.num.String())
	case KindString:
		sb.WriteString(Quote(v.str))
	case KindArray:
		if len(v.items) == 0 {
			sb.WriteString("[]")
			return
		}
		sb.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeBreak(sb, newline, indent, depth+1)
			writeValue(sb, item, newline, indent, depth+1)
		}
		writeBreak(sb, newline, indent, depth)
		sb.WriteByte(']')
	case KindObject:
		if v.object.Len() == 0 {
			sb.WriteString("{}")
			return
		}
		sb.WriteByte('{')
		for i, m := range v.object.Members() {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeBreak(sb, newline, indent, depth+1)
			sb.WriteString(Quote(m.Key))
			sb.WriteByte(':')
			if newline != "" {
				sb.WriteByte(' ')
			}
			writeValue(sb, m.Value, newline, indent, depth+1)
		}
		writeBreak(sb, newline, indent, depth)
		sb.WriteByte('}')
	}
}

func writeBreak(sb *strings.Builder, newline, indent string, depth int) {
	if newline == "" {
		return
	}
	sb.WriteString(newline)
	for i := 0; i < depth; i++ {
		sb.WriteString(indent)
	}
}
