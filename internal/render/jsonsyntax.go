package render

import (
	"strings"

	"github.com/oakwood-commons/jsontable/pkg/jsonvalue"
)

// TokenClass classifies a fragment of JSON text for syntax colouring.
type TokenClass int

const (
	TokenPlain TokenClass = iota
	TokenKey
	TokenString
	TokenNumber
	TokenBool
	TokenNull
)

// Token is a classified fragment of JSON text.
type Token struct {
	Class TokenClass
	Text  string
}

// JSONDocument pretty-prints v with a two-space indent.
func JSONDocument(v jsonvalue.Value) string {
	return jsonvalue.MarshalIndent(v, "  ")
}

// Tokenize splits JSON text into classified tokens. Concatenating the token
// texts reproduces the input.
func Tokenize(text string) []Token {
	var (
		tokens []Token
		plain  strings.Builder
	)
	flush := func() {
		if plain.Len() > 0 {
			tokens = append(tokens, Token{Class: TokenPlain, Text: plain.String()})
			plain.Reset()
		}
	}
	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '"':
			end := stringEnd(text, i)
			class := TokenString
			if isKey(text, end) {
				class = TokenKey
			}
			flush()
			tokens = append(tokens, Token{Class: class, Text: text[i:end]})
			i = end
		case c == '-' || (c >= '0' && c <= '9'):
			end := i + 1
			for end < len(text) && strings.IndexByte("0123456789.eE+-", text[end]) >= 0 {
				end++
			}
			flush()
			tokens = append(tokens, Token{Class: TokenNumber, Text: text[i:end]})
			i = end
		case strings.HasPrefix(text[i:], "true"):
			flush()
			tokens = append(tokens, Token{Class: TokenBool, Text: "true"})
			i += 4
		case strings.HasPrefix(text[i:], "false"):
			flush()
			tokens = append(tokens, Token{Class: TokenBool, Text: "false"})
			i += 5
		case strings.HasPrefix(text[i:], "null"):
			flush()
			tokens = append(tokens, Token{Class: TokenNull, Text: "null"})
			i += 4
		default:
			plain.WriteByte(c)
			i++
		}
	}
	flush()
	return tokens
}

// stringEnd returns the index just past the closing quote of the string
// starting at start.
func stringEnd(text string, start int) int {
	for i := start + 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return len(text)
}

func isKey(text string, after int) bool {
	for i := after; i < len(text); i++ {
		switch text[i] {
		case ' ', '\t', '\n', '\r':
			continue
		case ':':
			return true
		default:
			return false
		}
	}
	return false
}
