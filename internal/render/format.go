package render

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/oakwood-commons/jsontable/pkg/jsonvalue"
)

var (
	dataImageRe   = regexp.MustCompile(`(?i)^data:image/(jpeg|jpg|png|gif|webp|svg\+xml|bmp);base64,`)
	dataImageInfo = regexp.MustCompile(`^data:image/([^;]+);base64,(.+)$`)
	httpRe        = regexp.MustCompile(`(?i)^https?://.+`)
	imageExtRe    = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp|svg|bmp|ico)(\?.*)?$`)
	imageHostRes  = []*regexp.Regexp{
		regexp.MustCompile(`(?i)cdn\..*\.(jpg|jpeg|png|gif|webp|svg)`),
		regexp.MustCompile(`(?i)images?\.`),
		regexp.MustCompile(`(?i)img\.`),
		regexp.MustCompile(`(?i)photo`),
		regexp.MustCompile(`(?i)picture`),
		regexp.MustCompile(`(?i)thumbnail`),
		regexp.MustCompile(`(?i)avatar`),
	}
	timestampRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`)
)

// base64 headers of JPEG, PNG and GIF payloads.
var rawImageHeaders = []struct {
	prefix string
	mime   string
}{
	{"/9j/", "jpeg"},
	{"iVBORw0KGgo", "png"},
	{"R0lGOD", "gif"},
}

// IsImage reports whether s looks like an image: a data:image URI, a bare
// base64 image payload, or an http(s) URL with an image extension or a
// typical image-hosting path fragment.
func IsImage(s string) bool {
	if dataImageRe.MatchString(s) {
		return true
	}
	if _, ok := rawImageMime(s); ok {
		return true
	}
	if !httpRe.MatchString(s) {
		return false
	}
	if imageExtRe.MatchString(s) {
		return true
	}
	for _, re := range imageHostRes {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func rawImageMime(s string) (string, bool) {
	for _, h := range rawImageHeaders {
		if strings.HasPrefix(s, h.prefix) {
			return h.mime, true
		}
	}
	return "", false
}

// Image describes an inline thumbnail.
type Image struct {
	// Src is loadable by a browser: the URL or a data URI.
	Src string
	// Label is the human-readable form: the URL or "Base64 PNG (12KB)".
	Label string
	// Inline is true for embedded base64 payloads.
	Inline bool
}

// NewImage builds the thumbnail description for an image string.
func NewImage(s string) Image {
	if mime, ok := rawImageMime(s); ok {
		return Image{
			Src:    "data:image/" + mime + ";base64," + s,
			Label:  base64Label(mime, len(s)),
			Inline: true,
		}
	}
	if m := dataImageInfo.FindStringSubmatch(s); m != nil {
		return Image{Src: s, Label: base64Label(m[1], len(m[2])), Inline: true}
	}
	return Image{Src: s, Label: s}
}

func base64Label(format string, n int) string {
	kb := int(math.Round(float64(n) * 0.75 / 1024))
	return "Base64 " + strings.ToUpper(format) + " (" + strconv.Itoa(kb) + "KB)"
}

// FormatNumber renders integers without a decimal point and everything else
// with two decimals.
func FormatNumber(v jsonvalue.Value) string {
	f, ok := v.Float64()
	if !ok {
		return v.NumberText().String()
	}
	if v.IsInteger() {
		text := v.NumberText().String()
		if !strings.ContainsAny(text, ".eE") {
			return text
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// Fractional seconds are accepted by every layout when parsing.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
}

// LooksLikeTimestamp reports whether s starts with YYYY-MM-DDTHH:MM:SS.
func LooksLikeTimestamp(s string) bool {
	return timestampRe.MatchString(s)
}

// FormatTimestamp parses an ISO-8601 timestamp and renders it in loc using
// layout. Timestamps without an offset are read as local to loc. It reports
// false when s does not parse.
func FormatTimestamp(s, layout string, loc *time.Location) (string, bool) {
	if !LooksLikeTimestamp(s) {
		return "", false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, l := range timestampLayouts {
		if t, err := time.ParseInLocation(l, s, loc); err == nil {
			return t.In(loc).Format(layout), true
		}
	}
	return "", false
}

// FormatColumnName prettifies a column key: the last dotted segment, a space
// before each capital letter and an upper-cased first character.
func FormatColumnName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	var sb strings.Builder
	for _, r := range name {
		if unicode.IsUpper(r) && r < unicode.MaxASCII {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
	}
	out := []rune(strings.TrimLeft(sb.String(), " "))
	if len(out) == 0 {
		return ""
	}
	out[0] = unicode.ToUpper(out[0])
	return string(out)
}

// ScalarText is the plain string form of a scalar, as used in inline object
// summaries.
func ScalarText(v jsonvalue.Value) string {
	switch v.Kind() {
	case jsonvalue.KindNull:
		return "null"
	case jsonvalue.KindBool:
		return strconv.FormatBool(v.Bool())
	case jsonvalue.KindNumber:
		return v.NumberText().String()
	case jsonvalue.KindString:
		return v.Str()
	case jsonvalue.KindArray:
		return "[" + strconv.Itoa(v.Len()) + " items]"
	default:
		return "{" + strconv.Itoa(v.Len()) + " props}"
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
