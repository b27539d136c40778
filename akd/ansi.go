package akd

import (
	"regexp"
	"strings"

	"github.com/fatih/color"
)

// csiSGR matches the CSI SGR escape shape fatih/color itself emits
// (ESC '[' params 'm'), so the same dependency that renders colour here
// is also the one whose escape shape we recognize to strip it on input.
var csiSGR = regexp.MustCompile("\x1b\\[[0-9;]*m")

// stripANSI removes SGR colour escapes from src when the caller opts in
// via Decode's removeAnsiColors option (spec.md §4.4, §8).
func stripANSI(src string) string {
	return csiSGR.ReplaceAllString(src, "")
}

var (
	jsonKeyColor    = color.New(color.FgCyan)
	jsonStringColor = color.New(color.FgGreen)
	jsonNumberColor = color.New(color.FgYellow)
	jsonBoolColor   = color.New(color.FgMagenta)
	jsonNullColor   = color.New(color.FgHiBlack)
	jsonPunctColor  = color.New(color.FgHiBlack)
)

// colorizeJSON wraps a rendered JSON document with ANSI styling per
// token class, for Node.JSON(colorize: true) (spec.md §4.3). It is a
// light lexical pass over already-valid JSON text, not a general
// tokenizer: keys are quoted strings immediately followed (after
// whitespace) by ':'.
func colorizeJSON(src string) string {
	var out strings.Builder
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '"':
			j := i + 1
			for j < len(src) && src[j] != '"' {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			j++ // include closing quote
			lit := src[i:minInt(j, len(src))]
			if isJSONKey(src, j) {
				out.WriteString(jsonKeyColor.Sprint(lit))
			} else {
				out.WriteString(jsonStringColor.Sprint(lit))
			}
			i = j
		case strings.HasPrefix(src[i:], "true"), strings.HasPrefix(src[i:], "false"):
			word := "true"
			if src[i] == 'f' {
				word = "false"
			}
			out.WriteString(jsonBoolColor.Sprint(word))
			i += len(word)
		case strings.HasPrefix(src[i:], "null"):
			out.WriteString(jsonNullColor.Sprint("null"))
			i += 4
		case c == '-' || (c >= '0' && c <= '9'):
			j := i
			for j < len(src) && strings.ContainsRune("0123456789.eE+-", rune(src[j])) {
				j++
			}
			out.WriteString(jsonNumberColor.Sprint(src[i:j]))
			i = j
		case strings.ContainsRune("{}[],:", rune(c)):
			out.WriteString(jsonPunctColor.Sprint(string(c)))
			i++
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

func isJSONKey(src string, afterQuote int) bool {
	for k := afterQuote; k < len(src); k++ {
		switch src[k] {
		case ' ', '\n', '\t', '\r':
			continue
		case ':':
			return true
		default:
			return false
		}
	}
	return false
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
