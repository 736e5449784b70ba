package ingestion

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumericRegex = regexp.MustCompile(`[^A-Z0-9 ]+`)
	whitespaceRegex      = regexp.MustCompile(`\s+`)
)

// normalizeText reduz um texto a uma forma canônica única: decompõe (NFD),
// remove acentos, caixa alta, e colapsa tudo que não for alfanumérico.
// Extratos chegam em codificações variadas; normalizar os dois lados da
// comparação evita enumerar variantes corrompidas de cada palavra acentuada.
func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}))
	result, _, _ := transform.String(t, str)
	result = strings.ToUpper(result)
	result = nonAlphanumericRegex.ReplaceAllString(result, " ")
	result = whitespaceRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}
