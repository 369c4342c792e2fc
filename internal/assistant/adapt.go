package assistant

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Adapter rewrites common English words of a generated reply into Telugu.
type Adapter struct {
	table []Adaptation
}

func NewAdapter(table []Adaptation) *Adapter {
	normalized := make([]Adaptation, len(table))
	for i, a := range table {
		normalized[i] = Adaptation{From: strings.ToLower(a.From), To: a.To}
	}
	return &Adapter{table: normalized}
}

// Adapt lower-cases text, applies every substitution in table order and
// capitalizes the result. ok is false when nothing was substituted or the
// result is shorter than MinExternalLength code points.
func (a *Adapter) Adapt(text string) (string, bool) {
	lower := strings.ToLower(text)
	adapted := lower
	for _, entry := range a.table {
		adapted = strings.ReplaceAll(adapted, entry.From, entry.To)
	}

	if utf8.RuneCountInString(adapted) < MinExternalLength || adapted == lower {
		return "", false
	}
	return capitalize(adapted), true
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToTitle(r)) + strings.ToLower(s[size:])
}
